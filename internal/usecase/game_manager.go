package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

const lockStripes = 64

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager - owns the game of every browser session. The game id is the session id.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	// mutations of one session never interleave
	locks [lockStripes]sync.Mutex

	subsMu      sync.Mutex
	subscribers map[string]map[uint64]chan *entity.Game
	nextSubID   uint64
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:      logger.With("component", "game_manager"),
		gameRepo:    gameRepo,
		subscribers: make(map[string]map[uint64]chan *entity.Game),
	}
}

// GetGame - returns the session's game, starting a new one when none is stored.
func (that *GameManager) GetGame(ctx context.Context, sessionID string) (*entity.Game, error) {
	if sessionID == "" {
		return nil, apperror.ErrNoSession
	}

	unlock := that.lock(sessionID)
	defer unlock()

	return that.getOrCreateGame(ctx, sessionID)
}

// ApplyMove - plays cell for whoever's turn it is. Rejected moves are not errors:
// the unchanged game is returned and nothing is saved or published.
func (that *GameManager) ApplyMove(ctx context.Context, sessionID string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "ApplyMove", "sessionID", sessionID, "cell", cell)

	if sessionID == "" {
		return nil, apperror.ErrNoSession
	}

	unlock := that.lock(sessionID)
	defer unlock()

	game, err := that.getOrCreateGame(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err = game.ApplyMove(cell); err != nil {
		if isRejectedMove(err) {
			log.Debug("move ignored", "reason", err)
			return game, nil
		}

		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	log.Debug("move applied", "result", game.Result())
	that.publish(game)

	return game, nil
}

// Restart - resets the session's game unconditionally.
func (that *GameManager) Restart(ctx context.Context, sessionID string) (*entity.Game, error) {
	if sessionID == "" {
		return nil, apperror.ErrNoSession
	}

	unlock := that.lock(sessionID)
	defer unlock()

	game, err := that.getOrCreateGame(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	game.Restart()

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Debug("game restarted", "sessionID", sessionID)
	that.publish(game)

	return game, nil
}

// DeleteGame - drops the session's stored game before its ttl runs out. Open tabs
// are shown the empty board the next read would create.
func (that *GameManager) DeleteGame(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperror.ErrNoSession
	}

	unlock := that.lock(sessionID)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed delete game: %w", err)
	}

	that.logger.Info("game deleted", "sessionID", sessionID)
	that.publish(entity.NewGame(sessionID))

	return nil
}

// Subscribe - delivers every saved change of the session's game. Slow readers only
// see the latest state. The returned cancel func must be called to release the channel.
func (that *GameManager) Subscribe(sessionID string) (<-chan *entity.Game, func()) {
	ch := make(chan *entity.Game, 1)

	that.subsMu.Lock()
	that.nextSubID++
	id := that.nextSubID
	if that.subscribers[sessionID] == nil {
		that.subscribers[sessionID] = make(map[uint64]chan *entity.Game)
	}
	that.subscribers[sessionID][id] = ch
	that.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			that.subsMu.Lock()
			defer that.subsMu.Unlock()

			delete(that.subscribers[sessionID], id)
			if len(that.subscribers[sessionID]) == 0 {
				delete(that.subscribers, sessionID)
			}
			close(ch)
		})
	}

	return ch, cancel
}

func (that *GameManager) publish(game *entity.Game) {
	that.subsMu.Lock()
	defer that.subsMu.Unlock()

	for _, ch := range that.subscribers[game.ID] {
		// drop the stale state, if any, so the send never blocks
		select {
		case <-ch:
		default:
		}
		ch <- game.Clone()
	}
}

func (that *GameManager) lock(sessionID string) func() {
	mu := &that.locks[xxhash.Sum64String(sessionID)%lockStripes]
	mu.Lock()

	return mu.Unlock
}

func (that *GameManager) getOrCreateGame(ctx context.Context, sessionID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, sessionID)
	if err == nil {
		return game, nil
	}

	if !errors.Is(err, apperror.ErrGameNotFound) {
		return nil, fmt.Errorf("failed get game by id: %w", err)
	}

	game = entity.NewGame(sessionID)
	if err = that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed create game: %w", err)
	}

	that.logger.Info("game created", "sessionID", sessionID)

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func isRejectedMove(err error) bool {
	return errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrInvalidCell)
}
