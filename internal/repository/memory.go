package repository

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

type memGame struct {
	games *ttlcache.Cache[string, *entity.Game]
}

// NewMemoryGameRepository - in-process store with the same expiry semantics as the redis one.
// Expired games are evicted in the background until ctx is cancelled.
func NewMemoryGameRepository(ctx context.Context, ttl time.Duration) GameRepository {
	that := newMemGame(ttl)

	go that.games.Start()
	context.AfterFunc(ctx, that.games.Stop)

	return that
}

func newMemGame(ttl time.Duration) *memGame {
	return &memGame{
		games: ttlcache.New[string, *entity.Game](
			ttlcache.WithTTL[string, *entity.Game](ttl),
			// reads do not extend a game's life, only writes do
			ttlcache.WithDisableTouchOnHit[string, *entity.Game](),
		),
	}
}

func (that *memGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.games.Set(game.ID, game.Clone(), ttlcache.DefaultTTL)

	return nil
}

func (that *memGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	item := that.games.Get(id)
	if item == nil || item.IsExpired() {
		return nil, apperror.ErrGameNotFound
	}

	return item.Value().Clone(), nil
}

func (that *memGame) DeleteByID(_ context.Context, id string) error {
	that.games.Delete(id)

	return nil
}
