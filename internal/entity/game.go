package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
)

type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

const BoardSize = 9

type Board [BoardSize]Mark

type Result string

const (
	ResultInProgress Result = "in_progress"
	ResultXWins      Result = "x_wins"
	ResultOWins      Result = "o_wins"
	ResultDraw       Result = "draw"
)

// WinCombos - rows, columns, then diagonals. Evaluate reports the first match.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate - maps any board to its result. It is pure and total over all boards.
func Evaluate(board Board) Result {
	switch winningMark(board) {
	case PlayerX:
		return ResultXWins
	case PlayerO:
		return ResultOWins
	}

	if board.IsFull() {
		return ResultDraw
	}

	return ResultInProgress
}

func winningMark(board Board) Mark {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Winner - returns the winning mark, or EmptyCell for draws and unfinished games.
func (that Result) Winner() Mark {
	switch that {
	case ResultXWins:
		return PlayerX
	case ResultOWins:
		return PlayerO
	default:
		return EmptyCell
	}
}

func (that Result) IsFinished() bool {
	return that != ResultInProgress
}

func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

type Game struct {
	ID    string `json:"id"`
	Board Board  `json:"board"`
	Turn  Mark   `json:"player_turn"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:    id,
		Board: Board{},
		Turn:  PlayerX,
	}
}

func (that *Game) Result() Result {
	return Evaluate(that.Board)
}

func (that *Game) Winner() Mark {
	return that.Result().Winner()
}

func (that *Game) IsFinished() bool {
	return that.Result().IsFinished()
}

// ApplyMove - places the current turn's mark on cell and passes the turn.
// A rejected move leaves the board and turn untouched and reports why.
func (that *Game) ApplyMove(cell int) error {
	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = that.Turn
	that.Turn = that.Turn.Opponent()

	return nil
}

// Restart - back to an empty board with X to move, whatever the current state.
func (that *Game) Restart() {
	that.Board = Board{}
	that.Turn = PlayerX
}

func (that *Game) Clone() *Game {
	clone := *that
	return &clone
}
