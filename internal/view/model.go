package view

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

const (
	statusClass     = "status"
	statusClassWin  = "status status--win"
	statusClassDraw = "status status--draw"
)

type Cell struct {
	Index    int         `json:"index"`
	Mark     entity.Mark `json:"mark"`
	Label    string      `json:"label"`
	Disabled bool        `json:"disabled"`
}

// Board - everything the page needs to draw one game.
type Board struct {
	GameID      string        `json:"game_id"`
	Cells       []Cell        `json:"cells"`
	Turn        entity.Mark   `json:"player_turn"`
	Result      entity.Result `json:"result"`
	Winner      entity.Mark   `json:"winner"`
	Finished    bool          `json:"finished"`
	Status      string        `json:"status"`
	StatusClass string        `json:"status_class"`
}

func NewBoard(game *entity.Game) Board {
	result := game.Result()

	board := Board{
		GameID:   game.ID,
		Cells:    make([]Cell, 0, entity.BoardSize),
		Turn:     game.Turn,
		Result:   result,
		Winner:   result.Winner(),
		Finished: result.IsFinished(),
	}

	for i, mark := range game.Board {
		board.Cells = append(board.Cells, Cell{
			Index:    i,
			Mark:     mark,
			Label:    CellLabel(i, mark),
			Disabled: board.Finished || mark != entity.EmptyCell,
		})
	}

	switch result {
	case entity.ResultXWins, entity.ResultOWins:
		board.Status = fmt.Sprintf("Winner: %s", board.Winner)
		board.StatusClass = statusClassWin
	case entity.ResultDraw:
		board.Status = "Draw"
		board.StatusClass = statusClassDraw
	default:
		board.Status = fmt.Sprintf("Next: %s", game.Turn)
		board.StatusClass = statusClass
	}

	return board
}

// CellLabel - accessible name of a cell; positions are 1-based.
func CellLabel(index int, mark entity.Mark) string {
	if mark == entity.EmptyCell {
		return fmt.Sprintf("Cell %d empty", index+1)
	}

	return fmt.Sprintf("Cell %d occupied by %s", index+1, mark)
}

// Rows - cells grouped three at a time, top row first.
func (that Board) Rows() [][]Cell {
	rows := make([][]Cell, 0, 3)
	for i := 0; i < len(that.Cells); i += 3 {
		rows = append(rows, that.Cells[i:i+3])
	}

	return rows
}
