package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

const (
	colorX = "#E11D48"
	colorO = "#0891B2"
)

// Terminal - draws boards for a terminal with the given color profile.
type Terminal struct {
	profile termenv.Profile
}

func NewTerminal(profile termenv.Profile) *Terminal {
	return &Terminal{profile: profile}
}

// Render - 3x3 grid with empty cells numbered 1-9, followed by the status line.
func (that *Terminal) Render(w io.Writer, board Board) error {
	var sb strings.Builder

	for r, row := range board.Rows() {
		if r > 0 {
			sb.WriteString("---+---+---\n")
		}

		for c, cell := range row {
			if c > 0 {
				sb.WriteString("|")
			}
			sb.WriteString(" " + that.cell(cell) + " ")
		}
		sb.WriteString("\n")
	}

	status := that.profile.String(board.Status).Bold()
	switch board.Winner {
	case entity.PlayerX:
		status = status.Foreground(that.profile.Color(colorX))
	case entity.PlayerO:
		status = status.Foreground(that.profile.Color(colorO))
	}
	sb.WriteString("\n" + status.String() + "\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write board: %w", err)
	}

	return nil
}

func (that *Terminal) cell(cell Cell) string {
	switch cell.Mark {
	case entity.PlayerX:
		return that.profile.String(string(cell.Mark)).Foreground(that.profile.Color(colorX)).Bold().String()
	case entity.PlayerO:
		return that.profile.String(string(cell.Mark)).Foreground(that.profile.Color(colorO)).Bold().String()
	default:
		return that.profile.String(strconv.Itoa(cell.Index + 1)).Faint().String()
	}
}
