// Command tictactoe-term plays hot-seat Tic Tac Toe in a terminal.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/view"
)

const help = "Enter 1-9 to play a cell, r to restart, q to quit."

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	output := termenv.NewOutput(os.Stdout)
	terminal := view.NewTerminal(output.EnvColorProfile())

	if err := run(os.Stdin, os.Stdout, terminal); err != nil {
		logger.Error("game aborted", "error", err)
		os.Exit(1)
	}
}

// run - reads one command per line until q or end of input.
func run(in io.Reader, out io.Writer, terminal *view.Terminal) error {
	game := entity.NewGame("terminal")
	scanner := bufio.NewScanner(in)

	if _, err := fmt.Fprintln(out, help); err != nil {
		return fmt.Errorf("write help: %w", err)
	}

	for {
		if err := terminal.Render(out, view.NewBoard(game)); err != nil {
			return err
		}

		if _, err := fmt.Fprint(out, "> "); err != nil {
			return fmt.Errorf("write prompt: %w", err)
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		}

		switch input := strings.TrimSpace(scanner.Text()); input {
		case "q":
			return nil
		case "r":
			game.Restart()
		default:
			position, err := strconv.Atoi(input)
			if err != nil {
				continue
			}
			// rejected moves are ignored, the board is simply drawn again
			_ = game.ApplyMove(position - 1)
		}
	}
}
