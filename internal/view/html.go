package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Page - data of the single game page.
type Page struct {
	Title string
	Board Board
}

func RenderPage(w io.Writer, board Board) error {
	page := Page{
		Title: "Tic Tac Toe",
		Board: board,
	}

	if err := templates.ExecuteTemplate(w, "index.html", page); err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	return nil
}

// Static - stylesheet and script served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Errorf("static assets: %w", err))
	}

	return sub
}
