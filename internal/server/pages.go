package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

//go:embed templates/*.html
var templateFS embed.FS

func parsePages() (*template.Template, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	return t, nil
}

// indexPage is the data for index.html.
type indexPage struct {
	Question string
	Message  string
	// Answer is produced by the formatter, which does not escape.
	Answer template.HTML
}

type legalPage struct {
	Title   string
	Content template.HTML
}

// legalRenderer turns the plain-text or markdown legal documents into HTML.
type legalRenderer struct {
	md goldmark.Markdown
}

func newLegalRenderer() *legalRenderer {
	return &legalRenderer{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)}
}

// Render reads path and converts it to an HTML fragment.
func (l *legalRenderer) Render(path string) (template.HTML, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := l.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("rendering %s: %w", path, err)
	}
	return template.HTML(buf.String()), nil
}
