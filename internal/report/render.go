package report

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DefaultWidth is the word wrap used for terminal output.
const DefaultWidth = 100

// Style names accepted by Terminal besides "auto".
const (
	StyleAuto  = "auto"
	StyleNoTTY = "notty"
)

var htmlRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts a markdown document, tables included. Raw HTML in the
// source is not passed through.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Terminal styles a markdown document for display. "auto" picks the
// style from the terminal background.
func Terminal(markdown, style string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != StyleAuto {
		styleOpt = glamour.WithStandardStyle(style)
	}

	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
