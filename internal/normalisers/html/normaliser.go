package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

const (
	noiseSelector = "script, style, noscript, svg, nav, header, footer, head"
	mainSelector  = "main, article"
	blockSelector = "h1, h2, h3, h4, h5, h6, p, li, td, th, pre, blockquote"
	titleSelector = "title"
)

// Normalise extracts the text of block elements, preferring <main> and
// <article> content. Pages without block elements fall back to the body text.
func (n *Normaliser) Normalise(_ context.Context, content *domain.FetchedContent) (string, error) {
	if content == nil {
		return "", domain.ErrInvalidInput
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content.Data))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %w", domain.ErrExtractionFailed, err)
	}
	return extractText(doc), nil
}

// Title returns the page <title>, or empty.
func Title(data []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find(titleSelector).First().Text())
}

func extractText(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()

	sel := doc.Find(mainSelector)
	if sel.Length() == 0 {
		sel = doc.Selection
	}

	var parts []string
	sel.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks (p inside li, etc.) are emitted by the innermost match.
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if t := collapseSpaces(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})

	if len(parts) == 0 {
		return collapseLines(sel.Text())
	}
	return strings.Join(parts, "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func collapseLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = collapseSpaces(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
