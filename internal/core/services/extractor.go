package services

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// minFallbackTextLength is the trimmed length an undeclared payload must
// exceed before it is accepted as text.
const minFallbackTextLength = 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor turns fetched file bytes into plain text.
// Extraction never fails; unusable content is reported as "no text".
type Extractor struct {
	registry driven.NormaliserRegistry
}

// NewExtractor creates an extractor backed by registry.
func NewExtractor(registry driven.NormaliserRegistry) *Extractor {
	return &Extractor{registry: registry}
}

// Extract returns the text of content and whether any usable text was found.
func (e *Extractor) Extract(ctx context.Context, content []byte, mimeType string) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Extraction panicked for %s: %v", mimeType, r)
			text, ok = "", false
		}
	}()

	if len(content) == 0 {
		return "", false
	}

	if e.registry != nil {
		if n := e.registry.Get(mimeType); n != nil {
			out, err := n.Normalise(ctx, &domain.FetchedContent{Data: content, MIMEType: mimeType})
			if err != nil {
				logger.Warn("Extraction failed for %s: %v", mimeType, err)
				return "", false
			}
			if strings.TrimSpace(out) == "" {
				return "", false
			}
			return out, true
		}
	}

	return fallbackText(content)
}

// fallbackText accepts undeclared content as UTF-8 when it looks like text.
func fallbackText(content []byte) (string, bool) {
	if bytes.IndexByte(content, 0) >= 0 {
		return "", false
	}
	content = bytes.TrimPrefix(content, utf8BOM)
	text := string(content)
	if !utf8.Valid(content) {
		text = strings.ToValidUTF8(text, "�")
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) <= minFallbackTextLength {
		return "", false
	}
	return text, true
}
