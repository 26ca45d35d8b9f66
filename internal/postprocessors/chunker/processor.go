// Package chunker provides a word-window text chunker.
package chunker

import (
	"strings"

	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultTargetSize is the default number of words per chunk.
const DefaultTargetSize = 500

// DefaultOverlap is the default number of words shared by consecutive chunks.
const DefaultOverlap = 100

// Processor splits text into overlapping windows of whole words.
type Processor struct {
	targetSize int
	overlap    int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithTargetSize sets the window size in words.
func WithTargetSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.targetSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		targetSize: DefaultTargetSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap at or above the window would never advance
	if p.overlap >= p.targetSize {
		p.overlap = p.targetSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// TargetSize returns the effective window size.
func (p *Processor) TargetSize() int {
	return p.targetSize
}

// Overlap returns the effective overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits text into windows of targetSize words, each starting
// targetSize-overlap words after the previous one. The last window may be
// shorter. Words are re-joined with single spaces.
func (p *Processor) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= p.targetSize {
		return []string{strings.Join(words, " ")}
	}

	step := p.targetSize - p.overlap
	chunks := make([]string, 0, (len(words)-p.overlap+step-1)/step)

	for start := 0; start < len(words); start += step {
		end := start + p.targetSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}

	return chunks
}
