package driven

// Chunker splits plain text into ordered, overlapping fragments.
// Implementations must be deterministic.
type Chunker interface {
	Chunk(text string) []string
}
