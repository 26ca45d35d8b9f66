// Package domain defines the core business entities for procdocs.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A process document extracted from the document source
//   - Chunk: An overlapping word window of a document, with its embedding
//   - ChatSession / ChatMessage: The flat conversation log
//   - ChatEvent: One typed event of a streamed chat turn
//   - SourceFile / FetchedContent: What the document source lists and returns
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
