// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentSource: Lists and fetches files (Google Drive, local directory)
//   - NormaliserRegistry: Selects the text decoder for a MIME type
//   - Chunker: Splits text into overlapping word windows
//   - DocumentStore: Document and chunk persistence
//   - ChatStore: Session and message persistence
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Streams generated answers
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EventPublisher: Announces completed syncs and chat turns.
//   - PromptStore: User-editable prompt templates. Defaults are built in.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
