package driven

import "context"

// LLMService streams answers from a generation provider.
//
// Implementations may include:
//   - OpenAI (GPT-4o)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// ChatStream sends messages and writes incremental output to out.
	// Implementations always close out before returning. A provider failure
	// is both sent as a StreamError event and returned.
	ChatStream(ctx context.Context, messages []ChatMessage, opts ChatOptions, out chan<- StreamEvent) error

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// StreamEventType discriminates provider stream events.
type StreamEventType string

// Provider stream event types.
const (
	StreamToken StreamEventType = "token"
	StreamDone  StreamEventType = "done"
	StreamError StreamEventType = "error"
)

// StreamEvent is one increment of a provider stream.
type StreamEvent struct {
	Type StreamEventType

	// Content is the text delta for token events.
	Content string

	// Err is set for error events.
	Err error
}
