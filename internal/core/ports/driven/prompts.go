package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptChatSystem is the system prompt for grounded answers.
	// This prompt has no format placeholders.
	PromptChatSystem = "chat_system"

	// PromptChatContext wraps the retrieved context and the question.
	// The template expects two %s placeholders: the context block, then the question.
	PromptChatContext = "chat_context"
)
