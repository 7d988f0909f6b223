package driven

import "context"

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// PromptWatcher is an optional interface for prompt stores that can
// reload automatically when templates change on disk.
type PromptWatcher interface {
	// Watch reloads prompts on change until ctx is cancelled.
	Watch(ctx context.Context) error
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswerWithContext answers a question from retrieved articles.
	// The template expects %d (source count), %s (context) and %s (question).
	PromptAnswerWithContext = "answer_with_context"

	// PromptAnswerWithoutContext answers when nothing relevant was retrieved.
	// The template expects a %s placeholder for the question.
	PromptAnswerWithoutContext = "answer_without_context"
)
