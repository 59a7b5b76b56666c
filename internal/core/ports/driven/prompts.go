package driven

import "github.com/custodia-labs/wikichat/internal/core/domain"

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
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
	// PromptQASystem is the system prompt for answering questions from
	// retrieved context. It has no format placeholders.
	PromptQASystem = domain.PromptQASystem

	// PromptSummarise folds new conversation lines into a running summary.
	// The template expects two %s placeholders: the existing summary and the new lines.
	PromptSummarise = domain.PromptSummarise
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

// LoadPrompt loads name from store, falling back to the built-in default
// when store is nil or cannot provide it.
func LoadPrompt(store PromptStore, name string) string {
	if store != nil {
		if prompt, err := store.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return domain.DefaultPrompts()[name]
}
