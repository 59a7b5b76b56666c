package domain

// Prompt template names. Templates are stored as editable files and fall
// back to the defaults below.
const (
	// PromptQASystem instructs the model to answer from retrieved context.
	// It has no format placeholders.
	PromptQASystem = "qa_system"

	// PromptSummarise folds new conversation lines into a running summary.
	// It expects two %s placeholders: the existing summary and the new lines.
	PromptSummarise = "summarise"
)

// DefaultQASystemPrompt is the built-in question answering instruction.
const DefaultQASystemPrompt = `You answer questions about Wikipedia articles.
Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
When the context names a source URL, you may cite it.`

// DefaultSummarisePrompt is the built-in conversation summary prompt.
const DefaultSummarisePrompt = `Progressively summarize the lines of conversation provided, adding onto the previous summary returning a new summary.

Current summary:
%s

New lines of conversation:
%s

New summary:`

// DefaultPrompts returns the built-in templates keyed by name.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptQASystem:  DefaultQASystemPrompt,
		PromptSummarise: DefaultSummarisePrompt,
	}
}
