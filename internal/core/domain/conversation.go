package domain

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the memory of one chat session: a running summary of
// older turns plus the most recent turns kept verbatim.
type Conversation struct {
	// Summary condenses turns that no longer fit the memory budget.
	Summary string `json:"summary,omitempty"`

	// Turns are the recent turns in chronological order.
	Turns []Turn `json:"turns"`
}

// IsEmpty returns true if the conversation holds no history.
func (c *Conversation) IsEmpty() bool {
	return c == nil || (c.Summary == "" && len(c.Turns) == 0)
}

// Answer is the result of asking one question.
type Answer struct {
	// SessionID is the conversation the question belonged to.
	SessionID string `json:"session_id"`

	// Text is the language model's answer.
	Text string `json:"answer"`

	// Sources are the chunks the answer was grounded on, nearest first.
	Sources []Chunk `json:"-"`
}

// PipelineState is a stage of the question answering pipeline.
type PipelineState string

// Pipeline states in the order a question moves through them.
const (
	StateIdle           PipelineState = "idle"
	StateRetrieving     PipelineState = "retrieving"
	StateComposing      PipelineState = "composing"
	StateCallingLLM     PipelineState = "calling_llm"
	StateUpdatingMemory PipelineState = "updating_memory"
)

// String returns the string representation.
func (s PipelineState) String() string {
	return string(s)
}
