package models

// ChatRole tags a transcript message as user- or assistant-authored.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry in the workflow transcript. A message may
// carry a plan or an execution log; an error message carries neither.
type ChatMessage struct {
	ID        string        `json:"id"`
	Role      ChatRole      `json:"role"`
	Content   string        `json:"content"`
	Plan      *Plan         `json:"plan,omitempty"`
	Execution *ExecutionLog `json:"execution,omitempty"`
	IsError   bool          `json:"isError,omitempty"`
	CreatedAt string        `json:"createdAt,omitempty"`
}
