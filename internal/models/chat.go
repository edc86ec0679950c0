package models

import "time"

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleError     ChatRole = "error"
)

// ChatTurn is one message of a follow-up conversation about an analysis.
type ChatTurn struct {
	Role      ChatRole `json:"role"`
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp"`
}

// NewChatTurn stamps a turn with the given instant in RFC 3339.
func NewChatTurn(role ChatRole, content string, at time.Time) ChatTurn {
	return ChatTurn{Role: role, Content: content, Timestamp: at.UTC().Format(time.RFC3339)}
}
