package types

import "encoding/json"

type ChatSession struct {
	ID        string `json:"session_id" db:"id"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
}

type MessageRole string

const (
	MESSAGE_ROLE_USER      MessageRole = "user"
	MESSAGE_ROLE_ASSISTANT MessageRole = "assistant"
)

func (r MessageRole) String() string {
	return string(r)
}

type ChatMessage struct {
	ID         int64       `json:"id" db:"id"`
	SessionID  string      `json:"session_id" db:"session_id"`
	Role       MessageRole `json:"role" db:"role"`
	Content    string      `json:"content" db:"content"`
	TokensUsed *int64      `json:"tokens_used,omitempty" db:"tokens_used"`
	Model      *string     `json:"model,omitempty" db:"model"`
	CreatedAt  int64       `json:"created_at" db:"created_at"`
}

// ContextData is a JSON document injected verbatim into the system prompt.
// The orchestrator never interprets Data.
type ContextData struct {
	ID       int64           `json:"id" db:"id"`
	Category string          `json:"category" db:"category"`
	KeyName  string          `json:"key_name" db:"key_name"`
	Data     json.RawMessage `json:"data" db:"data"`
}

type ChatFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data string `json:"data"` // base64
}
