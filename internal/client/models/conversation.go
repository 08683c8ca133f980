package models

import (
	"encoding/json"
	"time"
)

// Conversation is a chat thread summary. The backend orders conversations
// newest first.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subject   *string   `json:"subject,omitempty"`
	Grade     *int      `json:"grade,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationDetail is a conversation with its ordered messages. Message
// payloads are opaque to this layer.
type ConversationDetail struct {
	Conversation
	Messages []json.RawMessage `json:"messages"`
}

// NewConversation is the payload of POST conversations.
type NewConversation struct {
	Title   string  `json:"title,omitempty"`
	Subject *string `json:"subject,omitempty"`
	Grade   *int    `json:"grade,omitempty"`
}
