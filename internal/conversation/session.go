// Package conversation holds chat sessions and their on-disk persistence.
// Sessions are the pipeline's input: a recorded exchange between a user and
// an assistant that later gets distilled into a product spec.
package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a single turn in a conversation.
type Message struct {
	Role      string    `json:"role"` // user, assistant, system
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a full recorded conversation.
type Session struct {
	ID        string            `json:"id"`
	Messages  []Message         `json:"messages"`
	StartedAt time.Time         `json:"started_at"`
	EndedAt   *time.Time        `json:"ended_at,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewSession creates an empty session with a fresh ID.
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Append adds a message to the session.
func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// End marks the session finished.
func (s *Session) End() {
	now := time.Now()
	s.EndedAt = &now
}

// Text renders the conversation as plain text for LLM prompts.
func (s *Session) Text() string {
	var sb strings.Builder
	for _, m := range s.Messages {
		sb.WriteString(fmt.Sprintf("%s: %s\n", strings.ToUpper(m.Role), m.Content))
	}
	return sb.String()
}
