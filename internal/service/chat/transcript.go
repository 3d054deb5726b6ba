package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
)

// Transcript is the ordered, append-only turn list of one session.
// It is not safe for concurrent use; Conversation serializes access.
type Transcript struct {
	sessionID string
	messages  []chat.Message
	now       func() time.Time
}

// NewTranscript creates an empty transcript bound to a session.
func NewTranscript(sessionID string) *Transcript {
	return &Transcript{
		sessionID: sessionID,
		messages:  make([]chat.Message, 0, 16),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Append stores a new turn at the end. Content is kept verbatim; trimming is
// only used to reject blank input.
func (t *Transcript) Append(role chat.Role, content string) (chat.Message, error) {
	if !role.Valid() {
		return chat.Message{}, ErrInvalidRole
	}
	if strings.TrimSpace(content) == "" {
		return chat.Message{}, ErrEmptyContent
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		SessionID: t.sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: t.now(),
	}
	t.messages = append(t.messages, message)
	return message, nil
}

// All returns a copy of every turn, oldest first.
func (t *Transcript) All() []chat.Message {
	copied := make([]chat.Message, len(t.messages))
	copy(copied, t.messages)
	return copied
}

// LastRole returns the role of the final turn, or RoleNone when empty.
func (t *Transcript) LastRole() chat.Role {
	if len(t.messages) == 0 {
		return chat.RoleNone
	}
	return t.messages[len(t.messages)-1].Role
}

// Last returns the final turn.
func (t *Transcript) Last() (chat.Message, bool) {
	if len(t.messages) == 0 {
		return chat.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Len returns the number of stored turns.
func (t *Transcript) Len() int {
	return len(t.messages)
}
