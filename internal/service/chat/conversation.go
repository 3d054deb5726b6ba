package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
)

// Turn is a claimed unanswered question together with the history before it.
type Turn struct {
	History  []chat.Message
	Question chat.Message
}

// Conversation owns the transcript of one session and enforces that at most
// one question is outstanding and at most one endpoint call runs at a time.
type Conversation struct {
	mu         sync.Mutex
	session    chat.Session
	transcript *Transcript
	inFlight   bool
	now        func() time.Time
}

// NewConversation starts an empty conversation for the session.
func NewConversation(session chat.Session) *Conversation {
	return &Conversation{
		session:    session,
		transcript: NewTranscript(session.ID),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Session returns the session metadata.
func (c *Conversation) Session() chat.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Messages returns the transcript, oldest first.
func (c *Conversation) Messages() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.All()
}

// LastRole returns the role of the final turn, or RoleNone.
func (c *Conversation) LastRole() chat.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.LastRole()
}

// Pending reports whether a user question is owed a response.
func (c *Conversation) Pending() bool {
	return c.LastRole() == chat.RoleUser
}

// InFlight reports whether an endpoint call is outstanding.
func (c *Conversation) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Submit records user text as a new question. Re-submitting the text of an
// unanswered question returns that question unchanged so the caller can
// re-trigger the response.
func (c *Conversation) Submit(content string) (chat.Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return chat.Message{}, ErrEmptyContent
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return chat.Message{}, ErrTurnInFlight
	}

	if last, ok := c.transcript.Last(); ok && last.Role == chat.RoleUser {
		if strings.TrimSpace(last.Content) == trimmed {
			c.touch()
			return last, nil
		}
		return chat.Message{}, ErrTurnPending
	}

	message, err := c.transcript.Append(chat.RoleUser, content)
	if err != nil {
		return chat.Message{}, err
	}
	c.touch()
	return message, nil
}

// BeginTurn claims the unanswered question for a single endpoint call.
func (c *Conversation) BeginTurn() (Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return Turn{}, ErrTurnInFlight
	}
	if c.transcript.LastRole() != chat.RoleUser {
		return Turn{}, ErrNoPendingTurn
	}

	messages := c.transcript.All()
	c.inFlight = true
	c.touch()
	return Turn{
		History:  messages[:len(messages)-1],
		Question: messages[len(messages)-1],
	}, nil
}

// CompleteTurn appends the generated answer and releases the turn.
func (c *Conversation) CompleteTurn(turn Turn, text string) (chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.owns(turn) {
		return chat.Message{}, ErrNoPendingTurn
	}

	message, err := c.transcript.Append(chat.RoleAssistant, text)
	if err != nil {
		return chat.Message{}, err
	}
	c.inFlight = false
	c.touch()
	return message, nil
}

// AbandonTurn releases the turn without touching the transcript, leaving the
// question unanswered for a later retry.
func (c *Conversation) AbandonTurn(turn Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.owns(turn) {
		c.inFlight = false
	}
}

// idleSince reports when the conversation was last used and whether a call is running.
func (c *Conversation) idleSince() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.LastActiveAt, c.inFlight
}

func (c *Conversation) owns(turn Turn) bool {
	last, ok := c.transcript.Last()
	return c.inFlight && ok && last.ID == turn.Question.ID
}

func (c *Conversation) touch() {
	c.session.LastActiveAt = c.now()
}
