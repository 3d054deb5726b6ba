package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
)

// Service keeps one independent Conversation per support session.
type Service struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	now           func() time.Time
}

// NewService bootstraps the in-memory session registry. Nothing outlives the process.
func NewService() *Service {
	return &Service{
		conversations: make(map[string]*Conversation),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession provisions an anonymous session with an empty transcript.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	created := s.now()
	session := chat.Session{
		ID:           uuid.NewString(),
		CreatedAt:    created,
		LastActiveAt: created,
	}

	conversation := NewConversation(session)
	conversation.now = s.now

	s.mu.Lock()
	s.conversations[session.ID] = conversation
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	conversation, err := s.Conversation(ctx, sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return conversation.Session(), nil
}

// Conversation returns the live conversation of a session.
func (s *Service) Conversation(_ context.Context, sessionID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return conversation, nil
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	conversation, err := s.Conversation(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return conversation.Messages(), nil
}

// EndSession discards a session and its transcript.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.conversations, sessionID)
	return nil
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// SweepIdle drops sessions unused for longer than ttl and returns how many
// were removed. Sessions with a call in flight are kept. ttl <= 0 disables expiry.
func (s *Service) SweepIdle(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, conversation := range s.conversations {
		lastActive, inFlight := conversation.idleSince()
		if inFlight || now.Sub(lastActive) <= ttl {
			continue
		}
		delete(s.conversations, id)
		removed++
	}
	return removed
}
