package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/knowledge"
	"github.com/zhouzirui/swiftcart-support/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
)

type scriptedGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    []error
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	reply, err := g.replies[0], g.errs[0]
	g.replies, g.errs = g.replies[1:], g.errs[1:]
	return reply, err
}

func newSession(gen ai.Generator) (*chatservice.Conversation, *ai.Responder) {
	conv := chatservice.NewConversation(chat.Session{ID: "terminal", CreatedAt: time.Now().UTC()})
	responder := ai.NewResponder(ai.NewAssembler(knowledge.Default(), ai.AssemblerOptions{}), gen, ai.ResponderOptions{Provider: "scripted"})
	return conv, responder
}

func TestRunAnswersQuestions(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Use the tracking page."}, errs: []error{nil}}
	conv, responder := newSession(gen)
	var out bytes.Buffer

	err := run(context.Background(), strings.NewReader("Where is my order?\n\n/history\n/quit\n"), &out, knowledge.Default().Profile, conv, responder)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Gem: Use the tracking page.")
	assert.Contains(t, out.String(), "You: Where is my order?")
	assert.Len(t, conv.Messages(), 2)
}

func TestRunRetryAfterFailure(t *testing.T) {
	gen := &scriptedGenerator{
		replies: []string{"", "Refunds take 5-7 days."},
		errs:    []error{errors.New("service unavailable"), nil},
	}
	conv, responder := newSession(gen)
	var out bytes.Buffer

	err := run(context.Background(), strings.NewReader("Refund status?\nAnother question\n/retry\n"), &out, knowledge.Default().Profile, conv, responder)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "service unavailable")
	assert.Contains(t, text, "use /retry to ask again")
	assert.Contains(t, text, "Gem: Refunds take 5-7 days.")

	messages := conv.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Refund status?", messages[0].Content)
}

func TestRunRetryWithNothingPending(t *testing.T) {
	conv, responder := newSession(&scriptedGenerator{})
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), strings.NewReader("/retry\n"), &out, knowledge.Default().Profile, conv, responder))
	assert.Contains(t, out.String(), "nothing to retry")
}
