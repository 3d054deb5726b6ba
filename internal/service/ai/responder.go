package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/log"
)

// ResponderOptions tunes a Responder.
type ResponderOptions struct {
	// Provider names the endpoint in errors and logs.
	Provider string
	// Timeout bounds each endpoint call. Zero waits indefinitely.
	Timeout time.Duration
}

// Result is the outcome of a dispatched turn. Both fields are nil when no
// question was owed a response.
type Result struct {
	Message *chat.Message
	Err     error
}

// Responder answers the unanswered question of a conversation with exactly
// one generation call.
type Responder struct {
	assembler *Assembler
	generator Generator
	opts      ResponderOptions
}

// NewResponder wires the assembler to a generator. A nil generator leaves
// the responder unconfigured: every call fails with ErrNotConfigured.
func NewResponder(assembler *Assembler, generator Generator, opts ResponderOptions) *Responder {
	if opts.Provider == "" {
		opts.Provider = "llm"
	}
	return &Responder{
		assembler: assembler,
		generator: generator,
		opts:      opts,
	}
}

// Enabled reports whether a generator is configured.
func (r *Responder) Enabled() bool {
	return r != nil && r.generator != nil
}

// Respond answers the pending question synchronously. It returns (nil, nil)
// without calling the endpoint when nothing is owed.
func (r *Responder) Respond(ctx context.Context, conv *chatservice.Conversation) (*chat.Message, error) {
	turn, ok, err := r.claim(conv)
	if err != nil || !ok {
		return nil, err
	}
	return r.answer(ctx, conv, turn)
}

// Dispatch claims the pending question immediately and answers it on a
// separate goroutine. The returned channel yields exactly one Result. The
// call runs to completion even if ctx is cancelled afterwards.
func (r *Responder) Dispatch(ctx context.Context, conv *chatservice.Conversation) (<-chan Result, error) {
	turn, ok, err := r.claim(conv)
	if err != nil {
		return nil, err
	}

	results := make(chan Result, 1)
	if !ok {
		results <- Result{}
		close(results)
		return results, nil
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(results)
		message, err := r.answer(detached, conv, turn)
		results <- Result{Message: message, Err: err}
	}()
	return results, nil
}

func (r *Responder) claim(conv *chatservice.Conversation) (chatservice.Turn, bool, error) {
	if !r.Enabled() {
		return chatservice.Turn{}, false, ErrNotConfigured
	}

	turn, err := conv.BeginTurn()
	if errors.Is(err, chatservice.ErrNoPendingTurn) {
		return chatservice.Turn{}, false, nil
	}
	if err != nil {
		return chatservice.Turn{}, false, err
	}
	return turn, true, nil
}

func (r *Responder) answer(ctx context.Context, conv *chatservice.Conversation, turn chatservice.Turn) (*chat.Message, error) {
	prompt := r.assembler.Build(turn.History, turn.Question.Content)

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	started := time.Now()
	text, err := r.generator.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		conv.AbandonTurn(turn)
		log.Warnw("generation failed, question left pending",
			"session", turn.Question.SessionID, "provider", r.opts.Provider, "error", err)
		return nil, &EndpointError{Provider: r.opts.Provider, Err: err}
	}

	message, err := conv.CompleteTurn(turn, text)
	if err != nil {
		conv.AbandonTurn(turn)
		return nil, err
	}

	log.Infow("generated response",
		"session", turn.Question.SessionID,
		"provider", r.opts.Provider,
		"promptLength", len(prompt),
		"length", len(text),
		"elapsed", time.Since(started))
	return &message, nil
}
