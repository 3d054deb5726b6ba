package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/knowledge"
	"github.com/zhouzirui/swiftcart-support/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
)

type stubGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, s.err
}

func (s *stubGenerator) set(reply string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply, s.err = reply, err
}

func setupRouter(gen ai.Generator) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService()
	var responder *ai.Responder
	if gen != nil {
		assembler := ai.NewAssembler(knowledge.Default(), ai.AssemblerOptions{})
		responder = ai.NewResponder(assembler, gen, ai.ResponderOptions{Provider: "stub"})
	}
	handler := New(chatSvc, responder)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) chat.Session {
	t.Helper()
	resp := doJSON(r, http.MethodPost, "/session", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var session chat.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected session id")
	}
	return session
}

func decodeReply(t *testing.T, resp *httptest.ResponseRecorder) replyPayload {
	t.Helper()
	var payload replyPayload
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return payload
}

func TestCreateSessionStartsEmpty(t *testing.T) {
	r, _ := setupRouter(&stubGenerator{reply: "hi"})
	session := createSession(t, r)

	resp := doJSON(r, http.MethodGet, "/session/"+session.ID+"/messages", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var messages []chat.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty transcript, got %d messages", len(messages))
	}
}

func TestSubmitMessageAnswers(t *testing.T) {
	gen := &stubGenerator{reply: "You can return items within 30 days."}
	r, _ := setupRouter(gen)
	session := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"content": "Return policy?"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	payload := decodeReply(t, resp)
	if payload.Status != "answered" {
		t.Fatalf("expected answered, got %s", payload.Status)
	}
	if payload.Reply == nil || payload.Reply.Content != "You can return items within 30 days." {
		t.Fatalf("unexpected reply: %+v", payload.Reply)
	}
	if len(payload.Messages) != 2 || payload.Messages[0].Role != chat.RoleUser || payload.Messages[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected transcript: %+v", payload.Messages)
	}
}

func TestSubmitEmptyMessageIsIgnored(t *testing.T) {
	gen := &stubGenerator{reply: "unused"}
	r, chatSvc := setupRouter(gen)
	session := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"content": "   "})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"ignored"`)) {
		t.Fatalf("expected ignored status, got %s", resp.Body.String())
	}

	messages, _ := chatSvc.LoadTranscript(context.Background(), session.ID)
	if len(messages) != 0 || gen.calls != 0 {
		t.Fatalf("expected no mutation and no call, got %d messages and %d calls", len(messages), gen.calls)
	}
}

func TestSubmitEndpointFailureThenRetry(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream unavailable")}
	r, chatSvc := setupRouter(gen)
	session := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"content": "Do you ship abroad?"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	messages, _ := chatSvc.LoadTranscript(context.Background(), session.ID)
	if len(messages) != 1 || messages[0].Role != chat.RoleUser {
		t.Fatalf("expected pending user turn, got %+v", messages)
	}

	resp = doJSON(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"content": "Something else"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a second unanswered question, got %d", resp.Code)
	}

	gen.set("Only within India for now.", nil)
	resp = doJSON(r, http.MethodPost, "/session/"+session.ID+"/retry", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	payload := decodeReply(t, resp)
	if payload.Reply == nil || payload.Reply.Content != "Only within India for now." {
		t.Fatalf("unexpected reply: %+v", payload.Reply)
	}
	if len(payload.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(payload.Messages))
	}
}

func TestRetryWithNothingPendingIsIdle(t *testing.T) {
	gen := &stubGenerator{reply: "unused"}
	r, _ := setupRouter(gen)
	session := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/session/"+session.ID+"/retry", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if payload := decodeReply(t, resp); payload.Status != "idle" {
		t.Fatalf("expected idle, got %s", payload.Status)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no endpoint call, got %d", gen.calls)
	}
}

func TestSubmitWithoutGeneratorIsUnavailable(t *testing.T) {
	r, chatSvc := setupRouter(nil)
	session := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/session/"+session.ID+"/messages", map[string]string{"content": "Hello"})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}

	messages, _ := chatSvc.LoadTranscript(context.Background(), session.ID)
	if len(messages) != 0 {
		t.Fatalf("expected untouched transcript, got %d messages", len(messages))
	}
}

func TestUnknownSession(t *testing.T) {
	r, _ := setupRouter(&stubGenerator{reply: "hi"})

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/session/missing/messages"},
		{http.MethodPost, "/session/missing/messages"},
		{http.MethodPost, "/session/missing/retry"},
		{http.MethodDelete, "/session/missing"},
	} {
		resp := doJSON(r, tc.method, tc.path, map[string]string{"content": "hi"})
		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestEndSessionDiscardsTranscript(t *testing.T) {
	r, chatSvc := setupRouter(&stubGenerator{reply: "hi"})
	session := createSession(t, r)

	resp := doJSON(r, http.MethodDelete, "/session/"+session.ID, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if chatSvc.Count() != 0 {
		t.Fatalf("expected no sessions, got %d", chatSvc.Count())
	}
}

func TestSubmitInvalidBody(t *testing.T) {
	r, _ := setupRouter(&stubGenerator{reply: "hi"})
	session := createSession(t, r)

	req := httptest.NewRequest(http.MethodPost, "/session/"+session.ID+"/messages", bytes.NewReader([]byte("{")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
