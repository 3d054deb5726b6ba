package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/swiftcart-support/backend/internal/handler/apierror"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
	"github.com/zhouzirui/swiftcart-support/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/log"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Frame types.
const (
	FrameTranscript = "transcript"
	FramePending    = "pending"
	FrameMessage    = "message"
	FrameError      = "error"
)

// Handler keeps a widget connected to one session. Answers are generated in
// the background and pushed when they arrive, so the connection keeps
// reading while a call is outstanding.
type Handler struct {
	responder *ai.Responder
	chatSvc   *chatservice.Service
	upgrader  websocket.Upgrader
}

// New creates the WebSocket handler.
func New(responder *ai.Responder, chatSvc *chatservice.Service) *Handler {
	return &Handler{
		responder: responder,
		chatSvc:   chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the WebSocket route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type transcriptData struct {
	Messages  []chat.Message `json:"messages"`
	Pending   bool           `json:"pending"`
	Available bool           `json:"available"`
}

// connection serializes writes; gorilla allows one concurrent writer.
type connection struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	sessionID string
}

func (c *connection) send(frameType string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := c.conn.WriteJSON(outgoingMessage{
		Type:      frameType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		log.Warnw("websocket write failed", "session", c.sessionID, "type", frameType, "error", err)
	}
}

func (c *connection) sendError(message string) {
	c.send(FrameError, map[string]string{"message": message})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	conv, err := h.chatSvc.Conversation(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, apierror.Status(err), err.Error())
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnw("websocket upgrade failed", "session", sessionID, "error", err)
		return
	}
	defer ws.Close()

	log.Infow("websocket connected", "session", sessionID)

	var pending sync.WaitGroup
	defer pending.Wait()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := &connection{conn: ws, sessionID: sessionID}

	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go h.pingLoop(ctx, ws)

	conn.send(FrameTranscript, transcriptData{
		Messages:  conv.Messages(),
		Pending:   conv.Pending(),
		Available: h.responder.Enabled(),
	})

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw("websocket read failed", "session", sessionID, "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "message":
			h.handleQuestion(ctx, conn, conv, msg.Content, &pending)
		case "retry":
			h.dispatch(ctx, conn, conv, &pending)
		default:
			conn.sendError("unsupported message type: " + msg.Type)
		}
	}
}

func (h *Handler) handleQuestion(ctx context.Context, conn *connection, conv *chatservice.Conversation, content string, pending *sync.WaitGroup) {
	if !h.responder.Enabled() {
		conn.sendError(apierror.Message(ai.ErrNotConfigured))
		return
	}

	question, err := conv.Submit(content)
	if chatservice.IsInputError(err) {
		return
	}
	if err != nil {
		conn.sendError(err.Error())
		return
	}

	conn.send(FramePending, question)
	h.dispatch(ctx, conn, conv, pending)
}

// dispatch claims the pending question and pushes the outcome once the call
// returns. Nothing is sent when no question is owed.
func (h *Handler) dispatch(ctx context.Context, conn *connection, conv *chatservice.Conversation, pending *sync.WaitGroup) {
	results, err := h.responder.Dispatch(ctx, conv)
	if err != nil {
		conn.sendError(apierror.Message(err))
		return
	}

	pending.Add(1)
	go func() {
		defer pending.Done()
		select {
		case <-ctx.Done():
		case result := <-results:
			switch {
			case result.Err != nil:
				conn.sendError(apierror.Message(result.Err))
			case result.Message != nil:
				conn.send(FrameMessage, result.Message)
			}
		}
	}()
}

func (h *Handler) pingLoop(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
