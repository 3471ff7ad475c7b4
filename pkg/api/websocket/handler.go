package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/facebridge/facebridge/pkg/adapters/upstream"
	"github.com/facebridge/facebridge/pkg/relay"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Metrics records connection and event outcomes
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	EventHandled(event, outcome string)
	BroadcastSent(event string)
	UpstreamRequest(event string, duration time.Duration)
	UpstreamError(event string)
}

// FaceService is the Face API surface the relay consumes. Implemented by
// upstream.Client.
type FaceService interface {
	AnswerQuestion(ctx context.Context, question string) (*upstream.AnswerResponse, error)
	RegisterFace(ctx context.Context, name, image string, metadata map[string]interface{}) (*upstream.RegisterResponse, error)
	RecognizeFaces(ctx context.Context, image string) (*upstream.RecognizeResponse, error)
	ListFaces(ctx context.Context) (*upstream.ListFacesResponse, error)
	DeleteFace(ctx context.Context, id string) (*upstream.MessageResponse, error)
	RefreshRAG(ctx context.Context) (*upstream.MessageResponse, error)
	ClearChatHistory(ctx context.Context) (*upstream.MessageResponse, error)
}

// Handler terminates WebSocket connections and relays events to the Face API
type Handler struct {
	upstream FaceService
	manager  *Manager
	metrics  Metrics
	logger   *zap.Logger
	opts     Options
	upgrader websocket.Upgrader
}

// Options holds per-connection WebSocket settings
type Options struct {
	ReadLimit      int64
	SendBufferSize int
	PongWait       time.Duration
	AllowedOrigins []string
}

// NewHandler creates a new WebSocket handler
func NewHandler(upstream FaceService, manager *Manager, metrics Metrics, logger *zap.Logger, opts Options) *Handler {
	if opts.SendBufferSize < 1 {
		opts.SendBufferSize = 32
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}

	return &Handler{
		upstream: upstream,
		manager:  manager,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}
}

// originChecker allows all origins when the list is empty, matching the
// demo's permissive CORS policy.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}

// HandleConnection upgrades the request and runs the connection's read loop
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	client := newClient(uuid.NewString(), conn, h.opts.SendBufferSize, h.opts.PongWait, h.logger)
	h.manager.Register(client)
	h.metrics.ConnectionOpened()

	h.logger.Info("client connected",
		zap.String("connection_id", client.ID),
		zap.String("remote_addr", c.ClientIP()),
		zap.Int("connections", h.manager.ConnectionCount()))

	go client.writePump()
	h.readLoop(client)

	h.manager.Unregister(client.ID)
	client.close()
	h.metrics.ConnectionClosed()

	h.logger.Info("client disconnected",
		zap.String("connection_id", client.ID),
		zap.Int("connections", h.manager.ConnectionCount()))
}

// readLoop reads envelopes until the connection closes. Every envelope is
// dispatched on its own goroutine; two events from the same connection may
// complete in either order.
func (h *Handler) readLoop(client *Client) {
	if h.opts.ReadLimit > 0 {
		client.conn.SetReadLimit(h.opts.ReadLimit)
	}
	_ = client.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("read error",
					zap.String("connection_id", client.ID),
					zap.Error(err))
			}
			return
		}

		var env relay.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			h.logger.Warn("malformed envelope",
				zap.String("connection_id", client.ID),
				zap.Error(err))
			client.Send(relay.Envelope{
				Event: relay.EventError,
				Data:  mustMarshal(relay.ErrorPayload{Message: "Malformed event envelope", Error: "expected {event, data}"}),
			})
			continue
		}

		go h.dispatch(client, env)
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
