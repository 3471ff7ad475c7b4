package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/facebridge/facebridge/pkg/relay"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// dispatch routes one inbound envelope to its handler. Each call runs on its
// own goroutine and emits exactly one terminal event back to the client.
func (h *Handler) dispatch(client *Client, env relay.Envelope) {
	if env.RequestID == "" {
		env.RequestID = uuid.NewString()
	}

	switch env.Event {
	case relay.EventChatMessage:
		h.handleChatMessage(client, env)
	case relay.EventRegisterFace:
		h.handleRegisterFace(client, env)
	case relay.EventRecognizeFaces:
		h.handleRecognizeFaces(client, env)
	case relay.EventGetRegisteredUsers:
		h.handleGetRegisteredUsers(client, env)
	case relay.EventDeleteFace:
		h.handleDeleteFace(client, env)
	case relay.EventClearChatHistory:
		h.handleClearChatHistory(client, env)
	case relay.EventRefreshRAG:
		h.handleRefreshRAG(client, env)
	default:
		h.logger.Warn("unknown event",
			zap.String("connection_id", client.ID),
			zap.String("event", env.Event))
		h.metrics.EventHandled(env.Event, "unknown")
		client.Send(relay.Envelope{
			Event:     relay.EventError,
			RequestID: env.RequestID,
			Data: mustMarshal(relay.ErrorPayload{
				Message: "Unknown event: " + env.Event,
				Error:   "unsupported event name",
			}),
		})
	}
}

func (h *Handler) handleChatMessage(client *Client, env relay.Envelope) {
	var req relay.ChatMessageRequest
	if err := decode(env, &req); err != nil || strings.TrimSpace(req.Question) == "" {
		h.fail(client, env, relay.EventChatError, "Question is required", err)
		return
	}

	start := time.Now()
	resp, err := h.upstream.AnswerQuestion(context.Background(), req.Question)
	h.metrics.UpstreamRequest(env.Event, time.Since(start))
	if err != nil {
		h.metrics.UpstreamError(env.Event)
		h.fail(client, env, relay.EventChatError, "Failed to get answer", err)
		return
	}

	sources := resp.Sources
	if sources == nil {
		sources = []map[string]interface{}{}
	}
	h.succeed(client, env, relay.EventChatResponse, relay.ChatResponse{
		Question: req.Question,
		Answer:   resp.Answer,
		Sources:  sources,
	})
}

func (h *Handler) handleRegisterFace(client *Client, env relay.Envelope) {
	var req relay.RegisterFaceRequest
	if err := decode(env, &req); err != nil {
		h.fail(client, env, relay.EventRegistrationError, "Malformed registration payload", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.fail(client, env, relay.EventRegistrationError, "Name is required", nil)
		return
	}
	if req.Image == "" {
		h.fail(client, env, relay.EventRegistrationError, "Image is required", nil)
		return
	}

	start := time.Now()
	resp, err := h.upstream.RegisterFace(context.Background(), req.Name, req.Image, req.Metadata)
	h.metrics.UpstreamRequest(env.Event, time.Since(start))
	if err != nil {
		h.metrics.UpstreamError(env.Event)
		h.fail(client, env, relay.EventRegistrationError, "Failed to register face", err)
		return
	}

	h.succeed(client, env, relay.EventRegistrationResponse, relay.RegistrationResponse{
		Success: true,
		ID:      resp.ID,
		Name:    resp.Name,
		Message: resp.Message,
	})
	h.broadcast(relay.EventNewFaceRegistered, relay.NewFaceRegistered{
		Name:      resp.Name,
		Timestamp: timestamp(),
	})
}

func (h *Handler) handleRecognizeFaces(client *Client, env relay.Envelope) {
	var req relay.RecognizeFacesRequest
	if err := decode(env, &req); err != nil || req.Image == "" {
		h.fail(client, env, relay.EventRecognitionError, "Image is required", err)
		return
	}

	start := time.Now()
	resp, err := h.upstream.RecognizeFaces(context.Background(), req.Image)
	h.metrics.UpstreamRequest(env.Event, time.Since(start))
	if err != nil {
		h.metrics.UpstreamError(env.Event)
		h.fail(client, env, relay.EventRecognitionError, "Failed to recognize faces", err)
		return
	}

	faces := resp.Faces
	if faces == nil {
		faces = []relay.Face{}
	}
	h.succeed(client, env, relay.EventRecognitionResponse, relay.RecognitionResponse{
		Faces:   faces,
		Message: resp.Message,
	})
}

func (h *Handler) handleGetRegisteredUsers(client *Client, env relay.Envelope) {
	start := time.Now()
	resp, err := h.upstream.ListFaces(context.Background())
	h.metrics.UpstreamRequest(env.Event, time.Since(start))
	if err != nil {
		h.metrics.UpstreamError(env.Event)
		h.fail(client, env, relay.EventRegisteredUsersError, "Failed to list registered users", err)
		return
	}

	users := resp.Faces
	if users == nil {
		users = []map[string]interface{}{}
	}
	h.succeed(client, env, relay.EventRegisteredUsers, relay.RegisteredUsersResponse{Users: users})
}

func (h *Handler) handleDeleteFace(client *Client, env relay.Envelope) {
	var req relay.DeleteFaceRequest
	if err := decode(env, &req); err != nil || strings.TrimSpace(req.FaceID) == "" {
		h.fail(client, env, relay.EventDeleteFaceError, "Face id is required", err)
		return
	}

	start := time.Now()
	resp, err := h.upstream.DeleteFace(context.Background(), req.FaceID)
	h.metrics.UpstreamRequest(env.Event, time.Since(start))
	if err != nil {
		h.metrics.UpstreamError(env.Event)
		h.fail(client, env, relay.EventDeleteFaceError, "Failed to delete face", err)
		return
	}

	h.succeed(client, env, relay.EventDeleteFaceResponse, relay.DeleteFaceResponse{
		Success: true,
		Message: resp.Message,
	})
	h.broadcast(relay.EventFaceDeleted, relay.FaceDeleted{
		FaceID:    req.FaceID,
		Timestamp: timestamp(),
	})
}

func (h *Handler) handleClearChatHistory(client *Client, env relay.Envelope) {
	start := time.Now()
	resp, err := h.upstream.ClearChatHistory(context.Background())
	h.metrics.UpstreamRequest(env.Event, time.Since(start))
	if err != nil {
		h.metrics.UpstreamError(env.Event)
		h.fail(client, env, relay.EventChatClearError, "Failed to clear chat history", err)
		return
	}

	h.succeed(client, env, relay.EventChatCleared, relay.ChatClearedResponse{Message: resp.Message})
}

func (h *Handler) handleRefreshRAG(client *Client, env relay.Envelope) {
	start := time.Now()
	resp, err := h.upstream.RefreshRAG(context.Background())
	h.metrics.UpstreamRequest(env.Event, time.Since(start))
	if err != nil {
		h.metrics.UpstreamError(env.Event)
		h.fail(client, env, relay.EventRAGRefreshError, "Failed to refresh RAG engine", err)
		return
	}

	h.succeed(client, env, relay.EventRAGRefreshed, relay.RAGRefreshedResponse{Message: resp.Message})
}

// succeed emits the paired success event back to the originating connection
func (h *Handler) succeed(client *Client, env relay.Envelope, event string, payload interface{}) {
	h.logger.Info("event handled",
		zap.String("connection_id", client.ID),
		zap.String("event", env.Event),
		zap.String("request_id", env.RequestID),
		zap.String("outcome", "success"))
	h.metrics.EventHandled(env.Event, "success")

	client.Send(relay.Envelope{
		Event:     event,
		RequestID: env.RequestID,
		Data:      mustMarshal(payload),
	})
}

// fail emits the paired error event. A nil err means the payload failed
// validation before any upstream call was made.
func (h *Handler) fail(client *Client, env relay.Envelope, event, message string, err error) {
	detail := message
	if err != nil {
		detail = err.Error()
	}

	h.logger.Warn("event failed",
		zap.String("connection_id", client.ID),
		zap.String("event", env.Event),
		zap.String("request_id", env.RequestID),
		zap.String("reason", detail))
	h.metrics.EventHandled(env.Event, "error")

	client.Send(relay.Envelope{
		Event:     event,
		RequestID: env.RequestID,
		Data:      mustMarshal(relay.ErrorPayload{Message: message, Error: detail}),
	})
}

// broadcast fans a state-change event out to every open connection
func (h *Handler) broadcast(event string, payload interface{}) {
	n := h.manager.Broadcast(event, payload)
	h.metrics.BroadcastSent(event)
	h.logger.Info("broadcast sent",
		zap.String("event", event),
		zap.Int("connections", n))
}

// errEmptyPayload marks envelopes whose data field is missing entirely
var errEmptyPayload = errors.New("payload is required")

func decode(env relay.Envelope, out interface{}) error {
	if len(env.Data) == 0 {
		return errEmptyPayload
	}
	return json.Unmarshal(env.Data, out)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
