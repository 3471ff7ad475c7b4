package relay

import "encoding/json"

// Inbound event names sent by browser clients.
const (
	EventChatMessage        = "chat-message"
	EventRegisterFace       = "register-face"
	EventRecognizeFaces     = "recognize-faces"
	EventGetRegisteredUsers = "get-registered-users"
	EventDeleteFace         = "delete-face"
	EventClearChatHistory   = "clear-chat-history"
	EventRefreshRAG         = "refresh-rag"
)

// Response and error event names, paired one-to-one with inbound events.
const (
	EventChatResponse          = "chat-response"
	EventChatError             = "chat-error"
	EventRegistrationResponse  = "registration-response"
	EventRegistrationError     = "registration-error"
	EventRecognitionResponse   = "recognition-response"
	EventRecognitionError      = "recognition-error"
	EventRegisteredUsers       = "registered-users-response"
	EventRegisteredUsersError  = "registered-users-error"
	EventDeleteFaceResponse    = "delete-face-response"
	EventDeleteFaceError       = "delete-face-error"
	EventChatCleared           = "chat-cleared"
	EventChatClearError        = "chat-clear-error"
	EventRAGRefreshed          = "rag-refreshed"
	EventRAGRefreshError       = "rag-refresh-error"

	// EventError is the terminal event for envelopes the relay cannot map
	// to any known inbound event.
	EventError = "error"
)

// Broadcast event names, delivered to every open connection including the
// originator.
const (
	EventNewFaceRegistered = "new-face-registered"
	EventFaceDeleted       = "face-deleted"
)

// Envelope is the single message shape exchanged over the WebSocket. Data is
// kept raw so each handler can decode the payload type for its event kind.
type Envelope struct {
	Event     string          `json:"event"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}
