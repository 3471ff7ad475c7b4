package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/facebridge/facebridge/pkg/relay"
	"go.uber.org/zap"
)

// Client is the HTTP client for the Face API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds upstream client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a new Face API client
func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger,
	}
}

// AnswerQuestion asks the RAG engine a question about registered users
func (c *Client) AnswerQuestion(ctx context.Context, question string) (*AnswerResponse, error) {
	var out AnswerResponse
	err := c.do(ctx, http.MethodPost, "/answer-question", questionRequest{Question: question}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterFace registers a face from a base64-encoded frame
func (c *Client) RegisterFace(ctx context.Context, name, image string, metadata map[string]interface{}) (*RegisterResponse, error) {
	var out RegisterResponse
	err := c.do(ctx, http.MethodPost, "/register-face", registerRequest{
		Name:     name,
		Image:    image,
		Metadata: metadata,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecognizeFaces recognizes all known faces in a base64-encoded frame
func (c *Client) RecognizeFaces(ctx context.Context, image string) (*RecognizeResponse, error) {
	var out RecognizeResponse
	err := c.do(ctx, http.MethodPost, "/recognize-faces", recognizeRequest{Image: image}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFaces lists all registered face records
func (c *Client) ListFaces(ctx context.Context) (*ListFacesResponse, error) {
	var out ListFacesResponse
	if err := c.do(ctx, http.MethodGet, "/faces", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFace deletes a registered face by id
func (c *Client) DeleteFace(ctx context.Context, id string) (*MessageResponse, error) {
	var out MessageResponse
	path := "/delete-face/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshRAG rebuilds the upstream vector store from current registrations
func (c *Client) RefreshRAG(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/refresh-rag", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearChatHistory clears the upstream conversation memory
func (c *Client) ClearChatHistory(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/clear-chat-history", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Healthy reports whether the Face API answers its health endpoint
func (c *Client) Healthy(ctx context.Context) bool {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return false
	}
	return out.Status == "healthy"
}

// do performs one JSON request/response round trip. A non-2xx status is
// returned as a StatusError carrying the upstream's own error text.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("upstream returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(data),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode upstream response: %w", err)
		}
	}

	return nil
}

// StatusError is a non-2xx response from the Face API
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

// errorDetail extracts the error text from an upstream error body. FastAPI
// style bodies carry {"detail": ...}; others may carry {"message": ...}.
func errorDetail(data []byte) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return string(data)
}

// questionRequest is the /answer-question request body
type questionRequest struct {
	Question string `json:"question"`
}

// registerRequest is the /register-face request body
type registerRequest struct {
	Name     string                 `json:"name"`
	Image    string                 `json:"image"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// recognizeRequest is the /recognize-faces request body
type recognizeRequest struct {
	Image string `json:"image"`
}

// AnswerResponse is the /answer-question response body
type AnswerResponse struct {
	Answer  string                   `json:"answer"`
	Sources []map[string]interface{} `json:"sources"`
}

// RegisterResponse is the /register-face response body
type RegisterResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RecognizeResponse is the /recognize-faces response body
type RecognizeResponse struct {
	Faces   []relay.Face `json:"faces"`
	Message string       `json:"message"`
}

// ListFacesResponse is the /faces response body
type ListFacesResponse struct {
	Faces []map[string]interface{} `json:"faces"`
}

// MessageResponse is the body of endpoints that only acknowledge
type MessageResponse struct {
	Message string `json:"message"`
}
