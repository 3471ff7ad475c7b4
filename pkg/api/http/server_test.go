package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubHealth struct {
	healthy bool
}

func (s *stubHealth) Healthy(context.Context) bool { return s.healthy }

type stubConnections struct {
	count int
}

func (s *stubConnections) ConnectionCount() int { return s.count }

func newTestServer(upstreamHealthy bool, connections int) *Server {
	return NewServer(&Config{
		Port:        0,
		Upstream:    &stubHealth{healthy: upstreamHealthy},
		Connections: &stubConnections{count: connections},
		Logger:      zap.NewNop(),
	})
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.router.ServeHTTP(w, req)
	return w
}

func TestHandleRoot(t *testing.T) {
	w := doRequest(newTestServer(true, 0), http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Face Recognition Relay is running", body["message"])
}

func TestHandleHealth(t *testing.T) {
	t.Run("upstream reachable", func(t *testing.T) {
		w := doRequest(newTestServer(true, 3), http.MethodGet, "/health")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Status string `json:"status"`
			Checks struct {
				Upstream    string `json:"upstream"`
				Connections int    `json:"connections"`
			} `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "ok", body.Checks.Upstream)
		assert.Equal(t, 3, body.Checks.Connections)
	})

	t.Run("upstream down stays healthy", func(t *testing.T) {
		w := doRequest(newTestServer(false, 0), http.MethodGet, "/health")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Status string `json:"status"`
			Checks struct {
				Upstream string `json:"upstream"`
			} `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "unreachable", body.Checks.Upstream)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	w := doRequest(newTestServer(true, 0), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSHeaders(t *testing.T) {
	s := newTestServer(true, 0)

	w := doRequest(s, http.MethodGet, "/health")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(s, http.MethodOptions, "/health")
	assert.Equal(t, 204, w.Code)
}
