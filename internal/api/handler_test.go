package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/realtime"
	"github.com/classpulse/backend/internal/session"
)

func newTestServer(t *testing.T) (*gin.Engine, *session.Session) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	hub := realtime.NewHub(logger, nil)
	sess := session.New(hub, nil, time.Minute, logger)

	router := gin.New()
	NewHandler(sess, hub).Register(router)
	return router, sess
}

func get(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t)

	w, body := get(t, router, "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["status"])
}

func TestCurrentPollEmpty(t *testing.T) {
	router, _ := newTestServer(t)

	w, body := get(t, router, "/api/current-poll")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["poll"])
}

func TestCurrentPollActive(t *testing.T) {
	router, sess := newTestServer(t)
	require.NoError(t, sess.CreatePoll("owner", "Pick one", []string{"A", "B"}, 60000))

	w, body := get(t, router, "/api/current-poll")
	assert.Equal(t, http.StatusOK, w.Code)
	poll, ok := body["poll"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Pick one", poll["question"])
	assert.Equal(t, true, poll["active"])
}

func TestPollHistory(t *testing.T) {
	router, sess := newTestServer(t)

	_, body := get(t, router, "/api/poll-history")
	assert.Empty(t, body["history"])

	require.NoError(t, sess.CreatePoll("owner", "first", []string{"A", "B"}, 60000))
	sess.EndPoll("owner")
	require.NoError(t, sess.CreatePoll("owner", "second", []string{"A", "B"}, 60000))
	sess.EndPoll("owner")

	_, body = get(t, router, "/api/poll-history")
	history, ok := body["history"].([]interface{})
	require.True(t, ok)
	require.Len(t, history, 2)
	first := history[0].(map[string]interface{})
	assert.Equal(t, "first", first["question"])
	assert.Equal(t, false, first["active"])
}

func TestStats(t *testing.T) {
	router, sess := newTestServer(t)
	require.NoError(t, sess.CreatePoll("owner", "Pick one", []string{"A", "B"}, 60000))

	w, body := get(t, router, "/api/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["connectedClients"])
	assert.Equal(t, true, data["pollActive"])
	assert.Equal(t, float64(0), data["pollsConducted"])
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newTestServer(t)

	w, body := get(t, router, "/api/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}
