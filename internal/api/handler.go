// Package api exposes the read-only HTTP query surface next to the
// WebSocket transport: health, the current poll slot and the poll history.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classpulse/backend/internal/session"
	"github.com/classpulse/backend/pkg/response"
)

// Counter reports the number of live WebSocket connections.
type Counter interface {
	Count() int
}

// Handler serves the query endpoints.
type Handler struct {
	session     *session.Session
	connections Counter
}

// NewHandler creates the query handler.
func NewHandler(sess *session.Session, connections Counter) *Handler {
	return &Handler{session: sess, connections: connections}
}

// Register mounts the query routes under /api.
func (h *Handler) Register(r *gin.Engine) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", h.Health)
		apiGroup.GET("/current-poll", h.CurrentPoll)
		apiGroup.GET("/poll-history", h.PollHistory)
		apiGroup.GET("/stats", h.Stats)
	}
	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "route not found") })
}

// Health handles GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Polling server is running"})
}

// CurrentPoll handles GET /api/current-poll. The poll is null when no poll
// has been created yet.
func (h *Handler) CurrentPoll(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"poll": h.session.CurrentPoll()})
}

// PollHistory handles GET /api/poll-history, closed polls in closure order.
func (h *Handler) PollHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.session.History()})
}

// Stats handles GET /api/stats with a small operational summary.
func (h *Handler) Stats(c *gin.Context) {
	current := h.session.CurrentPoll()
	response.OK(c, gin.H{
		"connectedClients": h.connections.Count(),
		"students":         len(h.session.Students()),
		"pollsConducted":   len(h.session.History()),
		"pollActive":       current != nil && current.Active,
	})
}
