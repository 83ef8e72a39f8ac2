package rest

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/api/sse"
	"github.com/kasuganosora/relicsave/game/session"
	"github.com/kasuganosora/relicsave/scheduler"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	sm     *session.Manager
	events *sse.Handler
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(sm *session.Manager, events *sse.Handler, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{sm: sm, events: events, sched: sched, logger: logger}
}

// Status reports open sessions and scheduled tasks.
// GET /api/admin/status
func (h *AdminHandler) Status(c *gin.Context) {
	var tasks []string
	if h.sched != nil {
		tasks = h.sched.ListTickers()
	}
	c.JSON(http.StatusOK, gin.H{
		"open_sessions":   h.sm.Count(),
		"scheduler_tasks": tasks,
	})
}

// ListSessions returns a summary of every open session.
// GET /api/admin/sessions
func (h *AdminHandler) ListSessions(c *gin.Context) {
	all := h.sm.All()
	out := make([]session.Summary, 0, len(all))
	for _, s := range all {
		out = append(out, s.Summary())
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

// CloseSession drops a session without saving. Its token stops working on
// the next request.
// DELETE /api/admin/sessions/:id
func (h *AdminHandler) CloseSession(c *gin.Context) {
	id := c.Param("id")
	if !h.sm.Close(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found", "code": "not-found"})
		return
	}
	if h.events != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		_ = h.events.Publish(ctx, id, sse.Event{Type: sse.EventClosed, Data: gin.H{"reason": "admin"}})
	}
	h.logger.Info("admin closed session", zap.String("session_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "closed"})
}

// Autosave saves every dirty session now.
// POST /api/admin/autosave
func (h *AdminHandler) Autosave(c *gin.Context) {
	n, err := h.sm.AutosaveDirty(c.Request.Context())
	if err != nil {
		h.logger.Error("admin autosave failed", zap.Int("saved", n), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "autosave failed", "code": "internal", "saved": n})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": n})
}

// AdminAuth checks the X-Admin-Key header against adminKey.
// If adminKey is empty, all admin requests are rejected.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
