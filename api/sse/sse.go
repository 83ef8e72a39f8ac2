package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/cache"
	mw "github.com/kasuganosora/relicsave/middleware"
	"go.uber.org/zap"
)

// Event types published on a session's channel.
const (
	EventRelicAdded    = "relic.added"
	EventRelicRemoved  = "relic.removed"
	EventRelicModified = "relic.modified"
	EventSweep         = "relic.sweep"
	EventRepair        = "relic.repair"
	EventLoadout       = "loadout.changed"
	EventSaved         = "session.saved"
	EventClosed        = "session.closed"
)

// Event is one change notification for an open session.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Handler streams session events to the browser.
type Handler struct {
	pubsub    cache.PubSub
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(pubsub cache.PubSub, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, keepalive: 30 * time.Second, logger: logger}
}

// ServeEvents handles GET /api/session/events. It must run behind Auth.
func (h *Handler) ServeEvents(c *gin.Context) {
	sid := mw.GetSessionID(c)
	if sid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, cache.EventChannel(sid))
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.String("session_id", sid), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"session_id\":%q}\n\n", sid)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", eventType(msg.Payload), msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}

func eventType(payload string) string {
	var ev struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(payload), &ev); err != nil || ev.Type == "" {
		return "message"
	}
	return ev.Type
}

// Publish sends ev to every stream of the session.
func (h *Handler) Publish(ctx context.Context, sessionID string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("sse: encode %s: %w", ev.Type, err)
	}
	return h.pubsub.Publish(ctx, cache.EventChannel(sessionID), string(payload))
}
