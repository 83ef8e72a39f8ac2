package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/api/sse"
	"github.com/kasuganosora/relicsave/cache"
	"github.com/kasuganosora/relicsave/config"
	mw "github.com/kasuganosora/relicsave/middleware"
	"go.uber.org/zap"
)

const (
	defaultHistory = 20
	maxHistory     = 200
)

// SessionHandler opens, saves and closes save sessions.
type SessionHandler struct {
	*editor
	cache cache.Cache
	sec   config.SecurityConfig
	idle  time.Duration
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(e *editor, c cache.Cache, sec config.SecurityConfig, idle time.Duration) *SessionHandler {
	return &SessionHandler{editor: e, cache: c, sec: sec, idle: idle}
}

type openRequest struct {
	Path string `json:"path" binding:"required"`
}

// Open handles POST /api/sessions.
func (h *SessionHandler) Open(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	s, err := h.sm.Open(req.Path)
	if err != nil {
		h.logger.Warn("open save failed", zap.String("path", req.Path), zap.Error(err))
		respondError(c, err)
		return
	}

	token, err := mw.GenerateToken(s.ID, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		h.sm.Close(s.ID)
		respondError(c, err)
		return
	}
	ttl := h.idle
	if ttl <= 0 {
		ttl = h.sec.JWTTTLH
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.cache.Set(ctx, cache.TokenKey(token), s.ID, ttl); err != nil {
		h.sm.Close(s.ID)
		respondError(c, err)
		return
	}

	sum := s.Summary()
	h.record(c, s, mutation{action: "session.open", request: req}, time.Now(), sum, nil)
	c.JSON(http.StatusCreated, gin.H{"session_id": s.ID, "token": token, "summary": sum})
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": s.Summary()})
}

// Save handles POST /api/session/save.
func (h *SessionHandler) Save(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	start := time.Now()
	err := h.sm.Save(c.Request.Context(), s)
	if h.metrics != nil {
		h.metrics.RecordSave(err)
	}
	sum := s.Summary()
	h.record(c, s, mutation{action: "session.save", event: sse.EventSaved}, start, sum, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": sum})
}

// Close handles DELETE /api/session. Unsaved changes are refused unless
// discard=true.
func (h *SessionHandler) Close(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if s.Dirty() && c.Query("discard") != "true" {
		c.JSON(http.StatusConflict, gin.H{"error": "session has unsaved changes", "code": "unsaved-changes"})
		return
	}
	h.record(c, s, mutation{action: "session.close", event: sse.EventClosed}, time.Now(), gin.H{"session_id": s.ID}, nil)
	h.sm.Close(s.ID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.cache.Del(ctx, cache.TokenKey(mw.GetToken(c))); err != nil {
		h.logger.Warn("token revoke failed", zap.String("session_id", s.ID), zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

type currencyRequest struct {
	Murks *uint32 `json:"murks"`
	Sigs  *uint32 `json:"sigs"`
}

// Currency handles PATCH /api/session/currency.
func (h *SessionHandler) Currency(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req currencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start := time.Now()
	err := s.SetCurrency(req.Murks, req.Sigs)
	sum := s.Summary()
	h.record(c, s, mutation{action: "session.currency", request: req}, start, gin.H{"murks": sum.Murks, "sigs": sum.Sigs}, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": sum})
}

// Backups handles GET /api/session/backups.
func (h *SessionHandler) Backups(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	backups, err := h.sm.Backups(c.Request.Context(), s.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": backups})
}

// History handles GET /api/session/history?limit=N.
func (h *SessionHandler) History(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if h.audit == nil {
		c.JSON(http.StatusOK, gin.H{"history": []struct{}{}})
		return
	}
	limit := defaultHistory
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, "invalid limit")
			return
		}
		limit = min(n, maxHistory)
	}
	logs, err := h.audit.Recent(c.Request.Context(), s.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": logs})
}
