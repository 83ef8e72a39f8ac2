package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/api/sse"
	"github.com/kasuganosora/relicsave/audit"
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/saveerr"
	"github.com/kasuganosora/relicsave/game/session"
	"github.com/kasuganosora/relicsave/metrics"
	mw "github.com/kasuganosora/relicsave/middleware"
	"go.uber.org/zap"
)

// editor holds what every session-scoped handler needs.
type editor struct {
	sm      *session.Manager
	audit   *audit.Service
	events  *sse.Handler
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// mutation describes one write for the audit log, metrics and event stream.
type mutation struct {
	action  string
	event   string
	handle  record.Handle
	hero    uint8
	request interface{}
}

// session resolves the authenticated session, writing 404 when it was closed.
func (e *editor) session(c *gin.Context) (*session.Session, bool) {
	s, ok := e.sm.Get(mw.GetSessionID(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session closed", "code": "not-found"})
		return nil, false
	}
	return s, true
}

// record reports the outcome of m. resp is logged and published on success.
func (e *editor) record(c *gin.Context, s *session.Session, m mutation, start time.Time, resp interface{}, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case statusOf(err) < http.StatusInternalServerError:
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
		e.logger.Error("mutation failed",
			zap.String("session_id", s.ID),
			zap.String("action", m.action),
			zap.String("trace_id", mw.GetTraceID(c)),
			zap.Error(err))
	}
	if e.metrics != nil {
		e.metrics.RecordMutation(m.action, outcome, saveerr.Code(err))
	}
	if e.audit != nil {
		entry := audit.Entry{
			TraceID:    mw.GetTraceID(c),
			SessionID:  s.ID,
			SavePath:   s.Path,
			Action:     m.action,
			Handle:     uint32(m.handle),
			Hero:       m.hero,
			Request:    m.request,
			Err:        err,
			IP:         c.ClientIP(),
			DurationMs: int(time.Since(start).Milliseconds()),
		}
		if err == nil {
			entry.Response = resp
		}
		e.audit.Log(entry)
	}
	if err == nil && e.events != nil && m.event != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if perr := e.events.Publish(ctx, s.ID, sse.Event{Type: m.event, Data: resp}); perr != nil {
			e.logger.Warn("event publish failed", zap.String("session_id", s.ID), zap.Error(perr))
		}
	}
}

func handleParam(c *gin.Context) (record.Handle, bool) {
	h, err := record.ParseHandle(c.Param("handle"))
	if err != nil {
		badRequest(c, err.Error())
		return 0, false
	}
	return h, true
}

func heroParam(c *gin.Context) (uint8, bool) {
	v, err := strconv.ParseUint(c.Param("hero"), 10, 8)
	if err != nil {
		badRequest(c, "invalid hero")
		return 0, false
	}
	return uint8(v), true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}
