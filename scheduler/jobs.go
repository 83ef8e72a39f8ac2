package scheduler

import (
	"context"
	"time"

	"github.com/kasuganosora/relicsave/config"
	"go.uber.org/zap"
)

const (
	TaskReapIdle = "session.reap_idle"
	TaskAutosave = "session.autosave"

	maxReapEvery = time.Minute
)

// Sessions is the part of the session manager the editor jobs drive.
type Sessions interface {
	ReapIdle(idle time.Duration) []string
	AutosaveDirty(ctx context.Context) (int, error)
}

// RegisterEditorJobs adds idle-session reaping and, when configured, periodic
// autosave. onReap, if set, receives the ids of reaped sessions.
func RegisterEditorJobs(s *Scheduler, sessions Sessions, cfg config.EditorConfig, onReap func([]string), logger *zap.Logger) {
	if cfg.SessionIdle > 0 {
		s.AddTicker(TaskReapIdle, reapInterval(cfg.SessionIdle), func(context.Context) {
			ids := sessions.ReapIdle(cfg.SessionIdle)
			if len(ids) == 0 {
				return
			}
			logger.Info("idle sessions closed", zap.Strings("sessions", ids))
			if onReap != nil {
				onReap(ids)
			}
		})
	}
	if cfg.AutosaveEvery > 0 {
		s.AddTicker(TaskAutosave, cfg.AutosaveEvery, func(ctx context.Context) {
			n, err := sessions.AutosaveDirty(ctx)
			if err != nil {
				logger.Error("autosave failed", zap.Int("saved", n), zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("autosaved sessions", zap.Int("saved", n))
			}
		})
	}
}

func reapInterval(idle time.Duration) time.Duration {
	every := idle / 2
	if every > maxReapEvery {
		return maxReapEvery
	}
	if every < 10*time.Millisecond {
		return 10 * time.Millisecond
	}
	return every
}
