package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/relicsave/game/saveerr"
	"github.com/kasuganosora/relicsave/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	queueSize     = 1024
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Entry is one mutation applied to an open save.
type Entry struct {
	TraceID    string
	SessionID  string
	SavePath   string
	Action     string
	Handle     uint32
	Hero       uint8
	Request    interface{}
	Response   interface{}
	Err        error
	IP         string
	DurationMs int
}

// Service logs audit entries asynchronously in batches.
type Service struct {
	db     *gorm.DB
	ch     chan *model.AuditLog
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.AuditLog, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry. A full queue drops the entry with a warning.
func (svc *Service) Log(entry Entry) {
	rec := &model.AuditLog{
		TraceID:    entry.TraceID,
		SessionID:  entry.SessionID,
		SavePath:   entry.SavePath,
		Action:     entry.Action,
		Handle:     entry.Handle,
		Hero:       entry.Hero,
		Request:    marshal(entry.Request),
		Response:   marshal(entry.Response),
		Code:       saveerr.Code(entry.Err),
		IP:         entry.IP,
		DurationMs: entry.DurationMs,
	}
	if entry.Err != nil {
		rec.Error = entry.Err.Error()
	}
	select {
	case svc.ch <- rec:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("session_id", entry.SessionID))
	}
}

func marshal(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

// Recent returns the newest entries of a session, newest first.
func (svc *Service) Recent(ctx context.Context, sessionID string, limit int) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := svc.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// Stop flushes remaining entries and blocks until the worker exits.
func (svc *Service) Stop(_ context.Context) {
	svc.once.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed",
				zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-svc.ch:
			batch = append(batch, rec)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case rec := <-svc.ch:
					batch = append(batch, rec)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
