package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/relicsave/config"
	"github.com/kasuganosora/relicsave/game/item"
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/relic"
	"github.com/kasuganosora/relicsave/game/saveerr"
	"github.com/kasuganosora/relicsave/resource"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Manager maintains the registry of open sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session // session id → session

	saveMu    sync.Mutex
	fs        afero.Fs
	cat       *resource.Catalog
	cfg       config.EditorConfig
	root      string
	policy    relic.StrictPolicy
	templates item.Templates
	db        *gorm.DB
	now       func() time.Time
	logger    *zap.Logger
}

// NewManager creates a Manager. root restricts which files may be opened;
// empty allows any path. db may be nil, in which case backups are not
// recorded.
func NewManager(fs afero.Fs, cat *resource.Catalog, cfg config.EditorConfig, root string, db *gorm.DB, logger *zap.Logger) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		fs:        fs,
		cat:       cat,
		cfg:       cfg,
		root:      root,
		policy:    relic.ParseStrictPolicy(cfg.StrictPolicy),
		templates: Templates(cfg),
		db:        db,
		now:       time.Now,
		logger:    logger,
	}
}

// SetClock replaces the clock used for new sessions, idle checks and backup
// names.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Templates builds relic creation templates from the editor config. Missing
// effect and curse slots are left empty.
func Templates(cfg config.EditorConfig) item.Templates {
	build := func(c config.RelicTemplateConfig) record.RelicTemplate {
		tpl := record.RelicTemplate{RelicID: c.RelicID}
		for i := range 3 {
			tpl.Effects[i], tpl.Curses[i] = record.EmptyEffect, record.EmptyEffect
			if i < len(c.Effects) {
				tpl.Effects[i] = c.Effects[i]
			}
			if i < len(c.Curses) {
				tpl.Curses[i] = c.Curses[i]
			}
		}
		return tpl
	}
	return item.Templates{
		item.KindNormal: build(cfg.NormalTemplate),
		item.KindDeep:   build(cfg.DeepTemplate),
	}
}

func (m *Manager) resolve(path string) (string, error) {
	p := filepath.Clean(path)
	if m.root == "" {
		return p, nil
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(m.root, p)
	}
	rel, err := filepath.Rel(m.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", saveerr.Invalid("path-outside-root", -1, "%s is outside the save root", path)
	}
	return p, nil
}

// Open reads a decoded save file and registers a new session for it.
func (m *Manager) Open(path string) (*Session, error) {
	p, err := m.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(m.fs, p)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", p, err)
	}
	s, err := New(uuid.NewString(), p, data, m.cat, m.policy, m.templates, m.logger)
	if err != nil {
		return nil, err
	}
	s.SetClock(m.now)
	s.touch()
	s.opened = s.lastUsed

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session for an id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close drops a session without saving.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		m.logger.Info("session closed", zap.String("session", id), zap.Bool("dirty", s.Dirty()))
	}
	return ok
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// All returns a snapshot of open sessions.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Save backs up the file on disk when enabled and atomically replaces it
// with the session buffer.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	data := s.Snapshot()
	if m.cfg.AutoBackup {
		if _, err := m.backup(ctx, s); err != nil {
			return fmt.Errorf("save %s: backup: %w", s.Path, err)
		}
	}
	if err := m.writeAtomic(s.Path, data); err != nil {
		return fmt.Errorf("save %s: %w", s.Path, err)
	}
	s.markSaved(data)
	m.logger.Info("session saved", zap.String("session", s.ID), zap.String("path", s.Path), zap.Int("size", len(data)))
	return nil
}

func (m *Manager) writeAtomic(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := afero.TempFile(m.fs, dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = m.fs.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return multierr.Append(err, f.Close())
	}
	if err = multierr.Append(f.Sync(), f.Close()); err != nil {
		return err
	}
	return m.fs.Rename(tmp, path)
}

// ReapIdle closes sessions unused for longer than idle. Unsaved changes of a
// reaped session are lost.
func (m *Manager) ReapIdle(idle time.Duration) []string {
	if idle <= 0 {
		return nil
	}
	cutoff := m.now().Add(-idle)
	var reaped []string
	for _, s := range m.All() {
		if s.IdleSince().After(cutoff) {
			continue
		}
		if s.Dirty() {
			m.logger.Warn("reaping session with unsaved changes", zap.String("session", s.ID), zap.String("path", s.Path))
		}
		m.Close(s.ID)
		reaped = append(reaped, s.ID)
	}
	return reaped
}

// AutosaveDirty saves every session with unsaved changes.
func (m *Manager) AutosaveDirty(ctx context.Context) (int, error) {
	var saved int
	var errs error
	for _, s := range m.All() {
		if !s.Dirty() {
			continue
		}
		if err := m.Save(ctx, s); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		saved++
	}
	return saved, errs
}
