// Package session owns one open save: its buffer, the inventory and loadout
// views over it, and the relic checker. Every call is serialized by the
// session mutex; the core models underneath are single-threaded.
package session

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/kasuganosora/relicsave/game/item"
	"github.com/kasuganosora/relicsave/game/loadout"
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/relic"
	"github.com/kasuganosora/relicsave/game/saveerr"
	"github.com/kasuganosora/relicsave/resource"
	"go.uber.org/zap"
)

// Session is one open save buffer.
type Session struct {
	ID   string
	Path string

	mu       sync.Mutex
	buf      *record.Buffer
	checker  *relic.Checker
	inv      *item.Inventory
	lo       *loadout.Loadout
	dirty    bool
	opened   time.Time
	lastUsed time.Time
	now      func() time.Time
	logger   *zap.Logger
}

// Summary describes an open session.
type Summary struct {
	ID         string       `json:"session_id"`
	Path       string       `json:"path"`
	Player     string       `json:"player"`
	Murks      uint32       `json:"murks"`
	Sigs       uint32       `json:"sigs"`
	Entries    int          `json:"entries"`
	Relics     item.Summary `json:"relics"`
	Presets    int          `json:"presets"`
	Dirty      bool         `json:"dirty"`
	OpenedAt   time.Time    `json:"opened_at"`
	LastUsedAt time.Time    `json:"last_used_at"`
}

// New parses data and runs an initial relic sweep.
func New(id, path string, data []byte, cat *resource.Catalog, policy relic.StrictPolicy, templates item.Templates, logger *zap.Logger) (*Session, error) {
	logger = logger.With(zap.String("session", id))
	buf := record.NewBuffer(data)
	checker := relic.NewChecker(cat, policy)
	inv, err := item.New(buf, checker, templates, logger)
	if err != nil {
		return nil, fmt.Errorf("session: inventory: %w", err)
	}
	lo, err := loadout.New(inv, cat, logger)
	if err != nil {
		return nil, fmt.Errorf("session: loadout: %w", err)
	}
	inv.SetIllegalRelics()
	now := time.Now()
	s := &Session{
		ID:       id,
		Path:     path,
		buf:      buf,
		checker:  checker,
		inv:      inv,
		lo:       lo,
		opened:   now,
		lastUsed: now,
		now:      time.Now,
		logger:   logger,
	}
	logger.Info("session opened", zap.String("path", path), zap.Int("size", buf.Len()))
	return s, nil
}

// SetClock replaces the clock for idle tracking and preset timestamps.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.lo.SetClock(now)
}

func (s *Session) touch() { s.lastUsed = s.now() }

// reparse rebuilds the loadout after a splice moved its region.
func (s *Session) reparse() error {
	if err := s.lo.Parse(); err != nil {
		return fmt.Errorf("session: loadout reparse: %w", err)
	}
	return nil
}

// Summary returns counters for the open save.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.summary()
}

func (s *Session) summary() Summary {
	sum := item.Summary{Relics: len(s.inv.Relics())}
	sum.Illegal = len(s.inv.Illegal())
	sum.CurseIllegal = len(s.inv.CurseIllegal())
	sum.StrictInvalid = len(s.inv.StrictInvalid())
	return Summary{
		ID:         s.ID,
		Path:       s.Path,
		Player:     s.inv.PlayerName(),
		Murks:      s.inv.Murks(),
		Sigs:       s.inv.Sigs(),
		Entries:    s.inv.EntryCount(),
		Relics:     sum,
		Presets:    len(s.lo.Presets()),
		Dirty:      s.dirty,
		OpenedAt:   s.opened,
		LastUsedAt: s.lastUsed,
	}
}

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// IdleSince returns the time of the last call.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Snapshot copies the buffer for writing to disk.
func (s *Session) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.buf.Bytes())
}

// markSaved clears the dirty flag if the buffer still equals data.
func (s *Session) markSaved(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bytes.Equal(s.buf.Bytes(), data) {
		s.dirty = false
	}
}

// Relics lists every held relic.
func (s *Session) Relics() []item.Relic {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.inv.Relics()
}

// Relic returns one held relic.
func (s *Session) Relic(h record.Handle) (item.Relic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	r, ok := s.inv.Relic(h)
	if !ok {
		return item.Relic{}, &saveerr.LookupError{Kind: "relic", ID: int64(h)}
	}
	return r, nil
}

// AddRelic creates a relic from a configured template.
func (s *Session) AddRelic(kind item.Kind) (item.Relic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	h, err := s.inv.AddRelic(kind)
	if err != nil {
		return item.Relic{}, err
	}
	s.dirty = true
	if err := s.reparse(); err != nil {
		return item.Relic{}, err
	}
	r, _ := s.inv.Relic(h)
	return r, nil
}

// RemoveRelic deletes an unequipped relic.
func (s *Session) RemoveRelic(h record.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.inv.RemoveRelic(h); err != nil {
		return err
	}
	s.dirty = true
	return s.reparse()
}

// ModifyRelic rewrites a relic's id and effects.
func (s *Session) ModifyRelic(h record.Handle, p item.RelicPatch) (item.Relic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if _, err := s.inv.ModifyRelic(h, p); err != nil {
		return item.Relic{}, err
	}
	s.dirty = true
	r, _ := s.inv.Relic(h)
	return r, nil
}

// SetFavorite toggles a relic's favorite flag.
func (s *Session) SetFavorite(h record.Handle, fav bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.inv.SetFavorite(h, fav); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Sweep re-validates every relic.
func (s *Session) Sweep() item.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.inv.SetIllegalRelics()
}

// Suggestions lists effects that could replace the one in slot.
func (s *Session) Suggestions(h record.Handle, slot int) ([]uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if slot < 0 || slot >= 6 {
		return nil, saveerr.Invalid("slot-invalid", slot, "slot must be 0-5")
	}
	r, ok := s.inv.Relic(h)
	if !ok {
		return nil, &saveerr.LookupError{Kind: "relic", ID: int64(h)}
	}
	return s.checker.FindReplacementEffects(r.ID, slot, r.Effects[slot]), nil
}

// SetCurrency overwrites murks and sigs. Nil values are kept.
func (s *Session) SetCurrency(murks, sigs *uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if murks != nil {
		if err := s.inv.SetMurks(*murks); err != nil {
			return err
		}
		s.dirty = true
	}
	if sigs != nil {
		if err := s.inv.SetSigs(*sigs); err != nil {
			return err
		}
		s.dirty = true
	}
	return nil
}
