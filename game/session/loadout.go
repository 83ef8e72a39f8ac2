package session

import (
	"github.com/kasuganosora/relicsave/game/loadout"
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/saveerr"
)

// Heroes lists every hero loadout.
func (s *Session) Heroes() []loadout.Hero {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.lo.Heroes()
}

// Hero returns one hero loadout.
func (s *Session) Hero(id uint8) (loadout.Hero, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	h, ok := s.lo.Hero(id)
	if !ok {
		return loadout.Hero{}, &saveerr.LookupError{Kind: "hero", ID: int64(id)}
	}
	return h, nil
}

// Export resolves a hero's vessels and presets.
func (s *Session) Export(id uint8) (loadout.Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.lo.Export(id)
}

// PushPreset stores a new preset for hero.
func (s *Session) PushPreset(hero uint8, vessel uint32, relics [6]record.Handle, name string) (loadout.Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	p, err := s.lo.PushPreset(hero, vessel, relics, name)
	if err != nil {
		return loadout.Preset{}, err
	}
	s.dirty = true
	return p, nil
}

// EquipPreset activates a stored preset.
func (s *Session) EquipPreset(hero uint8, index int) error {
	return s.edit(func() error { return s.lo.EquipPreset(hero, index) })
}

// ReplaceVesselRelic sets one vessel slot.
func (s *Session) ReplaceVesselRelic(hero uint8, vessel uint32, slot int, h record.Handle) error {
	return s.edit(func() error { return s.lo.ReplaceVesselRelic(hero, vessel, slot, h) })
}

// ReplacePresetRelic sets one preset slot.
func (s *Session) ReplacePresetRelic(hero uint8, index, slot int, h record.Handle) error {
	return s.edit(func() error { return s.lo.ReplacePresetRelic(hero, index, slot, h) })
}

func (s *Session) edit(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := fn(); err != nil {
		return err
	}
	s.dirty = true
	return nil
}
