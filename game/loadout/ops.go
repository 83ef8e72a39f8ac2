package loadout

import (
	"encoding/binary"

	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/saveerr"
	"go.uber.org/zap"
)

// PushPreset appends a new preset for hero. The new preset gets counter 0
// and every existing preset's counter is bumped, which keeps the parser's
// stop rule on the last record.
func (l *Loadout) PushPreset(hero uint8, vessel uint32, relics [6]record.Handle, name string) (Preset, error) {
	if err := l.validator.ValidateHero(hero); err != nil {
		return Preset{}, err
	}
	if len(l.presets) >= MaxPresets {
		return Preset{}, &saveerr.CapacityError{Resource: "presets"}
	}
	off := l.presetBase
	if n := len(l.presets); n > 0 {
		off = l.presets[n-1].Offset + PresetSize
	}
	if off+PresetSize > l.buf.Len()-record.TrailerSize {
		return Preset{}, &saveerr.CapacityError{Resource: "preset area"}
	}
	p := Preset{
		Index:     len(l.presets),
		Hero:      hero,
		Name:      name,
		Vessel:    vessel,
		Relics:    relics,
		Timestamp: fileTime(l.now()),
		Offset:    off,
	}
	if err := l.validator.ValidatePreset(hero, p); err != nil {
		return Preset{}, err
	}

	for i := range l.presets {
		l.presets[i].Counter++
		if err := l.buf.WriteAt(l.presets[i].Offset+3, []byte{l.presets[i].Counter}); err != nil {
			return Preset{}, err
		}
	}
	if err := l.writePreset(p); err != nil {
		return Preset{}, err
	}
	p.Name = decodeName(encodeName(name))
	l.presets = append(l.presets, p)
	h, _ := l.lookup(hero)
	h.presets = append(h.presets, p.Index)
	l.equipAll(p.Relics, hero)
	if err := l.autoAdjust(h); err != nil {
		return Preset{}, err
	}
	l.logger.Info("preset pushed",
		zap.Uint8("hero", hero), zap.Int("index", p.Index), zap.Uint32("vessel", vessel))
	return p, nil
}

// EquipPreset makes preset index the hero's active configuration: its relics
// are copied onto its vessel and that vessel becomes current.
func (l *Loadout) EquipPreset(hero uint8, index int) error {
	if err := l.validator.ValidateHero(hero); err != nil {
		return err
	}
	if index < 0 || index >= len(l.presets) {
		return &saveerr.LookupError{Kind: "preset", ID: int64(index)}
	}
	p := l.presets[index]
	if p.Hero != hero {
		return saveerr.Invalid(CodePresetNotOwned, -1, "preset %d belongs to hero %d", index, p.Hero)
	}
	h, _ := l.lookup(hero)
	vi := vesselIndex(h, p.Vessel)
	if vi < 0 {
		return saveerr.Invalid(CodeVesselNotOwned, -1, "vessel %d not in hero %d loadout", p.Vessel, hero)
	}
	next := h.vessels[vi]
	next.Relics = p.Relics
	if err := l.validator.ValidateVessel(hero, next); err != nil {
		return err
	}

	if err := l.writeVessel(next); err != nil {
		return err
	}
	l.swapRelics(hero, h.vessels[vi].Relics, next.Relics)
	h.vessels[vi] = next
	h.presetIdx = uint8(index)
	h.curVessel = p.Vessel
	if err := l.writeHero(h); err != nil {
		return err
	}
	l.logger.Info("preset equipped", zap.Uint8("hero", hero), zap.Int("index", index))
	return nil
}

// ReplaceVesselRelic puts relic into one slot of a hero's vessel. A zero
// handle clears the slot.
func (l *Loadout) ReplaceVesselRelic(hero uint8, vessel uint32, slot int, relic record.Handle) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	if err := l.validator.ValidateHero(hero); err != nil {
		return err
	}
	h, _ := l.lookup(hero)
	vi := vesselIndex(h, vessel)
	if vi < 0 {
		if _, ok := l.cat.Vessel(vessel); !ok {
			return saveerr.Invalid(CodeVesselUnknown, -1, "vessel %d", vessel)
		}
		return saveerr.Invalid(CodeVesselNotOwned, -1, "vessel %d not in hero %d loadout", vessel, hero)
	}
	next := h.vessels[vi]
	next.Relics[slot] = relic
	if err := l.validator.ValidateVessel(hero, next); err != nil {
		return err
	}

	if err := l.writeVessel(next); err != nil {
		return err
	}
	l.swapRelics(hero, h.vessels[vi].Relics, next.Relics)
	h.vessels[vi] = next
	if h.curVessel == vessel {
		if err := l.autoAdjust(h); err != nil {
			return err
		}
	}
	l.logger.Debug("vessel relic replaced",
		zap.Uint8("hero", hero), zap.Uint32("vessel", vessel), zap.Int("slot", slot), zap.Stringer("relic", relic))
	return nil
}

// ReplacePresetRelic puts relic into one slot of a stored preset.
func (l *Loadout) ReplacePresetRelic(hero uint8, index, slot int, relic record.Handle) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	if err := l.validator.ValidateHero(hero); err != nil {
		return err
	}
	if index < 0 || index >= len(l.presets) {
		return &saveerr.LookupError{Kind: "preset", ID: int64(index)}
	}
	p := l.presets[index]
	if p.Hero != hero {
		return saveerr.Invalid(CodePresetNotOwned, -1, "preset %d belongs to hero %d", index, p.Hero)
	}
	next := p
	next.Relics[slot] = relic
	if err := l.validator.ValidateVessel(hero, Vessel{ID: next.Vessel, Relics: next.Relics}); err != nil {
		return err
	}

	if err := l.writePresetRelics(next); err != nil {
		return err
	}
	l.swapRelics(hero, p.Relics, next.Relics)
	l.presets[index] = next
	h, _ := l.lookup(hero)
	return l.autoAdjust(h)
}

// autoAdjust points the hero's active preset at the first preset matching
// the current vessel exactly, or clears it.
func (l *Loadout) autoAdjust(h *heroState) error {
	cur := 0
	if vi := vesselIndex(h, h.curVessel); vi >= 0 {
		cur = vi
	}
	idx := uint8(NoPreset)
	if len(h.vessels) > 0 {
		v := h.vessels[cur]
		for _, pi := range h.presets {
			p := l.presets[pi]
			if p.Vessel == v.ID && p.Relics == v.Relics {
				idx = uint8(pi)
				break
			}
		}
	}
	h.presetIdx = idx
	return l.writeHero(h)
}

func (l *Loadout) swapRelics(hero uint8, old, next [6]record.Handle) {
	for i := range old {
		if old[i] == next[i] {
			continue
		}
		if old[i].IsRelic() {
			l.inv.Unequip(old[i], hero)
		}
		if next[i].IsRelic() {
			l.inv.Equip(next[i], hero)
		}
	}
}

func (l *Loadout) writeHero(h *heroState) error {
	if err := l.buf.WriteAt(h.offset+1, []byte{h.presetIdx}); err != nil {
		return err
	}
	return l.buf.PutUint32(h.offset+4, h.curVessel)
}

func (l *Loadout) writeVessel(v Vessel) error {
	return l.buf.WriteAt(v.Offset, encodeVessel(v))
}

func (l *Loadout) writePresetRelics(p Preset) error {
	return l.buf.WriteAt(p.Offset+48, encodeRelics(p.Relics))
}

// writePreset writes every field of p. Padding bytes are left as they are.
func (l *Loadout) writePreset(p Preset) error {
	le := binary.LittleEndian
	head := make([]byte, 4)
	head[0] = presetMark
	le.PutUint16(head[1:], uint16(p.Hero))
	head[3] = p.Counter
	if err := l.buf.WriteAt(p.Offset, head); err != nil {
		return err
	}
	if err := l.buf.WriteAt(p.Offset+4, encodeName(p.Name)); err != nil {
		return err
	}
	if err := l.buf.PutUint32(p.Offset+44, p.Vessel); err != nil {
		return err
	}
	if err := l.writePresetRelics(p); err != nil {
		return err
	}
	ts := make([]byte, 8)
	le.PutUint64(ts, p.Timestamp)
	return l.buf.WriteAt(p.Offset+72, ts)
}

func encodeVessel(v Vessel) []byte {
	out := make([]byte, 4, VesselSize)
	binary.LittleEndian.PutUint32(out, v.ID)
	return append(out, encodeRelics(v.Relics)...)
}

func encodeRelics(r [6]record.Handle) []byte {
	out := make([]byte, 24)
	for i, h := range r {
		binary.LittleEndian.PutUint32(out[4*i:], uint32(h))
	}
	return out
}
