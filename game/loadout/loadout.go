// Package loadout parses and edits the hero loadout region: hero headers,
// vessels and presets. The region is found by a signature scan once per parse.
package loadout

import (
	"bytes"
	"encoding/binary"
	"slices"
	"time"

	"github.com/kasuganosora/relicsave/game/item"
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/saveerr"
	"github.com/kasuganosora/relicsave/resource"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

// Region geometry.
const (
	HeroCount   = 10
	VesselSize  = 28
	HeroSize    = 8 + 4*VesselSize
	PresetSize  = 80
	MaxPresets  = 100
	NoPreset    = 0xFF
	presetMark  = 0x01
	nameSize    = 36
	inlineCount = 4
)

// signature marks the start of the loadout region.
var signature = []byte{
	0xC2, 0x00, 0x03, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x03, 0x00, 0x0A, 0x00, 0x04, 0x00, 0x46, 0x00,
	0x64, 0x00, 0x00, 0x00,
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Catalog is the game data the loadout needs.
type Catalog interface {
	Vessel(id uint32) (resource.Vessel, bool)
	Relic(id uint32) (resource.Relic, bool)
}

// Vessel is one vessel record: slots 0-2 normal, 3-5 deep.
type Vessel struct {
	ID     uint32           `json:"id"`
	Relics [6]record.Handle `json:"relics"`
	Offset int              `json:"-"`
}

// Preset is one saved relic configuration. Index is global across heroes.
type Preset struct {
	Index     int              `json:"index"`
	Hero      uint8            `json:"hero"`
	Counter   uint8            `json:"counter"`
	Name      string           `json:"name"`
	Vessel    uint32           `json:"vessel"`
	Relics    [6]record.Handle `json:"relics"`
	Timestamp uint64           `json:"timestamp"`
	Offset    int              `json:"-"`
}

// Hero is one hero's loadout.
type Hero struct {
	ID        uint8    `json:"id"`
	PresetIdx uint8    `json:"preset_index"`
	CurVessel uint32   `json:"current_vessel"`
	Vessels   []Vessel `json:"vessels"`
	Presets   []Preset `json:"presets"`
	Offset    int      `json:"-"`
}

type heroState struct {
	id        uint8
	presetIdx uint8
	curVessel uint32
	vessels   []Vessel
	presets   []int
	offset    int
}

// Loadout is the parsed loadout region. It shares the save buffer with the
// inventory and keeps relic handles by value only.
type Loadout struct {
	buf       *record.Buffer
	cat       Catalog
	inv       *item.Inventory
	validator *Validator
	logger    *zap.Logger
	now       func() time.Time

	base       int
	presetBase int
	heroes     map[uint8]*heroState
	order      []uint8
	presets    []Preset
}

// New parses the loadout region of the inventory's buffer.
func New(inv *item.Inventory, cat Catalog, logger *zap.Logger) (*Loadout, error) {
	l := &Loadout{
		buf:    inv.Buffer(),
		cat:    cat,
		inv:    inv,
		logger: logger,
		now:    time.Now,
	}
	l.validator = NewValidator(cat, inv, l)
	if err := l.Parse(); err != nil {
		return nil, err
	}
	return l, nil
}

// SetClock replaces the clock used for preset timestamps.
func (l *Loadout) SetClock(now func() time.Time) { l.now = now }

// Validator returns the placement validator.
func (l *Loadout) Validator() *Validator { return l.validator }

// Base returns the offset of the region signature.
func (l *Loadout) Base() int { return l.base }

// Parse re-reads the region and rebuilds the inventory's equip references.
func (l *Loadout) Parse() error {
	data := l.buf.Bytes()
	base := bytes.Index(data, signature)
	if base < 0 {
		return saveerr.Structural(0, "loadout signature not found")
	}
	l.inv.ResetEquipped()
	le := binary.LittleEndian
	heroes := make(map[uint8]*heroState, HeroCount)
	var order []uint8

	cursor := base + len(signature)
	var last uint8
	for range HeroCount {
		if cursor+HeroSize > len(data) {
			return saveerr.Structural(cursor, "hero header truncated")
		}
		h := &heroState{
			id:        data[cursor],
			presetIdx: data[cursor+1],
			curVessel: le.Uint32(data[cursor+4:]),
			offset:    cursor,
		}
		cursor += 8
		for range inlineCount {
			v := readVessel(data, cursor)
			h.vessels = append(h.vessels, v)
			l.equipAll(v.Relics, h.id)
			cursor += VesselSize
		}
		heroes[h.id] = h
		order = append(order, h.id)
		last = h.id
	}

	for {
		if cursor+4 > len(data) {
			return saveerr.Structural(cursor, "vessel run not terminated")
		}
		id := le.Uint32(data[cursor:])
		if id == 0 {
			cursor += 4
			break
		}
		if cursor+VesselSize > len(data) {
			return saveerr.Structural(cursor, "vessel record truncated")
		}
		v := readVessel(data, cursor)
		cursor += VesselSize
		// Handles count as equipped even when the record cannot be attributed,
		// so the relics they name are never removed from under the save.
		meta, known := l.cat.Vessel(id)
		owner := last
		if known && !meta.Universal() {
			owner = meta.Hero
		}
		l.equipAll(v.Relics, owner)
		if !known {
			l.logger.Warn("unknown vessel in loadout", zap.Uint32("vessel", id), zap.Int("offset", v.Offset))
			continue
		}
		h, ok := heroes[owner]
		if !ok {
			l.logger.Warn("vessel owner not in loadout", zap.Uint32("vessel", id), zap.Uint8("hero", owner))
			continue
		}
		h.vessels = append(h.vessels, v)
	}
	for _, h := range heroes {
		slices.SortStableFunc(h.vessels, func(a, b Vessel) int {
			switch {
			case a.ID < b.ID:
				return -1
			case a.ID > b.ID:
				return 1
			}
			return 0
		})
	}

	presetBase := cursor
	var presets []Preset
	for cursor+PresetSize <= len(data) && data[cursor] == presetMark {
		p := readPreset(data, cursor)
		p.Index = len(presets)
		presets = append(presets, p)
		l.equipAll(p.Relics, p.Hero)
		if h, ok := heroes[p.Hero]; ok {
			h.presets = append(h.presets, p.Index)
		} else {
			l.logger.Warn("preset for unknown hero", zap.Int("index", p.Index), zap.Uint8("hero", p.Hero))
		}
		cursor += PresetSize
		if p.Counter == 0 {
			break
		}
	}

	l.base, l.presetBase = base, presetBase
	l.heroes, l.order, l.presets = heroes, order, presets
	l.logger.Debug("loadout parsed",
		zap.Int("base", base), zap.Int("heroes", len(heroes)), zap.Int("presets", len(presets)))
	return nil
}

func (l *Loadout) equipAll(relics [6]record.Handle, hero uint8) {
	for _, h := range relics {
		if h.IsRelic() {
			l.inv.Equip(h, hero)
		}
	}
}

func readVessel(data []byte, off int) Vessel {
	le := binary.LittleEndian
	v := Vessel{ID: le.Uint32(data[off:]), Offset: off}
	for i := range 6 {
		v.Relics[i] = record.Handle(le.Uint32(data[off+4+4*i:]))
	}
	return v
}

func readPreset(data []byte, off int) Preset {
	le := binary.LittleEndian
	p := Preset{
		Hero:      uint8(le.Uint16(data[off+1:])),
		Counter:   data[off+3],
		Name:      decodeName(data[off+4 : off+4+nameSize]),
		Vessel:    le.Uint32(data[off+44:]),
		Timestamp: le.Uint64(data[off+72:]),
		Offset:    off,
	}
	for i := range 6 {
		p.Relics[i] = record.Handle(le.Uint32(data[off+48+4*i:]))
	}
	return p
}

func decodeName(raw []byte) string {
	end := 0
	for end+1 < len(raw) && (raw[end] != 0 || raw[end+1] != 0) {
		end += 2
	}
	name, err := utf16le.NewDecoder().Bytes(raw[:end])
	if err != nil {
		return ""
	}
	return string(name)
}

func encodeName(name string) []byte {
	out := make([]byte, nameSize)
	enc, err := utf16le.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return out
	}
	n := min(len(enc), nameSize)
	// Do not split a surrogate pair.
	if n == nameSize && n >= 2 {
		if u := binary.LittleEndian.Uint16(enc[n-2:]); u >= 0xD800 && u < 0xDC00 {
			n -= 2
		}
	}
	copy(out, enc[:n])
	return out
}

// fileTime converts t to a Windows FILETIME with millisecond precision.
func fileTime(t time.Time) uint64 {
	const epochDeltaMs = 11644473600 * 1000
	return uint64(t.UnixMilli()+epochDeltaMs) * 10000
}

// Heroes returns every hero in parse order.
func (l *Loadout) Heroes() []Hero {
	out := make([]Hero, 0, len(l.order))
	for _, id := range l.order {
		h, _ := l.Hero(id)
		out = append(out, h)
	}
	return out
}

// Hero returns a copy of one hero's loadout.
func (l *Loadout) Hero(id uint8) (Hero, bool) {
	h, ok := l.heroes[id]
	if !ok {
		return Hero{}, false
	}
	out := Hero{
		ID:        h.id,
		PresetIdx: h.presetIdx,
		CurVessel: h.curVessel,
		Vessels:   slices.Clone(h.vessels),
		Offset:    h.offset,
	}
	for _, i := range h.presets {
		out.Presets = append(out.Presets, l.presets[i])
	}
	return out, true
}

// Presets returns every preset by global index.
func (l *Loadout) Presets() []Preset { return slices.Clone(l.presets) }

// lookup satisfies roster for the validator.
func (l *Loadout) lookup(id uint8) (*heroState, bool) {
	h, ok := l.heroes[id]
	return h, ok
}

func (l *Loadout) presetsOf(id uint8) []Preset {
	h, ok := l.heroes[id]
	if !ok {
		return nil
	}
	out := make([]Preset, 0, len(h.presets))
	for _, i := range h.presets {
		out = append(out, l.presets[i])
	}
	return out
}
