package item

import (
	"fmt"
	"slices"

	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/relic"
	"github.com/kasuganosora/relicsave/game/saveerr"
	"go.uber.org/zap"
)

// Kind selects the template used by AddRelic.
type Kind string

const (
	KindNormal Kind = "normal"
	KindDeep   Kind = "deep"
)

// Templates maps each kind to the record a new relic starts from.
type Templates map[Kind]record.RelicTemplate

// Vessel goods ids live in this range.
const (
	vesselGoodsMin = 9600
	vesselGoodsMax = 9956
)

// defaultVessels are the vessel goods every character starts with.
var defaultVessels = []uint32{9600, 9603, 9606, 9609, 9612, 9615, 9618, 9621, 9900, 9910}

// Inventory is the parsed view of the item and entry tables over one buffer.
// It is not safe for concurrent use; the owning session serializes access.
type Inventory struct {
	buf       *record.Buffer
	checker   *relic.Checker
	templates Templates
	logger    *zap.Logger

	layout  Layout
	items   []record.Item
	entries []record.Entry
	stateOf map[record.Handle]int
	entryOf map[record.Handle]int
	// relics in entry order
	relics []record.Handle

	lastState   int
	maxInstance uint32
	maxAcq      uint32
	count       int

	verdicts map[record.Handle]Verdict
	equipped map[record.Handle]map[uint8]int
}

// New parses buf into an Inventory.
func New(buf *record.Buffer, checker *relic.Checker, templates Templates, logger *zap.Logger) (*Inventory, error) {
	inv := &Inventory{
		buf:       buf,
		checker:   checker,
		templates: templates,
		logger:    logger,
		verdicts:  make(map[record.Handle]Verdict),
		equipped:  make(map[record.Handle]map[uint8]int),
	}
	if err := inv.Parse(); err != nil {
		return nil, err
	}
	return inv, nil
}

// Parse rebuilds the record arrays, the layout and the id allocators from the
// buffer. Verdicts and equip references survive for handles that still exist.
// A truncated slot is logged and read as empty.
func (inv *Inventory) Parse() error {
	data := inv.buf.Bytes()
	items := make([]record.Item, SlotCount)
	slots := make([]int, SlotCount)
	stateOf := make(map[record.Handle]int)
	maxInstance, lastState := InstanceFloor, 0

	off := ItemsStart
	for i := range SlotCount {
		it, err := record.DecodeItem(data, off)
		if err != nil {
			inv.logger.Warn("item slot unreadable", zap.Int("slot", i), zap.Error(err))
		}
		items[i], slots[i] = it, off
		if it.Handle != 0 {
			stateOf[it.Handle] = i
			lastState = i
			maxInstance = max(maxInstance, it.Handle.Instance())
		}
		off += it.Size
	}

	layout := newLayout(slots, off)
	if layout.End() > len(data) {
		return saveerr.Structural(layout.EntriesOffset, "entry table runs past end of buffer (%d bytes)", len(data))
	}

	entries := make([]record.Entry, EntryCount)
	entryOf := make(map[record.Handle]int)
	var relics []record.Handle
	var maxAcq uint32
	count := 0
	for i := range EntryCount {
		e, err := record.DecodeEntry(data, layout.EntryOffset(i))
		if err != nil {
			return err
		}
		entries[i] = e
		maxAcq = max(maxAcq, e.Acquisition)
		if e.IsEmpty() {
			continue
		}
		count++
		entryOf[e.Handle] = i
		if !e.Handle.IsRelic() {
			continue
		}
		if _, ok := stateOf[e.Handle]; !ok {
			inv.logger.Warn("relic entry without state record", zap.Stringer("handle", e.Handle), zap.Int("entry", i))
			continue
		}
		relics = append(relics, e.Handle)
	}

	stored, err := inv.buf.Uint32(layout.EntryCountOffset)
	if err != nil {
		return err
	}
	if int(stored) != count {
		inv.logger.Warn("entry count mismatch, rewriting",
			zap.Int("counted", count), zap.Uint32("stored", stored))
		if err := inv.buf.PutUint32(layout.EntryCountOffset, uint32(count)); err != nil {
			return err
		}
	}

	inv.layout = layout
	inv.items, inv.entries = items, entries
	inv.stateOf, inv.entryOf = stateOf, entryOf
	inv.relics = relics
	inv.lastState, inv.maxInstance, inv.maxAcq, inv.count = lastState, maxInstance, maxAcq, count

	for h := range inv.verdicts {
		if _, ok := entryOf[h]; !ok {
			delete(inv.verdicts, h)
		}
	}
	for h := range inv.equipped {
		if _, ok := entryOf[h]; !ok {
			delete(inv.equipped, h)
		}
	}
	inv.logger.Debug("inventory parsed",
		zap.Int("entries", count), zap.Int("relics", len(relics)),
		zap.String("entries_at", fmt.Sprintf("0x%X", layout.EntriesOffset)))
	return nil
}

// Layout returns the offsets from the last parse.
func (inv *Inventory) Layout() Layout { return inv.layout }

// Buffer returns the shared save buffer.
func (inv *Inventory) Buffer() *record.Buffer { return inv.buf }

// Checker returns the relic checker used for verdicts.
func (inv *Inventory) Checker() *relic.Checker { return inv.checker }

// EntryCount returns the number of non-empty entries.
func (inv *Inventory) EntryCount() int { return inv.count }

// Item returns the state record for h.
func (inv *Inventory) Item(h record.Handle) (record.Item, bool) {
	i, ok := inv.stateOf[h]
	if !ok {
		return record.Item{}, false
	}
	return inv.items[i], true
}

// Entry returns the inventory entry for h.
func (inv *Inventory) Entry(h record.Handle) (record.Entry, bool) {
	i, ok := inv.entryOf[h]
	if !ok {
		return record.Entry{}, false
	}
	return inv.entries[i], true
}

// HasRelic reports whether h is a relic held in the inventory.
func (inv *Inventory) HasRelic(h record.Handle) bool {
	if !h.IsRelic() {
		return false
	}
	_, inEntries := inv.entryOf[h]
	_, inStates := inv.stateOf[h]
	return inEntries && inStates
}

// Relic is a held relic with its entry and verdict.
type Relic struct {
	Handle      record.Handle `json:"handle"`
	ID          uint32        `json:"id"`
	Effects     [6]uint32     `json:"effects"`
	Acquisition uint32        `json:"acquisition"`
	Favorite    bool          `json:"favorite"`
	Slot        int           `json:"slot"`
	Verdict     Verdict       `json:"verdict"`
	EquippedBy  []uint8       `json:"equipped_by,omitempty"`
}

// Relic returns the view of one relic.
func (inv *Inventory) Relic(h record.Handle) (Relic, bool) {
	si, ok := inv.stateOf[h]
	if !ok || !h.IsRelic() {
		return Relic{}, false
	}
	ei, ok := inv.entryOf[h]
	if !ok {
		return Relic{}, false
	}
	it, e := inv.items[si], inv.entries[ei]
	return Relic{
		Handle:      h,
		ID:          it.RelicID(),
		Effects:     it.EffectSet(),
		Acquisition: e.Acquisition,
		Favorite:    e.Favorite != 0,
		Slot:        si,
		Verdict:     inv.Verdict(h),
		EquippedBy:  inv.EquippedBy(h),
	}, true
}

// Relics lists every held relic in entry order.
func (inv *Inventory) Relics() []Relic {
	out := make([]Relic, 0, len(inv.relics))
	for _, h := range inv.relics {
		if r, ok := inv.Relic(h); ok {
			out = append(out, r)
		}
	}
	return out
}

// AcquisitionOrder returns relic handles from oldest to newest acquisition.
func (inv *Inventory) AcquisitionOrder() []record.Handle {
	out := slices.Clone(inv.relics)
	slices.SortStableFunc(out, func(a, b record.Handle) int {
		ea, eb := inv.entries[inv.entryOf[a]], inv.entries[inv.entryOf[b]]
		switch {
		case ea.Acquisition < eb.Acquisition:
			return -1
		case ea.Acquisition > eb.Acquisition:
			return 1
		}
		return 0
	})
	return out
}

// HasGoods reports whether a goods entry with the given goods id is held.
func (inv *Inventory) HasGoods(id uint32) bool {
	for h := range inv.entryOf {
		if h.Type() == record.TypeGoods && h.Instance() == id {
			return true
		}
	}
	return false
}

// OwnedVessels lists vessel goods ids: the starting set plus every vessel
// goods entry held.
func (inv *Inventory) OwnedVessels() []uint32 {
	out := slices.Clone(defaultVessels)
	for _, e := range inv.entries {
		if e.IsEmpty() || e.Handle.Type() != record.TypeGoods {
			continue
		}
		if id := e.GoodsID(); id >= vesselGoodsMin && id <= vesselGoodsMax && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
