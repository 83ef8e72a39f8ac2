package record

import (
	"encoding/binary"

	"github.com/kasuganosora/relicsave/game/saveerr"
)

const (
	// EmptyItemID is the item id stored in an empty slot.
	EmptyItemID uint32 = 0xFFFFFFFF
	// EmptyEffect marks an unused effect or curse slot.
	EmptyEffect uint32 = 0xFFFFFFFF

	relicIDFlag uint32 = 0x80000000
)

// Item is one decoded item state record.
type Item struct {
	Handle Handle
	ItemID uint32
	Offset int
	Size   int

	// Relic payload.
	Durability uint32
	Unk1       uint32
	Effects    [3]uint32
	Pad        [7]uint32
	Curses     [3]uint32
	Tail       [3]uint32

	// Raw holds the weapon or armor payload after the 8-byte header.
	Raw []byte
}

// NewEmptyItem returns the minimal 8-byte empty record.
func NewEmptyItem(off int) Item {
	return Item{ItemID: EmptyItemID, Offset: off, Size: SizeBase}
}

// RelicTemplate seeds newly created relic records.
type RelicTemplate struct {
	RelicID uint32
	Effects [3]uint32
	Curses  [3]uint32
}

// NewRelicItem builds a fresh 80-byte relic record from a template.
func NewRelicItem(h Handle, tpl RelicTemplate) Item {
	it := Item{
		Handle:  h,
		Size:    SizeRelic,
		Unk1:    0xFFFFFFFF,
		Effects: tpl.Effects,
		Curses:  tpl.Curses,
		Pad:     [7]uint32{0xFFFFFFFF, 0xFFFFFFFF, 0xFF000000, 0, 0, 0xFFFFFFFF, 0xFFFFFFFF},
		Tail:    [3]uint32{0xFFFFFFFF, 0, 0},
	}
	it.SetRelicID(tpl.RelicID)
	return it
}

// RelicID returns the catalog relic id stored in the item id field.
func (it *Item) RelicID() uint32 { return it.ItemID &^ relicIDFlag }

// SetRelicID writes the relic id and keeps the durability mirror in sync.
func (it *Item) SetRelicID(id uint32) {
	it.ItemID = id | relicIDFlag
	it.Durability = it.ItemID
}

// EffectSet returns the three effects followed by the three curses.
func (it *Item) EffectSet() [6]uint32 {
	return [6]uint32{it.Effects[0], it.Effects[1], it.Effects[2], it.Curses[0], it.Curses[1], it.Curses[2]}
}

// SetEffectSet writes three effects followed by three curses.
func (it *Item) SetEffectSet(e [6]uint32) {
	copy(it.Effects[:], e[:3])
	copy(it.Curses[:], e[3:])
}

// DecodeItem reads one item record at off. A record that does not fit in buf
// decodes as an empty 8-byte record together with a StructuralError so the
// caller can keep walking.
func DecodeItem(buf []byte, off int) (Item, error) {
	if off < 0 || off+SizeBase > len(buf) {
		return NewEmptyItem(off), saveerr.Structural(off, "item header truncated")
	}
	le := binary.LittleEndian
	h := Handle(le.Uint32(buf[off:]))
	it := Item{Handle: h, ItemID: le.Uint32(buf[off+4:]), Offset: off, Size: SizeOf(h)}
	if off+it.Size > len(buf) {
		return NewEmptyItem(off), saveerr.Structural(off, "%s record of %d bytes truncated", h, it.Size)
	}
	if h == 0 {
		return it, nil
	}
	switch h.Type() {
	case TypeRelic:
		p := buf[off+SizeBase : off+SizeRelic]
		it.Durability = le.Uint32(p[0:])
		it.Unk1 = le.Uint32(p[4:])
		for i := range 3 {
			it.Effects[i] = le.Uint32(p[8+4*i:])
		}
		for i := range 7 {
			it.Pad[i] = le.Uint32(p[20+4*i:])
		}
		for i := range 3 {
			it.Curses[i] = le.Uint32(p[48+4*i:])
		}
		for i := range 3 {
			it.Tail[i] = le.Uint32(p[60+4*i:])
		}
	case TypeWeapon, TypeArmor:
		it.Raw = append([]byte(nil), buf[off+SizeBase:off+it.Size]...)
	}
	return it, nil
}

// Encode returns exactly it.Size bytes.
func (it *Item) Encode() []byte {
	size := SizeOf(it.Handle)
	out := make([]byte, size)
	le := binary.LittleEndian
	le.PutUint32(out[0:], uint32(it.Handle))
	if it.Handle == 0 {
		le.PutUint32(out[4:], EmptyItemID)
		return out
	}
	le.PutUint32(out[4:], it.ItemID)
	switch it.Handle.Type() {
	case TypeRelic:
		p := out[SizeBase:]
		le.PutUint32(p[0:], it.Durability)
		le.PutUint32(p[4:], it.Unk1)
		for i := range 3 {
			le.PutUint32(p[8+4*i:], it.Effects[i])
		}
		for i := range 7 {
			le.PutUint32(p[20+4*i:], it.Pad[i])
		}
		for i := range 3 {
			le.PutUint32(p[48+4*i:], it.Curses[i])
		}
		for i := range 3 {
			le.PutUint32(p[60+4*i:], it.Tail[i])
		}
	case TypeWeapon, TypeArmor:
		copy(out[SizeBase:], it.Raw)
	}
	return out
}
