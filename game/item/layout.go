// Package item owns the parsed item records and inventory entries of a save
// buffer and performs size-preserving relic mutations.
package item

import "github.com/kasuganosora/relicsave/game/record"

// Fixed table geometry.
const (
	ItemsStart = 0x14
	SlotCount  = 5120
	EntryCount = 3065

	// KeepSlots is the number of leading state slots holding fixed items that
	// are never rewritten.
	KeepSlots = 84

	nameGap       = 0x94
	murksFromName = 52
	sigsFromName  = -64
	countFromName = 0x5B8

	// InstanceFloor is the lowest instance id handed out to new records.
	InstanceFloor uint32 = 0x800054
)

// Layout holds every offset derived from one pass over the item slots. It is
// rebuilt by Parse and never mutated afterwards.
type Layout struct {
	slots []int

	ItemsEnd         int
	NameOffset       int
	MurksOffset      int
	SigsOffset       int
	EntryCountOffset int
	EntriesOffset    int
}

// SlotOffset returns the byte offset of state slot i.
func (l Layout) SlotOffset(i int) int { return l.slots[i] }

// EntryOffset returns the byte offset of entry i.
func (l Layout) EntryOffset(i int) int { return l.EntriesOffset + i*record.EntrySize }

// End is the first byte after the entry table.
func (l Layout) End() int { return l.EntryOffset(EntryCount) }

func newLayout(slots []int, itemsEnd int) Layout {
	name := itemsEnd + nameGap
	count := name + countFromName
	return Layout{
		slots:            slots,
		ItemsEnd:         itemsEnd,
		NameOffset:       name,
		MurksOffset:      name + murksFromName,
		SigsOffset:       name + sigsFromName,
		EntryCountOffset: count,
		EntriesOffset:    count + 4,
	}
}
