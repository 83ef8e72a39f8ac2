package item

import (
	"fmt"

	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/saveerr"
	"go.uber.org/zap"
)

// AddRelic creates a relic from the template of kind in the first free entry
// and the first free state slot after the last occupied one. The state record
// grows from 8 to 80 bytes; the pad region pays for it. Nothing is written
// unless every precondition holds.
func (inv *Inventory) AddRelic(kind Kind) (record.Handle, error) {
	tpl, ok := inv.templates[kind]
	if !ok {
		return 0, saveerr.Invalid("unknown-kind", -1, "no relic template for kind %q", kind)
	}

	entryIdx := -1
	for i, e := range inv.entries {
		if e.IsEmpty() {
			entryIdx = i
			break
		}
	}
	if entryIdx < 0 {
		return 0, &saveerr.CapacityError{Resource: "inventory entries"}
	}
	slot := -1
	for i := inv.lastState; i < SlotCount; i++ {
		if inv.items[i].Handle == 0 {
			slot = i
			break
		}
	}
	if slot < 0 {
		return 0, &saveerr.CapacityError{Resource: "item state slots"}
	}
	if inv.buf.Slack() < record.RelicDelta {
		return 0, &saveerr.CapacityError{Resource: "save pad region"}
	}
	if inv.maxInstance >= 0x00FFFFFF {
		return 0, &saveerr.CapacityError{Resource: "instance ids"}
	}

	h := record.NewHandle(record.TypeRelic, inv.maxInstance+1)
	it := record.NewRelicItem(h, tpl)
	entry := record.Entry{Handle: h, Amount: 1, Acquisition: inv.maxAcq + 1}

	old := inv.items[slot]
	if err := inv.buf.Splice(inv.layout.SlotOffset(slot), old.Size, it.Encode()); err != nil {
		return 0, fmt.Errorf("add relic: %w", err)
	}
	// The entry table moved by the splice delta.
	shift := it.Size - old.Size
	if err := inv.buf.WriteAt(inv.layout.EntryOffset(entryIdx)+shift, entry.Encode()); err != nil {
		return 0, fmt.Errorf("add relic: %w", err)
	}
	if err := inv.buf.PutUint32(inv.layout.EntryCountOffset+shift, uint32(inv.count+1)); err != nil {
		return 0, fmt.Errorf("add relic: %w", err)
	}
	if err := inv.Parse(); err != nil {
		return 0, fmt.Errorf("add relic: reparse: %w", err)
	}
	inv.updateVerdict(h)
	inv.logger.Info("relic added",
		zap.Stringer("handle", h), zap.String("kind", string(kind)),
		zap.Int("entry", entryIdx), zap.Int("slot", slot))
	return h, nil
}

// RemoveRelic deletes a relic's entry and shrinks its state back to the empty
// 8-byte form, returning the freed bytes to the pad region. An equipped relic
// cannot be removed.
func (inv *Inventory) RemoveRelic(h record.Handle) error {
	if !h.IsRelic() {
		return saveerr.Invalid("not-a-relic", -1, "handle %s is not a relic", h)
	}
	slot, ok := inv.stateOf[h]
	if !ok {
		return &saveerr.LookupError{Kind: "relic", ID: int64(h)}
	}
	if err := fixedSlot(h, slot); err != nil {
		return err
	}
	entryIdx, ok := inv.entryOf[h]
	if !ok {
		return &saveerr.LookupError{Kind: "relic", ID: int64(h)}
	}
	if heroes := inv.EquippedBy(h); len(heroes) > 0 {
		return saveerr.Invalid("relic-equipped", -1, "relic %s is equipped by hero %v", h, heroes)
	}

	old := inv.items[slot]
	empty := record.NewEmptyItem(0)
	if err := inv.buf.WriteAt(inv.layout.EntryOffset(entryIdx), make([]byte, record.EntrySize)); err != nil {
		return fmt.Errorf("remove relic: %w", err)
	}
	if err := inv.buf.PutUint32(inv.layout.EntryCountOffset, uint32(inv.count-1)); err != nil {
		return fmt.Errorf("remove relic: %w", err)
	}
	if err := inv.buf.Splice(inv.layout.SlotOffset(slot), old.Size, empty.Encode()); err != nil {
		return fmt.Errorf("remove relic: %w", err)
	}
	delete(inv.verdicts, h)
	if err := inv.Parse(); err != nil {
		return fmt.Errorf("remove relic: reparse: %w", err)
	}
	inv.logger.Info("relic removed",
		zap.Stringer("handle", h), zap.Int("entry", entryIdx), zap.Int("slot", slot))
	return nil
}

// fixedSlot refuses relics stored in the leading KeepSlots state slots.
func fixedSlot(h record.Handle, slot int) error {
	if slot < KeepSlots {
		return saveerr.Invalid("relic-fixed", -1, "relic %s is in fixed state slot %d", h, slot)
	}
	return nil
}

// RelicPatch lists the fields ModifyRelic rewrites. Nil fields are kept.
type RelicPatch struct {
	ID      *uint32    `json:"id,omitempty"`
	Effects *[3]uint32 `json:"effects,omitempty"`
	Curses  *[3]uint32 `json:"curses,omitempty"`
}

// ModifyRelic rewrites a relic's id and effects in place. The record keeps
// its size so no splice is needed; only this handle is re-validated.
func (inv *Inventory) ModifyRelic(h record.Handle, p RelicPatch) (Verdict, error) {
	if !h.IsRelic() {
		return Verdict{}, saveerr.Invalid("not-a-relic", -1, "handle %s is not a relic", h)
	}
	slot, ok := inv.stateOf[h]
	if !ok {
		return Verdict{}, &saveerr.LookupError{Kind: "relic", ID: int64(h)}
	}
	if err := fixedSlot(h, slot); err != nil {
		return Verdict{}, err
	}
	it := inv.items[slot]
	if p.ID != nil {
		it.SetRelicID(*p.ID)
	}
	if p.Effects != nil {
		it.Effects = *p.Effects
	}
	if p.Curses != nil {
		it.Curses = *p.Curses
	}
	if err := inv.buf.WriteAt(it.Offset, it.Encode()); err != nil {
		return Verdict{}, fmt.Errorf("modify relic: %w", err)
	}
	inv.items[slot] = it
	v := inv.updateVerdict(h)
	inv.logger.Info("relic modified",
		zap.Stringer("handle", h), zap.Uint32("id", it.RelicID()), zap.String("state", string(v.State)))
	return v, nil
}

// SetFavorite toggles the favorite flag of a held entry.
func (inv *Inventory) SetFavorite(h record.Handle, fav bool) error {
	idx, ok := inv.entryOf[h]
	if !ok {
		return &saveerr.LookupError{Kind: "entry", ID: int64(h)}
	}
	e := inv.entries[idx]
	e.Favorite = 0
	if fav {
		e.Favorite = 1
	}
	if err := inv.buf.WriteAt(inv.layout.EntryOffset(idx), e.Encode()); err != nil {
		return err
	}
	inv.entries[idx] = e
	return nil
}
