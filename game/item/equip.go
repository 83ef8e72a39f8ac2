package item

import (
	"slices"

	"github.com/kasuganosora/relicsave/game/record"
)

// Equip records that hero references h from a vessel or preset. References
// are counted so a relic used twice by the same hero needs two Unequips.
func (inv *Inventory) Equip(h record.Handle, hero uint8) {
	if h.IsEmpty() {
		return
	}
	refs, ok := inv.equipped[h]
	if !ok {
		refs = make(map[uint8]int)
		inv.equipped[h] = refs
	}
	refs[hero]++
}

// Unequip drops one reference of hero to h.
func (inv *Inventory) Unequip(h record.Handle, hero uint8) {
	refs, ok := inv.equipped[h]
	if !ok {
		return
	}
	if refs[hero] <= 1 {
		delete(refs, hero)
	} else {
		refs[hero]--
	}
	if len(refs) == 0 {
		delete(inv.equipped, h)
	}
}

// EquippedBy lists the heroes referencing h, ascending.
func (inv *Inventory) EquippedBy(h record.Handle) []uint8 {
	refs := inv.equipped[h]
	if len(refs) == 0 {
		return nil
	}
	out := make([]uint8, 0, len(refs))
	for hero := range refs {
		out = append(out, hero)
	}
	slices.Sort(out)
	return out
}

// ResetEquipped clears the cross-reference before a loadout re-parse.
func (inv *Inventory) ResetEquipped() {
	clear(inv.equipped)
}
