package relic

import "github.com/kasuganosora/relicsave/resource"

// FixKind names how a repair was found.
type FixKind string

const (
	FixReorder  FixKind = "reorder"
	FixSibling  FixKind = "sibling"
	FixFallback FixKind = "fallback"
)

// Fix is a proposed replacement for a relic's id and effects.
type Fix struct {
	ID      uint32    `json:"id"`
	Effects [6]uint32 `json:"effects"`
	Kind    FixKind   `json:"kind"`
	// Strict is false for fallback fixes that may still carry zero-weight
	// effects in their exact pool.
	Strict bool `json:"strict"`
}

// Repair searches for a legal configuration. Illegal relics try, in order: a
// strict arrangement under the same id, a strict sibling id of the same color
// in the same id range, then any valid arrangement with enough curse slots.
// Strict-invalid relics (illegal=false) only try the first two. Unique relic
// ids are never repaired. Every proposal passes CheckInvalidity.
func (c *Checker) Repair(id uint32, effects [6]uint32, illegal bool) (Fix, bool) {
	if resource.IsUnique(id) {
		return Fix{}, false
	}
	if e, ok := c.StrictlyValidOrder(id, effects); ok && c.accept(id, e) {
		return Fix{ID: id, Effects: e, Kind: FixReorder, Strict: true}, true
	}
	if sib, e, ok := c.strictSibling(id, effects); ok {
		return Fix{ID: sib, Effects: e, Kind: FixSibling, Strict: true}, true
	}
	if !illegal {
		return Fix{}, false
	}
	if fid, ok := c.validSibling(id, effects); ok {
		if e, _ := c.ValidOrder(fid, effects); c.CheckInvalidity(fid, e).OK() {
			kind := FixFallback
			if fid == id {
				kind = FixReorder
			}
			return Fix{ID: fid, Effects: e, Kind: kind}, true
		}
	}
	return Fix{}, false
}

func (c *Checker) accept(id uint32, e [6]uint32) bool {
	return c.CheckInvalidity(id, e).OK() && !c.strictInvalid(id, e)
}

// siblings yields relic ids in the same range and color as id, excluding id
// and the reserved range.
func (c *Checker) siblings(id uint32) ([]uint32, bool) {
	def, ok := c.cat.Relic(id)
	if !ok {
		return nil, false
	}
	g, ok := resource.GroupOf(id)
	if !ok || g.Name == resource.ReservedGroup {
		return nil, false
	}
	var out []uint32
	for _, sid := range c.cat.RelicIDs() {
		if sid == id || !g.Contains(sid) {
			continue
		}
		if s, _ := c.cat.Relic(sid); s.Color == def.Color {
			out = append(out, sid)
		}
	}
	return out, true
}

func (c *Checker) strictSibling(id uint32, effects [6]uint32) (uint32, [6]uint32, bool) {
	sibs, _ := c.siblings(id)
	for _, sid := range sibs {
		if e, ok := c.StrictlyValidOrder(sid, effects); ok && c.accept(sid, e) {
			return sid, e, true
		}
	}
	return 0, effects, false
}

func (c *Checker) validSibling(id uint32, effects [6]uint32) (uint32, bool) {
	needed := 0
	for _, e := range effects[:3] {
		if c.cat.NeedsCurse(e) {
			needed++
		}
	}
	sibs, ok := c.siblings(id)
	if !ok {
		return 0, false
	}
	if def, _ := c.cat.Relic(id); def.CurseSlots() >= needed && c.HasValidOrder(id, effects) {
		return id, true
	}
	for _, sid := range sibs {
		s, _ := c.cat.Relic(sid)
		if s.CurseSlots() >= needed && c.HasValidOrder(sid, effects) {
			return sid, true
		}
	}
	return 0, false
}
