// Package resource loads the read-only game parameter tables and indexes them
// into a Catalog used for relic validation and loadout checks.
package resource

import (
	"math"
	"slices"
)

// Color is a relic or vessel slot color.
type Color uint8

const (
	Red Color = iota
	Blue
	Yellow
	Green
	White // wildcard slot
)

var colorNames = [...]string{"Red", "Blue", "Yellow", "Green", "White"}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "Unknown"
}

// Accepts reports whether a slot of color c can hold a relic of color r.
func (c Color) Accepts(r Color) bool { return c == White || c == r }

// Pool ids.
const (
	NoPool int32 = -1

	// Deep pools share weights for relaxed checks.
	DeepPoolCursed  int32 = 2000000
	DeepPoolSingleA int32 = 2100000
	DeepPoolSingleB int32 = 2200000

	// NoConflict is the compatibility id exempt from conflict checks.
	NoConflict int32 = -1

	// UniversalHero marks vessels usable by every hero.
	UniversalHero uint8 = 11
)

// IsDeepPool reports whether pool belongs to the deep family.
func IsDeepPool(pool int32) bool {
	return pool == DeepPoolCursed || pool == DeepPoolSingleA || pool == DeepPoolSingleB
}

// SortLast is the sort key of empty or unknown effects.
const SortLast int64 = math.MaxInt64

// IsEmptyEffect reports whether an effect or curse id is a placeholder.
func IsEmptyEffect(id uint32) bool { return id == 0 || id == 0xFFFFFFFF }

// Effect is one attach effect definition.
type Effect struct {
	ID       uint32
	Conflict int32
	TextID   int32
	SortKey  int64
}

// PoolWeight is one effect listed in one pool.
type PoolWeight struct {
	Pool      int32
	Effect    uint32
	Weight    int32
	WeightDLC int32
}

// Rollable reports whether the row can actually roll: a positive DLC weight,
// or a nonzero base weight when the DLC weight defers to it.
func (p PoolWeight) Rollable() bool {
	return p.WeightDLC > 0 || (p.Weight != 0 && p.WeightDLC == -1)
}

// Relic is one relic definition.
type Relic struct {
	ID    uint32
	Color Color
	Deep  bool
	// Pools holds three effect pools then three curse pools, NoPool when disabled.
	Pools [6]int32
}

// EffectSlots counts enabled effect pools.
func (r Relic) EffectSlots() int { return 3 - countNoPool(r.Pools[:3]) }

// CurseSlots counts enabled curse pools.
func (r Relic) CurseSlots() int { return 3 - countNoPool(r.Pools[3:]) }

func countNoPool(p []int32) int {
	n := 0
	for _, v := range p {
		if v == NoPool {
			n++
		}
	}
	return n
}

// Vessel is one vessel definition. Slots 0-2 are normal, 3-5 deep.
type Vessel struct {
	ID         uint32
	Hero       uint8
	GoodsID    uint32
	Slots      [6]Color
	UnlockFlag uint32
}

// Universal reports whether any hero may use the vessel.
func (v Vessel) Universal() bool { return v.Hero == UniversalHero }

// Tables is the raw parameter data a Catalog is built from.
type Tables struct {
	Effects []Effect
	Pools   []PoolWeight
	Relics  []Relic
	Vessels []Vessel
}

// Catalog is an immutable index over Tables. It is safe for concurrent reads.
type Catalog struct {
	effects map[uint32]Effect
	relics  map[uint32]Relic
	vessels map[uint32]Vessel

	relicIDs []uint32

	// pool -> effects with a rollable weight in that exact pool
	strict map[int32]map[uint32]struct{}
	// effect -> pools where it is rollable
	rollablePools map[uint32][]int32
	// effect -> every pool listing it
	listedPools map[uint32][]int32
	deepFamily  map[uint32]struct{}
	needsCurse  map[uint32]bool
}

// NewCatalog builds the indexes.
func NewCatalog(t Tables) *Catalog {
	c := &Catalog{
		effects:       make(map[uint32]Effect, len(t.Effects)),
		relics:        make(map[uint32]Relic, len(t.Relics)),
		vessels:       make(map[uint32]Vessel, len(t.Vessels)),
		strict:        make(map[int32]map[uint32]struct{}),
		rollablePools: make(map[uint32][]int32),
		listedPools:   make(map[uint32][]int32),
		deepFamily:    make(map[uint32]struct{}),
		needsCurse:    make(map[uint32]bool),
	}
	for _, e := range t.Effects {
		c.effects[e.ID] = e
	}
	for _, r := range t.Relics {
		c.relics[r.ID] = r
		c.relicIDs = append(c.relicIDs, r.ID)
	}
	slices.Sort(c.relicIDs)
	for _, v := range t.Vessels {
		c.vessels[v.ID] = v
	}
	for _, p := range t.Pools {
		c.listedPools[p.Effect] = append(c.listedPools[p.Effect], p.Pool)
		if !p.Rollable() {
			continue
		}
		set, ok := c.strict[p.Pool]
		if !ok {
			set = make(map[uint32]struct{})
			c.strict[p.Pool] = set
		}
		set[p.Effect] = struct{}{}
		c.rollablePools[p.Effect] = append(c.rollablePools[p.Effect], p.Pool)
		if IsDeepPool(p.Pool) {
			c.deepFamily[p.Effect] = struct{}{}
		}
	}
	for eff, pools := range c.rollablePools {
		c.needsCurse[eff] = curseRequired(eff, pools)
	}
	return c
}

// curseRequired: the effect rolls from the cursed deep pool and from no
// curse-free deep pool. The effect's own dedicated pool is ignored.
func curseRequired(eff uint32, pools []int32) bool {
	inCursed, inFree := false, false
	for _, p := range pools {
		if p >= 0 && uint32(p) == eff {
			continue
		}
		switch p {
		case DeepPoolCursed:
			inCursed = true
		case DeepPoolSingleA, DeepPoolSingleB:
			inFree = true
		}
	}
	return inCursed && !inFree
}

// Effect looks up an effect definition.
func (c *Catalog) Effect(id uint32) (Effect, bool) {
	e, ok := c.effects[id]
	return e, ok
}

// Relic looks up a relic definition.
func (c *Catalog) Relic(id uint32) (Relic, bool) {
	r, ok := c.relics[id]
	return r, ok
}

// RelicIDs returns every relic id in ascending order.
func (c *Catalog) RelicIDs() []uint32 { return c.relicIDs }

// Vessel looks up a vessel definition.
func (c *Catalog) Vessel(id uint32) (Vessel, bool) {
	v, ok := c.vessels[id]
	return v, ok
}

// Rollable reports whether effect can roll in pool. Deep pools are treated as
// one family: an effect rollable in any of them is rollable in all of them.
func (c *Catalog) Rollable(pool int32, effect uint32) bool {
	if pool == NoPool {
		return false
	}
	if IsDeepPool(pool) {
		_, ok := c.deepFamily[effect]
		return ok
	}
	return c.RollableStrict(pool, effect)
}

// RollableStrict reports whether effect has a rollable weight in exactly pool.
func (c *Catalog) RollableStrict(pool int32, effect uint32) bool {
	if pool == NoPool {
		return false
	}
	_, ok := c.strict[pool][effect]
	return ok
}

// PoolEffects lists the effects rollable in exactly pool, ascending.
func (c *Catalog) PoolEffects(pool int32) []uint32 {
	set := c.strict[pool]
	out := make([]uint32, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// EffectPools lists every pool where effect is rollable.
func (c *Catalog) EffectPools(effect uint32) []int32 { return c.rollablePools[effect] }

// NeedsCurse reports whether an effect may only appear paired with a curse.
func (c *Catalog) NeedsCurse(effect uint32) bool {
	if IsEmptyEffect(effect) {
		return false
	}
	return c.needsCurse[effect]
}

// IsDeepOnly reports whether effect is listed only in deep pools and its own
// dedicated pool.
func (c *Catalog) IsDeepOnly(effect uint32) bool {
	if IsEmptyEffect(effect) {
		return false
	}
	for _, p := range c.listedPools[effect] {
		if !IsDeepPool(p) && (p < 0 || uint32(p) != effect) {
			return false
		}
	}
	return true
}

// ConflictID returns the compatibility group. Empty and unknown effects return
// NoConflict.
func (c *Catalog) ConflictID(effect uint32) int32 {
	if e, ok := c.effects[effect]; ok && !IsEmptyEffect(effect) {
		return e.Conflict
	}
	return NoConflict
}

// SortKey returns the ordering key. Empty and unknown effects sort last.
func (c *Catalog) SortKey(effect uint32) int64 {
	if e, ok := c.effects[effect]; ok && !IsEmptyEffect(effect) {
		return e.SortKey
	}
	return SortLast
}
