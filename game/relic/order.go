package relic

import (
	"slices"

	"github.com/kasuganosora/relicsave/resource"
)

// SortEffects returns the canonical stored order: primaries ascending by
// (sort key, id) with empties last, then curses re-paired from a sorted curse
// list. Curse-requiring effects take from the front, the rest from the back.
// Pairing happens after the primaries are sorted, so the result is a fixed
// point of SortEffects.
func (c *Checker) SortEffects(effects [6]uint32) [6]uint32 {
	primaries := slices.Clone(effects[:3])
	slices.SortStableFunc(primaries, c.compareEffects)
	curses := slices.Clone(effects[3:])
	slices.SortStableFunc(curses, c.compareEffects)

	var out [6]uint32
	for i, e := range primaries {
		out[i] = e
		if c.cat.NeedsCurse(e) {
			out[i+3], curses = curses[0], curses[1:]
		} else {
			out[i+3], curses = curses[len(curses)-1], curses[:len(curses)-1]
		}
	}
	return out
}

// HasValidOrder reports whether some arrangement places every effect and
// curse in a pool where it can roll.
func (c *Checker) HasValidOrder(id uint32, effects [6]uint32) bool {
	_, ok := c.orderFor(id, effects, false)
	return ok
}

// ValidOrder returns a stored order of effects that fits the relic's pools.
// The SortEffects order is preferred; when its curse pairing cannot be
// placed, the fitting arrangement is returned with its pairs sorted.
func (c *Checker) ValidOrder(id uint32, effects [6]uint32) ([6]uint32, bool) {
	return c.orderFor(id, effects, false)
}

// StrictlyValidOrder is ValidOrder with every pool checked exactly, deep
// pools included.
func (c *Checker) StrictlyValidOrder(id uint32, effects [6]uint32) ([6]uint32, bool) {
	return c.orderFor(id, effects, true)
}

func (c *Checker) orderFor(id uint32, effects [6]uint32, strict bool) ([6]uint32, bool) {
	def, ok := c.cat.Relic(id)
	if !ok {
		return effects, false
	}
	sorted := c.SortEffects(effects)
	if c.anyFits(def.Pools, sorted, strict) {
		return sorted, true
	}
	for _, ord := range orderings {
		if e := arrange(effects, ord); c.fits(def.Pools, e, strict) {
			return c.sortPairs(e), true
		}
	}
	return effects, false
}

func (c *Checker) anyFits(pools [6]int32, effects [6]uint32, strict bool) bool {
	for _, ord := range orderings {
		if c.fits(pools, arrange(effects, ord), strict) {
			return true
		}
	}
	return false
}

// sortPairs orders the (effect, curse) pairs by their effect, keeping each
// curse with its effect.
func (c *Checker) sortPairs(e [6]uint32) [6]uint32 {
	ord := [3]int{0, 1, 2}
	slices.SortStableFunc(ord[:], func(a, b int) int { return c.compareEffects(e[a], e[b]) })
	return arrange(e, ord)
}

// fits applies the per-slot pool rules of placement to one arrangement and
// then the curse count. A curse-requiring effect only needs a curse pool in
// its own slot; the curse itself may sit in any pair.
func (c *Checker) fits(pools [6]int32, e [6]uint32, strict bool) bool {
	rollable := c.cat.Rollable
	if strict {
		rollable = c.cat.RollableStrict
	}
	needed, supplied := 0, 0
	for i := range 3 {
		eff, curse := e[i], e[i+3]
		pool, cursePool := pools[i], pools[i+3]
		if !isEmpty(eff) {
			if pool == resource.NoPool || !rollable(pool, eff) {
				return false
			}
			if c.cat.NeedsCurse(eff) {
				if cursePool == resource.NoPool {
					return false
				}
				needed++
			}
		}
		if !isEmpty(curse) {
			if cursePool == resource.NoPool || !rollable(cursePool, curse) {
				return false
			}
			supplied++
		}
	}
	return needed <= supplied
}

// FindReplacementEffects lists effects other than current that roll from the
// exact pool of slot (0-2). Curse-requiring effects are left out when the slot
// has no curse pool.
func (c *Checker) FindReplacementEffects(id uint32, slot int, current uint32) []uint32 {
	def, ok := c.cat.Relic(id)
	if !ok || slot < 0 || slot > 2 || def.Pools[slot] == resource.NoPool {
		return nil
	}
	cursePool := def.Pools[slot+3]
	var out []uint32
	for _, e := range c.cat.PoolEffects(def.Pools[slot]) {
		if e == current {
			continue
		}
		if cursePool == resource.NoPool && c.cat.NeedsCurse(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}
