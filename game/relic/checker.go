package relic

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kasuganosora/relicsave/resource"
)

// StrictPolicy controls how strict-invalid relics are reported.
type StrictPolicy string

const (
	StrictOff     StrictPolicy = "off"
	StrictWarn    StrictPolicy = "warn"
	StrictEnforce StrictPolicy = "enforce"
)

// ParseStrictPolicy maps a config value to a policy, defaulting to warn.
func ParseStrictPolicy(s string) StrictPolicy {
	switch StrictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case StrictOff:
		return StrictOff
	case StrictEnforce:
		return StrictEnforce
	default:
		return StrictWarn
	}
}

// orderings are the six arrangements of the three (effect, curse) pairs, in
// the order they are tried.
var orderings = [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

// Checker evaluates relics against a PoolCatalog. It holds no mutable state.
type Checker struct {
	cat    PoolCatalog
	policy StrictPolicy
}

// NewChecker creates a Checker.
func NewChecker(cat PoolCatalog, policy StrictPolicy) *Checker {
	if policy == "" {
		policy = StrictWarn
	}
	return &Checker{cat: cat, policy: policy}
}

// Policy returns the strict policy in effect.
func (c *Checker) Policy() StrictPolicy { return c.policy }

// Catalog returns the underlying catalog.
func (c *Checker) Catalog() PoolCatalog { return c.cat }

// Result combines the hard check with the strict soft check.
type Result struct {
	Violation Violation
	// StrictInvalid is set under StrictWarn when the relic passes every rule
	// but no arrangement rolls each effect from its exact deep pool.
	StrictInvalid bool
}

// Evaluate runs CheckInvalidity and applies the strict policy.
func (c *Checker) Evaluate(id uint32, effects [6]uint32) Result {
	v := c.CheckInvalidity(id, effects)
	if !v.OK() || c.policy == StrictOff {
		return Result{Violation: v}
	}
	if !c.strictInvalid(id, effects) {
		return Result{Violation: v}
	}
	if c.policy == StrictEnforce {
		return Result{Violation: Violation{Reason: StrictPool, Slot: -1, Detail: c.StrictInvalidReason(id, effects)}}
	}
	return Result{Violation: v, StrictInvalid: true}
}

// CheckInvalidity evaluates the hard rules in order; the first failure wins.
func (c *Checker) CheckInvalidity(id uint32, effects [6]uint32) Violation {
	if resource.IsReserved(id) {
		return Violation{Reason: ReservedRange, Slot: -1}
	}
	if id < resource.MinRelicID || id > resource.MaxRelicID {
		return Violation{Reason: InvalidItem, Slot: -1}
	}
	def, ok := c.cat.Relic(id)
	if !ok {
		return Violation{Reason: UnknownRelic, Slot: -1}
	}

	if v := c.checkPools(def.Pools, effects); !v.OK() {
		return v
	}

	needed, supplied := 0, 0
	for _, e := range effects[:3] {
		if c.cat.NeedsCurse(e) {
			needed++
		}
	}
	for _, cu := range effects[3:] {
		if !isEmpty(cu) {
			supplied++
		}
	}
	if needed > supplied {
		return Violation{Reason: CurseShortage, Slot: -1, Detail: fmt.Sprintf("%d curses required, %d present", needed, supplied)}
	}

	seen := make(map[int32]struct{}, 6)
	for i, e := range effects {
		if isEmpty(e) {
			continue
		}
		g := c.cat.ConflictID(e)
		if g == resource.NoConflict {
			continue
		}
		if _, dup := seen[g]; dup {
			detail := DetailConflictEffect
			if i >= 3 {
				detail = DetailConflictCurse
			}
			return Violation{Reason: Conflict, Slot: i, Detail: detail}
		}
		seen[g] = struct{}{}
	}

	if !c.primariesSorted(effects) {
		return Violation{Reason: Unsorted, Slot: -1}
	}
	return valid
}

// checkPools runs the permutation search. When no arrangement fits, the
// reported slot comes from the first arrangement tried.
func (c *Checker) checkPools(pools [6]int32, effects [6]uint32) Violation {
	var first Violation
	for i, ord := range orderings {
		v := c.placement(pools, arrange(effects, ord))
		if v.OK() {
			return valid
		}
		if i == 0 {
			first = v
		}
	}
	return first
}

// placement checks one arrangement. Effects are checked before curses so the
// reported slot matches the 0-5 layout.
func (c *Checker) placement(pools [6]int32, e [6]uint32) Violation {
	for i := range 3 {
		eff, pool := e[i], pools[i]
		switch {
		case isEmpty(eff):
		case pool == resource.NoPool:
			return Violation{Reason: PoolMismatch, Slot: i, Detail: DetailEffectMustEmpty}
		case !c.cat.Rollable(pool, eff):
			return Violation{Reason: PoolMismatch, Slot: i, Detail: DetailEffectNotRolled}
		}
	}
	for i := range 3 {
		eff, curse, pool := e[i], e[i+3], pools[i+3]
		if pool == resource.NoPool {
			if !isEmpty(curse) {
				return Violation{Reason: PoolMismatch, Slot: i + 3, Detail: DetailCurseMustEmpty}
			}
			if c.cat.NeedsCurse(eff) {
				return Violation{Reason: PoolMismatch, Slot: i + 3, Detail: DetailCurseRequired}
			}
			continue
		}
		if !isEmpty(curse) && !c.cat.Rollable(pool, curse) {
			return Violation{Reason: PoolMismatch, Slot: i + 3, Detail: DetailCurseNotRolled}
		}
	}
	return valid
}

func (c *Checker) primariesSorted(effects [6]uint32) bool {
	return slices.IsSortedFunc(effects[:3], c.compareEffects)
}

// compareEffects orders by (sort key, id) with empty effects last.
func (c *Checker) compareEffects(a, b uint32) int {
	ka, kb := c.sortKey(a), c.sortKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (c *Checker) sortKey(e uint32) int64 {
	if isEmpty(e) {
		return resource.SortLast
	}
	return c.cat.SortKey(e)
}

func arrange(effects [6]uint32, ord [3]int) [6]uint32 {
	var out [6]uint32
	for i, j := range ord {
		out[i] = effects[j]
		out[i+3] = effects[j+3]
	}
	return out
}

// IsStrictInvalid reports whether a relic that passes every hard rule still
// has no arrangement in which each effect in a deep slot rolls from that exact
// deep pool. It ignores the policy.
func (c *Checker) IsStrictInvalid(id uint32, effects [6]uint32) bool {
	if !c.CheckInvalidity(id, effects).OK() {
		return false
	}
	return c.strictInvalid(id, effects)
}

func (c *Checker) strictInvalid(id uint32, effects [6]uint32) bool {
	def, ok := c.cat.Relic(id)
	if !ok || !hasDeepPool(def.Pools) {
		return false
	}
	for _, ord := range orderings {
		if c.deepStrict(def.Pools, arrange(effects, ord)) {
			return false
		}
	}
	return true
}

func (c *Checker) deepStrict(pools [6]int32, e [6]uint32) bool {
	for i := range 3 {
		if isEmpty(e[i]) || !resource.IsDeepPool(pools[i]) {
			continue
		}
		if !c.cat.RollableStrict(pools[i], e[i]) {
			return false
		}
	}
	return true
}

func hasDeepPool(pools [6]int32) bool {
	return slices.ContainsFunc(pools[:3], resource.IsDeepPool)
}

// StrictInvalidReason describes which effects miss their exact deep pool.
// It returns "" when the relic is not strict-invalid.
func (c *Checker) StrictInvalidReason(id uint32, effects [6]uint32) string {
	if !c.strictInvalid(id, effects) {
		return ""
	}
	def, _ := c.cat.Relic(id)
	deep := []int32{resource.DeepPoolCursed, resource.DeepPoolSingleA, resource.DeepPoolSingleB}
	var parts []string
	for i, e := range effects[:3] {
		pool := def.Pools[i]
		if isEmpty(e) || !resource.IsDeepPool(pool) || c.cat.RollableStrict(pool, e) {
			continue
		}
		var fits []string
		for _, p := range deep {
			if c.cat.RollableStrict(p, e) {
				fits = append(fits, fmt.Sprint(p))
			}
		}
		if len(fits) == 0 {
			parts = append(parts, fmt.Sprintf("effect %d has no weight in any deep pool", e))
			continue
		}
		parts = append(parts, fmt.Sprintf("effect %d needs pool %s but slot %d uses %d", e, strings.Join(fits, "/"), i+1, pool))
	}
	if len(parts) == 0 {
		return "no arrangement rolls every effect from its own pool"
	}
	return strings.Join(parts, "; ")
}
