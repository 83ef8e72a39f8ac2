package relic

import (
	"errors"
	"testing"

	"github.com/kasuganosora/relicsave/game/saveerr"
	"github.com/kasuganosora/relicsave/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const E = testutil.Empty

func newChecker(policy StrictPolicy) *Checker {
	return NewChecker(testutil.Catalog(), policy)
}

func TestCheckInvalidity_ScenarioA(t *testing.T) {
	c := newChecker(StrictWarn)
	v := c.CheckInvalidity(testutil.RelicDeepCursed, [6]uint32{testutil.EffCursed, testutil.EffDeep, 0, testutil.Curse1, 0, 0})
	assert.True(t, v.OK(), v.String())
}

func TestCheckInvalidity_ScenarioB(t *testing.T) {
	c := newChecker(StrictWarn)
	v := c.CheckInvalidity(testutil.RelicDeepCursed, [6]uint32{testutil.EffCursed, testutil.EffDeep, 0, 0, 0, 0})
	assert.Equal(t, CurseShortage, v.Reason)
	assert.True(t, v.IsCurse())
}

func TestCheckInvalidity_IDRanges(t *testing.T) {
	c := newChecker(StrictWarn)
	none := [6]uint32{E, E, E, E, E, E}
	assert.Equal(t, ReservedRange, c.CheckInvalidity(20000, none).Reason)
	assert.Equal(t, ReservedRange, c.CheckInvalidity(30035, none).Reason)
	assert.Equal(t, InvalidItem, c.CheckInvalidity(99, none).Reason)
	assert.Equal(t, InvalidItem, c.CheckInvalidity(2013323, none).Reason)
	assert.Equal(t, UnknownRelic, c.CheckInvalidity(150, none).Reason)
}

func TestCheckInvalidity_PoolMismatch(t *testing.T) {
	c := newChecker(StrictWarn)
	tests := []struct {
		name    string
		id      uint32
		effects [6]uint32
		slot    int
		detail  string
	}{
		{"effect not rollable", testutil.RelicTriple, [6]uint32{testutil.EffB, E, E, E, E, E}, 0, DetailEffectNotRolled},
		{"zero weight", testutil.RelicTriple, [6]uint32{testutil.EffZero, E, E, E, E, E}, 0, DetailEffectNotRolled},
		{"disabled effect slot", testutil.RelicBlue, [6]uint32{testutil.EffB, testutil.EffAB, E, E, E, E}, 1, DetailEffectMustEmpty},
		{"disabled curse slot", testutil.RelicNormal, [6]uint32{testutil.EffA, testutil.EffB, E, testutil.Curse1, E, E}, 3, DetailCurseMustEmpty},
		{"curse needed without curse pool", testutil.RelicDeepCursed, [6]uint32{testutil.EffDeep, testutil.EffCursed, E, testutil.Curse1, E, E}, 4, DetailCurseRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.CheckInvalidity(tt.id, tt.effects)
			assert.Equal(t, PoolMismatch, v.Reason)
			assert.Equal(t, tt.slot, v.Slot)
			assert.Equal(t, tt.detail, v.Detail)
		})
	}
}

func TestCheckInvalidity_DLCWeightRolls(t *testing.T) {
	c := newChecker(StrictWarn)
	v := c.CheckInvalidity(testutil.RelicTriple, [6]uint32{testutil.EffAConf, E, E, E, E, E})
	assert.True(t, v.OK(), v.String())
}

func TestCheckInvalidity_Conflict(t *testing.T) {
	c := newChecker(StrictWarn)

	v := c.CheckInvalidity(testutil.RelicTriple, [6]uint32{testutil.EffA, testutil.EffAConf, E, E, E, E})
	assert.Equal(t, Conflict, v.Reason)
	assert.Equal(t, 1, v.Slot)
	assert.Equal(t, DetailConflictEffect, v.Detail)
	assert.False(t, v.IsCurse())

	v = c.CheckInvalidity(testutil.RelicDeepBase, [6]uint32{testutil.EffCursed, testutil.EffDeep, E, testutil.Curse1, testutil.Curse1, E})
	assert.Equal(t, Conflict, v.Reason)
	assert.Equal(t, 4, v.Slot)
	assert.True(t, v.IsCurse())
}

func TestCheckInvalidity_Unsorted(t *testing.T) {
	c := newChecker(StrictWarn)
	assert.Equal(t, Unsorted, c.CheckInvalidity(testutil.RelicNormal, [6]uint32{testutil.EffB, testutil.EffA, E, E, E, E}).Reason)
	assert.Equal(t, Unsorted, c.CheckInvalidity(testutil.RelicNormal, [6]uint32{E, testutil.EffA, E, E, E, E}).Reason)
	assert.True(t, c.CheckInvalidity(testutil.RelicNormal, [6]uint32{testutil.EffA, testutil.EffB, E, E, E, E}).OK())
}

func TestCheckInvalidity_PermutationSymmetry(t *testing.T) {
	c := newChecker(StrictWarn)
	cases := []struct {
		id      uint32
		effects [6]uint32
	}{
		{testutil.RelicDeepCursed, [6]uint32{testutil.EffCursed, testutil.EffDeep, E, testutil.Curse1, E, E}},
		{testutil.RelicDeepCursed, [6]uint32{testutil.EffCursed, testutil.EffDeep, E, E, E, E}},
		{testutil.RelicTriple, [6]uint32{testutil.EffB, E, E, E, E, E}},
		{testutil.RelicTriple, [6]uint32{testutil.EffA, testutil.EffAConf, E, E, E, E}},
		{testutil.RelicNormal, [6]uint32{testutil.EffA, testutil.EffB, E, testutil.Curse1, E, E}},
		{testutil.RelicDeepBase, [6]uint32{testutil.EffCursed, testutil.EffDeep, E, testutil.Curse1, testutil.Curse1, E}},
	}
	order := func(r Reason) Reason {
		if r == Unsorted {
			return None
		}
		return r
	}
	for _, tc := range cases {
		base := order(c.CheckInvalidity(tc.id, tc.effects).Reason)
		for _, ord := range orderings {
			got := c.CheckInvalidity(tc.id, arrange(tc.effects, ord))
			assert.Equal(t, base, order(got.Reason), "relic %d ordering %v", tc.id, ord)
		}
	}
}

func TestStrict(t *testing.T) {
	effects := [6]uint32{testutil.EffDeepB, E, E, E, E, E}

	c := newChecker(StrictWarn)
	assert.True(t, c.IsStrictInvalid(testutil.RelicDeepStrict, effects))
	assert.Contains(t, c.StrictInvalidReason(testutil.RelicDeepStrict, effects), "needs pool 2200000")
	res := c.Evaluate(testutil.RelicDeepStrict, effects)
	assert.True(t, res.Violation.OK())
	assert.True(t, res.StrictInvalid)

	res = newChecker(StrictEnforce).Evaluate(testutil.RelicDeepStrict, effects)
	assert.Equal(t, StrictPool, res.Violation.Reason)
	assert.False(t, res.StrictInvalid)

	res = newChecker(StrictOff).Evaluate(testutil.RelicDeepStrict, effects)
	assert.True(t, res.Violation.OK())
	assert.False(t, res.StrictInvalid)

	// Exact deep pools in some arrangement.
	assert.False(t, c.IsStrictInvalid(testutil.RelicDeepCursed, [6]uint32{testutil.EffCursed, testutil.EffDeep, E, testutil.Curse1, E, E}))
	assert.Empty(t, c.StrictInvalidReason(testutil.RelicDeepCursed, [6]uint32{testutil.EffCursed, testutil.EffDeep, E, testutil.Curse1, E, E}))
	// No deep pools at all.
	assert.False(t, c.IsStrictInvalid(testutil.RelicNormal, [6]uint32{testutil.EffA, E, E, E, E, E}))
	// Illegal relics are never strict-invalid.
	assert.False(t, c.IsStrictInvalid(testutil.RelicDeepStrict, [6]uint32{E, testutil.EffDeepB, E, E, E, E}))
}

func TestParseStrictPolicy(t *testing.T) {
	assert.Equal(t, StrictOff, ParseStrictPolicy("off"))
	assert.Equal(t, StrictEnforce, ParseStrictPolicy(" Enforce "))
	assert.Equal(t, StrictWarn, ParseStrictPolicy("warn"))
	assert.Equal(t, StrictWarn, ParseStrictPolicy(""))
	assert.Equal(t, StrictWarn, NewChecker(testutil.Catalog(), "").Policy())
}

func TestViolation_Err(t *testing.T) {
	assert.NoError(t, valid.Err())

	err := Violation{Reason: PoolMismatch, Slot: 2, Detail: DetailEffectNotRolled}.Err()
	var ve *saveerr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "pool-mismatch", ve.Code)
	assert.Equal(t, 2, ve.Slot)
	assert.Equal(t, "pool-mismatch/effect-not-rollable@2", Violation{Reason: PoolMismatch, Slot: 2, Detail: DetailEffectNotRolled}.String())
}
