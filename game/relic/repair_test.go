package relic

import (
	"testing"

	"github.com/kasuganosora/relicsave/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepair(t *testing.T) {
	c := newChecker(StrictWarn)
	tests := []struct {
		name    string
		id      uint32
		effects [6]uint32
		illegal bool
		want    Fix
		ok      bool
	}{
		{
			name:    "reorder",
			id:      testutil.RelicNormal,
			effects: [6]uint32{testutil.EffB, testutil.EffA, E, E, E, E},
			illegal: true,
			want:    Fix{ID: testutil.RelicNormal, Effects: [6]uint32{testutil.EffA, testutil.EffB, E, E, E, E}, Kind: FixReorder, Strict: true},
			ok:      true,
		},
		{
			name:    "sibling for pool mismatch",
			id:      testutil.RelicTriple,
			effects: [6]uint32{testutil.EffB, E, E, E, E, E},
			illegal: true,
			want:    Fix{ID: testutil.RelicNormal, Effects: [6]uint32{testutil.EffB, E, E, E, E, E}, Kind: FixSibling, Strict: true},
			ok:      true,
		},
		{
			name:    "sibling for strict-invalid",
			id:      testutil.RelicDeepStrict,
			effects: [6]uint32{testutil.EffDeepB, E, E, E, E, E},
			want:    Fix{ID: testutil.RelicDeepAlt, Effects: [6]uint32{testutil.EffDeepB, E, E, E, E, E}, Kind: FixSibling, Strict: true},
			ok:      true,
		},
		{
			name:    "relaxed fallback",
			id:      testutil.RelicDeepBase,
			effects: [6]uint32{E, testutil.EffDeepB, E, E, E, E},
			illegal: true,
			want:    Fix{ID: testutil.RelicDeepBase, Effects: [6]uint32{testutil.EffDeepB, E, E, E, E, E}, Kind: FixReorder},
			ok:      true,
		},
		{
			name:    "unique ids are left alone",
			id:      testutil.RelicUnique,
			effects: [6]uint32{E, testutil.EffA, E, E, E, E},
			illegal: true,
		},
		{
			name:    "reserved range",
			id:      20000,
			effects: [6]uint32{testutil.EffA, E, E, E, E, E},
			illegal: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, ok := c.Repair(tt.id, tt.effects, tt.illegal)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.want, fix)
			assert.True(t, c.CheckInvalidity(fix.ID, fix.Effects).OK())
		})
	}
}

func TestRepair_StrictInvalidNoFallback(t *testing.T) {
	c := newChecker(StrictWarn)
	// Blue deep relic with no Blue siblings: only the relaxed fallback could
	// apply, and strict-invalid relics never take it.
	_, ok := c.Repair(testutil.RelicDeepBase, [6]uint32{testutil.EffDeepB, E, E, E, E, E}, false)
	assert.False(t, ok)
}

func TestRepair_UnsortedOnly(t *testing.T) {
	c := newChecker(StrictWarn)
	effects := [6]uint32{testutil.EffDeep, testutil.EffCursed, E, testutil.Curse1, E, E}
	require.Equal(t, Unsorted, c.CheckInvalidity(testutil.RelicDeepBase, effects).Reason)

	fix, ok := c.Repair(testutil.RelicDeepBase, effects, true)
	require.True(t, ok)
	assert.Equal(t, Fix{
		ID:      testutil.RelicDeepBase,
		Effects: [6]uint32{testutil.EffCursed, testutil.EffDeep, E, testutil.Curse1, E, E},
		Kind:    FixReorder,
		Strict:  true,
	}, fix)
	assert.True(t, c.CheckInvalidity(fix.ID, fix.Effects).OK())
	assert.False(t, c.IsStrictInvalid(fix.ID, fix.Effects))
}
