package resource_test

import (
	"testing"

	"github.com/kasuganosora/relicsave/resource"
	"github.com/kasuganosora/relicsave/testutil"
	"github.com/stretchr/testify/assert"
)

func TestColor(t *testing.T) {
	assert.Equal(t, "Green", resource.Green.String())
	assert.Equal(t, "Unknown", resource.Color(9).String())
	assert.True(t, resource.White.Accepts(resource.Blue))
	assert.True(t, resource.Red.Accepts(resource.Red))
	assert.False(t, resource.Red.Accepts(resource.White))
}

func TestCatalog_Rollable(t *testing.T) {
	c := testutil.Catalog()

	assert.True(t, c.Rollable(testutil.PoolA, testutil.EffA))
	assert.True(t, c.Rollable(testutil.PoolA, testutil.EffAConf), "positive DLC weight rolls")
	assert.False(t, c.Rollable(testutil.PoolA, testutil.EffZero), "zero weight does not roll")
	assert.False(t, c.Rollable(testutil.PoolA, testutil.EffB))
	assert.False(t, c.Rollable(resource.NoPool, testutil.EffA))

	// Deep pools form one family in relaxed mode.
	assert.True(t, c.Rollable(resource.DeepPoolSingleB, testutil.EffDeep))
	assert.False(t, c.RollableStrict(resource.DeepPoolSingleB, testutil.EffDeep))
	assert.True(t, c.RollableStrict(resource.DeepPoolSingleA, testutil.EffDeep))
	assert.False(t, c.RollableStrict(resource.DeepPoolSingleA, testutil.EffCursed), "negative weight with zero DLC weight")
}

func TestCatalog_PoolEffects(t *testing.T) {
	c := testutil.Catalog()
	assert.Equal(t, []uint32{testutil.EffA, testutil.EffAB, testutil.EffAConf}, c.PoolEffects(testutil.PoolA))
	assert.Equal(t, []uint32{testutil.Curse1, testutil.Curse2}, c.PoolEffects(testutil.PoolCurse))
	assert.Empty(t, c.PoolEffects(999))
	assert.ElementsMatch(t, []int32{testutil.PoolA, testutil.PoolB}, c.EffectPools(testutil.EffAB))
}

func TestCatalog_NeedsCurse(t *testing.T) {
	c := testutil.Catalog()
	assert.True(t, c.NeedsCurse(testutil.EffCursed), "own dedicated pool is ignored")
	assert.False(t, c.NeedsCurse(testutil.EffDeep), "also rolls from a curse-free deep pool")
	assert.False(t, c.NeedsCurse(testutil.EffA))
	assert.False(t, c.NeedsCurse(testutil.Empty))
}

func TestCatalog_IsDeepOnly(t *testing.T) {
	c := testutil.Catalog()
	assert.True(t, c.IsDeepOnly(testutil.EffCursed))
	assert.True(t, c.IsDeepOnly(testutil.EffDeepB))
	assert.False(t, c.IsDeepOnly(testutil.EffA))
	assert.False(t, c.IsDeepOnly(testutil.Empty))
}

func TestCatalog_ConflictAndSort(t *testing.T) {
	c := testutil.Catalog()
	assert.Equal(t, c.ConflictID(testutil.EffA), c.ConflictID(testutil.EffAConf))
	assert.Equal(t, resource.NoConflict, c.ConflictID(testutil.Empty))
	assert.Equal(t, resource.NoConflict, c.ConflictID(123))

	assert.Equal(t, int64(10), c.SortKey(testutil.EffA))
	assert.Equal(t, resource.SortLast, c.SortKey(testutil.Empty))
	assert.Equal(t, resource.SortLast, c.SortKey(123))
}

func TestCatalog_Lookups(t *testing.T) {
	c := testutil.Catalog()
	r, ok := c.Relic(testutil.RelicTriple)
	assert.True(t, ok)
	assert.Equal(t, 3, r.EffectSlots())
	assert.Equal(t, 0, r.CurseSlots())

	_, ok = c.Relic(42)
	assert.False(t, ok)

	v, ok := c.Vessel(testutil.VesselHero2)
	assert.True(t, ok)
	assert.Equal(t, uint8(2), v.Hero)
	assert.False(t, v.Universal())

	ids := c.RelicIDs()
	assert.IsIncreasing(t, ids)
	assert.Len(t, ids, 8)
}

func TestGroups(t *testing.T) {
	g, ok := resource.GroupOf(150)
	assert.True(t, ok)
	assert.Equal(t, "store_102", g.Name)

	_, ok = resource.GroupOf(50)
	assert.False(t, ok)
	_, ok = resource.GroupOf(30036)
	assert.False(t, ok)

	assert.True(t, resource.IsReserved(20000))
	assert.True(t, resource.IsReserved(30035))
	assert.False(t, resource.IsReserved(19999))

	assert.True(t, resource.IsUnique(1500))
	assert.True(t, resource.IsUnique(19999))
	assert.False(t, resource.IsUnique(117))

	assert.True(t, resource.IsDeepRelicID(2000000))
	assert.True(t, resource.IsDeepRelicID(2019999))
	assert.False(t, resource.IsDeepRelicID(1009999))
}
