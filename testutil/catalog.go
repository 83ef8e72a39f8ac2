package testutil

import (
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/resource"
)

// Fixture effect ids.
const (
	EffA      uint32 = 7000100 // pool 100
	EffB      uint32 = 7000200 // pool 200
	EffAB     uint32 = 7000300 // pools 100 and 200
	EffAConf  uint32 = 7000400 // pool 100, same conflict group as EffA
	EffZero   uint32 = 7000500 // listed in pool 100 with zero weight
	EffCursed uint32 = 7100000 // deep pool 2000000 only, needs a curse
	EffDeep   uint32 = 7100100 // deep pools 2000000 and 2100000
	EffDeepB  uint32 = 7100200 // deep pool 2200000 only
	Curse1    uint32 = 6000100 // curse pool 3000000
	Curse2    uint32 = 6000200 // curse pool 3000000
	Empty            = record.EmptyEffect
)

// Fixture pools and relic ids.
const (
	PoolA     int32 = 100
	PoolB     int32 = 200
	PoolCurse int32 = 3000000

	RelicNormal     uint32 = 117     // Red [A B - | - - -]
	RelicTriple     uint32 = 118     // Red [A A A | - - -]
	RelicBlue       uint32 = 119     // Blue [B - - | - - -]
	RelicUnique     uint32 = 1500    // Red [A - - | - - -]
	RelicDeepBase   uint32 = 2000000 // Blue [D D D | C C C]
	RelicDeepCursed uint32 = 2000001 // Green [D DA - | C - -]
	RelicDeepStrict uint32 = 2000002 // Green [D D D | C C C]
	RelicDeepAlt    uint32 = 2000003 // Green [DB - - | - - -]

	VesselHero1    uint32 = 1000
	VesselHero1Alt uint32 = 1001
	VesselHero2    uint32 = 2000
	VesselShared   uint32 = 19000
	VesselRun      uint32 = 19100 // universal vessel stored in the vessel run
)

// CatalogTables returns the small parameter set shared by tests.
func CatalogTables() resource.Tables {
	const deep, deepA, deepB = resource.DeepPoolCursed, resource.DeepPoolSingleA, resource.DeepPoolSingleB
	no := resource.NoPool
	return resource.Tables{
		Effects: []resource.Effect{
			{ID: EffA, Conflict: 100, TextID: 1, SortKey: 10},
			{ID: EffB, Conflict: 200, TextID: 2, SortKey: 20},
			{ID: EffAB, Conflict: 300, TextID: 3, SortKey: 30},
			{ID: EffAConf, Conflict: 100, TextID: 4, SortKey: 15},
			{ID: EffZero, Conflict: 110, TextID: 5, SortKey: 25},
			{ID: EffCursed, Conflict: 400, TextID: 6, SortKey: 40},
			{ID: EffDeep, Conflict: 500, TextID: 7, SortKey: 50},
			{ID: EffDeepB, Conflict: 600, TextID: 8, SortKey: 60},
			{ID: Curse1, Conflict: 1000, TextID: 9, SortKey: 5},
			{ID: Curse2, Conflict: 1001, TextID: 10, SortKey: 6},
		},
		Pools: []resource.PoolWeight{
			{Pool: PoolA, Effect: EffA, Weight: 10, WeightDLC: -1},
			{Pool: PoolA, Effect: EffAB, Weight: 10, WeightDLC: -1},
			{Pool: PoolA, Effect: EffAConf, Weight: 0, WeightDLC: 5},
			{Pool: PoolA, Effect: EffZero, Weight: 0, WeightDLC: -1},
			{Pool: PoolB, Effect: EffB, Weight: 10, WeightDLC: -1},
			{Pool: PoolB, Effect: EffAB, Weight: 10, WeightDLC: -1},
			{Pool: deep, Effect: EffCursed, Weight: 10, WeightDLC: -1},
			{Pool: deep, Effect: EffDeep, Weight: 10, WeightDLC: -1},
			{Pool: deepA, Effect: EffDeep, Weight: 10, WeightDLC: -1},
			{Pool: deepA, Effect: EffCursed, Weight: -65536, WeightDLC: 0},
			{Pool: deepB, Effect: EffDeepB, Weight: 10, WeightDLC: -1},
			{Pool: int32(EffCursed), Effect: EffCursed, Weight: 10, WeightDLC: -1},
			{Pool: PoolCurse, Effect: Curse1, Weight: 10, WeightDLC: -1},
			{Pool: PoolCurse, Effect: Curse2, Weight: 10, WeightDLC: -1},
		},
		Relics: []resource.Relic{
			{ID: RelicNormal, Color: resource.Red, Pools: [6]int32{PoolA, PoolB, no, no, no, no}},
			{ID: RelicTriple, Color: resource.Red, Pools: [6]int32{PoolA, PoolA, PoolA, no, no, no}},
			{ID: RelicBlue, Color: resource.Blue, Pools: [6]int32{PoolB, no, no, no, no, no}},
			{ID: RelicUnique, Color: resource.Red, Pools: [6]int32{PoolA, no, no, no, no, no}},
			{ID: RelicDeepBase, Color: resource.Blue, Deep: true, Pools: [6]int32{deep, deep, deep, PoolCurse, PoolCurse, PoolCurse}},
			{ID: RelicDeepCursed, Color: resource.Green, Deep: true, Pools: [6]int32{deep, deepA, no, PoolCurse, no, no}},
			{ID: RelicDeepStrict, Color: resource.Green, Deep: true, Pools: [6]int32{deep, deep, deep, PoolCurse, PoolCurse, PoolCurse}},
			{ID: RelicDeepAlt, Color: resource.Green, Deep: true, Pools: [6]int32{deepB, no, no, no, no, no}},
		},
		Vessels: []resource.Vessel{
			{ID: VesselHero1, Hero: 1, GoodsID: 9600, Slots: [6]resource.Color{resource.Red, resource.Red, resource.White, resource.Green, resource.White, resource.Blue}},
			{ID: VesselHero1Alt, Hero: 1, GoodsID: 9601, Slots: [6]resource.Color{resource.Blue, resource.Blue, resource.Blue, resource.Blue, resource.Blue, resource.Blue}},
			{ID: VesselHero2, Hero: 2, GoodsID: 9603, Slots: [6]resource.Color{resource.Red, resource.Blue, resource.Yellow, resource.Green, resource.White, resource.White}},
			{ID: VesselShared, Hero: resource.UniversalHero, GoodsID: 9900, Slots: [6]resource.Color{resource.White, resource.White, resource.White, resource.White, resource.White, resource.White}},
			{ID: 19001, Hero: resource.UniversalHero, GoodsID: 9901},
			{ID: 19002, Hero: resource.UniversalHero, GoodsID: 9902},
			{ID: 19010, Hero: resource.UniversalHero, GoodsID: 9910},
			{ID: VesselRun, Hero: resource.UniversalHero, GoodsID: 9920},
		},
	}
}

// Catalog builds the fixture catalog.
func Catalog() *resource.Catalog {
	return resource.NewCatalog(CatalogTables())
}
