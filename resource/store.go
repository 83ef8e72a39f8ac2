package resource

import (
	"context"
	"fmt"

	"github.com/kasuganosora/relicsave/model"
	"gorm.io/gorm"
)

const storeBatch = 500

// StoreDB replaces the catalog tables in db with t.
func StoreDB(ctx context.Context, db *gorm.DB, t Tables) error {
	effects := make([]model.EffectParam, 0, len(t.Effects))
	for _, e := range t.Effects {
		effects = append(effects, model.EffectParam{
			ID: e.ID, CompatibilityID: e.Conflict, AttachTextID: e.TextID, OverrideEffect: e.SortKey,
		})
	}
	pools := make([]model.PoolEntry, 0, len(t.Pools))
	for _, p := range t.Pools {
		pools = append(pools, model.PoolEntry{PoolID: p.Pool, EffectID: p.Effect, Weight: p.Weight, WeightDLC: p.WeightDLC})
	}
	relics := make([]model.RelicParam, 0, len(t.Relics))
	for _, r := range t.Relics {
		relics = append(relics, model.RelicParam{
			ID: r.ID, Color: uint8(r.Color), Deep: r.Deep,
			Effect1: r.Pools[0], Effect2: r.Pools[1], Effect3: r.Pools[2],
			Curse1: r.Pools[3], Curse2: r.Pools[4], Curse3: r.Pools[5],
		})
	}
	vessels := make([]model.VesselParam, 0, len(t.Vessels))
	for _, v := range t.Vessels {
		vessels = append(vessels, model.VesselParam{
			ID: v.ID, HeroType: v.Hero, GoodsID: v.GoodsID, UnlockFlag: v.UnlockFlag,
			Slot1: uint8(v.Slots[0]), Slot2: uint8(v.Slots[1]), Slot3: uint8(v.Slots[2]),
			DeepSlot1: uint8(v.Slots[3]), DeepSlot2: uint8(v.Slots[4]), DeepSlot3: uint8(v.Slots[5]),
		})
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&model.EffectParam{}, &model.PoolEntry{}, &model.RelicParam{}, &model.VesselParam{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("resource: clear catalog: %w", err)
			}
		}
		if len(effects) > 0 {
			if err := tx.CreateInBatches(effects, storeBatch).Error; err != nil {
				return fmt.Errorf("resource: store effects: %w", err)
			}
		}
		if len(pools) > 0 {
			if err := tx.CreateInBatches(pools, storeBatch).Error; err != nil {
				return fmt.Errorf("resource: store pools: %w", err)
			}
		}
		if len(relics) > 0 {
			if err := tx.CreateInBatches(relics, storeBatch).Error; err != nil {
				return fmt.Errorf("resource: store relics: %w", err)
			}
		}
		if len(vessels) > 0 {
			if err := tx.CreateInBatches(vessels, storeBatch).Error; err != nil {
				return fmt.Errorf("resource: store vessels: %w", err)
			}
		}
		return nil
	})
}

// LoadDB reads the catalog tables from db.
func LoadDB(ctx context.Context, db *gorm.DB) (*Catalog, Tables, error) {
	var (
		effects []model.EffectParam
		pools   []model.PoolEntry
		relics  []model.RelicParam
		vessels []model.VesselParam
	)
	q := db.WithContext(ctx)
	if err := q.Order("id").Find(&effects).Error; err != nil {
		return nil, Tables{}, fmt.Errorf("resource: load effects: %w", err)
	}
	if err := q.Order("id").Find(&pools).Error; err != nil {
		return nil, Tables{}, fmt.Errorf("resource: load pools: %w", err)
	}
	if err := q.Order("id").Find(&relics).Error; err != nil {
		return nil, Tables{}, fmt.Errorf("resource: load relics: %w", err)
	}
	if err := q.Order("id").Find(&vessels).Error; err != nil {
		return nil, Tables{}, fmt.Errorf("resource: load vessels: %w", err)
	}

	var t Tables
	for _, e := range effects {
		t.Effects = append(t.Effects, Effect{ID: e.ID, Conflict: e.CompatibilityID, TextID: e.AttachTextID, SortKey: e.OverrideEffect})
	}
	for _, p := range pools {
		t.Pools = append(t.Pools, PoolWeight{Pool: p.PoolID, Effect: p.EffectID, Weight: p.Weight, WeightDLC: p.WeightDLC})
	}
	for _, r := range relics {
		t.Relics = append(t.Relics, Relic{
			ID: r.ID, Color: Color(r.Color), Deep: r.Deep,
			Pools: [6]int32{r.Effect1, r.Effect2, r.Effect3, r.Curse1, r.Curse2, r.Curse3},
		})
	}
	for _, v := range vessels {
		t.Vessels = append(t.Vessels, Vessel{
			ID: v.ID, Hero: v.HeroType, GoodsID: v.GoodsID, UnlockFlag: v.UnlockFlag,
			Slots: [6]Color{
				Color(v.Slot1), Color(v.Slot2), Color(v.Slot3),
				Color(v.DeepSlot1), Color(v.DeepSlot2), Color(v.DeepSlot3),
			},
		})
	}
	return NewCatalog(t), t, nil
}
