package model_test

import (
	"testing"

	"github.com/kasuganosora/relicsave/model"
	"github.com/kasuganosora/relicsave/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	relic := &model.RelicParam{ID: 117, Color: 0, Effect1: 100, Effect2: 200, Effect3: -1, Curse1: -1, Curse2: -1, Curse3: -1}
	require.NoError(t, db.Create(relic).Error)
	var found model.RelicParam
	require.NoError(t, db.First(&found, 117).Error)
	assert.Equal(t, int32(200), found.Effect2)

	require.NoError(t, db.Create(&model.PoolEntry{PoolID: 100, EffectID: 7000100, Weight: 10, WeightDLC: -1}).Error)
	var pools []model.PoolEntry
	require.NoError(t, db.Where("pool_id = ?", 100).Find(&pools).Error)
	assert.Len(t, pools, 1)

	require.NoError(t, db.Create(&model.VesselParam{ID: 1000, HeroType: 1, GoodsID: 9600}).Error)
	require.NoError(t, db.Create(&model.EffectParam{ID: 7000100, CompatibilityID: 100}).Error)

	b := &model.SaveBackup{SessionID: "s1", Source: "/saves/a.sl2", Path: "/backups/a.sl2.1.bak", Size: 42}
	require.NoError(t, db.Create(b).Error)
	assert.Greater(t, b.ID, int64(0))
	assert.False(t, b.CreatedAt.IsZero())

	al := &model.AuditLog{
		TraceID: "trace-001", SessionID: "s1", Action: "relic.add",
		Request: datatypes.JSON(`{"kind":"normal"}`),
	}
	require.NoError(t, db.Create(al).Error)
	var got model.AuditLog
	require.NoError(t, db.First(&got, al.ID).Error)
	assert.JSONEq(t, `{"kind":"normal"}`, string(got.Request))
}
