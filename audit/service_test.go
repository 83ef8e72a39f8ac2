package audit

import (
	"context"
	"testing"

	"github.com/kasuganosora/relicsave/game/saveerr"
	"github.com/kasuganosora/relicsave/model"
	"github.com/kasuganosora/relicsave/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	svc.Log(Entry{
		TraceID:    "trace-123",
		SessionID:  "s1",
		SavePath:   "/saves/user.sl2",
		Action:     "relic.modify",
		Handle:     0xC0800060,
		Request:    map[string]interface{}{"effects": []uint32{7000100}},
		Response:   map[string]bool{"ok": true},
		IP:         "127.0.0.1",
		DurationMs: 42,
	})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	assert.Equal(t, "relic.modify", logs[0].Action)
	assert.Equal(t, uint32(0xC0800060), logs[0].Handle)
	assert.JSONEq(t, `{"effects":[7000100]}`, string(logs[0].Request))
	assert.Empty(t, logs[0].Code)
	assert.Equal(t, 42, logs[0].DurationMs)
}

func TestLog_ErrorCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	svc.Log(Entry{
		SessionID: "s1",
		Action:    "preset.push",
		Hero:      3,
		Err:       saveerr.Invalid("preset-duplicate", -1, "matches preset 0"),
	})
	svc.Stop(context.Background())

	var got model.AuditLog
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "preset-duplicate", got.Code)
	assert.Contains(t, got.Error, "matches preset 0")
	assert.Equal(t, uint8(3), got.Hero)
	assert.JSONEq(t, "null", string(got.Response))
}

func TestLog_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	for i := 0; i < 250; i++ {
		svc.Log(Entry{SessionID: "s2", Action: "relic.sweep"})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(250), count)
}

func TestRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	for _, a := range []string{"relic.add", "relic.remove", "session.save"} {
		svc.Log(Entry{SessionID: "s3", Action: a})
	}
	svc.Log(Entry{SessionID: "other", Action: "relic.add"})
	svc.Stop(context.Background())

	logs, err := svc.Recent(context.Background(), "s3", 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "session.save", logs[0].Action)
	assert.Equal(t, "relic.remove", logs[1].Action)
}

func TestStop_Idempotent(t *testing.T) {
	svc := New(testutil.SetupTestDB(t), zap.NewNop())
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}

func TestLog_DropsWhenFull(t *testing.T) {
	svc := New(testutil.SetupTestDB(t), zap.NewNop())
	for i := 0; i < queueSize+10; i++ {
		svc.Log(Entry{Action: "flood"})
	}
	svc.Stop(context.Background())
}
