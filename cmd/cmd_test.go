package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/kasuganosora/relicsave/config"
	"github.com/kasuganosora/relicsave/game/item"
	"github.com/kasuganosora/relicsave/game/session"
	"github.com/kasuganosora/relicsave/resource"
	"github.com/kasuganosora/relicsave/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const memSave = "/saves/user.sl2"

func i64(v int64) string { return strconv.FormatInt(v, 10) }

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
}

// writeTables exports t in the parameter CSV layout the loader reads.
func writeTables(t *testing.T, dir string, tables resource.Tables) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))

	rows := [][]string{{"ID", "compatibilityId", "attachTextId", "overrideEffectId"}}
	for _, e := range tables.Effects {
		rows = append(rows, []string{i64(int64(e.ID)), i64(int64(e.Conflict)), i64(int64(e.TextID)), i64(e.SortKey)})
	}
	writeCSV(t, filepath.Join(dir, resource.EffectParamFile), rows)

	rows = [][]string{{"ID", "attachEffectId", "chanceWeight", "chanceWeight_dlc"}}
	for _, p := range tables.Pools {
		rows = append(rows, []string{i64(int64(p.Pool)), i64(int64(p.Effect)), i64(int64(p.Weight)), i64(int64(p.WeightDLC))})
	}
	writeCSV(t, filepath.Join(dir, resource.PoolParamFile), rows)

	rows = [][]string{{
		"ID", "relicColor", "isDeepRelic",
		"attachEffectTableId_1", "attachEffectTableId_2", "attachEffectTableId_3",
		"attachEffectTableId_curse1", "attachEffectTableId_curse2", "attachEffectTableId_curse3",
	}}
	for _, r := range tables.Relics {
		deep := "0"
		if r.Deep {
			deep = "1"
		}
		row := []string{i64(int64(r.ID)), i64(int64(r.Color)), deep}
		for _, p := range r.Pools {
			row = append(row, i64(int64(p)))
		}
		rows = append(rows, row)
	}
	writeCSV(t, filepath.Join(dir, resource.RelicParamFile), rows)

	rows = [][]string{{
		"ID", "heroType", "goodsId", "unlockFlag",
		"relicSlot1", "relicSlot2", "relicSlot3", "deepRelicSlot1", "deepRelicSlot2", "deepRelicSlot3",
	}}
	for _, v := range tables.Vessels {
		row := []string{i64(int64(v.ID)), i64(int64(v.Hero)), i64(int64(v.GoodsID)), i64(int64(v.UnlockFlag))}
		for _, c := range v.Slots {
			row = append(row, i64(int64(c)))
		}
		rows = append(rows, row)
	}
	writeCSV(t, filepath.Join(dir, resource.VesselParamFile), rows)
}

func memManager(t *testing.T) (*session.Manager, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, memSave, testutil.DefaultSave(), 0o644))
	cfg := config.EditorConfig{StrictPolicy: "warn", AutoBackup: true, BackupDir: "/saves/backups"}
	return session.NewManager(fs, testutil.Catalog(), cfg, "", nil, zap.NewNop()), fs
}

func TestRunCheck_Text(t *testing.T) {
	m, _ := memManager(t)
	var out bytes.Buffer

	err := runCheck(&out, m, memSave, checkOptions{})
	require.ErrorIs(t, err, errFlagged)

	s := out.String()
	assert.Contains(t, s, `player "Nightfarer", 6 relics, 2 illegal`)
	assert.Contains(t, s, testutil.HMismatch.String())
	assert.Contains(t, s, string(item.StrictInvalid))
	assert.NotContains(t, s, testutil.HNormal.String())
	assert.Zero(t, m.Count(), "check closes its session")
}

func TestRunCheck_JSONAll(t *testing.T) {
	m, _ := memManager(t)
	var out bytes.Buffer

	require.ErrorIs(t, runCheck(&out, m, memSave, checkOptions{JSON: true, All: true}), errFlagged)

	var rep checkReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, "Nightfarer", rep.Summary.Player)
	assert.Equal(t, 2, rep.Summary.Relics.Illegal)
	assert.Len(t, rep.Relics, 6)
}

func TestRunCheck_MissingFile(t *testing.T) {
	m, _ := memManager(t)
	err := runCheck(&bytes.Buffer{}, m, "/saves/none.sl2", checkOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, errFlagged)
}

func TestRunFix(t *testing.T) {
	m, fs := memManager(t)
	var out bytes.Buffer

	require.NoError(t, runFix(context.Background(), &out, m, memSave, false))
	assert.Contains(t, out.String(), "2 repaired, 1 without a fix")
	assert.Contains(t, out.String(), "no fix for "+testutil.HUniqueDup.String())
	assert.Contains(t, out.String(), "wrote "+memSave)

	backups, err := afero.Glob(fs, "/saves/backups/user.sl2.*.bak")
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	out.Reset()
	require.ErrorIs(t, runCheck(&out, m, memSave, checkOptions{}), errFlagged)
	assert.Contains(t, out.String(), "6 relics, 1 illegal,")
}

func TestRunFix_DryRun(t *testing.T) {
	m, fs := memManager(t)
	var out bytes.Buffer

	require.NoError(t, runFix(context.Background(), &out, m, memSave, true))
	assert.Contains(t, out.String(), "dry run")

	data, err := afero.ReadFile(fs, memSave)
	require.NoError(t, err)
	assert.Equal(t, testutil.DefaultSave(), data)
}

func TestLoadCatalog_Sources(t *testing.T) {
	ctx := context.Background()
	_, err := loadCatalog(ctx, config.CatalogConfig{Source: "yaml"}, nil, zap.NewNop())
	assert.ErrorContains(t, err, `unknown source "yaml"`)

	_, err = loadCatalog(ctx, config.CatalogConfig{Source: SourceDB}, nil, zap.NewNop())
	assert.ErrorContains(t, err, "needs a database")

	dir := filepath.Join(t.TempDir(), "param")
	writeTables(t, dir, testutil.CatalogTables())
	cat, err := loadCatalog(ctx, config.CatalogConfig{Source: SourceCSV, ParamDir: dir}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, testutil.Catalog().RelicIDs(), cat.RelicIDs())
	assert.True(t, cat.NeedsCurse(testutil.EffCursed))
}

func TestRunCatalogImport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "param")
	writeTables(t, dir, testutil.CatalogTables())
	db := testutil.SetupTestDB(t)
	var out bytes.Buffer

	require.NoError(t, runCatalogImport(context.Background(), &out, db, dir, zap.NewNop()))
	assert.Equal(t, "imported 10 effects, 14 pool rows, 8 relics, 8 vessels\n", out.String())

	cat, err := loadCatalog(context.Background(), config.CatalogConfig{Source: SourceDB}, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, testutil.Catalog().PoolEffects(testutil.PoolA), cat.PoolEffects(testutil.PoolA))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_ImportFixCheck(t *testing.T) {
	dir := t.TempDir()
	param := filepath.Join(dir, "param")
	writeTables(t, param, testutil.CatalogTables())
	save := filepath.Join(dir, "USER_DATA000")
	require.NoError(t, os.WriteFile(save, testutil.DefaultSave(), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf(`
log:
  level: error
database:
  mode: sqlite
  sqlite_path: %s
catalog:
  source: db
  param_dir: %s
editor:
  backup_dir: %s
`, filepath.Join(dir, "data", "relicsave.db"), param, filepath.Join(dir, "backups"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	out, err := execute(t, "--config", cfgPath, "catalog", "import")
	require.NoError(t, err, out)
	assert.Contains(t, out, "8 relics")

	out, err = execute(t, "--config", cfgPath, "fix", save)
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 repaired")

	backups, err := filepath.Glob(filepath.Join(dir, "backups", "USER_DATA000.*.bak"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	out, err = execute(t, "--config", cfgPath, "check", save)
	require.ErrorIs(t, err, errFlagged)
	assert.Contains(t, out, "1 illegal")
}
