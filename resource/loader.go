package resource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Parameter file names inside the param directory.
const (
	EffectParamFile = "AttachEffectParam.csv"
	PoolParamFile   = "AttachEffectTableParam.csv"
	RelicParamFile  = "EquipParamAntique.csv"
	VesselParamFile = "AntiqueStandParam.csv"
)

// Loader reads the parameter CSV exports from one directory.
type Loader struct {
	ParamDir string
	Tables   Tables
}

// NewLoader creates a Loader for the given parameter directory.
func NewLoader(paramDir string) *Loader {
	return &Loader{ParamDir: paramDir}
}

// Load reads every parameter file and builds the Catalog.
func (l *Loader) Load() (*Catalog, error) {
	loaders := []func() error{
		l.loadEffects,
		l.loadPools,
		l.loadRelics,
		l.loadVessels,
	}
	for _, fn := range loaders {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return NewCatalog(l.Tables), nil
}

func (l *Loader) path(file string) string {
	return filepath.Join(l.ParamDir, file)
}

func (l *Loader) loadEffects() (err error) {
	l.Tables.Effects, err = loadCSV(l.path(EffectParamFile),
		[]string{"ID", "compatibilityId", "attachTextId", "overrideEffectId"},
		func(r row) (Effect, error) {
			e := Effect{ID: r.uint32("ID"), Conflict: r.int32("compatibilityId"), TextID: r.int32("attachTextId")}
			e.SortKey = r.int64("overrideEffectId")
			return e, r.err
		})
	return err
}

func (l *Loader) loadPools() (err error) {
	l.Tables.Pools, err = loadCSV(l.path(PoolParamFile),
		[]string{"ID", "attachEffectId", "chanceWeight", "chanceWeight_dlc"},
		func(r row) (PoolWeight, error) {
			p := PoolWeight{
				Pool:      r.int32("ID"),
				Effect:    r.uint32("attachEffectId"),
				Weight:    r.int32("chanceWeight"),
				WeightDLC: r.int32("chanceWeight_dlc"),
			}
			return p, r.err
		})
	return err
}

func (l *Loader) loadRelics() (err error) {
	cols := []string{
		"ID", "relicColor", "isDeepRelic",
		"attachEffectTableId_1", "attachEffectTableId_2", "attachEffectTableId_3",
		"attachEffectTableId_curse1", "attachEffectTableId_curse2", "attachEffectTableId_curse3",
	}
	l.Tables.Relics, err = loadCSV(l.path(RelicParamFile), cols, func(r row) (Relic, error) {
		rel := Relic{ID: r.uint32("ID"), Color: Color(r.int32("relicColor")), Deep: r.int32("isDeepRelic") != 0}
		for i, c := range cols[3:] {
			rel.Pools[i] = r.int32(c)
		}
		rel.Deep = rel.Deep || IsDeepRelicID(rel.ID)
		return rel, r.err
	})
	return err
}

func (l *Loader) loadVessels() (err error) {
	slots := []string{"relicSlot1", "relicSlot2", "relicSlot3", "deepRelicSlot1", "deepRelicSlot2", "deepRelicSlot3"}
	cols := append([]string{"ID", "heroType", "goodsId", "unlockFlag"}, slots...)
	l.Tables.Vessels, err = loadCSV(l.path(VesselParamFile), cols, func(r row) (Vessel, error) {
		v := Vessel{
			ID:         r.uint32("ID"),
			Hero:       uint8(r.int32("heroType")),
			GoodsID:    r.uint32("goodsId"),
			UnlockFlag: r.uint32("unlockFlag"),
		}
		for i, c := range slots {
			v.Slots[i] = Color(r.int32(c))
		}
		return v, r.err
	})
	return err
}

// row gives typed access to one CSV record by column name. The first
// conversion error sticks in err.
type row struct {
	idx  map[string]int
	rec  []string
	line int
	err  error
}

func (r *row) int64(col string) int64 {
	if r.err != nil {
		return 0
	}
	raw := r.rec[r.idx[col]]
	if raw == "" {
		return -1
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.err = fmt.Errorf("line %d column %s: %w", r.line, col, err)
	}
	return v
}

func (r *row) int32(col string) int32 { return int32(r.int64(col)) }

func (r *row) uint32(col string) uint32 { return uint32(r.int64(col)) }

func loadCSV[T any](path string, required []string, build func(row) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("resource: open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("resource: read header %s: %w", path, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("resource: %s: missing column %q", path, col)
		}
	}

	var out []T
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("resource: parse %s: %w", path, err)
		}
		if len(rec) < len(header) {
			continue
		}
		v, err := build(row{idx: idx, rec: rec, line: line})
		if err != nil {
			return nil, fmt.Errorf("resource: parse %s: %w", path, err)
		}
		out = append(out, v)
	}
	return out, nil
}
