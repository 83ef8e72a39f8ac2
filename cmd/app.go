package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kasuganosora/relicsave/config"
	dbadapter "github.com/kasuganosora/relicsave/db"
	"github.com/kasuganosora/relicsave/game/session"
	"github.com/kasuganosora/relicsave/model"
	"github.com/kasuganosora/relicsave/resource"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Catalog sources.
const (
	SourceCSV = "csv"
	SourceDB  = "db"
)

func openDB(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	if cfg.Mode == dbadapter.ModeSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
	}
	db, err := dbadapter.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Mode))
	return db, nil
}

// loadCatalog reads the parameter tables from the configured source. db is
// only consulted for SourceDB.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig, db *gorm.DB, logger *zap.Logger) (*resource.Catalog, error) {
	var (
		cat *resource.Catalog
		err error
	)
	switch cfg.Source {
	case SourceCSV, "":
		cat, err = resource.NewLoader(cfg.ParamDir).Load()
	case SourceDB:
		if db == nil {
			return nil, fmt.Errorf("catalog: source %q needs a database", cfg.Source)
		}
		cat, _, err = resource.LoadDB(ctx, db)
	default:
		return nil, fmt.Errorf("catalog: unknown source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	if len(cat.RelicIDs()) == 0 {
		logger.Warn("catalog has no relics", zap.String("source", cfg.Source))
	}
	logger.Info("catalog loaded", zap.String("source", cfg.Source), zap.Int("relics", len(cat.RelicIDs())))
	return cat, nil
}

// offlineManager builds a session manager for one-shot commands. Backups are
// written to disk but not recorded in a database.
func offlineManager(ctx context.Context, a *app) (*session.Manager, error) {
	var db *gorm.DB
	if a.cfg.Catalog.Source == SourceDB {
		var err error
		if db, err = openDB(a.cfg.Database, a.logger); err != nil {
			return nil, err
		}
	}
	cat, err := loadCatalog(ctx, a.cfg.Catalog, db, a.logger)
	if err != nil {
		return nil, err
	}
	return session.NewManager(afero.NewOsFs(), cat, a.cfg.Editor, "", db, a.logger), nil
}
