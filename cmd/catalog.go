package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/kasuganosora/relicsave/resource"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the game parameter catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [param-dir]",
	Short: "Load parameter CSVs into the database",
	Long: `Read the parameter CSV exports and replace the catalog tables in the
configured database, so servers can run with catalog.source=db. The
directory defaults to catalog.param_dir.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		dir := a.cfg.Catalog.ParamDir
		if len(args) == 1 {
			dir = args[0]
		}
		db, err := openDB(a.cfg.Database, a.logger)
		if err != nil {
			return err
		}
		return runCatalogImport(cmd.Context(), cmd.OutOrStdout(), db, dir, a.logger)
	},
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print table sizes of the configured catalog source",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		var db *gorm.DB
		if a.cfg.Catalog.Source == SourceDB {
			var err error
			if db, err = openDB(a.cfg.Database, a.logger); err != nil {
				return err
			}
		}
		cat, err := loadCatalog(cmd.Context(), a.cfg.Catalog, db, a.logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "source %s: %d relics\n", a.cfg.Catalog.Source, len(cat.RelicIDs()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogImportCmd, catalogStatsCmd)
}

func runCatalogImport(ctx context.Context, w io.Writer, db *gorm.DB, dir string, logger *zap.Logger) error {
	l := resource.NewLoader(dir)
	if _, err := l.Load(); err != nil {
		return err
	}
	if err := resource.StoreDB(ctx, db, l.Tables); err != nil {
		return err
	}
	t := l.Tables
	logger.Info("catalog imported", zap.String("dir", dir),
		zap.Int("effects", len(t.Effects)), zap.Int("pools", len(t.Pools)),
		zap.Int("relics", len(t.Relics)), zap.Int("vessels", len(t.Vessels)))
	fmt.Fprintf(w, "imported %d effects, %d pool rows, %d relics, %d vessels\n",
		len(t.Effects), len(t.Pools), len(t.Relics), len(t.Vessels))
	return nil
}
