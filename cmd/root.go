// Package cmd implements the relicsave command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kasuganosora/relicsave/config"
	"github.com/kasuganosora/relicsave/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type appKey struct{}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "relicsave",
	Short: "Relic save-file editor",
	Long: `relicsave inspects and edits relics, vessels and loadout presets in a
decoded save file. It validates every relic against the game parameter
tables and can repair illegal ones.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			cfg.Server.Debug = true
		}
		logger, err := logging.New(cfg.Log, cfg.Server.Debug)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, appKey{}, &app{cfg: cfg, logger: logger}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if a := appFrom(cmd); a != nil {
			_ = a.logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().Bool("debug", false, "Development logging")
}
