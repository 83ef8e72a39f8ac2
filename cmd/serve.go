package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/api/rest"
	"github.com/kasuganosora/relicsave/api/sse"
	"github.com/kasuganosora/relicsave/audit"
	"github.com/kasuganosora/relicsave/cache"
	"github.com/kasuganosora/relicsave/game/session"
	"github.com/kasuganosora/relicsave/metrics"
	"github.com/kasuganosora/relicsave/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor HTTP API",
	Long: `Start the editor HTTP API. Clients open a save file to get a session
token, then list, edit, validate and repair relics and loadouts through it.

Examples:
  relicsave serve --config config/config.yaml
  relicsave serve --port 9090 --debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			a.cfg.Server.Port = port
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, a)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides server.port)")
}

func runServe(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}
	if cfg.Security.JWTSecret == "" {
		return errors.New("security.jwt_secret is required")
	}

	db, err := openDB(cfg.Database, logger)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(ctx, cfg.Catalog, db, logger)
	if err != nil {
		return err
	}

	c, err := cache.NewCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	pubsub, err := cache.NewPubSub(cfg.Cache)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	sm := session.NewManager(afero.NewOsFs(), cat, cfg.Editor, cfg.Server.SaveRoot, db, logger)
	events := sse.NewHandler(pubsub, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg, sm.Count)

	sched := scheduler.New(logger)
	defer sched.Stop()
	scheduler.RegisterEditorJobs(sched, sm, cfg.Editor, func(ids []string) {
		for _, id := range ids {
			pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := events.Publish(pctx, id, sse.Event{Type: sse.EventClosed, Data: gin.H{"reason": "idle"}}); err != nil {
				logger.Warn("publish session close failed", zap.String("session_id", id), zap.Error(err))
			}
			cancel()
		}
	}, logger)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := rest.NewRouter(ctx, cfg, rest.Deps{
		Sessions:  sm,
		Cache:     c,
		Events:    events,
		Audit:     auditSvc,
		Metrics:   m,
		Gatherer:  reg,
		Scheduler: sched,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Editor.AutosaveEvery <= 0 {
		if open := sm.Count(); open > 0 {
			logger.Warn("open sessions discarded on shutdown", zap.Int("sessions", open))
		}
		return nil
	}
	n, err := sm.AutosaveDirty(context.Background())
	if n > 0 {
		logger.Info("saved sessions on shutdown", zap.Int("saved", n))
	}
	return err
}
