package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/api/sse"
	"github.com/kasuganosora/relicsave/audit"
	"github.com/kasuganosora/relicsave/cache"
	"github.com/kasuganosora/relicsave/config"
	"github.com/kasuganosora/relicsave/game/session"
	"github.com/kasuganosora/relicsave/metrics"
	mw "github.com/kasuganosora/relicsave/middleware"
	"github.com/kasuganosora/relicsave/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps are the services the router wires into handlers. Audit, Metrics,
// Gatherer and Scheduler may be nil.
type Deps struct {
	Sessions  *session.Manager
	Cache     cache.Cache
	Events    *sse.Handler
	Audit     *audit.Service
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Scheduler *scheduler.Scheduler
	Logger    *zap.Logger
}

// NewRouter builds the HTTP API. ctx bounds background middleware work.
func NewRouter(ctx context.Context, cfg *config.Config, d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(mw.TraceID())
	r.Use(mw.Logger(d.Logger))
	r.Use(mw.Recovery(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "open_sessions": d.Sessions.Count()})
	})
	if d.Gatherer != nil {
		allow, err := mw.IPWhitelist(cfg.Server.MetricsAllow)
		if err != nil {
			return nil, err
		}
		r.GET("/metrics", allow, gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	ed := &editor{sm: d.Sessions, audit: d.Audit, events: d.Events, metrics: d.Metrics, logger: d.Logger}
	sessionH := NewSessionHandler(ed, d.Cache, cfg.Security, cfg.Editor.SessionIdle)
	relicH := NewRelicHandler(ed)
	loadoutH := NewLoadoutHandler(ed)
	adminH := NewAdminHandler(d.Sessions, d.Events, d.Scheduler, d.Logger)

	api := r.Group("/api")
	api.POST("/sessions", sessionH.Open)

	authed := api.Group("")
	authed.Use(mw.Auth(cfg.Security, d.Cache, cfg.Editor.SessionIdle))
	{
		authed.GET("/session", sessionH.Get)
		authed.POST("/session/save", sessionH.Save)
		authed.DELETE("/session", sessionH.Close)
		authed.PATCH("/session/currency", sessionH.Currency)
		authed.GET("/session/backups", sessionH.Backups)
		authed.GET("/session/history", sessionH.History)
		if d.Events != nil {
			authed.GET("/session/events", d.Events.ServeEvents)
		}

		authed.GET("/relics", relicH.List)
		authed.POST("/relics", relicH.Add)
		authed.POST("/relics/sweep", relicH.Sweep)
		authed.POST("/relics/repair", relicH.Repair)
		authed.GET("/relics/:handle", relicH.Get)
		authed.PATCH("/relics/:handle", relicH.Modify)
		authed.DELETE("/relics/:handle", relicH.Remove)
		authed.GET("/relics/:handle/repair", relicH.PlanRepair)
		authed.GET("/relics/:handle/suggestions", relicH.Suggestions)

		authed.GET("/heroes", loadoutH.Heroes)
		authed.GET("/heroes/:hero", loadoutH.Hero)
		authed.GET("/heroes/:hero/export", loadoutH.Export)
		authed.POST("/heroes/:hero/presets", loadoutH.PushPreset)
		authed.POST("/heroes/:hero/presets/:index/equip", loadoutH.EquipPreset)
		authed.PUT("/heroes/:hero/presets/:index/slots/:slot", loadoutH.ReplacePresetRelic)
		authed.PUT("/heroes/:hero/vessels/:vessel/slots/:slot", loadoutH.ReplaceVesselRelic)
	}

	admin := api.Group("/admin")
	admin.Use(AdminAuth(cfg.Server.AdminKey))
	{
		admin.GET("/status", adminH.Status)
		admin.GET("/sessions", adminH.ListSessions)
		admin.DELETE("/sessions/:id", adminH.CloseSession)
		admin.POST("/autosave", adminH.Autosave)
	}
	return r, nil
}
