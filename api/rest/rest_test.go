package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/api/sse"
	"github.com/kasuganosora/relicsave/audit"
	"github.com/kasuganosora/relicsave/cache"
	"github.com/kasuganosora/relicsave/config"
	"github.com/kasuganosora/relicsave/game/session"
	"github.com/kasuganosora/relicsave/metrics"
	"github.com/kasuganosora/relicsave/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	savePath = "/saves/user.sl2"
	adminKey = "admin-key"
)

type harness struct {
	router *gin.Engine
	fs     afero.Fs
	sm     *session.Manager
	cache  cache.Cache
	audit  *audit.Service
	db     *gorm.DB
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AdminKey: adminKey},
		Security: config.SecurityConfig{
			JWTSecret:      "rest-test-secret",
			JWTTTLH:        time.Hour,
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
		Editor: config.EditorConfig{
			StrictPolicy: "warn",
			AutoBackup:   true,
			MaxBackups:   2,
			BackupDir:    "/saves/backups",
			SessionIdle:  30 * time.Minute,
			NormalTemplate: config.RelicTemplateConfig{
				RelicID: testutil.RelicNormal,
				Effects: []uint32{testutil.EffA, testutil.EffB},
			},
			DeepTemplate: config.RelicTemplateConfig{RelicID: testutil.RelicDeepBase},
		},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, savePath, testutil.DefaultSave(), 0o644))
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	sm := session.NewManager(fs, testutil.Catalog(), cfg.Editor, "/saves", db, zap.NewNop())
	auditSvc := audit.New(db, zap.NewNop())
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })
	reg := prometheus.NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	r, err := NewRouter(ctx, cfg, Deps{
		Sessions: sm,
		Cache:    c,
		Events:   sse.NewHandler(ps, zap.NewNop()),
		Audit:    auditSvc,
		Metrics:  metrics.New(reg, sm.Count),
		Gatherer: reg,
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)
	return &harness{router: r, fs: fs, sm: sm, cache: c, audit: auditSvc, db: db}
}

// do sends a JSON request. A nil body sends none.
func (h *harness) do(method, url, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

type openResponse struct {
	SessionID string          `json:"session_id"`
	Token     string          `json:"token"`
	Summary   session.Summary `json:"summary"`
}

// open opens the fixture save and returns its token.
func (h *harness) open(t *testing.T) openResponse {
	t.Helper()
	w := h.do(http.MethodPost, "/api/sessions", "", gin.H{"path": "user.sl2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp openResponse
	decode(t, w, &resp)
	return resp
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Slot  *int   `json:"slot"`
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	decode(t, w, &e)
	return e
}
