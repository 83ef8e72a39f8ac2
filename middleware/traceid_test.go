package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTraceRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceID())
	r.GET("/trace", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})
	return r
}

func traceOf(r *gin.Engine, header string) string {
	req := httptest.NewRequest(http.MethodGet, "/trace", nil)
	if header != "" {
		req.Header.Set(TraceIDHeader, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Body.String()
}

func TestTraceID_Generated(t *testing.T) {
	r := newTraceRouter()
	req := httptest.NewRequest(http.MethodGet, "/trace", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Body.String()
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))
}

func TestTraceID_Provided(t *testing.T) {
	assert.Equal(t, "my-custom-trace", traceOf(newTraceRouter(), "my-custom-trace"))
}

func TestTraceID_RejectsBadHeader(t *testing.T) {
	r := newTraceRouter()
	for _, bad := range []string{strings.Repeat("a", 65), "has space", "tab\tid"} {
		id := traceOf(r, bad)
		assert.NotEqual(t, bad, id)
		assert.Len(t, id, 36)
	}
}

func TestTraceID_UniquePerRequest(t *testing.T) {
	r := newTraceRouter()
	assert.NotEqual(t, traceOf(r, ""), traceOf(r, ""))
}

func TestGetTraceID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))
}
