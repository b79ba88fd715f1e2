package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Tracing())
	r.Use(Metrics())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestTracing_GeneratesRequestID(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestTracing_EchoesRequestID(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestRouteOf_Unmatched(t *testing.T) {
	r := newRouter()

	var route string
	r.NoRoute(func(c *gin.Context) {
		route = routeOf(c)
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-admin.php", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unmatched", route)
}
