package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Handler(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "pixelpress", resp.Service)
}

func TestReadyHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	router := gin.New()
	router.GET("/ready", ReadyHandler(map[string]Pinger{"postgres": ok}))
	router.GET("/ready-degraded", ReadyHandler(map[string]Pinger{"postgres": ok, "redis": down}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready-degraded", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Checks["postgres"])
	assert.Equal(t, "unavailable", resp.Checks["redis"])
}
