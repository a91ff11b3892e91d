package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	healthy := PingFunc(func(ctx context.Context) error { return nil })
	down := PingFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	router := gin.New()
	router.GET("/ready", NewMetricsHandler(nil, map[string]Pinger{"postgres": healthy}).Ready)
	router.GET("/ready-degraded", NewMetricsHandler(nil, map[string]Pinger{"postgres": healthy, "redis": down}).Ready)

	w := doRequest(router, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/ready-degraded", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Checks["postgres"])
	assert.Equal(t, "connection refused", body.Checks["redis"])
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", NewMetricsHandler(service.NewMetricsService(), nil).Prometheus)
	router.GET("/metrics-off", NewMetricsHandler(nil, nil).Prometheus)
	router.GET("/health", NewMetricsHandler(nil, nil).Health)

	w := doRequest(router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	assert.Equal(t, http.StatusServiceUnavailable, doRequest(router, http.MethodGet, "/metrics-off", nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/health", nil).Code)
}
