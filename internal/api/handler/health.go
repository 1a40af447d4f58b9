package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const readinessTimeout = 3 * time.Second

// HealthHandler handles GET /health, the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Liveness reports that the process is up.
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHandler handles GET /health/ready. A nil client is reported as
// not configured rather than unhealthy.
type ReadinessHandler struct {
	mongo *mongo.Client
	redis *redis.Client
}

func NewReadinessHandler(mc *mongo.Client, rdb *redis.Client) *ReadinessHandler {
	return &ReadinessHandler{mongo: mc, redis: rdb}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness pings MongoDB and Redis.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	deps := map[string]dependencyStatus{
		"mongodb": check(h.mongo != nil, func() error { return h.mongo.Ping(ctx, nil) }),
		"redis":   check(h.redis != nil, func() error { return h.redis.Ping(ctx).Err() }),
	}

	status, code := "ok", http.StatusOK
	for _, d := range deps {
		if d.Status == "unhealthy" {
			status, code = "degraded", http.StatusServiceUnavailable
			break
		}
	}
	return c.JSON(code, readinessResponse{Status: status, Dependencies: deps})
}

func check(configured bool, ping func() error) dependencyStatus {
	if !configured {
		return dependencyStatus{Status: "not_configured"}
	}
	if err := ping(); err != nil {
		return dependencyStatus{Status: "unhealthy", Error: err.Error()}
	}
	return dependencyStatus{Status: "ok"}
}
