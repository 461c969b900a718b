package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	respond *Responder
}

// NewHealthHandler constructs a HealthHandler. Either dependency may be nil;
// a nil dependency is skipped by the readiness probe.
func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, respond *Responder) *HealthHandler {
	return &HealthHandler{pool: pool, rdb: rdb, respond: respond}
}

// Live handles GET /healthz.
func (h *HealthHandler) Live(c *gin.Context) {
	h.respond.OK(c, http.StatusOK, "OK", gin.H{"status": "up"})
}

// Ready handles GET /readyz. It pings the backing stores with a short
// deadline so a stuck dependency fails the probe instead of hanging it.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if h.pool != nil {
		if err := h.pool.Ping(ctx); err != nil {
			checks["postgres"] = "down"
			healthy = false
		} else {
			checks["postgres"] = "up"
		}
	}

	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	}

	if !healthy {
		h.respond.Fail(c, http.StatusServiceUnavailable, CodeInternalError, "A backing service is unavailable.")
		return
	}
	h.respond.OK(c, http.StatusOK, "OK", checks)
}
