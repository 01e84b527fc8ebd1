package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// SnapshotSource reports the poll coordinator's current snapshot state,
// surfaced on the health endpoint so operators can see how fresh the
// dashboard data is alongside database health.
type SnapshotSource interface {
	Version() uint64
	LastUpdated() (time.Time, bool)
}

// snapshotStatus builds the health payload's snapshot section.
func snapshotStatus(snap SnapshotSource) map[string]interface{} {
	at, ok := snap.LastUpdated()
	if !ok {
		return map[string]interface{}{"ready": false}
	}
	return map[string]interface{}{
		"ready":    true,
		"version":  snap.Version(),
		"taken_at": at,
		"age":      time.Since(at).String(),
	}
}

// HealthHandler returns a handler for the health check endpoint. snap may be
// nil when no poll coordinator is running.
func HealthHandler(pool *pgxpool.Pool, snap SnapshotSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := pool.Ping(ctx)
		stats := GetPoolStats(pool)

		body := map[string]interface{}{"pool": stats}
		if snap != nil {
			body["snapshot"] = snapshotStatus(snap)
		}

		if err != nil {
			stats.Healthy = false
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}

		body["status"] = "healthy"
		return c.JSON(http.StatusOK, body)
	}
}
