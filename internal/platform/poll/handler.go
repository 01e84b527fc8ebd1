package poll

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/herdwatch/herdwatch/internal/platform/auth"
)

type Handler struct {
	coord *Coordinator
}

func NewHandler(coord *Coordinator) *Handler {
	return &Handler{coord: coord}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/refresh", h.Refresh, auth.RequireRole("vet"))
	api.GET("/refresh/status", h.Status, auth.RequireRole("vet", "farmer"))
}

type refreshResponse struct {
	Version   uint64    `json:"version"`
	TakenAt   time.Time `json:"taken_at"`
	CaseCount int       `json:"case_count"`
}

// Refresh is the manual-refresh path: unlike the background poll, a failure
// here is surfaced so the caller can retry.
func (h *Handler) Refresh(c echo.Context) error {
	if err := h.coord.Refresh(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "refresh failed, retry")
	}
	snap := h.coord.Current()
	if snap == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no snapshot available")
	}
	return c.JSON(http.StatusOK, refreshResponse{
		Version:   snap.Version,
		TakenAt:   snap.TakenAt,
		CaseCount: len(snap.Cases),
	})
}

func (h *Handler) Status(c echo.Context) error {
	snap := h.coord.Current()
	if snap == nil {
		return c.JSON(http.StatusOK, map[string]any{"ready": false})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ready":      true,
		"version":    snap.Version,
		"taken_at":   snap.TakenAt,
		"case_count": len(snap.Cases),
	})
}
