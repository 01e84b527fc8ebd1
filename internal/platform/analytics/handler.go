package analytics

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/herdwatch/herdwatch/internal/platform/auth"
	"github.com/herdwatch/herdwatch/internal/platform/poll"
)

// Handler serves the dashboard aggregates. All reads go through the poll
// coordinator's current snapshot, so every section of the dashboard reflects
// the same version of the data.
type Handler struct {
	coord *poll.Coordinator
}

func NewHandler(coord *poll.Coordinator) *Handler {
	return &Handler{coord: coord}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	group := api.Group("/analytics", auth.RequireRole("vet"))
	group.GET("/disease-trends", h.GetDiseaseTrends)
	group.GET("/monthly-trends", h.GetMonthlyTrends)
	group.GET("/sector-performance", h.GetSectorPerformance)
	group.GET("/overview", h.GetOverview)
}

func (h *Handler) snapshot() (*poll.Snapshot, error) {
	snap := h.coord.Current()
	if snap == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "no data available yet, retry")
	}
	return snap, nil
}

func (h *Handler) GetDiseaseTrends(c echo.Context) error {
	snap, err := h.snapshot()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DiseaseTrends(snap.Cases))
}

func (h *Handler) GetMonthlyTrends(c echo.Context) error {
	snap, err := h.snapshot()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MonthlyTrends(snap.Cases))
}

func (h *Handler) GetSectorPerformance(c echo.Context) error {
	snap, err := h.snapshot()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SectorPerformances(snap.Cases, snap.Farmers, snap.Livestock))
}

type overviewResponse struct {
	SnapshotVersion   uint64              `json:"snapshot_version"`
	LastUpdated       time.Time           `json:"last_updated"`
	DiseaseTrends     []DiseaseTrend      `json:"disease_trends"`
	MonthlyTrends     []MonthlyTrend      `json:"monthly_trends"`
	SectorPerformance []SectorPerformance `json:"sector_performance"`
}

// GetOverview returns all three aggregates computed from a single snapshot,
// plus the version and timestamp for the dashboard header.
func (h *Handler) GetOverview(c echo.Context) error {
	snap, err := h.snapshot()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overviewResponse{
		SnapshotVersion:   snap.Version,
		LastUpdated:       snap.TakenAt,
		DiseaseTrends:     DiseaseTrends(snap.Cases),
		MonthlyTrends:     MonthlyTrends(snap.Cases),
		SectorPerformance: SectorPerformances(snap.Cases, snap.Farmers, snap.Livestock),
	})
}
