package vets

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/herdwatch/herdwatch/internal/platform/auth"
	"github.com/herdwatch/herdwatch/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("vet", "farmer"))
	readGroup.GET("/veterinarians", h.ListVeterinarians)
	readGroup.GET("/veterinarians/by-location", h.ListByLocation)
	readGroup.GET("/veterinarians/:id", h.GetVeterinarian)
}

func (h *Handler) ListVeterinarians(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{
		UserType: UserType(c.QueryParam("user_type")),
		Sector:   c.QueryParam("sector"),
		District: c.QueryParam("district"),
	}

	list, total, err := h.svc.ListVeterinarians(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, pg.Limit, pg.Offset))
}

// ListByLocation seeds the locality-aware assignment pool. The response
// annotates each veterinarian with sector/district match flags.
func (h *Handler) ListByLocation(c echo.Context) error {
	sector := c.QueryParam("sector")
	district := c.QueryParam("district")

	pool, err := h.svc.PoolForCase(c.Request().Context(), sector, district)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	type annotated struct {
		*Veterinarian
		SectorMatch   bool `json:"sector_match"`
		DistrictMatch bool `json:"district_match"`
	}
	result := make([]annotated, 0, len(pool))
	for _, v := range pool {
		result = append(result, annotated{
			Veterinarian:  v,
			SectorMatch:   sector != "" && v.Sector == sector,
			DistrictMatch: district != "" && v.District == district,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sector":   sector,
		"district": district,
		"data":     result,
	})
}

func (h *Handler) GetVeterinarian(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	v, err := h.svc.GetVeterinarian(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "veterinarian not found")
	}
	return c.JSON(http.StatusOK, v)
}
