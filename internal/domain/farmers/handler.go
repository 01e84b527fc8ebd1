package farmers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/herdwatch/herdwatch/internal/platform/auth"
	"github.com/herdwatch/herdwatch/pkg/pagination"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("vet"))
	readGroup.GET("/farmers", h.ListFarmers)
}

func (h *Handler) ListFarmers(c echo.Context) error {
	pg := pagination.FromContext(c)

	var approved *bool
	if raw := c.QueryParam("approved"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid approved filter")
		}
		approved = &parsed
	}

	list, total, err := h.repo.List(c.Request().Context(), approved, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, pg.Limit, pg.Offset))
}
