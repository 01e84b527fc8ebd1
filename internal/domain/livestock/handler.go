package livestock

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/herdwatch/herdwatch/internal/platform/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("vet"))
	readGroup.GET("/livestock", h.ListLivestock)
}

func (h *Handler) ListLivestock(c echo.Context) error {
	list, err := h.repo.ListAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if list == nil {
		list = []*Animal{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": list})
}
