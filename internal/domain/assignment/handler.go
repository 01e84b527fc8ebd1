package assignment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/herdwatch/herdwatch/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	group := api.Group("", auth.RequireRole("vet"))
	group.GET("/cases/:id/candidates", h.GetCandidates)
	group.POST("/cases/:id/assign", h.AssignCase)
	group.DELETE("/cases/:id/assignment", h.UnassignCase)
}

func (h *Handler) GetCandidates(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	list, err := h.svc.Candidates(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

type assignRequest struct {
	VeterinarianID uuid.UUID `json:"veterinarian_id"`
}

func (h *Handler) AssignCase(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.VeterinarianID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "veterinarian_id is required")
	}

	updated, err := h.svc.Assign(c.Request().Context(), id, req.VeterinarianID)
	if err != nil {
		if errors.Is(err, ErrAssignmentRejected) {
			// Expected race outcome; the client should re-fetch and retry.
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) UnassignCase(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	updated, err := h.svc.Unassign(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}
