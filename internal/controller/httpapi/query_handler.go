package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/service"
	"github.com/labstack/echo/v4"
)

type QueryHandler struct {
	queries *service.QueryService
}

func NewQueryHandler(queries *service.QueryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

// GET /room/allocations
func (h *QueryHandler) Allocations(c echo.Context) error {
	allocations, err := h.queries.ListAllocations(c.Request().Context())
	if err != nil {
		return err
	}

	items := []model.Allocation{}
	for a := range allocations {
		items = append(items, a)
	}
	return ok(c, http.StatusOK, items)
}

// GET /room/history
func (h *QueryHandler) History(c echo.Context) error {
	history, err := h.queries.ListHistory(c.Request().Context())
	if err != nil {
		return err
	}
	if history == nil {
		history = []model.StudentHistory{}
	}
	return ok(c, http.StatusOK, history)
}

// GET /room/history/mine
func (h *QueryHandler) MyHistory(c echo.Context) error {
	history, err := h.queries.StudentHistory(c.Request().Context(), callerID(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, history)
}

// GET /hostel/stats
func (h *QueryHandler) Stats(c echo.Context) error {
	stats, err := h.queries.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, stats)
}
