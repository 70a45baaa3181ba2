package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/service"
	"github.com/labstack/echo/v4"
)

type RequestHandler struct {
	requests *service.RequestService
}

func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

type createRequestReq struct {
	RoomID int64 `json:"roomId"`
	Bed    *int  `json:"bed"`
}

func nonNil(requests []*model.RoomRequest) []*model.RoomRequest {
	if requests == nil {
		return []*model.RoomRequest{}
	}
	return requests
}

// POST /room/requests
func (h *RequestHandler) Create(c echo.Context) error {
	var body createRequestReq
	if err := bind(c, &body); err != nil {
		return err
	}
	if body.Bed == nil {
		return apperr.Validation("bed is required")
	}

	req, err := h.requests.CreateRequest(c.Request().Context(), callerID(c), body.RoomID, *body.Bed)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, req)
}

// GET /room/requests
func (h *RequestHandler) List(c echo.Context) error {
	requests, err := h.requests.List(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(requests))
}

// GET /room/requests/mine
func (h *RequestHandler) ListMine(c echo.Context) error {
	requests, err := h.requests.ListByStudent(c.Request().Context(), callerID(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(requests))
}

// POST /room/requests/:id/approve
func (h *RequestHandler) Approve(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	req, err := h.requests.Approve(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return okMessage(c, "request approved", req)
}

// POST /room/requests/:id/decline
func (h *RequestHandler) Decline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	req, err := h.requests.Decline(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return okMessage(c, "request declined", req)
}
