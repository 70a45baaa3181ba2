package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/service"
	"github.com/labstack/echo/v4"
)

type RoomHandler struct {
	rooms *service.RoomService
}

func NewRoomHandler(rooms *service.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

type createRoomReq struct {
	HostelID   int64            `json:"hostelId"`
	RoomNumber string           `json:"roomNumber"`
	RoomBlock  string           `json:"roomBlock"`
	RoomFloor  string           `json:"roomFloor"`
	Capacity   int              `json:"capacity"`
	Status     model.RoomStatus `json:"status"`
}

type updateRoomReq struct {
	HostelID   *int64            `json:"hostelId"`
	RoomNumber *string           `json:"roomNumber"`
	RoomBlock  *string           `json:"roomBlock"`
	RoomFloor  *string           `json:"roomFloor"`
	Capacity   *int              `json:"capacity"`
	Status     *model.RoomStatus `json:"status"`
}

type assignReq struct {
	StudentID int64 `json:"studentId"`
	RoomID    int64 `json:"roomId"`
}

type bookReq struct {
	RoomID   int64 `json:"roomId"`
	BedIndex *int  `json:"bedIndex"`
}

// GET /room
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.rooms.List(c.Request().Context())
	if err != nil {
		return err
	}
	if rooms == nil {
		rooms = []*model.Room{}
	}
	return ok(c, http.StatusOK, rooms)
}

// GET /room/:id
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	room, err := h.rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, room)
}

// POST /room
func (h *RoomHandler) Create(c echo.Context) error {
	var body createRoomReq
	if err := bind(c, &body); err != nil {
		return err
	}

	room, err := h.rooms.Create(c.Request().Context(), service.CreateRoomInput{
		HostelID:   body.HostelID,
		RoomNumber: body.RoomNumber,
		RoomBlock:  body.RoomBlock,
		RoomFloor:  body.RoomFloor,
		Capacity:   body.Capacity,
		Status:     body.Status,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, room)
}

// PUT /room/:id
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body updateRoomReq
	if err := bind(c, &body); err != nil {
		return err
	}

	room, err := h.rooms.Update(c.Request().Context(), id, service.UpdateRoomInput{
		HostelID:   body.HostelID,
		RoomNumber: body.RoomNumber,
		RoomBlock:  body.RoomBlock,
		RoomFloor:  body.RoomFloor,
		Capacity:   body.Capacity,
		Status:     body.Status,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, room)
}

// DELETE /room/:id
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.rooms.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return okMessage(c, "room deleted", nil)
}

// POST /room/assign
func (h *RoomHandler) Assign(c echo.Context) error {
	var body assignReq
	if err := bind(c, &body); err != nil {
		return err
	}

	room, err := h.rooms.Assign(c.Request().Context(), body.StudentID, body.RoomID)
	if err != nil {
		return err
	}
	return okMessage(c, "student assigned to room", room)
}

// POST /room/book
func (h *RoomHandler) Book(c echo.Context) error {
	var body bookReq
	if err := bind(c, &body); err != nil {
		return err
	}
	if body.BedIndex == nil {
		return apperr.Validation("bedIndex is required")
	}

	room, err := h.rooms.Book(c.Request().Context(), callerID(c), body.RoomID, *body.BedIndex)
	if err != nil {
		return err
	}
	return okMessage(c, "bed booked", room)
}

// POST /room/unassign
func (h *RoomHandler) Unassign(c echo.Context) error {
	var body assignReq
	if err := bind(c, &body); err != nil {
		return err
	}

	room, err := h.rooms.Unassign(c.Request().Context(), body.RoomID, body.StudentID)
	if err != nil {
		return err
	}
	return okMessage(c, "student unassigned from room", room)
}
