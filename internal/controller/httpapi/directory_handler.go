package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/service"
	"github.com/labstack/echo/v4"
)

// DirectoryHandler общежития и справочник студентов
type DirectoryHandler struct {
	hostels  *service.HostelService
	students *service.StudentService
}

func NewDirectoryHandler(hostels *service.HostelService, students *service.StudentService) *DirectoryHandler {
	return &DirectoryHandler{hostels: hostels, students: students}
}

type createHostelReq struct {
	Name              string                  `json:"name"`
	HostelCampus      string                  `json:"hostelCampus"`
	Block             string                  `json:"block"`
	Floor             string                  `json:"floor"`
	Location          string                  `json:"location"`
	GenderRestriction model.GenderRestriction `json:"genderRestriction"`
	Description       string                  `json:"description"`
}

type updateHostelReq struct {
	Name              *string                  `json:"name"`
	HostelCampus      *string                  `json:"hostelCampus"`
	Block             *string                  `json:"block"`
	Floor             *string                  `json:"floor"`
	Location          *string                  `json:"location"`
	GenderRestriction *model.GenderRestriction `json:"genderRestriction"`
	Description       *string                  `json:"description"`
}

type registerStudentReq struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	MatricNumber   string `json:"matricNumber"`
	TelegramChatID *int64 `json:"telegramChatId"`
}

// GET /hostel
func (h *DirectoryHandler) ListHostels(c echo.Context) error {
	hostels, err := h.hostels.List(c.Request().Context())
	if err != nil {
		return err
	}
	if hostels == nil {
		hostels = []*model.Hostel{}
	}
	return ok(c, http.StatusOK, hostels)
}

// GET /hostel/:id
func (h *DirectoryHandler) GetHostel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	hostel, err := h.hostels.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, hostel)
}

// POST /hostel
func (h *DirectoryHandler) CreateHostel(c echo.Context) error {
	var body createHostelReq
	if err := bind(c, &body); err != nil {
		return err
	}

	hostel, err := h.hostels.Create(c.Request().Context(), service.CreateHostelInput{
		Name:              body.Name,
		HostelCampus:      body.HostelCampus,
		Block:             body.Block,
		Floor:             body.Floor,
		Location:          body.Location,
		GenderRestriction: body.GenderRestriction,
		Description:       body.Description,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, hostel)
}

// PUT /hostel/:id
func (h *DirectoryHandler) UpdateHostel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body updateHostelReq
	if err := bind(c, &body); err != nil {
		return err
	}

	hostel, err := h.hostels.Update(c.Request().Context(), id, service.UpdateHostelInput{
		Name:              body.Name,
		HostelCampus:      body.HostelCampus,
		Block:             body.Block,
		Floor:             body.Floor,
		Location:          body.Location,
		GenderRestriction: body.GenderRestriction,
		Description:       body.Description,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, hostel)
}

// DELETE /hostel/:id
func (h *DirectoryHandler) DeleteHostel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.hostels.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return okMessage(c, "hostel deleted", nil)
}

// POST /students
func (h *DirectoryHandler) RegisterStudent(c echo.Context) error {
	var body registerStudentReq
	if err := bind(c, &body); err != nil {
		return err
	}

	student, err := h.students.Register(c.Request().Context(), service.RegisterStudentInput{
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Email:          body.Email,
		MatricNumber:   body.MatricNumber,
		TelegramChatID: body.TelegramChatID,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, student)
}

// GET /healthz
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
