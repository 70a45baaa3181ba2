package apperr

import "errors"

// Kind классифицирует ошибку для транспортного слоя
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error именованный исход операции
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Ошибки размещения и заявок
var (
	ErrRoomFull         = newError(KindConflict, "ROOM_FULL", "room is already full")
	ErrAlreadyAssigned  = newError(KindConflict, "ALREADY_ASSIGNED", "student already assigned to this room")
	ErrInvalidBedIndex  = newError(KindValidation, "INVALID_BED_INDEX", "bed index is out of range")
	ErrBedOccupied      = newError(KindConflict, "BED_OCCUPIED", "bed is already occupied")
	ErrNotAssigned      = newError(KindConflict, "NOT_ASSIGNED", "student not assigned to this room")
	ErrDuplicateRequest = newError(KindConflict, "DUPLICATE_REQUEST", "an identical request is already pending")
	ErrAlreadyProcessed = newError(KindConflict, "ALREADY_PROCESSED", "request has already been processed")
	ErrRoomOccupied     = newError(KindConflict, "ROOM_OCCUPIED", "room still has assigned students")
	ErrRoomHasRequests  = newError(KindConflict, "ROOM_HAS_REQUESTS", "room is referenced by room requests")
	ErrCapacityConflict = newError(KindConflict, "CAPACITY_CONFLICT", "capacity change conflicts with assigned beds or pending requests")
	ErrHostelExists     = newError(KindConflict, "HOSTEL_EXISTS", "hostel with this name already exists on campus")
	ErrHostelHasRooms   = newError(KindConflict, "HOSTEL_HAS_ROOMS", "hostel still has rooms")

	ErrRoomNotFound    = newError(KindNotFound, "ROOM_NOT_FOUND", "room not found")
	ErrRequestNotFound = newError(KindNotFound, "REQUEST_NOT_FOUND", "room request not found")
	ErrStudentNotFound = newError(KindNotFound, "STUDENT_NOT_FOUND", "student not found")
	ErrHostelNotFound  = newError(KindNotFound, "HOSTEL_NOT_FOUND", "hostel not found")
)

// Validation создаёт ошибку валидации входных данных
func Validation(message string) *Error {
	return newError(KindValidation, "VALIDATION_ERROR", message)
}

// KindOf возвращает класс ошибки; всё неизвестное считается сбоем хранилища
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// CodeOf возвращает машинный код ошибки
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL_ERROR"
}
