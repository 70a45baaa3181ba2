// Package allocation изменяет кровати комнаты, сохраняя инварианты:
// студент занимает не более одной кровати в комнате, а занятость
// всегда равна числу непустых кроватей.
package allocation

import (
	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
)

// AssignToNextAvailable занимает первую свободную кровать комнаты
func AssignToNextAvailable(room *model.Room, studentID int64) (int, error) {
	if Occupancy(room) >= room.Capacity {
		return -1, apperr.ErrRoomFull
	}
	if BedOf(room, studentID) >= 0 {
		return -1, apperr.ErrAlreadyAssigned
	}

	for i, s := range room.AssignedStudents {
		if s == nil {
			room.AssignedStudents[i] = &studentID
			Recount(room)
			return i, nil
		}
	}

	// Сюда попадаем только если длина массива меньше capacity
	return -1, apperr.ErrRoomFull
}

// AssignToBed занимает конкретную кровать
func AssignToBed(room *model.Room, studentID int64, bed int) error {
	if bed < 0 || bed >= room.Capacity || bed >= len(room.AssignedStudents) {
		return apperr.ErrInvalidBedIndex
	}
	if room.AssignedStudents[bed] != nil {
		return apperr.ErrBedOccupied
	}
	if BedOf(room, studentID) >= 0 {
		return apperr.ErrAlreadyAssigned
	}

	room.AssignedStudents[bed] = &studentID
	Recount(room)
	return nil
}

// Unassign освобождает кровать студента. Поиск идёт по значению, не по позиции.
func Unassign(room *model.Room, studentID int64) (int, error) {
	bed := BedOf(room, studentID)
	if bed < 0 {
		return -1, apperr.ErrNotAssigned
	}

	room.AssignedStudents[bed] = nil
	Recount(room)
	return bed, nil
}

// HoldsBed проверяет что кровать занята именно этим студентом
func HoldsBed(room *model.Room, studentID int64, bed int) bool {
	if bed < 0 || bed >= len(room.AssignedStudents) {
		return false
	}
	s := room.AssignedStudents[bed]
	return s != nil && *s == studentID
}

// BedOf возвращает номер кровати студента или -1
func BedOf(room *model.Room, studentID int64) int {
	for i, s := range room.AssignedStudents {
		if s != nil && *s == studentID {
			return i
		}
	}
	return -1
}

// Occupancy число занятых кроватей
func Occupancy(room *model.Room) int {
	n := 0
	for _, s := range room.AssignedStudents {
		if s != nil {
			n++
		}
	}
	return n
}

// Recount пересчитывает CurrentOccupancy из массива кроватей.
// Возвращает true если сохранённое значение расходилось с фактическим.
func Recount(room *model.Room) bool {
	n := Occupancy(room)
	drift := room.CurrentOccupancy != n
	room.CurrentOccupancy = n
	return drift
}

// Resize меняет число кроватей. Уменьшение допустимо только за счёт свободных кроватей в конце.
func Resize(room *model.Room, capacity int) error {
	if capacity <= 0 {
		return apperr.Validation("capacity must be a positive integer")
	}

	for i := capacity; i < len(room.AssignedStudents); i++ {
		if room.AssignedStudents[i] != nil {
			return apperr.ErrCapacityConflict
		}
	}

	slots := make([]*int64, capacity)
	copy(slots, room.AssignedStudents)
	room.AssignedStudents = slots
	room.Capacity = capacity
	Recount(room)
	return nil
}
