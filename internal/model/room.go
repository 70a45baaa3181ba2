package model

import "time"

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusUnavailable RoomStatus = "unavailable"
)

// Room комната общежития с фиксированным числом кроватей.
// Индекс в AssignedStudents и есть номер кровати, nil - кровать свободна.
type Room struct {
	ID               int64      `json:"id"`
	HostelID         int64      `json:"hostel_id"`
	RoomNumber       string     `json:"room_number"`
	RoomBlock        string     `json:"room_block"`
	RoomFloor        string     `json:"room_floor"`
	Status           RoomStatus `json:"status"`
	Capacity         int        `json:"capacity"`
	AssignedStudents []*int64   `json:"assigned_students"`
	CurrentOccupancy int        `json:"current_occupancy"` // всегда производное от AssignedStudents
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	Hostel *Hostel `json:"hostel,omitempty"`
}

// NewRoom создаёт комнату со всеми свободными кроватями
func NewRoom(hostelID int64, roomNumber, block, floor string, capacity int) *Room {
	return &Room{
		HostelID:         hostelID,
		RoomNumber:       roomNumber,
		RoomBlock:        block,
		RoomFloor:        floor,
		Status:           RoomStatusAvailable,
		Capacity:         capacity,
		AssignedStudents: make([]*int64, capacity),
	}
}

// Clone возвращает глубокую копию комнаты
func (r *Room) Clone() *Room {
	c := *r
	c.AssignedStudents = make([]*int64, len(r.AssignedStudents))
	for i, s := range r.AssignedStudents {
		if s != nil {
			id := *s
			c.AssignedStudents[i] = &id
		}
	}
	if r.Hostel != nil {
		h := *r.Hostel
		c.Hostel = &h
	}
	return &c
}

// VacantBeds количество свободных кроватей
func (r *Room) VacantBeds() int {
	return r.Capacity - r.CurrentOccupancy
}

// IsAvailable checks if room accepts residents
func (r *Room) IsAvailable() bool {
	return r.Status == RoomStatusAvailable
}
