package model

import "time"

type RoomRequestStatus string

const (
	RoomRequestStatusPending  RoomRequestStatus = "pending"  // Ожидает решения администратора
	RoomRequestStatusApproved RoomRequestStatus = "approved" // Одобрена, кровать занята
	RoomRequestStatusDeclined RoomRequestStatus = "declined" // Отклонена
)

// RoomRequest заявка студента на конкретную кровать в комнате
type RoomRequest struct {
	ID        int64             `json:"id"`
	StudentID int64             `json:"student_id"`
	RoomID    int64             `json:"room_id"`
	Bed       int               `json:"bed"`
	Status    RoomRequestStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt *time.Time        `json:"updated_at"`
}

// IsPending checks if request is pending
func (r *RoomRequest) IsPending() bool {
	return r.Status == RoomRequestStatusPending
}

// IsTerminal checks if request has been approved or declined
func (r *RoomRequest) IsTerminal() bool {
	return r.Status == RoomRequestStatusApproved || r.Status == RoomRequestStatusDeclined
}
