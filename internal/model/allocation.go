package model

import "time"

// Allocation факт: студент занимает кровать в комнате
type Allocation struct {
	Student  *Student `json:"student"`
	Hostel   *Hostel  `json:"hostel"`
	Block    string   `json:"block"`
	Floor    string   `json:"floor"`
	Room     string   `json:"room"`
	RoomID   int64    `json:"room_id"`
	BedIndex int      `json:"bed"`
}

// HistoryItem одна попытка размещения с данными для отображения
type HistoryItem struct {
	RequestID  int64             `json:"request_id"`
	RoomID     int64             `json:"room_id"`
	RoomNumber string            `json:"room_number"`
	Block      string            `json:"block"`
	Floor      string            `json:"floor"`
	HostelID   int64             `json:"hostel_id"`
	HostelName string            `json:"hostel_name"`
	Bed        int               `json:"bed"`
	Status     RoomRequestStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}

// StudentHistory все заявки одного студента в порядке создания
type StudentHistory struct {
	Student *Student      `json:"student"`
	Items   []HistoryItem `json:"items"`
}
