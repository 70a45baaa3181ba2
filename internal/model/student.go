package model

import "time"

// Student краткие данные студента из внешнего справочника пользователей
type Student struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	MatricNumber   string    `json:"matric_number"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"` // nil - уведомления не отправляются
	CreatedAt      time.Time `json:"created_at"`
}

// FullName returns display name
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
