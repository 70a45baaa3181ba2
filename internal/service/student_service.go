package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository"
	"go.uber.org/zap"
)

type StudentService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewStudentService(store repository.Store, logger *zap.Logger) *StudentService {
	return &StudentService{
		store:  store,
		logger: logger,
	}
}

type RegisterStudentInput struct {
	FirstName      string
	LastName       string
	Email          string
	MatricNumber   string
	TelegramChatID *int64
}

// Register добавляет студента в справочник
func (s *StudentService) Register(ctx context.Context, in RegisterStudentInput) (*model.Student, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, apperr.Validation("firstName is required")
	}

	student := &model.Student{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          strings.TrimSpace(in.Email),
		MatricNumber:   strings.TrimSpace(in.MatricNumber),
		TelegramChatID: in.TelegramChatID,
	}

	if err := s.store.Students().Create(ctx, student); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}

	s.logger.Info("Student registered",
		zap.Int64("student_id", student.ID),
		zap.String("matric_number", student.MatricNumber),
	)

	return student, nil
}

// GetByID получает студента по ID
func (s *StudentService) GetByID(ctx context.Context, studentID int64) (*model.Student, error) {
	return requireStudent(ctx, s.store, studentID)
}

// GetByTelegramChatID находит студента, привязанного к чату Telegram
func (s *StudentService) GetByTelegramChatID(ctx context.Context, chatID int64) (*model.Student, error) {
	student, err := s.store.Students().GetByTelegramChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get student by telegram chat id: %w", err)
	}
	if student == nil {
		return nil, apperr.ErrStudentNotFound
	}
	return student, nil
}
