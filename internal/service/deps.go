package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository"
	"go.uber.org/zap"
)

// HistoryCache кэш истории заявок.
// Set принимает поколение, прочитанное до построения истории, и ничего не пишет,
// если после этого был Invalidate.
type HistoryCache interface {
	Get(ctx context.Context) ([]model.StudentHistory, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, generation int64, history []model.StudentHistory) (bool, error)
	Invalidate(ctx context.Context) error
}

// Notifier уведомления о заявках
type Notifier interface {
	RequestCreated(ctx context.Context, req *model.RoomRequest, student *model.Student, room *model.Room)
	RequestResolved(ctx context.Context, req *model.RoomRequest, student *model.Student, room *model.Room)
}

// invalidateHistory сбрасывает кэш истории после изменения комнат или заявок
func invalidateHistory(ctx context.Context, cache HistoryCache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		logger.Error("Failed to invalidate history cache", zap.Error(err))
	}
}

// requireStudent проверяет что студент есть в справочнике
func requireStudent(ctx context.Context, store repository.Store, studentID int64) (*model.Student, error) {
	if studentID <= 0 {
		return nil, apperr.Validation("studentId is required")
	}

	student, err := store.Students().GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, apperr.ErrStudentNotFound
	}

	return student, nil
}
