package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hostel_rooms/internal/allocation"
	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository"
	"go.uber.org/zap"
)

// RequestService заявки студентов на кровати: pending -> approved | declined.
// approved и declined конечные состояния.
type RequestService struct {
	store    repository.Store
	history  HistoryCache
	notifier Notifier
	logger   *zap.Logger
}

func NewRequestService(
	store repository.Store,
	history HistoryCache,
	notifier Notifier,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		store:    store,
		history:  history,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateRequest создаёт pending-заявку. Кровать при этом не резервируется.
func (s *RequestService) CreateRequest(ctx context.Context, studentID, roomID int64, bed int) (*model.RoomRequest, error) {
	if roomID <= 0 {
		return nil, apperr.Validation("roomId is required")
	}
	if bed < 0 {
		return nil, apperr.ErrInvalidBedIndex
	}

	student, err := requireStudent(ctx, s.store, studentID)
	if err != nil {
		return nil, err
	}

	var (
		req  *model.RoomRequest
		room *model.Room
	)

	// Комната блокируется до вставки: изменение вместимости или удаление
	// комнаты не может пройти между проверкой кровати и созданием заявки.
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		room, err = tx.Rooms().GetForUpdate(ctx, roomID)
		if err != nil {
			return fmt.Errorf("get room: %w", err)
		}
		if room == nil {
			return apperr.ErrRoomNotFound
		}
		if bed >= room.Capacity {
			return apperr.ErrInvalidBedIndex
		}

		req = &model.RoomRequest{
			StudentID: studentID,
			RoomID:    roomID,
			Bed:       bed,
			Status:    model.RoomRequestStatusPending,
		}

		// Дубликат pending-заявки отсекается хранилищем атомарно
		return tx.Requests().Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	invalidateHistory(ctx, s.history, s.logger)

	s.logger.Info("Room request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("room_id", roomID),
		zap.Int("bed", bed),
	)

	s.notifier.RequestCreated(ctx, req, student, room)

	return req, nil
}

// Approve одобряет заявку и занимает кровать. Изменение комнаты и смена статуса
// выполняются в одной транзакции: при любой ошибке заявка остаётся pending.
func (s *RequestService) Approve(ctx context.Context, requestID int64) (*model.RoomRequest, error) {
	var (
		req     *model.RoomRequest
		room    *model.Room
		retried bool
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		req, err = tx.Requests().GetForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get room request: %w", err)
		}
		if req == nil {
			return apperr.ErrRequestNotFound
		}
		if !req.IsPending() {
			return apperr.ErrAlreadyProcessed
		}

		room, err = tx.Rooms().GetForUpdate(ctx, req.RoomID)
		if err != nil {
			return fmt.Errorf("get room: %w", err)
		}
		if room == nil {
			return apperr.ErrRoomNotFound
		}

		if allocation.HoldsBed(room, req.StudentID, req.Bed) {
			// Повтор после сбоя между записью комнаты и сменой статуса
			retried = true
		} else {
			if err := allocation.AssignToBed(room, req.StudentID, req.Bed); err != nil {
				return err
			}
			if err := tx.Rooms().Save(ctx, room); err != nil {
				return fmt.Errorf("save room: %w", err)
			}
		}

		ok, err := tx.Requests().UpdateStatus(ctx, requestID, model.RoomRequestStatusPending, model.RoomRequestStatusApproved)
		if err != nil {
			return fmt.Errorf("update room request status: %w", err)
		}
		if !ok {
			return apperr.ErrAlreadyProcessed
		}

		req.Status = model.RoomRequestStatusApproved
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateHistory(ctx, s.history, s.logger)

	s.logger.Info("Room request approved",
		zap.Int64("request_id", requestID),
		zap.Int64("student_id", req.StudentID),
		zap.Int64("room_id", req.RoomID),
		zap.Int("bed", req.Bed),
		zap.Int("occupancy", room.CurrentOccupancy),
		zap.Bool("idempotent_retry", retried),
	)

	s.notifyResolved(ctx, req, room)

	return req, nil
}

// Decline отклоняет pending-заявку. Одобренную заявку отклонить нельзя.
func (s *RequestService) Decline(ctx context.Context, requestID int64) (*model.RoomRequest, error) {
	var req *model.RoomRequest

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		req, err = tx.Requests().GetForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get room request: %w", err)
		}
		if req == nil {
			return apperr.ErrRequestNotFound
		}
		if !req.IsPending() {
			return apperr.ErrAlreadyProcessed
		}

		ok, err := tx.Requests().UpdateStatus(ctx, requestID, model.RoomRequestStatusPending, model.RoomRequestStatusDeclined)
		if err != nil {
			return fmt.Errorf("update room request status: %w", err)
		}
		if !ok {
			return apperr.ErrAlreadyProcessed
		}

		req.Status = model.RoomRequestStatusDeclined
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateHistory(ctx, s.history, s.logger)

	s.logger.Info("Room request declined",
		zap.Int64("request_id", requestID),
		zap.Int64("student_id", req.StudentID),
		zap.Int64("room_id", req.RoomID),
	)

	room, err := s.store.Rooms().GetByID(ctx, req.RoomID)
	if err != nil {
		s.logger.Warn("Failed to load room for notification", zap.Int64("room_id", req.RoomID), zap.Error(err))
	} else if room != nil {
		s.notifyResolved(ctx, req, room)
	}

	return req, nil
}

func (s *RequestService) notifyResolved(ctx context.Context, req *model.RoomRequest, room *model.Room) {
	student, err := s.store.Students().GetByID(ctx, req.StudentID)
	if err != nil {
		s.logger.Warn("Failed to load student for notification", zap.Int64("student_id", req.StudentID), zap.Error(err))
		return
	}
	if student == nil {
		return
	}
	s.notifier.RequestResolved(ctx, req, student, room)
}

// GetByID получает заявку по ID
func (s *RequestService) GetByID(ctx context.Context, requestID int64) (*model.RoomRequest, error) {
	req, err := s.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get room request: %w", err)
	}
	if req == nil {
		return nil, apperr.ErrRequestNotFound
	}
	return req, nil
}

// List получает все заявки
func (s *RequestService) List(ctx context.Context) ([]*model.RoomRequest, error) {
	requests, err := s.store.Requests().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list room requests: %w", err)
	}
	return requests, nil
}

// ListByStudent получает заявки студента
func (s *RequestService) ListByStudent(ctx context.Context, studentID int64) ([]*model.RoomRequest, error) {
	requests, err := s.store.Requests().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student room requests: %w", err)
	}
	return requests, nil
}
