package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/hostel_rooms/internal/allocation"
	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository"
	"go.uber.org/zap"
)

type RoomService struct {
	store   repository.Store
	history HistoryCache
	logger  *zap.Logger
}

func NewRoomService(store repository.Store, history HistoryCache, logger *zap.Logger) *RoomService {
	return &RoomService{
		store:   store,
		history: history,
		logger:  logger,
	}
}

type CreateRoomInput struct {
	HostelID   int64
	RoomNumber string
	RoomBlock  string
	RoomFloor  string
	Capacity   int
	Status     model.RoomStatus
}

// UpdateRoomInput nil - поле не меняется
type UpdateRoomInput struct {
	HostelID   *int64
	RoomNumber *string
	RoomBlock  *string
	RoomFloor  *string
	Capacity   *int
	Status     *model.RoomStatus
}

func validateRoomStatus(status model.RoomStatus) error {
	switch status {
	case model.RoomStatusAvailable, model.RoomStatusUnavailable:
		return nil
	default:
		return apperr.Validation("status must be one of: available, unavailable")
	}
}

func (s *RoomService) requireHostel(ctx context.Context, store repository.Store, hostelID int64) error {
	if hostelID <= 0 {
		return apperr.Validation("hostelId is required")
	}

	hostel, err := store.Hostels().GetByID(ctx, hostelID)
	if err != nil {
		return fmt.Errorf("get hostel: %w", err)
	}
	if hostel == nil {
		return apperr.ErrHostelNotFound
	}

	return nil
}

// ============ Реестр комнат ============

// Create создаёт комнату со всеми свободными кроватями
func (s *RoomService) Create(ctx context.Context, in CreateRoomInput) (*model.Room, error) {
	if strings.TrimSpace(in.RoomNumber) == "" {
		return nil, apperr.Validation("roomNumber is required")
	}
	if in.Capacity <= 0 {
		return nil, apperr.Validation("capacity must be a positive integer")
	}
	if in.Status == "" {
		in.Status = model.RoomStatusAvailable
	}
	if err := validateRoomStatus(in.Status); err != nil {
		return nil, err
	}

	if err := s.requireHostel(ctx, s.store, in.HostelID); err != nil {
		return nil, err
	}

	room := model.NewRoom(in.HostelID, strings.TrimSpace(in.RoomNumber), in.RoomBlock, in.RoomFloor, in.Capacity)
	room.Status = in.Status

	if err := s.store.Rooms().Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.logger.Info("Room created",
		zap.Int64("room_id", room.ID),
		zap.Int64("hostel_id", room.HostelID),
		zap.Int("capacity", room.Capacity),
	)

	return room, nil
}

// GetByID получает комнату с данными общежития
func (s *RoomService) GetByID(ctx context.Context, roomID int64) (*model.Room, error) {
	room, err := s.store.Rooms().GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, apperr.ErrRoomNotFound
	}

	hostel, err := s.store.Hostels().GetByID(ctx, room.HostelID)
	if err != nil {
		return nil, fmt.Errorf("get hostel: %w", err)
	}
	room.Hostel = hostel

	return room, nil
}

// List получает все комнаты с данными общежитий
func (s *RoomService) List(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	hostels, err := s.store.Hostels().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}

	byID := make(map[int64]*model.Hostel, len(hostels))
	for _, h := range hostels {
		byID[h.ID] = h
	}
	for _, room := range rooms {
		room.Hostel = byID[room.HostelID]
	}

	return rooms, nil
}

// Update меняет описательные поля комнаты. Изменение вместимости перепроверяется
// против занятых кроватей и pending-заявок.
func (s *RoomService) Update(ctx context.Context, roomID int64, in UpdateRoomInput) (*model.Room, error) {
	if in.RoomNumber != nil && strings.TrimSpace(*in.RoomNumber) == "" {
		return nil, apperr.Validation("roomNumber must not be empty")
	}
	if in.Status != nil {
		if err := validateRoomStatus(*in.Status); err != nil {
			return nil, err
		}
	}

	var updated *model.Room
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		room, err := tx.Rooms().GetForUpdate(ctx, roomID)
		if err != nil {
			return fmt.Errorf("get room: %w", err)
		}
		if room == nil {
			return apperr.ErrRoomNotFound
		}

		if in.HostelID != nil && *in.HostelID != room.HostelID {
			if err := s.requireHostel(ctx, tx, *in.HostelID); err != nil {
				return err
			}
			room.HostelID = *in.HostelID
		}
		if in.RoomNumber != nil {
			room.RoomNumber = strings.TrimSpace(*in.RoomNumber)
		}
		if in.RoomBlock != nil {
			room.RoomBlock = *in.RoomBlock
		}
		if in.RoomFloor != nil {
			room.RoomFloor = *in.RoomFloor
		}
		if in.Status != nil {
			room.Status = *in.Status
		}

		if in.Capacity != nil && *in.Capacity != room.Capacity {
			if *in.Capacity <= 0 {
				return apperr.Validation("capacity must be a positive integer")
			}

			pending, err := tx.Requests().GetPendingByRoom(ctx, roomID)
			if err != nil {
				return fmt.Errorf("get pending requests: %w", err)
			}
			for _, req := range pending {
				if req.Bed >= *in.Capacity {
					return apperr.ErrCapacityConflict
				}
			}

			if err := allocation.Resize(room, *in.Capacity); err != nil {
				return err
			}
		}

		allocation.Recount(room)
		if err := tx.Rooms().Save(ctx, room); err != nil {
			return fmt.Errorf("save room: %w", err)
		}

		updated = room
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateHistory(ctx, s.history, s.logger)

	s.logger.Info("Room updated",
		zap.Int64("room_id", roomID),
		zap.Int("capacity", updated.Capacity),
	)

	return updated, nil
}

// Delete удаляет пустую комнату, на которую не ссылается ни одна заявка
func (s *RoomService) Delete(ctx context.Context, roomID int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		room, err := tx.Rooms().GetForUpdate(ctx, roomID)
		if err != nil {
			return fmt.Errorf("get room: %w", err)
		}
		if room == nil {
			return apperr.ErrRoomNotFound
		}

		if allocation.Occupancy(room) > 0 {
			return apperr.ErrRoomOccupied
		}

		count, err := tx.Requests().CountByRoom(ctx, roomID)
		if err != nil {
			return fmt.Errorf("count room requests: %w", err)
		}
		if count > 0 {
			return apperr.ErrRoomHasRequests
		}

		if err := tx.Rooms().Delete(ctx, roomID); err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	invalidateHistory(ctx, s.history, s.logger)

	s.logger.Info("Room deleted", zap.Int64("room_id", roomID))
	return nil
}

// ============ Прямое размещение ============

// mutateRoom выполняет read-modify-write над комнатой под блокировкой строки
func (s *RoomService) mutateRoom(ctx context.Context, roomID int64, fn func(room *model.Room) error) (*model.Room, error) {
	var result *model.Room
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		room, err := tx.Rooms().GetForUpdate(ctx, roomID)
		if err != nil {
			return fmt.Errorf("get room: %w", err)
		}
		if room == nil {
			return apperr.ErrRoomNotFound
		}

		if err := fn(room); err != nil {
			return err
		}

		if err := tx.Rooms().Save(ctx, room); err != nil {
			return fmt.Errorf("save room: %w", err)
		}

		result = room
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateHistory(ctx, s.history, s.logger)
	return result, nil
}

// Assign размещает студента на первую свободную кровать (администратор)
func (s *RoomService) Assign(ctx context.Context, studentID, roomID int64) (*model.Room, error) {
	if roomID <= 0 {
		return nil, apperr.Validation("roomId is required")
	}
	if _, err := requireStudent(ctx, s.store, studentID); err != nil {
		return nil, err
	}

	bed := -1
	room, err := s.mutateRoom(ctx, roomID, func(room *model.Room) error {
		var err error
		bed, err = allocation.AssignToNextAvailable(room, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student assigned to room",
		zap.Int64("student_id", studentID),
		zap.Int64("room_id", roomID),
		zap.Int("bed", bed),
		zap.Int("occupancy", room.CurrentOccupancy),
	)

	return room, nil
}

// Book бронирует конкретную кровать для самого студента
func (s *RoomService) Book(ctx context.Context, studentID, roomID int64, bed int) (*model.Room, error) {
	if roomID <= 0 {
		return nil, apperr.Validation("roomId is required")
	}
	if _, err := requireStudent(ctx, s.store, studentID); err != nil {
		return nil, err
	}

	room, err := s.mutateRoom(ctx, roomID, func(room *model.Room) error {
		return allocation.AssignToBed(room, studentID, bed)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bed booked",
		zap.Int64("student_id", studentID),
		zap.Int64("room_id", roomID),
		zap.Int("bed", bed),
		zap.Int("occupancy", room.CurrentOccupancy),
	)

	return room, nil
}

// Unassign освобождает кровать студента (администратор)
func (s *RoomService) Unassign(ctx context.Context, roomID, studentID int64) (*model.Room, error) {
	if roomID <= 0 {
		return nil, apperr.Validation("roomId is required")
	}
	if studentID <= 0 {
		return nil, apperr.Validation("studentId is required")
	}

	bed := -1
	room, err := s.mutateRoom(ctx, roomID, func(room *model.Room) error {
		var err error
		bed, err = allocation.Unassign(room, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student unassigned from room",
		zap.Int64("student_id", studentID),
		zap.Int64("room_id", roomID),
		zap.Int("bed", bed),
		zap.Int("occupancy", room.CurrentOccupancy),
	)

	return room, nil
}

// ReconcileOccupancy пересчитывает сохранённую занятость всех комнат.
// Возвращает число исправленных комнат.
func (s *RoomService) ReconcileOccupancy(ctx context.Context) (int, error) {
	rooms, err := s.store.Rooms().List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list rooms: %w", err)
	}

	fixed := 0
	for _, snapshot := range rooms {
		if allocation.Occupancy(snapshot) == snapshot.CurrentOccupancy {
			continue
		}

		stored := snapshot.CurrentOccupancy
		drifted := false
		err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
			room, err := tx.Rooms().GetForUpdate(ctx, snapshot.ID)
			if err != nil {
				return fmt.Errorf("get room: %w", err)
			}
			if room == nil {
				return nil
			}
			if drifted = allocation.Recount(room); !drifted {
				return nil
			}
			return tx.Rooms().Save(ctx, room)
		})
		if err != nil {
			return fixed, fmt.Errorf("reconcile room %d: %w", snapshot.ID, err)
		}

		if drifted {
			fixed++
			s.logger.Warn("Room occupancy drift fixed",
				zap.Int64("room_id", snapshot.ID),
				zap.Int("stored", stored),
				zap.Int("actual", allocation.Occupancy(snapshot)),
			)
		}
	}

	if fixed > 0 {
		invalidateHistory(ctx, s.history, s.logger)
	}

	return fixed, nil
}
