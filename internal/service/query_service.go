package service

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/Freeeeeet/hostel_rooms/internal/allocation"
	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository"
	"go.uber.org/zap"
)

// QueryService проекции только для чтения. Блокировок не берёт.
type QueryService struct {
	store   repository.Store
	history HistoryCache
	logger  *zap.Logger
}

func NewQueryService(store repository.Store, history HistoryCache, logger *zap.Logger) *QueryService {
	return &QueryService{
		store:   store,
		history: history,
		logger:  logger,
	}
}

func (s *QueryService) hostelsByID(ctx context.Context) (map[int64]*model.Hostel, error) {
	hostels, err := s.store.Hostels().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}

	byID := make(map[int64]*model.Hostel, len(hostels))
	for _, h := range hostels {
		byID[h.ID] = h
	}
	return byID, nil
}

func (s *QueryService) studentsByID(ctx context.Context, ids []int64) (map[int64]*model.Student, error) {
	students, err := s.store.Students().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get students: %w", err)
	}

	byID := make(map[int64]*model.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}
	return byID, nil
}

// studentOrStub возвращает данные студента; если справочник его не знает - только ID
func studentOrStub(byID map[int64]*model.Student, id int64) *model.Student {
	if st, ok := byID[id]; ok {
		return st
	}
	return &model.Student{ID: id}
}

// ListAllocations возвращает по одному кортежу на каждую занятую кровать.
// Последовательность ленивая и может обходиться повторно.
func (s *QueryService) ListAllocations(ctx context.Context) (iter.Seq[model.Allocation], error) {
	rooms, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	hostels, err := s.hostelsByID(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[int64]bool{}
	var ids []int64
	for _, room := range rooms {
		for _, sid := range room.AssignedStudents {
			if sid != nil && !seen[*sid] {
				seen[*sid] = true
				ids = append(ids, *sid)
			}
		}
	}

	students, err := s.studentsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	return func(yield func(model.Allocation) bool) {
		for _, room := range rooms {
			for bed, sid := range room.AssignedStudents {
				if sid == nil {
					continue
				}
				a := model.Allocation{
					Student:  studentOrStub(students, *sid),
					Hostel:   hostels[room.HostelID],
					Block:    room.RoomBlock,
					Floor:    room.RoomFloor,
					Room:     room.RoomNumber,
					RoomID:   room.ID,
					BedIndex: bed,
				}
				if !yield(a) {
					return
				}
			}
		}
	}, nil
}

// ListHistory группирует все заявки по студентам
func (s *QueryService) ListHistory(ctx context.Context) ([]model.StudentHistory, error) {
	var (
		generation int64
		cacheable  bool
	)

	if s.history != nil {
		cached, ok, err := s.history.Get(ctx)
		if err != nil {
			s.logger.Warn("Failed to read history cache", zap.Error(err))
		} else if ok {
			return cached, nil
		}

		// Поколение читается до снимка: сброс во время построения отменит запись
		generation, err = s.history.Generation(ctx)
		if err != nil {
			s.logger.Warn("Failed to read history cache generation", zap.Error(err))
		} else {
			cacheable = true
		}
	}

	history, err := s.buildHistory(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		stored, err := s.history.Set(ctx, generation, history)
		if err != nil {
			s.logger.Warn("Failed to write history cache", zap.Error(err))
		} else if !stored {
			s.logger.Debug("History changed while building, cache not updated")
		}
	}

	return history, nil
}

func (s *QueryService) buildHistory(ctx context.Context) ([]model.StudentHistory, error) {
	requests, err := s.store.Requests().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list room requests: %w", err)
	}

	rooms, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	roomsByID := make(map[int64]*model.Room, len(rooms))
	for _, room := range rooms {
		roomsByID[room.ID] = room
	}

	hostels, err := s.hostelsByID(ctx)
	if err != nil {
		return nil, err
	}

	grouped := map[int64][]model.HistoryItem{}
	var ids []int64
	for _, req := range requests {
		if _, ok := grouped[req.StudentID]; !ok {
			ids = append(ids, req.StudentID)
		}

		item := model.HistoryItem{
			RequestID: req.ID,
			RoomID:    req.RoomID,
			Bed:       req.Bed,
			Status:    req.Status,
			CreatedAt: req.CreatedAt,
		}
		if room, ok := roomsByID[req.RoomID]; ok {
			item.RoomNumber = room.RoomNumber
			item.Block = room.RoomBlock
			item.Floor = room.RoomFloor
			item.HostelID = room.HostelID
			if h, ok := hostels[room.HostelID]; ok {
				item.HostelName = h.Name
			}
		}

		grouped[req.StudentID] = append(grouped[req.StudentID], item)
	}

	students, err := s.studentsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	history := make([]model.StudentHistory, 0, len(ids))
	for _, id := range ids {
		items := grouped[id]
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
		history = append(history, model.StudentHistory{
			Student: studentOrStub(students, id),
			Items:   items,
		})
	}

	return history, nil
}

// StudentHistory история одного студента
func (s *QueryService) StudentHistory(ctx context.Context, studentID int64) (*model.StudentHistory, error) {
	st, err := requireStudent(ctx, s.store, studentID)
	if err != nil {
		return nil, err
	}

	history, err := s.ListHistory(ctx)
	if err != nil {
		return nil, err
	}

	for i := range history {
		if history[i].Student.ID == studentID {
			return &history[i], nil
		}
	}

	return &model.StudentHistory{Student: st, Items: []model.HistoryItem{}}, nil
}

// Stats публичная статистика по кроватям. Занятость берётся из массива кроватей.
func (s *QueryService) Stats(ctx context.Context) (*model.HostelStats, error) {
	hostels, err := s.store.Hostels().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}

	rooms, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	stats := &model.HostelStats{Hostels: len(hostels)}

	campuses := map[string]bool{}
	for _, h := range hostels {
		if h.HostelCampus != "" {
			campuses[h.HostelCampus] = true
		}
	}
	stats.Campuses = len(campuses)

	for _, room := range rooms {
		occupied := allocation.Occupancy(room)
		stats.OccupiedBeds += occupied
		if room.IsAvailable() {
			stats.AvailableBeds += room.Capacity - occupied
		}
	}

	return stats, nil
}

// FindAllocation ищет кровать студента среди всех комнат
func (s *QueryService) FindAllocation(ctx context.Context, studentID int64) (*model.Allocation, error) {
	allocations, err := s.ListAllocations(ctx)
	if err != nil {
		return nil, err
	}

	for a := range allocations {
		if a.Student.ID == studentID {
			return &a, nil
		}
	}

	return nil, apperr.ErrNotAssigned
}
