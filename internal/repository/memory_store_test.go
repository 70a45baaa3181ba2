package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_WithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	room := model.NewRoom(1, "101", "A", "1", 2)
	require.NoError(t, store.Rooms().Create(ctx, room))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		locked, err := tx.Rooms().GetForUpdate(ctx, room.ID)
		require.NoError(t, err)

		id := int64(5)
		locked.AssignedStudents[0] = &id
		locked.CurrentOccupancy = 1
		require.NoError(t, tx.Rooms().Save(ctx, locked))

		_, err = tx.Requests().UpdateStatus(ctx, 999, model.RoomRequestStatusPending, model.RoomRequestStatusApproved)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := store.Rooms().GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedStudents[0])
	assert.Equal(t, 0, stored.CurrentOccupancy)
}

func TestMemoryStore_WithinTxCommits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	room := model.NewRoom(1, "101", "A", "1", 1)
	require.NoError(t, store.Rooms().Create(ctx, room))

	err := store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
		locked, err := tx.Rooms().GetForUpdate(ctx, room.ID)
		if err != nil {
			return err
		}
		id := int64(9)
		locked.AssignedStudents[0] = &id
		locked.CurrentOccupancy = 1
		return tx.Rooms().Save(ctx, locked)
	})
	require.NoError(t, err)

	stored, err := store.Rooms().GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssignedStudents[0])
	assert.Equal(t, int64(9), *stored.AssignedStudents[0])
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	room := model.NewRoom(1, "101", "A", "1", 1)
	require.NoError(t, store.Rooms().Create(ctx, room))

	got, err := store.Rooms().GetByID(ctx, room.ID)
	require.NoError(t, err)
	id := int64(1)
	got.AssignedStudents[0] = &id

	again, err := store.Rooms().GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, again.AssignedStudents[0])
}

func TestMemoryStore_DuplicatePendingRequest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := &model.RoomRequest{StudentID: 1, RoomID: 2, Bed: 0, Status: model.RoomRequestStatusPending}
	require.NoError(t, store.Requests().Create(ctx, first))

	dup := &model.RoomRequest{StudentID: 1, RoomID: 2, Bed: 0, Status: model.RoomRequestStatusPending}
	assert.ErrorIs(t, store.Requests().Create(ctx, dup), apperr.ErrDuplicateRequest)

	otherBed := &model.RoomRequest{StudentID: 1, RoomID: 2, Bed: 1, Status: model.RoomRequestStatusPending}
	require.NoError(t, store.Requests().Create(ctx, otherBed))

	ok, err := store.Requests().UpdateStatus(ctx, first.ID, model.RoomRequestStatusPending, model.RoomRequestStatusDeclined)
	require.NoError(t, err)
	require.True(t, ok)

	again := &model.RoomRequest{StudentID: 1, RoomID: 2, Bed: 0, Status: model.RoomRequestStatusPending}
	require.NoError(t, store.Requests().Create(ctx, again))

	count, err := store.Requests().CountByRoom(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMemoryStore_UpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	req := &model.RoomRequest{StudentID: 1, RoomID: 2, Bed: 0, Status: model.RoomRequestStatusPending}
	require.NoError(t, store.Requests().Create(ctx, req))

	ok, err := store.Requests().UpdateStatus(ctx, req.ID, model.RoomRequestStatusPending, model.RoomRequestStatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Requests().UpdateStatus(ctx, req.ID, model.RoomRequestStatusPending, model.RoomRequestStatusDeclined)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomRequestStatusApproved, stored.Status)
	assert.NotNil(t, stored.UpdatedAt)
}

func TestMemoryStore_ConcurrentTransactionsSerialize(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	room := model.NewRoom(1, "101", "A", "1", 1)
	require.NoError(t, store.Rooms().Create(ctx, room))

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(student int64) {
			defer wg.Done()
			err := store.WithinTx(ctx, func(ctx context.Context, tx Store) error {
				locked, err := tx.Rooms().GetForUpdate(ctx, room.ID)
				if err != nil {
					return err
				}
				if locked.AssignedStudents[0] != nil {
					return apperr.ErrBedOccupied
				}
				locked.AssignedStudents[0] = &student
				locked.CurrentOccupancy = 1
				return tx.Rooms().Save(ctx, locked)
			})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestMemoryStore_HostelUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Hostels().Create(ctx, &model.Hostel{Name: "Queen Amina", HostelCampus: "Main"}))
	err := store.Hostels().Create(ctx, &model.Hostel{Name: "Queen Amina", HostelCampus: "Main"})
	assert.ErrorIs(t, err, apperr.ErrHostelExists)
	require.NoError(t, store.Hostels().Create(ctx, &model.Hostel{Name: "Queen Amina", HostelCampus: "Annex"}))
}

func TestMemoryStore_HostelUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	primary := &model.Hostel{Name: "Queen Amina", HostelCampus: "Main"}
	annex := &model.Hostel{Name: "Queen Amina", HostelCampus: "Annex"}
	require.NoError(t, store.Hostels().Create(ctx, primary))
	require.NoError(t, store.Hostels().Create(ctx, annex))

	clash := *annex
	clash.HostelCampus = "Main"
	assert.ErrorIs(t, store.Hostels().Update(ctx, &clash), apperr.ErrHostelExists)

	renamed := *primary
	renamed.Description = "renovated"
	require.NoError(t, store.Hostels().Update(ctx, &renamed))
	got, err := store.Hostels().GetByID(ctx, primary.ID)
	require.NoError(t, err)
	assert.Equal(t, "renovated", got.Description)
	assert.Equal(t, primary.CreatedAt, got.CreatedAt)

	room := model.NewRoom(primary.ID, "101", "A", "1", 1)
	require.NoError(t, store.Rooms().Create(ctx, room))
	assert.ErrorIs(t, store.Hostels().Delete(ctx, primary.ID), apperr.ErrHostelHasRooms)

	require.NoError(t, store.Rooms().Delete(ctx, room.ID))
	require.NoError(t, store.Hostels().Delete(ctx, primary.ID))
	assert.ErrorIs(t, store.Hostels().Delete(ctx, primary.ID), apperr.ErrHostelNotFound)
	assert.ErrorIs(t, store.Hostels().Update(ctx, &renamed), apperr.ErrHostelNotFound)
}

func TestMemoryStore_RoomWithRequestsIsNotDeleted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	room := model.NewRoom(1, "101", "A", "1", 1)
	require.NoError(t, store.Rooms().Create(ctx, room))
	req := &model.RoomRequest{StudentID: 1, RoomID: room.ID, Bed: 0, Status: model.RoomRequestStatusDeclined}
	require.NoError(t, store.Requests().Create(ctx, req))

	assert.ErrorIs(t, store.Rooms().Delete(ctx, room.ID), apperr.ErrRoomHasRequests)
}

func TestMemoryStore_StudentByTelegramChat(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	chat := int64(99)
	linked := &model.Student{FirstName: "Ada", TelegramChatID: &chat}
	require.NoError(t, store.Students().Create(ctx, linked))
	require.NoError(t, store.Students().Create(ctx, &model.Student{FirstName: "Bola"}))

	got, err := store.Students().GetByTelegramChatID(ctx, 99)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, linked.ID, got.ID)

	missing, err := store.Students().GetByTelegramChatID(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
