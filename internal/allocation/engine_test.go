package allocation

import (
	"math/rand"
	"testing"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(capacity int) *model.Room {
	return model.NewRoom(1, "101", "A", "1", capacity)
}

func assertConsistent(t *testing.T, room *model.Room) {
	t.Helper()

	require.Len(t, room.AssignedStudents, room.Capacity)
	assert.Equal(t, Occupancy(room), room.CurrentOccupancy)
	assert.GreaterOrEqual(t, room.CurrentOccupancy, 0)
	assert.LessOrEqual(t, room.CurrentOccupancy, room.Capacity)

	seen := map[int64]bool{}
	for _, s := range room.AssignedStudents {
		if s == nil {
			continue
		}
		assert.False(t, seen[*s], "student %d holds two beds", *s)
		seen[*s] = true
	}
}

func TestAssignToBed(t *testing.T) {
	room := newRoom(2)

	require.NoError(t, AssignToBed(room, 10, 0))
	assert.Equal(t, 1, room.CurrentOccupancy)
	assert.True(t, HoldsBed(room, 10, 0))

	err := AssignToBed(room, 20, 0)
	assert.ErrorIs(t, err, apperr.ErrBedOccupied)
	assert.Equal(t, 1, room.CurrentOccupancy)

	err = AssignToBed(room, 10, 1)
	assert.ErrorIs(t, err, apperr.ErrAlreadyAssigned)
	assert.Nil(t, room.AssignedStudents[1])

	assertConsistent(t, room)
}

func TestAssignToBed_InvalidIndexLeavesRoomUnchanged(t *testing.T) {
	room := newRoom(3)
	require.NoError(t, AssignToBed(room, 7, 1))
	before := room.Clone()

	for _, bed := range []int{-1, 3, 4, 100} {
		err := AssignToBed(room, 8, bed)
		assert.ErrorIs(t, err, apperr.ErrInvalidBedIndex, "bed %d", bed)
		assert.Equal(t, before, room)
	}
}

func TestAssignToNextAvailable(t *testing.T) {
	room := newRoom(2)
	require.NoError(t, AssignToBed(room, 1, 0))

	bed, err := AssignToNextAvailable(room, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, bed)

	_, err = AssignToNextAvailable(room, 3)
	assert.ErrorIs(t, err, apperr.ErrRoomFull)

	_, err = Unassign(room, 1)
	require.NoError(t, err)

	_, err = AssignToNextAvailable(room, 2)
	assert.ErrorIs(t, err, apperr.ErrAlreadyAssigned)

	bed, err = AssignToNextAvailable(room, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, bed)

	assertConsistent(t, room)
}

func TestAssignToNextAvailable_IgnoresStaleCounter(t *testing.T) {
	room := newRoom(2)
	room.CurrentOccupancy = 2 // расхождение с массивом кроватей

	bed, err := AssignToNextAvailable(room, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, bed)
	assert.Equal(t, 1, room.CurrentOccupancy)
}

func TestUnassign_ByValue(t *testing.T) {
	room := newRoom(3)
	require.NoError(t, AssignToBed(room, 1, 0))
	require.NoError(t, AssignToBed(room, 2, 1))
	require.NoError(t, AssignToBed(room, 3, 2))

	bed, err := Unassign(room, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, bed)

	// Остальные кровати не сдвигаются
	assert.True(t, HoldsBed(room, 1, 0))
	assert.Nil(t, room.AssignedStudents[1])
	assert.True(t, HoldsBed(room, 3, 2))

	_, err = Unassign(room, 2)
	assert.ErrorIs(t, err, apperr.ErrNotAssigned)

	assertConsistent(t, room)
}

func TestUnassignThenReassign_KeepsOccupancy(t *testing.T) {
	room := newRoom(4)
	require.NoError(t, AssignToBed(room, 100, 3))
	before := room.CurrentOccupancy

	require.NoError(t, AssignToBed(room, 1, 2))
	_, err := Unassign(room, 1)
	require.NoError(t, err)
	require.NoError(t, AssignToBed(room, 2, 2))
	_, err = Unassign(room, 2)
	require.NoError(t, err)

	assert.Equal(t, before, room.CurrentOccupancy)

	require.NoError(t, AssignToBed(room, 1, 2))
	_, err = Unassign(room, 1)
	require.NoError(t, err)
	require.NoError(t, AssignToBed(room, 2, 2))
	assert.Equal(t, before+1, room.CurrentOccupancy)
	assertConsistent(t, room)
}

func TestRandomOperations_PreserveInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	room := newRoom(5)

	for i := 0; i < 2000; i++ {
		student := int64(rng.Intn(8))
		switch rng.Intn(3) {
		case 0:
			_ = AssignToBed(room, student, rng.Intn(7)-1)
		case 1:
			_, _ = AssignToNextAvailable(room, student)
		case 2:
			_, _ = Unassign(room, student)
		}
		assertConsistent(t, room)
	}
}

func TestResize(t *testing.T) {
	room := newRoom(3)
	require.NoError(t, AssignToBed(room, 1, 1))

	require.NoError(t, Resize(room, 5))
	assert.Len(t, room.AssignedStudents, 5)
	assert.True(t, HoldsBed(room, 1, 1))

	require.NoError(t, Resize(room, 2))
	assert.Len(t, room.AssignedStudents, 2)

	assert.ErrorIs(t, Resize(room, 1), apperr.ErrCapacityConflict)
	assert.Equal(t, 2, room.Capacity)

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(Resize(room, 0)))
	assertConsistent(t, room)
}

func TestRecount_ReportsDrift(t *testing.T) {
	room := newRoom(2)
	require.NoError(t, AssignToBed(room, 1, 0))

	assert.False(t, Recount(room))
	room.CurrentOccupancy = 2
	assert.True(t, Recount(room))
	assert.Equal(t, 1, room.CurrentOccupancy)
}
