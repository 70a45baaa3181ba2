package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Freeeeeet/hostel_rooms/internal/allocation"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeHistoryCache struct {
	mu          sync.Mutex
	value       []model.StudentHistory
	ok          bool
	generation  int64
	invalidated int
	rejected    int
}

func (c *fakeHistoryCache) Get(context.Context) ([]model.StudentHistory, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.ok, nil
}

func (c *fakeHistoryCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, nil
}

func (c *fakeHistoryCache) Set(_ context.Context, generation int64, history []model.StudentHistory) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		c.rejected++
		return false, nil
	}
	c.value, c.ok = history, true
	return true, nil
}

func (c *fakeHistoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value, c.ok = nil, false
	c.generation++
	c.invalidated++
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	created  []*model.RoomRequest
	resolved []*model.RoomRequest
}

func (n *fakeNotifier) RequestCreated(_ context.Context, req *model.RoomRequest, _ *model.Student, _ *model.Room) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, req)
}

func (n *fakeNotifier) RequestResolved(_ context.Context, req *model.RoomRequest, _ *model.Student, _ *model.Room) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = append(n.resolved, req)
}

type testEnv struct {
	store    *repository.MemoryStore
	cache    *fakeHistoryCache
	notifier *fakeNotifier

	rooms    *RoomService
	requests *RequestService
	queries  *QueryService
	hostels  *HostelService
	students *StudentService

	hostel *model.Hostel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	cache := &fakeHistoryCache{}
	notifier := &fakeNotifier{}
	logger := zap.NewNop()

	env := &testEnv{
		store:    store,
		cache:    cache,
		notifier: notifier,
		rooms:    NewRoomService(store, cache, logger),
		requests: NewRequestService(store, cache, notifier, logger),
		queries:  NewQueryService(store, cache, logger),
		hostels:  NewHostelService(store, cache, logger),
		students: NewStudentService(store, logger),
	}

	hostel, err := env.hostels.Create(context.Background(), CreateHostelInput{
		Name:         "Queen Amina",
		HostelCampus: "Main",
		Block:        "A",
		Floor:        "1",
		Location:     "North gate",
	})
	require.NoError(t, err)
	env.hostel = hostel

	return env
}

func (e *testEnv) newStudent(t *testing.T, name string) *model.Student {
	t.Helper()
	student, err := e.students.Register(context.Background(), RegisterStudentInput{
		FirstName:    name,
		LastName:     "Test",
		MatricNumber: "M-" + name,
	})
	require.NoError(t, err)
	return student
}

func (e *testEnv) newRoom(t *testing.T, capacity int) *model.Room {
	t.Helper()
	room, err := e.rooms.Create(context.Background(), CreateRoomInput{
		HostelID:   e.hostel.ID,
		RoomNumber: "101",
		RoomBlock:  "A",
		RoomFloor:  "1",
		Capacity:   capacity,
	})
	require.NoError(t, err)
	return room
}

func (e *testEnv) room(t *testing.T, id int64) *model.Room {
	t.Helper()
	room, err := e.store.Rooms().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, room)
	return room
}

// hookStore вызывает хуки вокруг отдельных операций с заявками,
// в том числе внутри транзакций
type hookStore struct {
	repository.Store
	beforeRequestCreate func()
	afterRequestList    func()
}

func (s *hookStore) Requests() repository.RoomRequestRepository {
	return hookRequests{RoomRequestRepository: s.Store.Requests(), hooks: s}
}

func (s *hookStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return fn(ctx, &hookStore{
			Store:               tx,
			beforeRequestCreate: s.beforeRequestCreate,
			afterRequestList:    s.afterRequestList,
		})
	})
}

type hookRequests struct {
	repository.RoomRequestRepository
	hooks *hookStore
}

func (r hookRequests) Create(ctx context.Context, req *model.RoomRequest) error {
	if r.hooks.beforeRequestCreate != nil {
		r.hooks.beforeRequestCreate()
	}
	return r.RoomRequestRepository.Create(ctx, req)
}

func (r hookRequests) List(ctx context.Context) ([]*model.RoomRequest, error) {
	requests, err := r.RoomRequestRepository.List(ctx)
	if r.hooks.afterRequestList != nil {
		r.hooks.afterRequestList()
	}
	return requests, err
}

// requireRoomInvariants проверяет занятость и отсутствие двойного размещения
func requireRoomInvariants(t *testing.T, room *model.Room) {
	t.Helper()

	require.Len(t, room.AssignedStudents, room.Capacity)
	require.Equal(t, allocation.Occupancy(room), room.CurrentOccupancy)
	require.LessOrEqual(t, room.CurrentOccupancy, room.Capacity)

	seen := map[int64]bool{}
	for _, s := range room.AssignedStudents {
		if s == nil {
			continue
		}
		require.False(t, seen[*s], "student %d holds two beds", *s)
		seen[*s] = true
	}
}
