package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
)

// MemoryStore хранилище в памяти: для запуска без DB_DSN и для тестов.
// Транзакции сериализуются одним мьютексом и применяются copy-on-write.
type MemoryStore struct {
	mu   *sync.RWMutex // nil внутри транзакции
	data *memoryData
}

type memoryData struct {
	rooms    map[int64]*model.Room
	requests map[int64]*model.RoomRequest
	hostels  map[int64]*model.Hostel
	students map[int64]*model.Student
	lastID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.RWMutex{},
		data: &memoryData{
			rooms:    map[int64]*model.Room{},
			requests: map[int64]*model.RoomRequest{},
			hostels:  map[int64]*model.Hostel{},
			students: map[int64]*model.Student{},
		},
	}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		rooms:    make(map[int64]*model.Room, len(d.rooms)),
		requests: make(map[int64]*model.RoomRequest, len(d.requests)),
		hostels:  make(map[int64]*model.Hostel, len(d.hostels)),
		students: make(map[int64]*model.Student, len(d.students)),
		lastID:   d.lastID,
	}
	for id, r := range d.rooms {
		c.rooms[id] = r.Clone()
	}
	for id, r := range d.requests {
		c.requests[id] = copyRequest(r)
	}
	for id, h := range d.hostels {
		hc := *h
		c.hostels[id] = &hc
	}
	for id, s := range d.students {
		c.students[id] = copyStudent(s)
	}
	return c
}

func (d *memoryData) nextID() int64 {
	d.lastID++
	return d.lastID
}

func (s *MemoryStore) read(fn func(d *memoryData)) {
	if s.mu != nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn(s.data)
}

func (s *MemoryStore) write(fn func(d *memoryData)) {
	if s.mu != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn(s.data)
}

func (s *MemoryStore) Rooms() RoomRepository           { return memoryRooms{s} }
func (s *MemoryStore) Requests() RoomRequestRepository { return memoryRequests{s} }
func (s *MemoryStore) Hostels() HostelRepository       { return memoryHostels{s} }
func (s *MemoryStore) Students() StudentRepository     { return memoryStudents{s} }

// WithinTx выполняет fn над копией данных и публикует её только при успехе
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.mu == nil {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{data: s.data.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.data = tx.data
	return nil
}

func copyRequest(r *model.RoomRequest) *model.RoomRequest {
	c := *r
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

func copyStudent(s *model.Student) *model.Student {
	c := *s
	if s.TelegramChatID != nil {
		id := *s.TelegramChatID
		c.TelegramChatID = &id
	}
	return &c
}

// ============ Комнаты ============

type memoryRooms struct{ s *MemoryStore }

func (r memoryRooms) Create(_ context.Context, room *model.Room) error {
	r.s.write(func(d *memoryData) {
		now := time.Now()
		room.ID = d.nextID()
		room.CreatedAt = now
		room.UpdatedAt = now
		d.rooms[room.ID] = room.Clone()
	})
	return nil
}

func (r memoryRooms) GetByID(_ context.Context, id int64) (*model.Room, error) {
	var room *model.Room
	r.s.read(func(d *memoryData) {
		if stored, ok := d.rooms[id]; ok {
			room = stored.Clone()
		}
	})
	return room, nil
}

func (r memoryRooms) GetForUpdate(ctx context.Context, id int64) (*model.Room, error) {
	return r.GetByID(ctx, id)
}

func (r memoryRooms) List(_ context.Context) ([]*model.Room, error) {
	var rooms []*model.Room
	r.s.read(func(d *memoryData) {
		for _, room := range d.rooms {
			rooms = append(rooms, room.Clone())
		}
	})
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (r memoryRooms) Save(_ context.Context, room *model.Room) error {
	var err error
	r.s.write(func(d *memoryData) {
		if _, ok := d.rooms[room.ID]; !ok {
			err = apperr.ErrRoomNotFound
			return
		}
		room.UpdatedAt = time.Now()
		d.rooms[room.ID] = room.Clone()
	})
	return err
}

func (r memoryRooms) Delete(_ context.Context, id int64) error {
	var err error
	r.s.write(func(d *memoryData) {
		if _, ok := d.rooms[id]; !ok {
			err = apperr.ErrRoomNotFound
			return
		}
		for _, req := range d.requests {
			if req.RoomID == id {
				err = apperr.ErrRoomHasRequests
				return
			}
		}
		delete(d.rooms, id)
	})
	return err
}

// ============ Заявки ============

type memoryRequests struct{ s *MemoryStore }

func (r memoryRequests) Create(_ context.Context, req *model.RoomRequest) error {
	var err error
	r.s.write(func(d *memoryData) {
		if req.Status == model.RoomRequestStatusPending {
			for _, existing := range d.requests {
				if existing.IsPending() &&
					existing.StudentID == req.StudentID &&
					existing.RoomID == req.RoomID &&
					existing.Bed == req.Bed {
					err = apperr.ErrDuplicateRequest
					return
				}
			}
		}
		req.ID = d.nextID()
		req.CreatedAt = time.Now()
		d.requests[req.ID] = copyRequest(req)
	})
	return err
}

func (r memoryRequests) GetByID(_ context.Context, id int64) (*model.RoomRequest, error) {
	var req *model.RoomRequest
	r.s.read(func(d *memoryData) {
		if stored, ok := d.requests[id]; ok {
			req = copyRequest(stored)
		}
	})
	return req, nil
}

func (r memoryRequests) GetForUpdate(ctx context.Context, id int64) (*model.RoomRequest, error) {
	return r.GetByID(ctx, id)
}

func (r memoryRequests) filter(keep func(req *model.RoomRequest) bool) []*model.RoomRequest {
	var requests []*model.RoomRequest
	r.s.read(func(d *memoryData) {
		for _, req := range d.requests {
			if keep(req) {
				requests = append(requests, copyRequest(req))
			}
		}
	})
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests
}

func (r memoryRequests) List(_ context.Context) ([]*model.RoomRequest, error) {
	return r.filter(func(*model.RoomRequest) bool { return true }), nil
}

func (r memoryRequests) GetByStudent(_ context.Context, studentID int64) ([]*model.RoomRequest, error) {
	return r.filter(func(req *model.RoomRequest) bool { return req.StudentID == studentID }), nil
}

func (r memoryRequests) GetPendingByRoom(_ context.Context, roomID int64) ([]*model.RoomRequest, error) {
	return r.filter(func(req *model.RoomRequest) bool {
		return req.RoomID == roomID && req.IsPending()
	}), nil
}

func (r memoryRequests) CountByRoom(_ context.Context, roomID int64) (int, error) {
	return len(r.filter(func(req *model.RoomRequest) bool { return req.RoomID == roomID })), nil
}

func (r memoryRequests) UpdateStatus(_ context.Context, id int64, from, to model.RoomRequestStatus) (bool, error) {
	updated := false
	r.s.write(func(d *memoryData) {
		req, ok := d.requests[id]
		if !ok || req.Status != from {
			return
		}
		now := time.Now()
		req.Status = to
		req.UpdatedAt = &now
		updated = true
	})
	return updated, nil
}

// ============ Общежития ============

type memoryHostels struct{ s *MemoryStore }

func (r memoryHostels) Create(_ context.Context, hostel *model.Hostel) error {
	var err error
	r.s.write(func(d *memoryData) {
		for _, h := range d.hostels {
			if h.Name == hostel.Name && h.HostelCampus == hostel.HostelCampus {
				err = apperr.ErrHostelExists
				return
			}
		}
		hostel.ID = d.nextID()
		hostel.CreatedAt = time.Now()
		h := *hostel
		d.hostels[hostel.ID] = &h
	})
	return err
}

func (r memoryHostels) GetByID(_ context.Context, id int64) (*model.Hostel, error) {
	var hostel *model.Hostel
	r.s.read(func(d *memoryData) {
		if h, ok := d.hostels[id]; ok {
			c := *h
			hostel = &c
		}
	})
	return hostel, nil
}

func (r memoryHostels) List(_ context.Context) ([]*model.Hostel, error) {
	var hostels []*model.Hostel
	r.s.read(func(d *memoryData) {
		for _, h := range d.hostels {
			c := *h
			hostels = append(hostels, &c)
		}
	})
	sort.Slice(hostels, func(i, j int) bool { return hostels[i].ID < hostels[j].ID })
	return hostels, nil
}

func (r memoryHostels) Update(_ context.Context, hostel *model.Hostel) error {
	var err error
	r.s.write(func(d *memoryData) {
		stored, ok := d.hostels[hostel.ID]
		if !ok {
			err = apperr.ErrHostelNotFound
			return
		}
		for _, h := range d.hostels {
			if h.ID != hostel.ID && h.Name == hostel.Name && h.HostelCampus == hostel.HostelCampus {
				err = apperr.ErrHostelExists
				return
			}
		}
		h := *hostel
		h.CreatedAt = stored.CreatedAt
		d.hostels[hostel.ID] = &h
	})
	return err
}

func (r memoryHostels) Delete(_ context.Context, id int64) error {
	var err error
	r.s.write(func(d *memoryData) {
		if _, ok := d.hostels[id]; !ok {
			err = apperr.ErrHostelNotFound
			return
		}
		for _, room := range d.rooms {
			if room.HostelID == id {
				err = apperr.ErrHostelHasRooms
				return
			}
		}
		delete(d.hostels, id)
	})
	return err
}

// ============ Студенты ============

type memoryStudents struct{ s *MemoryStore }

func (r memoryStudents) Create(_ context.Context, student *model.Student) error {
	r.s.write(func(d *memoryData) {
		student.ID = d.nextID()
		student.CreatedAt = time.Now()
		d.students[student.ID] = copyStudent(student)
	})
	return nil
}

func (r memoryStudents) GetByID(_ context.Context, id int64) (*model.Student, error) {
	var student *model.Student
	r.s.read(func(d *memoryData) {
		if s, ok := d.students[id]; ok {
			student = copyStudent(s)
		}
	})
	return student, nil
}

func (r memoryStudents) GetByIDs(_ context.Context, ids []int64) ([]*model.Student, error) {
	students := []*model.Student{}
	r.s.read(func(d *memoryData) {
		for _, id := range ids {
			if s, ok := d.students[id]; ok {
				students = append(students, copyStudent(s))
			}
		}
	})
	return students, nil
}

func (r memoryStudents) GetByTelegramChatID(_ context.Context, chatID int64) (*model.Student, error) {
	var student *model.Student
	r.s.read(func(d *memoryData) {
		for _, s := range d.students {
			if s.TelegramChatID != nil && *s.TelegramChatID == chatID {
				if student == nil || s.ID < student.ID {
					student = copyStudent(s)
				}
			}
		}
	})
	return student, nil
}
