package repository

import (
	"context"

	"github.com/Freeeeeet/hostel_rooms/internal/model"
)

// Соглашение как и раньше: отсутствие записи - это (nil, nil), а не ошибка.

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id int64) (*model.Room, error)
	// GetForUpdate читает комнату и блокирует её до конца транзакции
	GetForUpdate(ctx context.Context, id int64) (*model.Room, error)
	List(ctx context.Context) ([]*model.Room, error)
	// Save сохраняет все поля комнаты, включая кровати и производную занятость
	Save(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id int64) error
}

type RoomRequestRepository interface {
	// Create создаёт заявку; повтор pending-заявки возвращает apperr.ErrDuplicateRequest
	Create(ctx context.Context, req *model.RoomRequest) error
	GetByID(ctx context.Context, id int64) (*model.RoomRequest, error)
	GetForUpdate(ctx context.Context, id int64) (*model.RoomRequest, error)
	List(ctx context.Context) ([]*model.RoomRequest, error)
	GetByStudent(ctx context.Context, studentID int64) ([]*model.RoomRequest, error)
	GetPendingByRoom(ctx context.Context, roomID int64) ([]*model.RoomRequest, error)
	CountByRoom(ctx context.Context, roomID int64) (int, error)
	// UpdateStatus меняет статус только если текущий равен from
	UpdateStatus(ctx context.Context, id int64, from, to model.RoomRequestStatus) (bool, error)
}

type HostelRepository interface {
	Create(ctx context.Context, hostel *model.Hostel) error
	GetByID(ctx context.Context, id int64) (*model.Hostel, error)
	List(ctx context.Context) ([]*model.Hostel, error)
	// Update возвращает apperr.ErrHostelExists при совпадении имени и кампуса
	Update(ctx context.Context, hostel *model.Hostel) error
	// Delete возвращает apperr.ErrHostelHasRooms, пока на общежитие ссылаются комнаты
	Delete(ctx context.Context, id int64) error
}

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id int64) (*model.Student, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*model.Student, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*model.Student, error)
}

// Store единица работы над хранилищем
type Store interface {
	Rooms() RoomRepository
	Requests() RoomRequestRepository
	Hostels() HostelRepository
	Students() StudentRepository

	// WithinTx выполняет fn атомарно: либо все изменения сохраняются, либо ни одно
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
