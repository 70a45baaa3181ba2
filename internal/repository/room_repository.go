package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const roomColumns = `id, hostel_id, room_number, room_block, room_floor, status, capacity,
	assigned_students, current_occupancy, created_at, updated_at`

type PostgresRoomRepository struct {
	*base.Repository
}

func NewPostgresRoomRepository(db base.Querier) *PostgresRoomRepository {
	return &PostgresRoomRepository{Repository: base.NewRepository(db)}
}

func scanRoom(row pgx.Row) (*model.Room, error) {
	var room model.Room
	err := row.Scan(
		&room.ID,
		&room.HostelID,
		&room.RoomNumber,
		&room.RoomBlock,
		&room.RoomFloor,
		&room.Status,
		&room.Capacity,
		&room.AssignedStudents,
		&room.CurrentOccupancy,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Create создаёт новую комнату
func (r *PostgresRoomRepository) Create(ctx context.Context, room *model.Room) error {
	query := `
		INSERT INTO rooms (hostel_id, room_number, room_block, room_floor, status, capacity, assigned_students, current_occupancy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		room.HostelID,
		room.RoomNumber,
		room.RoomBlock,
		room.RoomFloor,
		room.Status,
		room.Capacity,
		room.AssignedStudents,
		room.CurrentOccupancy,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)

	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return apperr.ErrHostelNotFound
		}
		return fmt.Errorf("create room: %w", err)
	}

	return nil
}

// GetByID получает комнату по ID
func (r *PostgresRoomRepository) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get room by id: %w", err)
	}

	return room, nil
}

// GetForUpdate получает комнату с блокировкой строки (работает внутри транзакции)
func (r *PostgresRoomRepository) GetForUpdate(ctx context.Context, id int64) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 FOR UPDATE`

	room, err := scanRoom(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock room: %w", err)
	}

	return room, nil
}

// List получает все комнаты
func (r *PostgresRoomRepository) List(ctx context.Context) ([]*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY hostel_id, room_block, room_floor, room_number, id`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}

	return rooms, nil
}

// Save записывает комнату целиком
func (r *PostgresRoomRepository) Save(ctx context.Context, room *model.Room) error {
	query := `
		UPDATE rooms
		SET hostel_id = $1, room_number = $2, room_block = $3, room_floor = $4, status = $5,
		    capacity = $6, assigned_students = $7, current_occupancy = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		room.HostelID,
		room.RoomNumber,
		room.RoomBlock,
		room.RoomFloor,
		room.Status,
		room.Capacity,
		room.AssignedStudents,
		room.CurrentOccupancy,
		room.ID,
	).Scan(&room.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return apperr.ErrRoomNotFound
		}
		if base.IsForeignKeyViolation(err) {
			return apperr.ErrHostelNotFound
		}
		return fmt.Errorf("save room: %w", err)
	}

	return nil
}

// Delete удаляет комнату. Заявки на комнату держат её внешним ключом.
func (r *PostgresRoomRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return apperr.ErrRoomHasRequests
		}
		return fmt.Errorf("delete room: %w", err)
	}

	if affected == 0 {
		return apperr.ErrRoomNotFound
	}

	return nil
}
