package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const roomRequestColumns = `id, student_id, room_id, bed, status, created_at, updated_at`

type PostgresRoomRequestRepository struct {
	*base.Repository
}

func NewPostgresRoomRequestRepository(db base.Querier) *PostgresRoomRequestRepository {
	return &PostgresRoomRequestRepository{Repository: base.NewRepository(db)}
}

func scanRoomRequest(row pgx.Row) (*model.RoomRequest, error) {
	var req model.RoomRequest
	err := row.Scan(
		&req.ID,
		&req.StudentID,
		&req.RoomID,
		&req.Bed,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create создает заявку
func (r *PostgresRoomRequestRepository) Create(ctx context.Context, req *model.RoomRequest) error {
	query := `
		INSERT INTO room_requests (student_id, room_id, bed, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		req.StudentID,
		req.RoomID,
		req.Bed,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return apperr.ErrDuplicateRequest
		}
		return fmt.Errorf("create room request: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *PostgresRoomRequestRepository) GetByID(ctx context.Context, id int64) (*model.RoomRequest, error) {
	query := `SELECT ` + roomRequestColumns + ` FROM room_requests WHERE id = $1`

	req, err := scanRoomRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get room request: %w", err)
	}

	return req, nil
}

// GetForUpdate получает заявку с блокировкой строки
func (r *PostgresRoomRequestRepository) GetForUpdate(ctx context.Context, id int64) (*model.RoomRequest, error) {
	query := `SELECT ` + roomRequestColumns + ` FROM room_requests WHERE id = $1 FOR UPDATE`

	req, err := scanRoomRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock room request: %w", err)
	}

	return req, nil
}

func (r *PostgresRoomRequestRepository) list(ctx context.Context, query string, args ...any) ([]*model.RoomRequest, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query room requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.RoomRequest
	for rows.Next() {
		req, err := scanRoomRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room requests: %w", err)
	}

	return requests, nil
}

// List получает все заявки
func (r *PostgresRoomRequestRepository) List(ctx context.Context) ([]*model.RoomRequest, error) {
	return r.list(ctx, `SELECT `+roomRequestColumns+` FROM room_requests ORDER BY created_at, id`)
}

// GetByStudent получает заявки студента
func (r *PostgresRoomRequestRepository) GetByStudent(ctx context.Context, studentID int64) ([]*model.RoomRequest, error) {
	return r.list(ctx, `
		SELECT `+roomRequestColumns+`
		FROM room_requests
		WHERE student_id = $1
		ORDER BY created_at, id
	`, studentID)
}

// GetPendingByRoom получает pending заявки на комнату
func (r *PostgresRoomRequestRepository) GetPendingByRoom(ctx context.Context, roomID int64) ([]*model.RoomRequest, error) {
	return r.list(ctx, `
		SELECT `+roomRequestColumns+`
		FROM room_requests
		WHERE room_id = $1 AND status = $2
		ORDER BY created_at, id
	`, roomID, model.RoomRequestStatusPending)
}

// CountByRoom подсчитывает все заявки, ссылающиеся на комнату
func (r *PostgresRoomRequestRepository) CountByRoom(ctx context.Context, roomID int64) (int, error) {
	var count int
	err := r.QueryRow(ctx, `SELECT COUNT(*) FROM room_requests WHERE room_id = $1`, roomID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count room requests: %w", err)
	}

	return count, nil
}

// UpdateStatus обновляет статус заявки, если он не изменился с момента чтения
func (r *PostgresRoomRequestRepository) UpdateStatus(ctx context.Context, id int64, from, to model.RoomRequestStatus) (bool, error) {
	query := `
		UPDATE room_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	affected, err := r.ExecAffected(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("update room request status: %w", err)
	}

	return affected == 1, nil
}
