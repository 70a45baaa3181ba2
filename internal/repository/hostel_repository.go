package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository/base"
)

type PostgresHostelRepository struct {
	*base.Repository
}

func NewPostgresHostelRepository(db base.Querier) *PostgresHostelRepository {
	return &PostgresHostelRepository{Repository: base.NewRepository(db)}
}

// Create создаёт общежитие
func (r *PostgresHostelRepository) Create(ctx context.Context, hostel *model.Hostel) error {
	query := `
		INSERT INTO hostels (name, hostel_campus, block, floor, location, gender_restriction, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		hostel.Name,
		hostel.HostelCampus,
		hostel.Block,
		hostel.Floor,
		hostel.Location,
		hostel.GenderRestriction,
		hostel.Description,
	).Scan(&hostel.ID, &hostel.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return apperr.ErrHostelExists
		}
		return fmt.Errorf("create hostel: %w", err)
	}

	return nil
}

// GetByID получает общежитие по ID
func (r *PostgresHostelRepository) GetByID(ctx context.Context, id int64) (*model.Hostel, error) {
	query := `
		SELECT id, name, hostel_campus, block, floor, location, gender_restriction, description, created_at
		FROM hostels
		WHERE id = $1
	`

	var h model.Hostel
	err := r.QueryRow(ctx, query, id).Scan(
		&h.ID,
		&h.Name,
		&h.HostelCampus,
		&h.Block,
		&h.Floor,
		&h.Location,
		&h.GenderRestriction,
		&h.Description,
		&h.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get hostel by id: %w", err)
	}

	return &h, nil
}

// List получает все общежития
func (r *PostgresHostelRepository) List(ctx context.Context) ([]*model.Hostel, error) {
	query := `
		SELECT id, name, hostel_campus, block, floor, location, gender_restriction, description, created_at
		FROM hostels
		ORDER BY name, hostel_campus
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}
	defer rows.Close()

	var hostels []*model.Hostel
	for rows.Next() {
		var h model.Hostel
		err := rows.Scan(
			&h.ID,
			&h.Name,
			&h.HostelCampus,
			&h.Block,
			&h.Floor,
			&h.Location,
			&h.GenderRestriction,
			&h.Description,
			&h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan hostel: %w", err)
		}
		hostels = append(hostels, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hostels: %w", err)
	}

	return hostels, nil
}

// Update сохраняет описательные поля общежития
func (r *PostgresHostelRepository) Update(ctx context.Context, hostel *model.Hostel) error {
	query := `
		UPDATE hostels
		SET name = $1, hostel_campus = $2, block = $3, floor = $4, location = $5,
		    gender_restriction = $6, description = $7
		WHERE id = $8
	`

	affected, err := r.ExecAffected(
		ctx, query,
		hostel.Name,
		hostel.HostelCampus,
		hostel.Block,
		hostel.Floor,
		hostel.Location,
		hostel.GenderRestriction,
		hostel.Description,
		hostel.ID,
	)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return apperr.ErrHostelExists
		}
		return fmt.Errorf("update hostel: %w", err)
	}

	if affected == 0 {
		return apperr.ErrHostelNotFound
	}

	return nil
}

// Delete удаляет общежитие. Комнаты держат его внешним ключом (ON DELETE RESTRICT).
func (r *PostgresHostelRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM hostels WHERE id = $1`, id)
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return apperr.ErrHostelHasRooms
		}
		return fmt.Errorf("delete hostel: %w", err)
	}

	if affected == 0 {
		return apperr.ErrHostelNotFound
	}

	return nil
}
