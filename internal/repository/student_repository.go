package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hostel_rooms/internal/model"
	"github.com/Freeeeeet/hostel_rooms/internal/repository/base"
)

type PostgresStudentRepository struct {
	*base.Repository
}

func NewPostgresStudentRepository(db base.Querier) *PostgresStudentRepository {
	return &PostgresStudentRepository{Repository: base.NewRepository(db)}
}

// Create регистрирует студента в справочнике
func (r *PostgresStudentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (first_name, last_name, email, matric_number, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		student.FirstName,
		student.LastName,
		student.Email,
		student.MatricNumber,
		student.TelegramChatID,
	).Scan(&student.ID, &student.CreatedAt)

	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

// GetByID получает студента по ID
func (r *PostgresStudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	query := `
		SELECT id, first_name, last_name, email, matric_number, telegram_chat_id, created_at
		FROM students
		WHERE id = $1
	`

	var s model.Student
	err := r.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.Email,
		&s.MatricNumber,
		&s.TelegramChatID,
		&s.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Студент не найден
		}
		return nil, fmt.Errorf("get student by id: %w", err)
	}

	return &s, nil
}

// GetByTelegramChatID ищет студента по чату Telegram
func (r *PostgresStudentRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*model.Student, error) {
	query := `
		SELECT id, first_name, last_name, email, matric_number, telegram_chat_id, created_at
		FROM students
		WHERE telegram_chat_id = $1
		ORDER BY id
		LIMIT 1
	`

	var s model.Student
	err := r.QueryRow(ctx, query, chatID).Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.Email,
		&s.MatricNumber,
		&s.TelegramChatID,
		&s.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by telegram chat id: %w", err)
	}

	return &s, nil
}

// GetByIDs получает студентов по списку ID
func (r *PostgresStudentRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Student, error) {
	if len(ids) == 0 {
		return []*model.Student{}, nil
	}

	query := `
		SELECT id, first_name, last_name, email, matric_number, telegram_chat_id, created_at
		FROM students
		WHERE id = ANY($1)
		ORDER BY id
	`

	rows, err := r.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get students by ids: %w", err)
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		var s model.Student
		err := rows.Scan(
			&s.ID,
			&s.FirstName,
			&s.LastName,
			&s.Email,
			&s.MatricNumber,
			&s.TelegramChatID,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}

	return students, nil
}
