package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hostel_rooms/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore хранилище поверх pgx. Внутри WithinTx все репозитории
// работают через одну транзакцию.
type PostgresStore struct {
	pool *pgxpool.Pool
	db   base.Querier
	inTx bool

	rooms    *PostgresRoomRepository
	requests *PostgresRoomRequestRepository
	hostels  *PostgresHostelRepository
	students *PostgresStudentRepository
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return newPostgresStore(pool, pool, false)
}

func newPostgresStore(pool *pgxpool.Pool, db base.Querier, inTx bool) *PostgresStore {
	return &PostgresStore{
		pool:     pool,
		db:       db,
		inTx:     inTx,
		rooms:    NewPostgresRoomRepository(db),
		requests: NewPostgresRoomRequestRepository(db),
		hostels:  NewPostgresHostelRepository(db),
		students: NewPostgresStudentRepository(db),
	}
}

func (s *PostgresStore) Rooms() RoomRepository           { return s.rooms }
func (s *PostgresStore) Requests() RoomRequestRepository { return s.requests }
func (s *PostgresStore) Hostels() HostelRepository       { return s.hostels }
func (s *PostgresStore) Students() StudentRepository     { return s.students }

// WithinTx выполняет fn в транзакции. Вложенный вызов переиспользует текущую транзакцию.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	// Начинаем транзакцию
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, newPostgresStore(s.pool, tx, true)); err != nil {
		return err
	}

	// Коммитим транзакцию
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
