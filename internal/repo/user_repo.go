package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/cobrador/internal/domain"
)

// UserRepo — репозиторий для работы с пользователями.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo создаёт новый UserRepo.
func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetByID возвращает пользователя по ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, telegram_id, is_active, is_trial, trial_started_at,
		       last_payment_date, next_due_date, created_at
		FROM users
		WHERE id = $1
	`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// ListActive возвращает активных пользователей.
// Планировщик обходит их на каждом минутном тике.
func (r *UserRepo) ListActive(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT id, telegram_id, is_active, is_trial, trial_started_at,
		       last_payment_date, next_due_date, created_at
		FROM users
		WHERE is_active = true
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Update сохраняет изменяемые поля пользователя.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET is_active = $2, is_trial = $3, last_payment_date = $4, next_due_date = $5
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		u.ID,
		u.IsActive,
		u.IsTrial,
		u.LastPaymentDate,
		u.NextDueDate,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.TelegramID,
		&u.IsActive,
		&u.IsTrial,
		&u.TrialStartedAt,
		&u.LastPaymentDate,
		&u.NextDueDate,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
