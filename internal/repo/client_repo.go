package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/cobrador/internal/domain"
)

// ClientRepo — репозиторий клиентов (абонентов владельцев).
type ClientRepo struct {
	pool *pgxpool.Pool
}

// NewClientRepo создаёт новый ClientRepo.
func NewClientRepo(pool *pgxpool.Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

const clientColumns = `id, user_id, name, phone_number, plan_name, plan_price,
       server, notes, due_date, status, created_at`

// GetByID возвращает клиента по ID.
func (r *ClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.pool.QueryRow(ctx, query, id))
}

// ListDueOn возвращает активных клиентов пользователя с due_date = day.
// Используется утренней рассылкой для каждого смещения напоминаний.
func (r *ClientRepo) ListDueOn(ctx context.Context, userID int64, day time.Time) ([]domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE user_id = $1 AND status = 'active' AND due_date = $2
		ORDER BY id
	`
	return r.list(ctx, query, userID, day)
}

// ListActiveByUser возвращает всех активных клиентов пользователя.
// Дневной отчёт раскладывает их по корзинам (просрочен, сегодня, +1, +2).
func (r *ClientRepo) ListActiveByUser(ctx context.Context, userID int64) ([]domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE user_id = $1 AND status = 'active'
		ORDER BY due_date, id
	`
	return r.list(ctx, query, userID)
}

// ClientFilter — параметры фильтрации клиентов для ops API.
type ClientFilter struct {
	UserID *int64
	Status *domain.ClientStatus
	Limit  int
}

// List возвращает клиентов с фильтрацией.
func (r *ClientRepo) List(ctx context.Context, filter ClientFilter) ([]domain.Client, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE ($1::bigint IS NULL OR user_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY due_date, id
		LIMIT $3
	`
	return r.list(ctx, query, filter.UserID, filter.Status, limit)
}

// MarkOverdueInactive переводит активных клиентов с due_date < today
// в inactive. Возвращает количество затронутых — повторный вызов без
// новых просрочек ничего не меняет.
func (r *ClientRepo) MarkOverdueInactive(ctx context.Context, today time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE clients
		SET status = 'inactive'
		WHERE status = 'active' AND due_date < $1
	`, today)
	if err != nil {
		return 0, fmt.Errorf("mark overdue inactive: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *ClientRepo) list(ctx context.Context, query string, args ...any) ([]domain.Client, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	var planName, server, notes *string
	var planPrice *float64

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.PhoneNumber,
		&planName,
		&planPrice,
		&server,
		&notes,
		&c.DueDate,
		&c.Status,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}

	if planName != nil {
		c.PlanName = *planName
	}
	if planPrice != nil {
		c.PlanPrice = *planPrice
	}
	if server != nil {
		c.Server = *server
	}
	if notes != nil {
		c.Notes = *notes
	}
	return &c, nil
}
