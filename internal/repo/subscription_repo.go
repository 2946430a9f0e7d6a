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

// SubscriptionRepo — репозиторий подписок владельцев.
type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepo создаёт новый SubscriptionRepo.
func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, payment_id, status, amount, created_at, paid_at, expires_at`

// GetByPaymentID возвращает подписку по внешнему идентификатору платежа.
func (r *SubscriptionRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE payment_id = $1`
	return scanSubscription(r.pool.QueryRow(ctx, query, paymentID))
}

// ListPendingSince возвращает pending-подписки, созданные не раньше since.
// Окно свежести воркера сверки: 24 часа.
func (r *SubscriptionRepo) ListPendingSince(ctx context.Context, since time.Time) ([]domain.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = 'pending' AND created_at >= $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list pending subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

// ExpireStale переводит pending-подписки старше cutoff в expired.
// Политика ограниченного по времени ожидания: ответ шлюза уже не важен.
func (r *SubscriptionRepo) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE subscriptions
		SET status = 'expired'
		WHERE status = 'pending' AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire stale subscriptions: %w", err)
	}
	return result.RowsAffected(), nil
}

// Update сохраняет статус и вехи оплаты подписки.
func (r *SubscriptionRepo) Update(ctx context.Context, s *domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET status = $2, paid_at = $3, expires_at = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, s.ID, s.Status, s.PaidAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.PaymentID,
		&s.Status,
		&s.Amount,
		&s.CreatedAt,
		&s.PaidAt,
		&s.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	return &s, nil
}
