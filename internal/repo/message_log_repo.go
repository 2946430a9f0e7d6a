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

// MessageLogRepo — репозиторий журнала доставки.
type MessageLogRepo struct {
	pool *pgxpool.Pool
}

// NewMessageLogRepo создаёт новый MessageLogRepo.
func NewMessageLogRepo(pool *pgxpool.Pool) *MessageLogRepo {
	return &MessageLogRepo{pool: pool}
}

// Create добавляет запись журнала. Журнал append-only.
func (r *MessageLogRepo) Create(ctx context.Context, log *domain.MessageLog) error {
	query := `
		INSERT INTO message_logs (user_id, client_id, template_id, content,
		                          recipient_phone, sent_at, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		log.UserID,
		log.ClientID,
		log.TemplateID,
		log.Content,
		log.RecipientPhone,
		log.SentAt,
		log.Status,
		nullString(log.Error),
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}
	return nil
}

// SentExists проверяет, была ли успешная отправка по тройке
// (user, client, template) начиная с dayStart. Дедупликация рассылки:
// не больше одного sent в календарный день.
func (r *MessageLogRepo) SentExists(ctx context.Context, userID, clientID, templateID int64, dayStart time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM message_logs
			WHERE user_id = $1 AND client_id = $2 AND template_id = $3
			  AND status = 'sent' AND sent_at >= $4
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, clientID, templateID, dayStart).Scan(&exists); err != nil {
		return false, fmt.Errorf("check sent exists: %w", err)
	}
	return exists, nil
}

// List возвращает историю доставки с фильтрацией.
func (r *MessageLogRepo) List(ctx context.Context, filter LogFilter) ([]domain.MessageLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, user_id, client_id, template_id, content,
		       recipient_phone, sent_at, status, error
		FROM message_logs
		WHERE ($1::bigint IS NULL OR user_id = $1)
		ORDER BY sent_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list message logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.MessageLog
	for rows.Next() {
		l, err := scanMessageLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// LogFilter — параметры фильтрации журнала.
type LogFilter struct {
	UserID *int64
	Limit  int
}

func scanMessageLog(row pgx.Row) (*domain.MessageLog, error) {
	var l domain.MessageLog
	var errText *string
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.ClientID,
		&l.TemplateID,
		&l.Content,
		&l.RecipientPhone,
		&l.SentAt,
		&l.Status,
		&errText,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan message log: %w", err)
	}
	if errText != nil {
		l.Error = *errText
	}
	return &l, nil
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
