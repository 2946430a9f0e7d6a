package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/cobrador/internal/domain"
)

// TemplateRepo — репозиторий шаблонов сообщений.
type TemplateRepo struct {
	pool *pgxpool.Pool
}

// NewTemplateRepo создаёт новый TemplateRepo.
func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

// GetActive возвращает активный шаблон пользователя для вида напоминания.
// Отсутствие шаблона — штатная ситуация (ErrNotFound): рассылка этого
// вида для пользователя просто пропускается.
func (r *TemplateRepo) GetActive(ctx context.Context, userID int64, t domain.TemplateType) (*domain.MessageTemplate, error) {
	query := `
		SELECT id, user_id, template_type, name, content, is_active, created_at
		FROM message_templates
		WHERE user_id = $1 AND template_type = $2 AND is_active = true
		ORDER BY id
		LIMIT 1
	`
	var tpl domain.MessageTemplate
	err := r.pool.QueryRow(ctx, query, userID, t).Scan(
		&tpl.ID,
		&tpl.UserID,
		&tpl.Type,
		&tpl.Name,
		&tpl.Content,
		&tpl.IsActive,
		&tpl.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active template: %w", err)
	}
	return &tpl, nil
}
