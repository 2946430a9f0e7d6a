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

// SettingsRepo — репозиторий персональных расписаний пользователей.
type SettingsRepo struct {
	pool *pgxpool.Pool
}

// NewSettingsRepo создаёт новый SettingsRepo.
func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// GetOrCreate возвращает настройки пользователя, создавая их с дефолтами,
// если записи ещё нет (ленивое создание на первом проходе планировщика).
func (r *SettingsRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.ScheduleSettings, error) {
	query := `
		SELECT user_id, morning_reminder_time, daily_report_time,
		       auto_send_enabled, last_morning_run, last_report_run
		FROM schedule_settings
		WHERE user_id = $1
	`
	s, err := scanSettings(r.pool.QueryRow(ctx, query, userID))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	def := domain.DefaultScheduleSettings(userID)
	insert := `
		INSERT INTO schedule_settings (user_id, morning_reminder_time, daily_report_time, auto_send_enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, insert,
		def.UserID,
		def.MorningReminderTime,
		def.DailyReportTime,
		def.AutoSendEnabled,
	); err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}
	return def, nil
}

// SetLastMorningRun продвигает маркер утренней рассылки.
// Вызывается только после успешного прохода — при ошибке маркер не трогаем,
// чтобы следующий минутный тик повторил попытку в тот же день.
func (r *SettingsRepo) SetLastMorningRun(ctx context.Context, userID int64, day time.Time) error {
	return r.setMarker(ctx, userID, "last_morning_run", day)
}

// SetLastReportRun продвигает маркер дневного отчёта.
func (r *SettingsRepo) SetLastReportRun(ctx context.Context, userID int64, day time.Time) error {
	return r.setMarker(ctx, userID, "last_report_run", day)
}

func (r *SettingsRepo) setMarker(ctx context.Context, userID int64, column string, day time.Time) error {
	query := fmt.Sprintf(`UPDATE schedule_settings SET %s = $2 WHERE user_id = $1`, column)
	result, err := r.pool.Exec(ctx, query, userID, day)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSettings(row pgx.Row) (*domain.ScheduleSettings, error) {
	var s domain.ScheduleSettings
	err := row.Scan(
		&s.UserID,
		&s.MorningReminderTime,
		&s.DailyReportTime,
		&s.AutoSendEnabled,
		&s.LastMorningRun,
		&s.LastReportRun,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan settings: %w", err)
	}
	return &s, nil
}
