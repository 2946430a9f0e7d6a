package domain

import "time"

// Значения по умолчанию для ScheduleSettings.
const (
	DefaultReminderTime = "09:00"
	DefaultReportTime   = "08:00"
)

// ScheduleSettings — персональное расписание пользователя (1:1 с User).
//
// Поля last_morning_run / last_report_run — маркеры идемпотентности:
// не больше одного срабатывания на маркер в календарный день.
// Создаются лениво с дефолтами при первом проходе планировщика,
// поэтому все опциональные поля объявлены явно — никакого probing.
type ScheduleSettings struct {
	// UserID — владелец настроек.
	UserID int64 `json:"user_id"`

	// MorningReminderTime — время утренней рассылки, "HH:MM".
	MorningReminderTime string `json:"morning_reminder_time"`

	// DailyReportTime — время дневного отчёта, "HH:MM".
	DailyReportTime string `json:"daily_report_time"`

	// AutoSendEnabled — выключает автоматические напоминания.
	// Дневной отчёт флаг не затрагивает.
	AutoSendEnabled bool `json:"auto_send_enabled"`

	// LastMorningRun — дата последней утренней рассылки.
	LastMorningRun *time.Time `json:"last_morning_run,omitempty"`

	// LastReportRun — дата последнего отчёта.
	LastReportRun *time.Time `json:"last_report_run,omitempty"`
}

// DefaultScheduleSettings возвращает настройки с дефолтами для пользователя.
func DefaultScheduleSettings(userID int64) *ScheduleSettings {
	return &ScheduleSettings{
		UserID:              userID,
		MorningReminderTime: DefaultReminderTime,
		DailyReportTime:     DefaultReportTime,
		AutoSendEnabled:     true,
	}
}
