package domain

import "time"

// TemplateType — вид напоминания, к которому привязан шаблон.
type TemplateType string

// Типы шаблонов. Смещения считаются в днях до due_date клиента.
const (
	// TemplateReminder2Days — за два дня до платежа (+2).
	TemplateReminder2Days TemplateType = "reminder_2_days"

	// TemplateReminder1Day — за день до платежа (+1).
	TemplateReminder1Day TemplateType = "reminder_1_day"

	// TemplateReminderDueDate — день платежа (0).
	TemplateReminderDueDate TemplateType = "reminder_due_date"

	// TemplateReminderOverdue — день после платежа (−1).
	TemplateReminderOverdue TemplateType = "reminder_overdue"

	// TemplateWelcome — приветствие нового клиента (ручная отправка).
	TemplateWelcome TemplateType = "welcome"

	// TemplateRenewal — подтверждение продления (ручная отправка).
	TemplateRenewal TemplateType = "renewal"
)

// ReminderOffsets — какое смещение (дней до due_date) каким шаблоном
// обслуживается. Порядок определяет порядок проходов в утреннем тике.
var ReminderOffsets = []struct {
	Days int
	Type TemplateType
}{
	{2, TemplateReminder2Days},
	{1, TemplateReminder1Day},
	{0, TemplateReminderDueDate},
	{-1, TemplateReminderOverdue},
}

// MessageTemplate — пользовательский шаблон сообщения.
//
// Content содержит плейсхолдеры {nome}, {plano}, {valor}, {vencimento},
// {servidor}, {informacoes_extras}, заполняемые из карточки клиента.
type MessageTemplate struct {
	// ID — уникальный идентификатор шаблона.
	ID int64 `json:"id"`

	// UserID — владелец шаблона.
	UserID int64 `json:"user_id"`

	// Type — вид напоминания.
	Type TemplateType `json:"template_type"`

	// Name — отображаемое имя шаблона.
	Name string `json:"name"`

	// Content — текст с плейсхолдерами.
	Content string `json:"content"`

	// IsActive — неактивные шаблоны не участвуют в рассылке.
	IsActive bool `json:"is_active"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}
