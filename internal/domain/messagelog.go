package domain

import "time"

// MessageLog — append-only запись о попытке доставки.
//
// Журнал одновременно служит дедупликационным реестром: не больше одной
// успешной отправки на (user, client, template, календарный день).
type MessageLog struct {
	// ID — уникальный идентификатор записи.
	ID int64 `json:"id"`

	// UserID — владелец рассылки.
	UserID int64 `json:"user_id"`

	// ClientID — получатель.
	ClientID int64 `json:"client_id"`

	// TemplateID — использованный шаблон.
	TemplateID int64 `json:"template_id"`

	// Content — отрендеренный текст сообщения.
	Content string `json:"content"`

	// RecipientPhone — номер, на который отправляли.
	RecipientPhone string `json:"recipient_phone"`

	// SentAt — время попытки.
	SentAt time.Time `json:"sent_at"`

	// Status — sent или failed.
	Status DeliveryStatus `json:"status"`

	// Error — текст ошибки при failed.
	Error string `json:"error,omitempty"`
}
