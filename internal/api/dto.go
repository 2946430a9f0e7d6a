package api

import (
	"time"

	"github.com/shaiso/cobrador/internal/domain"
	"github.com/shaiso/cobrador/internal/scheduler"
)

// Status DTOs

// StatusResponse — ответ /status.
type StatusResponse struct {
	Running  bool                      `json:"running"`
	Timezone string                    `json:"timezone"`
	Cadences []scheduler.CadenceStatus `json:"cadences"`
}

// Client DTOs

// ClientResponse — ответ с клиентом.
type ClientResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	PlanName    string    `json:"plan_name,omitempty"`
	PlanPrice   float64   `json:"plan_price,omitempty"`
	Server      string    `json:"server,omitempty"`
	DueDate     string    `json:"due_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClientFromDomain конвертирует domain.Client в ClientResponse.
func ClientFromDomain(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		PhoneNumber: c.PhoneNumber,
		PlanName:    c.PlanName,
		PlanPrice:   c.PlanPrice,
		Server:      c.Server,
		DueDate:     c.DueDate.Format("2006-01-02"),
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
	}
}

// RemindRequest — запрос ручной отправки напоминания.
type RemindRequest struct {
	// TemplateType — вид шаблона; по умолчанию reminder_due_date.
	TemplateType string `json:"template_type,omitempty"`
}

// RemindResponse — итог ручной отправки.
type RemindResponse struct {
	Sent int `json:"sent"`
}

// MessageLog DTOs

// MessageLogResponse — запись журнала доставки.
type MessageLogResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	ClientID       int64     `json:"client_id"`
	TemplateID     int64     `json:"template_id"`
	RecipientPhone string    `json:"recipient_phone"`
	SentAt         time.Time `json:"sent_at"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
}

// MessageLogFromDomain конвертирует domain.MessageLog в MessageLogResponse.
func MessageLogFromDomain(l *domain.MessageLog) MessageLogResponse {
	return MessageLogResponse{
		ID:             l.ID,
		UserID:         l.UserID,
		ClientID:       l.ClientID,
		TemplateID:     l.TemplateID,
		RecipientPhone: l.RecipientPhone,
		SentAt:         l.SentAt,
		Status:         string(l.Status),
		Error:          l.Error,
	}
}

// WhatsApp DTOs

// WhatsAppStatusResponse — состояние сессии шлюза.
type WhatsAppStatusResponse struct {
	Connected bool   `json:"connected"`
	State     string `json:"state,omitempty"`
	QRCode    string `json:"qr_code,omitempty"`
}

// WhatsAppReconnectResponse — итог запроса на переподключение.
type WhatsAppReconnectResponse struct {
	Accepted bool `json:"accepted"`
}
