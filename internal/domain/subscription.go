package domain

import "time"

// SubscriptionTerm — срок, на который продлевает approved-платёж.
const SubscriptionTerm = 30 * 24 * time.Hour

// PendingWindow — окно свежести pending-подписки. Старше — expired.
const PendingWindow = 24 * time.Hour

// Subscription — платёж владельца бота за использование сервиса.
//
// Создаётся при выставлении счёта в платёжном шлюзе; статус выравнивается
// с ответами шлюза воркером сверки.
type Subscription struct {
	// ID — уникальный идентификатор подписки.
	ID int64 `json:"id"`

	// UserID — владелец подписки.
	UserID int64 `json:"user_id"`

	// PaymentID — внешний идентификатор платежа в шлюзе.
	PaymentID string `json:"payment_id"`

	// Status — текущий статус (см. SubscriptionStatus).
	Status SubscriptionStatus `json:"status"`

	// Amount — сумма платежа.
	Amount float64 `json:"amount"`

	// CreatedAt — время создания платежа.
	CreatedAt time.Time `json:"created_at"`

	// PaidAt — время подтверждения. Nil до approved.
	PaidAt *time.Time `json:"paid_at,omitempty"`

	// ExpiresAt — конец оплаченного периода: paid_at + 30 дней.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// MarkApproved переводит подписку в approved и фиксирует срок действия.
func (s *Subscription) MarkApproved(now time.Time) {
	expires := now.Add(SubscriptionTerm)
	s.Status = SubscriptionApproved
	s.PaidAt = &now
	s.ExpiresAt = &expires
}

// IsStale возвращает true, если pending-подписка старше окна свежести.
func (s *Subscription) IsStale(now time.Time) bool {
	return s.Status == SubscriptionPending && now.Sub(s.CreatedAt) > PendingWindow
}
