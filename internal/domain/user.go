package domain

import "time"

// User — владелец бота: управляет своими клиентами и платит за подписку.
//
// Деактивируется, когда триал истёк без оплаты или подписка закончилась.
// Реактивируется при подтверждённом платеже (см. payments.Reconciler).
type User struct {
	// ID — уникальный идентификатор пользователя.
	ID int64 `json:"id"`

	// TelegramID — идентификатор чата для уведомлений.
	TelegramID int64 `json:"telegram_id"`

	// IsActive — активные пользователи участвуют в расписании.
	IsActive bool `json:"is_active"`

	// IsTrial — пользователь на пробном периоде.
	IsTrial bool `json:"is_trial"`

	// TrialStartedAt — начало пробного периода.
	TrialStartedAt *time.Time `json:"trial_started_at,omitempty"`

	// LastPaymentDate — дата последнего подтверждённого платежа.
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty"`

	// NextDueDate — дата следующего списания.
	NextDueDate *time.Time `json:"next_due_date,omitempty"`

	// CreatedAt — время регистрации.
	CreatedAt time.Time `json:"created_at"`
}

// Activate переводит пользователя в оплаченное состояние.
// Вызывается при approved-платеже: снимает триал и сдвигает вехи оплаты.
func (u *User) Activate(paidAt, nextDue time.Time) {
	u.IsActive = true
	u.IsTrial = false
	u.LastPaymentDate = &paidAt
	u.NextDueDate = &nextDue
}
