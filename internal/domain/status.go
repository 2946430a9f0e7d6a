package domain

// SubscriptionStatus — статус подписки владельца бота.
//
// Жизненный цикл:
//
//	pending → approved (терминальный)
//	        ↘ rejected / cancelled (от шлюза)
//	        ↘ expired (pending старше 24 часов)
type SubscriptionStatus string

const (
	// SubscriptionPending — платёж создан, шлюз ещё не подтвердил.
	SubscriptionPending SubscriptionStatus = "pending"

	// SubscriptionApproved — платёж подтверждён. Терминальный статус.
	SubscriptionApproved SubscriptionStatus = "approved"

	// SubscriptionRejected — шлюз отклонил платёж.
	SubscriptionRejected SubscriptionStatus = "rejected"

	// SubscriptionCancelled — платёж отменён на стороне шлюза.
	SubscriptionCancelled SubscriptionStatus = "cancelled"

	// SubscriptionExpired — pending старше окна свежести (24 часа).
	SubscriptionExpired SubscriptionStatus = "expired"
)

// IsTerminal возвращает true, если статус финальный.
func (s SubscriptionStatus) IsTerminal() bool {
	switch s {
	case SubscriptionApproved, SubscriptionRejected, SubscriptionCancelled, SubscriptionExpired:
		return true
	default:
		return false
	}
}

// ParseGatewayStatus приводит статус платёжного шлюза к SubscriptionStatus.
// Неизвестные статусы трактуются как pending (без изменения состояния).
func ParseGatewayStatus(s string) SubscriptionStatus {
	switch s {
	case "approved":
		return SubscriptionApproved
	case "rejected":
		return SubscriptionRejected
	case "cancelled":
		return SubscriptionCancelled
	default:
		return SubscriptionPending
	}
}

// ClientStatus — статус клиента (абонента владельца).
type ClientStatus string

const (
	// ClientActive — клиент действующий, попадает в напоминания и отчёты.
	ClientActive ClientStatus = "active"

	// ClientInactive — клиент просрочен или отключён вручную.
	ClientInactive ClientStatus = "inactive"
)

// DeliveryStatus — результат попытки доставки сообщения.
type DeliveryStatus string

const (
	// DeliverySent — канал подтвердил отправку.
	DeliverySent DeliveryStatus = "sent"

	// DeliveryFailed — отправка не удалась, детали в MessageLog.Error.
	DeliveryFailed DeliveryStatus = "failed"
)
