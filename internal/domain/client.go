package domain

import "time"

// Client — абонент владельца бота. Принадлежит ровно одному User.
//
// Инвариант: клиент с due_date в прошлом рано или поздно становится
// inactive — за это отвечает часовой sweep (максимум один цикл задержки).
type Client struct {
	// ID — уникальный идентификатор клиента.
	ID int64 `json:"id"`

	// UserID — владелец клиента.
	UserID int64 `json:"user_id"`

	// Name — имя клиента, подставляется в шаблоны как {nome}.
	Name string `json:"name"`

	// PhoneNumber — телефон для WhatsApp, нормализуется перед отправкой.
	PhoneNumber string `json:"phone_number"`

	// PlanName — название тарифа ({plano}).
	PlanName string `json:"plan_name"`

	// PlanPrice — стоимость тарифа ({valor}).
	PlanPrice float64 `json:"plan_price"`

	// Server — свободное поле "сервер" ({servidor}).
	Server string `json:"server"`

	// Notes — дополнительная информация ({informacoes_extras}).
	Notes string `json:"notes"`

	// DueDate — дата очередного платежа клиента.
	DueDate time.Time `json:"due_date"`

	// Status — active или inactive.
	Status ClientStatus `json:"status"`

	// CreatedAt — время добавления клиента.
	CreatedAt time.Time `json:"created_at"`
}

// DaysUntilDue возвращает количество дней до due_date относительно today.
// Отрицательное значение — клиент просрочен.
func (c *Client) DaysUntilDue(today time.Time) int {
	due := time.Date(c.DueDate.Year(), c.DueDate.Month(), c.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	base := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(base).Hours() / 24)
}
