package notifier

import (
	"strconv"
	"strings"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
)

// Плейсхолдеры шаблонов. Формат фиксирован пользовательскими шаблонами
// в БД ({nome}, не Go-template), поэтому подстановка — простой replace.

// FillTemplate заполняет шаблон данными клиента.
//
// Пустые поля получают безопасные значения по умолчанию, деньги
// рендерятся с запятой (бразильская локаль), даты — DD/MM/YYYY.
// Три и более подряд идущих переноса строки схлопываются до двух.
func FillTemplate(content string, c *domain.Client) string {
	name := c.Name
	if name == "" {
		name = "Cliente"
	}
	plan := c.PlanName
	if plan == "" {
		plan = "Plano"
	}
	server := c.Server
	if server == "" {
		server = "—"
	}

	var due string
	if !c.DueDate.IsZero() {
		due = FormatDate(c.DueDate)
	}

	out := strings.TrimSpace(content)
	replacer := strings.NewReplacer(
		"{nome}", name,
		"{plano}", plan,
		"{valor}", FormatMoney(c.PlanPrice),
		"{vencimento}", due,
		"{servidor}", server,
		"{informacoes_extras}", c.Notes,
	)
	out = replacer.Replace(out)

	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(out)
}

// FormatMoney рендерит сумму с двумя знаками и запятой: 1234.5 → "1234,50".
func FormatMoney(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}

// FormatDate рендерит дату в бразильском формате DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
