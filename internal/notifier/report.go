package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
)

// reportSectionCap — сколько клиентов показывать в секции отчёта.
const reportSectionCap = 5

// BuildDailyReport собирает дневной отчёт по платежам клиентов.
//
// Клиенты раскладываются по корзинам относительно today: просроченные,
// сегодня, завтра, послезавтра. Пустой отчёт (все корзины пустые)
// возвращается как "" — отправлять нечего.
func BuildDailyReport(today time.Time, clients []domain.Client) string {
	var overdue, dueToday, dueTomorrow, dueDayAfter []domain.Client
	for _, c := range clients {
		if c.Status != domain.ClientActive {
			continue
		}
		switch d := c.DaysUntilDue(today); {
		case d < 0:
			overdue = append(overdue, c)
		case d == 0:
			dueToday = append(dueToday, c)
		case d == 1:
			dueTomorrow = append(dueTomorrow, c)
		case d == 2:
			dueDayAfter = append(dueDayAfter, c)
		}
	}

	if len(overdue)+len(dueToday)+len(dueTomorrow)+len(dueDayAfter) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("📅 *Relatório Diário de Vencimentos*\n\n")

	if len(overdue) > 0 {
		fmt.Fprintf(&b, "🔴 *%d em atraso:*\n", len(overdue))
		writeSection(&b, overdue, func(c domain.Client) string {
			return fmt.Sprintf("• %s - %d dia(s)\n", c.Name, -c.DaysUntilDue(today))
		})
	}
	if len(dueToday) > 0 {
		fmt.Fprintf(&b, "🟡 *%d vencem hoje:*\n", len(dueToday))
		writeSection(&b, dueToday, priceLine)
	}
	if len(dueTomorrow) > 0 {
		fmt.Fprintf(&b, "🟠 *%d vencem amanhã:*\n", len(dueTomorrow))
		writeSection(&b, dueTomorrow, priceLine)
	}
	if len(dueDayAfter) > 0 {
		fmt.Fprintf(&b, "🔵 *%d vencem em 2 dias:*\n", len(dueDayAfter))
		writeSection(&b, dueDayAfter, priceLine)
	}

	b.WriteString("📱 Use *👥 Clientes* para gerenciar.")
	return b.String()
}

func writeSection(b *strings.Builder, clients []domain.Client, line func(domain.Client) string) {
	for i, c := range clients {
		if i == reportSectionCap {
			fmt.Fprintf(b, "• … e mais %d\n", len(clients)-reportSectionCap)
			break
		}
		b.WriteString(line(c))
	}
	b.WriteString("\n")
}

func priceLine(c domain.Client) string {
	return fmt.Sprintf("• %s - R$ %s\n", c.Name, FormatMoney(c.PlanPrice))
}
