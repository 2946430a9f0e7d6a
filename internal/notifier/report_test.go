package notifier

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
)

func reportClient(name string, due time.Time, price float64) domain.Client {
	return domain.Client{
		Name:      name,
		PlanPrice: price,
		DueDate:   due,
		Status:    domain.ClientActive,
	}
}

func TestBuildDailyReport_Sections(t *testing.T) {
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	clients := []domain.Client{
		reportClient("Atrasado", today.AddDate(0, 0, -3), 30),
		reportClient("Hoje", today, 40),
		reportClient("Amanhã", today.AddDate(0, 0, 1), 50),
		reportClient("Depois", today.AddDate(0, 0, 2), 60),
	}

	got := BuildDailyReport(today, clients)

	for _, want := range []string{
		"📅 *Relatório Diário de Vencimentos*",
		"🔴 *1 em atraso:*",
		"• Atrasado - 3 dia(s)",
		"🟡 *1 vencem hoje:*",
		"• Hoje - R$ 40,00",
		"🟠 *1 vencem amanhã:*",
		"🔵 *1 vencem em 2 dias:*",
		"📱 Use *👥 Clientes* para gerenciar.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q\n---\n%s", want, got)
		}
	}
}

func TestBuildDailyReport_Empty(t *testing.T) {
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	// Далёкие платежи и неактивные клиенты не дают отчёта
	clients := []domain.Client{
		reportClient("Longe", today.AddDate(0, 0, 10), 30),
		{Name: "Inativo", DueDate: today, Status: domain.ClientInactive},
	}

	if got := BuildDailyReport(today, clients); got != "" {
		t.Errorf("expected empty report, got %q", got)
	}
}

func TestBuildDailyReport_SectionCap(t *testing.T) {
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	var clients []domain.Client
	for i := 0; i < 8; i++ {
		clients = append(clients, reportClient(fmt.Sprintf("Cliente%d", i), today, 10))
	}

	got := BuildDailyReport(today, clients)

	if !strings.Contains(got, "🟡 *8 vencem hoje:*") {
		t.Errorf("section header must show the full count:\n%s", got)
	}
	if !strings.Contains(got, "• … e mais 3") {
		t.Errorf("section must be capped with a tail line:\n%s", got)
	}
	if strings.Contains(got, "Cliente5") {
		t.Errorf("clients past the cap must not be listed:\n%s", got)
	}
}
