package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
)

func TestFillTemplate_AllPlaceholders(t *testing.T) {
	c := &domain.Client{
		Name:      "Maria",
		PlanName:  "Premium",
		PlanPrice: 42.5,
		Server:    "BR-01",
		Notes:     "acesso duplo",
		DueDate:   time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
	}

	got := FillTemplate("Olá {nome}, plano {plano} ({servidor}): R$ {valor} até {vencimento}. {informacoes_extras}", c)
	want := "Olá Maria, plano Premium (BR-01): R$ 42,50 até 05/03/2025. acesso duplo"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFillTemplate_Defaults(t *testing.T) {
	c := &domain.Client{}

	got := FillTemplate("Olá {nome}, {plano}, {servidor}", c)
	want := "Olá Cliente, Plano, —"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFillTemplate_ZeroDueDateRendersEmpty(t *testing.T) {
	got := FillTemplate("vencimento: {vencimento}", &domain.Client{})
	if got != "vencimento:" {
		t.Errorf("got %q", got)
	}
}

func TestFillTemplate_CollapsesNewlines(t *testing.T) {
	c := &domain.Client{Name: "Maria"}

	got := FillTemplate("Olá {nome}\n\n\n\n\ntchau", c)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("runs of newlines must collapse to two: %q", got)
	}
	if got != "Olá Maria\n\ntchau" {
		t.Errorf("got %q", got)
	}
}

func TestFillTemplate_TrimsWhitespace(t *testing.T) {
	got := FillTemplate("  \n Olá {nome} \n ", &domain.Client{Name: "Maria"})
	if got != "Olá Maria" {
		t.Errorf("got %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{42.5, "42,50"},
		{0, "0,00"},
		{1234.567, "1234,57"},
		{9.9, "9,90"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, 3, 5, 15, 4, 5, 0, time.UTC)
	if got := FormatDate(d); got != "05/03/2025" {
		t.Errorf("FormatDate = %q", got)
	}
}
