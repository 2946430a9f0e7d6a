package scheduler

import (
	"log/slog"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 5, hour, min, 0, 0, time.UTC)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"09:00", 9 * 60, false},
		{"00:00", 0, false},
		{"23:59", 23*60 + 59, false},
		{"9:00", 0, true},
		{"24:00", 0, true},
		{"banana", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestShouldFire_BeforeWindow(t *testing.T) {
	if ShouldFire("09:00", DefaultReminderClock, nil, at(8, 59), discard()) {
		t.Error("must not fire before the configured window")
	}
}

func TestShouldFire_AtWindow(t *testing.T) {
	if !ShouldFire("09:00", DefaultReminderClock, nil, at(9, 0), discard()) {
		t.Error("must fire exactly at the window")
	}
}

func TestShouldFire_CatchUp(t *testing.T) {
	// Процесс поднялся в 14:30, окно было в 09:00, маркер вчерашний —
	// действие должно выполниться (catch-up)
	yesterday := at(9, 0).AddDate(0, 0, -1)
	if !ShouldFire("09:00", DefaultReminderClock, &yesterday, at(14, 30), discard()) {
		t.Error("must catch up when the window passed earlier today")
	}
}

func TestShouldFire_OncePerDay(t *testing.T) {
	// Маркер уже сегодняшний — повторного срабатывания нет
	ranAt := at(9, 0)
	if ShouldFire("09:00", DefaultReminderClock, &ranAt, at(9, 1), discard()) {
		t.Error("must not fire twice in the same calendar day")
	}
	if ShouldFire("09:00", DefaultReminderClock, &ranAt, at(23, 59), discard()) {
		t.Error("must not fire twice even late in the day")
	}
}

func TestShouldFire_NextDay(t *testing.T) {
	ranAt := at(9, 0)
	tomorrow := at(9, 0).AddDate(0, 0, 1)
	if !ShouldFire("09:00", DefaultReminderClock, &ranAt, tomorrow, discard()) {
		t.Error("must fire again the next day")
	}
}

func TestShouldFire_MalformedTimeFallsBack(t *testing.T) {
	// "25:99" непарсибельно — используется дефолт 09:00
	if ShouldFire("25:99", DefaultReminderClock, nil, at(8, 0), discard()) {
		t.Error("malformed time must fall back to default, not fire early")
	}
	if !ShouldFire("25:99", DefaultReminderClock, nil, at(9, 0), discard()) {
		t.Error("malformed time must fall back to default and fire at 09:00")
	}
}

func TestShouldFire_EmptyUsesDefault(t *testing.T) {
	if !ShouldFire("", DefaultReportClock, nil, at(8, 0), discard()) {
		t.Error("empty setting must use the default window")
	}
}
