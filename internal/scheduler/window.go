package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
)

// Clock — время суток в минутах с полуночи.
type Clock int

// Дефолтные окна, используются при отсутствии или порче настройки.
var (
	DefaultReminderClock = mustClock(domain.DefaultReminderTime)
	DefaultReportClock   = mustClock(domain.DefaultReportTime)
)

// ParseClock парсит строку "HH:MM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func mustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// clockOf возвращает время суток момента t.
func clockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// resolveClock парсит настройку пользователя, при порче значения
// откатываясь на дефолт. Порча не фатальна — только warn.
func resolveClock(cfg string, def Clock, logger *slog.Logger) Clock {
	if cfg == "" {
		return def
	}
	c, err := ParseClock(cfg)
	if err != nil {
		logger.Warn("malformed schedule time, using default",
			"configured", cfg,
			"error", err,
		)
		return def
	}
	return c
}

// sameDay сравнивает календарные дни.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ShouldFire решает, пора ли выполнить ежедневное действие.
//
// Срабатывает когда now.время >= настроенного окна И маркер последнего
// запуска не равен сегодняшнему дню. Это даёт catch-up семантику:
// если процесс лежал дольше окна и поднялся в тот же день — действие
// всё равно выполнится, ровно один раз, и никогда раньше окна.
func ShouldFire(cfg string, def Clock, lastRun *time.Time, now time.Time, logger *slog.Logger) bool {
	window := resolveClock(cfg, def, logger)
	if clockOf(now) < window {
		return false
	}
	return lastRun == nil || !sameDay(*lastRun, now)
}
