package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/cobrador/internal/telemetry"
)

// Cron-выражения каденций.
const (
	reminderCadenceExpr = "* * * * *"   // каждую минуту: окна напоминаний и отчётов
	sweepCadenceExpr    = "0 * * * *"   // каждый час: просроченные клиенты
	paymentsCadenceExpr = "*/2 * * * *" // каждые две минуты: сверка платежей
)

var cadenceParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// cadence — периодическое задание цикла планировщика.
//
// Пропущенные границы схлопываются: следующий запуск вычисляется от
// момента завершения, а не от расписания, поэтому затянувшийся тик
// даёт пропуск, а не очередь из догоняющих запусков.
type cadence struct {
	name  string
	sched cron.Schedule
	fn    func(ctx context.Context) error

	mu       sync.Mutex
	next     time.Time
	inFlight bool
}

func newCadence(name, expr string, now time.Time, fn func(ctx context.Context) error) (*cadence, error) {
	sched, err := cadenceParser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cadence{
		name:  name,
		sched: sched,
		fn:    fn,
		next:  sched.Next(now),
	}, nil
}

// nextDue возвращает момент следующего запуска.
func (c *cadence) nextDue() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// maybeRun выполняет тик, если его время пришло.
// Single-flight: тик, чьё предыдущее выполнение ещё не завершилось,
// пропускается целиком.
func (c *cadence) maybeRun(ctx context.Context, now time.Time, logger *slog.Logger) {
	c.mu.Lock()
	if now.Before(c.next) {
		c.mu.Unlock()
		return
	}
	if c.inFlight {
		c.next = c.sched.Next(now)
		c.mu.Unlock()
		telemetry.CadenceSkipped.WithLabelValues(c.name).Inc()
		logger.Warn("cadence tick skipped, previous still running", "cadence", c.name)
		return
	}
	c.inFlight = true
	c.mu.Unlock()

	err := c.fn(ctx)

	result := "ok"
	if err != nil {
		result = "error"
		logger.Error("cadence tick failed", "cadence", c.name, "error", err)
	}
	telemetry.CadenceTicks.WithLabelValues(c.name, result).Inc()

	c.mu.Lock()
	c.inFlight = false
	c.next = c.sched.Next(time.Now().In(now.Location()))
	c.mu.Unlock()
}
