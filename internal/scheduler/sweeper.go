package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/cobrador/internal/telemetry"
)

// SweepStore — доступ к клиентам для часовой зачистки.
type SweepStore interface {
	MarkOverdueInactive(ctx context.Context, today time.Time) (int64, error)
}

// SweepEvents — событие о деактивированных клиентах. Опционально.
type SweepEvents interface {
	PublishClientsOverdue(ctx context.Context, count int64) error
}

// Sweeper деактивирует клиентов с истёкшей датой платежа.
// Идемпотентен: повторный прогон в тот же час не находит кандидатов.
type Sweeper struct {
	clients SweepStore
	events  SweepEvents
	logger  *slog.Logger
}

// NewSweeper создаёт новый Sweeper.
func NewSweeper(clients SweepStore, events SweepEvents, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{clients: clients, events: events, logger: logger}
}

// Sweep выполняет один проход зачистки.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	n, err := s.clients.MarkOverdueInactive(ctx, today)
	if err != nil {
		return fmt.Errorf("mark overdue clients: %w", err)
	}
	if n == 0 {
		return nil
	}

	telemetry.ClientsSwept.Add(float64(n))
	s.logger.Info("overdue clients deactivated", "count", n)

	if s.events != nil {
		if err := s.events.PublishClientsOverdue(ctx, n); err != nil {
			s.logger.Warn("failed to publish clients.overdue", "error", err)
		}
	}
	return nil
}
