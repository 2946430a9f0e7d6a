package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/cobrador/internal/telemetry"
)

// Таймауты мостовых вызовов.
const (
	// BatchTimeout — пакетная рассылка напоминаний.
	BatchTimeout = 120 * time.Second
	// NotifyTimeout — одиночное уведомление (отчёт, approved).
	NotifyTimeout = 15 * time.Second
)

// bridgeJob — единица работы для воркера моста.
type bridgeJob struct {
	name string
	fn   func(ctx context.Context) error
	done chan error
}

// Bridge — мост между синхронным циклом планировщика и асинхронными
// отправками. Держит ровно один долгоживущий воркер: задания
// выполняются последовательно, поэтому повторная подача того же
// задания никогда не исполняется параллельно с предыдущей.
//
// Run блокирует вызывающего до завершения задания или таймаута.
// Таймаут не убивает задание — воркер дорабатывает его в фоне,
// а вызывающий получает ошибку и продолжает цикл.
type Bridge struct {
	jobs   chan *bridgeJob
	logger *slog.Logger

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewBridge создаёт новый Bridge.
func NewBridge(logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		jobs:   make(chan *bridgeJob),
		logger: logger,
	}
}

// Start запускает воркер моста.
func (b *Bridge) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		b.logger.Warn("bridge already started")
		return
	}
	b.running = true

	workerCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	b.wg.Add(1)
	go b.worker(workerCtx)

	b.logger.Info("bridge started")
}

// Stop останавливает воркер и ждёт завершения текущего задания.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	cancel := b.cancel
	b.mu.Unlock()

	cancel()
	b.wg.Wait()
	b.logger.Info("bridge stopped")
}

func (b *Bridge) worker(ctx context.Context) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-b.jobs:
			started := time.Now()
			err := j.fn(ctx)
			if err != nil {
				b.logger.Error("bridge job failed",
					"job", j.name,
					"duration", time.Since(started),
					"error", err,
				)
			}
			// done буферизован: таймаут на стороне Run не блокирует воркер
			j.done <- err
		}
	}
}

// Run передаёт задание воркеру и блокирует до результата или таймаута.
// Таймаут покрывает и ожидание очереди, и само выполнение.
func (b *Bridge) Run(ctx context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	j := &bridgeJob{
		name: name,
		fn:   fn,
		done: make(chan error, 1),
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b.jobs <- j:
	case <-timer.C:
		telemetry.BridgeTimeouts.WithLabelValues(name).Inc()
		b.logger.Error("bridge job timed out waiting for worker",
			"job", name,
			"timeout", timeout,
		)
		return fmt.Errorf("bridge job %s: timed out after %s", name, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-timer.C:
		telemetry.BridgeTimeouts.WithLabelValues(name).Inc()
		b.logger.Error("bridge job timed out",
			"job", name,
			"timeout", timeout,
		)
		return fmt.Errorf("bridge job %s: timed out after %s", name, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
