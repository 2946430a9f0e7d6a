package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBridge_RunCompletes(t *testing.T) {
	b := NewBridge(discard())
	b.Start(context.Background())
	defer b.Stop()

	var ran bool
	err := b.Run(context.Background(), "job", time.Second, func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("job must have run")
	}
}

func TestBridge_RunPropagatesError(t *testing.T) {
	b := NewBridge(discard())
	b.Start(context.Background())
	defer b.Stop()

	want := errors.New("boom")
	err := b.Run(context.Background(), "job", time.Second, func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected job error, got %v", err)
	}
}

func TestBridge_Timeout(t *testing.T) {
	b := NewBridge(discard())
	b.Start(context.Background())
	defer b.Stop()

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err := b.Run(context.Background(), "stuck", 50*time.Millisecond, func(ctx context.Context) error {
		<-release
		return nil
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	// Вызывающий освобождается по таймауту, а не ждёт зависшее задание
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("caller was blocked for %s", elapsed)
	}
}

func TestBridge_TimeoutWaitingForBusyWorker(t *testing.T) {
	b := NewBridge(discard())
	b.Start(context.Background())
	defer b.Stop()

	release := make(chan struct{})
	defer close(release)

	// Занимаем единственного воркера
	go b.Run(context.Background(), "long", time.Minute, func(ctx context.Context) error {
		<-release
		return nil
	})
	time.Sleep(20 * time.Millisecond)

	// Второе задание не дожидается очереди — таймаут покрывает ожидание
	err := b.Run(context.Background(), "queued", 50*time.Millisecond, func(ctx context.Context) error {
		return nil
	})
	if err == nil {
		t.Fatal("expected timeout while worker is busy")
	}
}

func TestBridge_SequentialExecution(t *testing.T) {
	b := NewBridge(discard())
	b.Start(context.Background())
	defer b.Stop()

	var active, maxActive int
	for i := 0; i < 5; i++ {
		err := b.Run(context.Background(), "seq", time.Second, func(ctx context.Context) error {
			active++
			if active > maxActive {
				maxActive = active
			}
			time.Sleep(5 * time.Millisecond)
			active--
			return nil
		})
		if err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}
	if maxActive != 1 {
		t.Errorf("jobs overlapped: max active = %d", maxActive)
	}
}

func TestBridge_StopWaitsForCurrentJob(t *testing.T) {
	b := NewBridge(discard())
	b.Start(context.Background())

	done := make(chan struct{})
	go b.Run(context.Background(), "job", time.Second, func(ctx context.Context) error {
		time.Sleep(30 * time.Millisecond)
		close(done)
		return nil
	})
	time.Sleep(10 * time.Millisecond)

	b.Stop()

	select {
	case <-done:
	default:
		t.Error("Stop returned before the in-flight job finished")
	}
}
