package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestNewCadence_NextAligned(t *testing.T) {
	now := time.Date(2025, 3, 5, 10, 0, 30, 0, time.UTC)

	c, err := newCadence("test", "* * * * *", now, func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 3, 5, 10, 1, 0, 0, time.UTC)
	if !c.nextDue().Equal(want) {
		t.Errorf("next = %s, want %s", c.nextDue(), want)
	}
}

func TestNewCadence_InvalidExpr(t *testing.T) {
	_, err := newCadence("bad", "not a cron", time.Now(), func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCadence_MaybeRunBeforeDue(t *testing.T) {
	now := time.Date(2025, 3, 5, 10, 0, 30, 0, time.UTC)

	var ticks int
	c, err := newCadence("test", "* * * * *", now, func(ctx context.Context) error {
		ticks++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.maybeRun(context.Background(), now.Add(10*time.Second), discard())
	if ticks != 0 {
		t.Error("must not run before next due")
	}

	c.maybeRun(context.Background(), now.Add(30*time.Second), discard())
	if ticks != 1 {
		t.Errorf("must run at due time, ticks = %d", ticks)
	}
}

func TestCadence_MissedBoundariesCollapse(t *testing.T) {
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	var ticks int
	c, err := newCadence("test", "* * * * *", now, func(ctx context.Context) error {
		ticks++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Цикл "проспал" пять границ — выполняется один тик, не пять
	late := now.Add(5 * time.Minute)
	c.maybeRun(context.Background(), late, discard())
	if ticks != 1 {
		t.Errorf("missed boundaries must collapse into one tick, got %d", ticks)
	}

	// Следующий запуск вычислен от момента завершения, не от расписания
	if !c.nextDue().After(late) {
		t.Errorf("next due %s must be after %s", c.nextDue(), late)
	}
}

func TestCadence_SingleFlightSkips(t *testing.T) {
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	started := make(chan struct{})
	release := make(chan struct{})
	var ticks int

	c, err := newCadence("test", "* * * * *", now, func(ctx context.Context) error {
		ticks++
		close(started)
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	go c.maybeRun(context.Background(), now.Add(time.Minute), discard())
	<-started

	// Пока первый тик выполняется, следующая граница пропускается
	c.maybeRun(context.Background(), now.Add(2*time.Minute), discard())
	if ticks != 1 {
		t.Errorf("overlapping tick must be skipped, got %d", ticks)
	}

	close(release)
}
