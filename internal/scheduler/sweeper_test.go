package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSweepStore struct {
	count int64
	err   error
	today time.Time
}

func (f *fakeSweepStore) MarkOverdueInactive(ctx context.Context, today time.Time) (int64, error) {
	f.today = today
	return f.count, f.err
}

type fakeSweepEvents struct {
	published []int64
}

func (f *fakeSweepEvents) PublishClientsOverdue(ctx context.Context, count int64) error {
	f.published = append(f.published, count)
	return nil
}

func TestSweeper_Sweep(t *testing.T) {
	store := &fakeSweepStore{count: 3}
	events := &fakeSweepEvents{}
	s := NewSweeper(store, events, discard())

	now := time.Date(2025, 3, 5, 14, 30, 45, 0, time.UTC)
	if err := s.Sweep(context.Background(), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Граница — полночь текущего дня
	wantToday := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	if !store.today.Equal(wantToday) {
		t.Errorf("today = %s, want %s", store.today, wantToday)
	}

	if len(events.published) != 1 || events.published[0] != 3 {
		t.Errorf("expected one clients.overdue event with count 3, got %v", events.published)
	}
}

func TestSweeper_NothingToSweep(t *testing.T) {
	events := &fakeSweepEvents{}
	s := NewSweeper(&fakeSweepStore{count: 0}, events, discard())

	if err := s.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.published) != 0 {
		t.Error("no event expected when nothing was deactivated")
	}
}

func TestSweeper_StoreError(t *testing.T) {
	s := NewSweeper(&fakeSweepStore{err: errors.New("db down")}, nil, discard())

	if err := s.Sweep(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error from store")
	}
}

func TestSweeper_NilEvents(t *testing.T) {
	s := NewSweeper(&fakeSweepStore{count: 2}, nil, discard())

	if err := s.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
