package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/shutterscout/internal/scout"
)

type refresherFunc func(ctx context.Context, ip string) (scout.Snapshot, error)

func (f refresherFunc) Refresh(ctx context.Context, ip string) (scout.Snapshot, error) {
	return f(ctx, ip)
}

func TestSchedulerRunsImmediately(t *testing.T) {
	calls := make(chan string, 1)
	s := New(time.Hour, refresherFunc(func(ctx context.Context, ip string) (scout.Snapshot, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected refresh to run with a deadline")
		}
		select {
		case calls <- ip:
		default:
		}
		return scout.Snapshot{ID: "s1"}, nil
	}))

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case ip := <-calls:
		if ip != "" {
			t.Fatalf("expected the host's own location, got ip %q", ip)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not run")
	}
}

func TestSchedulerDisabled(t *testing.T) {
	called := make(chan struct{}, 1)
	s := New(0, refresherFunc(func(context.Context, string) (scout.Snapshot, error) {
		called <- struct{}{}
		return scout.Snapshot{}, nil
	}))

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case <-called:
		t.Fatal("refresh must not run when the interval is 0")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedulerSurvivesFailedRefresh(t *testing.T) {
	done := make(chan struct{})
	s := New(time.Hour, refresherFunc(func(context.Context, string) (scout.Snapshot, error) {
		defer close(done)
		return scout.Snapshot{}, errors.New("location unavailable")
	}))

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not run")
	}
}

func TestSchedulerHonoursSubMinuteInterval(t *testing.T) {
	calls := make(chan struct{}, 10)
	s := New(time.Second, refresherFunc(func(context.Context, string) (scout.Snapshot, error) {
		select {
		case calls <- struct{}{}:
		default:
		}
		return scout.Snapshot{ID: "s"}, nil
	}))

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.After(10 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-deadline:
			t.Fatalf("expected 2 refreshes within 10s at a 1s interval, got %d", i)
		}
	}
}

func TestSchedulerPausesAfterRepeatedFailures(t *testing.T) {
	calls := 0
	s := New(time.Hour, refresherFunc(func(context.Context, string) (scout.Snapshot, error) {
		calls++
		return scout.Snapshot{}, errors.New("location unavailable")
	}))

	for i := 0; i < tripAfter+2; i++ {
		s.run()
	}

	if calls != tripAfter {
		t.Fatalf("expected %d refresh attempts before pausing, got %d", tripAfter, calls)
	}
}

func TestSchedulerSuccessResetsFailures(t *testing.T) {
	calls := 0
	s := New(time.Hour, refresherFunc(func(context.Context, string) (scout.Snapshot, error) {
		calls++
		if calls%tripAfter == 0 {
			return scout.Snapshot{ID: "ok"}, nil
		}
		return scout.Snapshot{}, errors.New("flaky")
	}))

	for i := 0; i < 3*tripAfter; i++ {
		s.run()
	}

	if calls != 3*tripAfter {
		t.Fatalf("expected every tick to refresh, got %d of %d", calls, 3*tripAfter)
	}
}
