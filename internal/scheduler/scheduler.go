package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sony/gobreaker"

	"github.com/i474232898/shutterscout/internal/scout"
)

// runTimeout bounds one scheduled aggregation, retries included.
const runTimeout = 2 * time.Minute

const (
	// tripAfter consecutive failed refreshes pause the schedule.
	tripAfter = 3
	// pauseIntervals is how many intervals scheduled refreshes stay paused.
	pauseIntervals = 3
)

// Refresher runs one aggregation and stores it.
type Refresher interface {
	Refresh(ctx context.Context, ip string) (scout.Snapshot, error)
}

// Scheduler periodically refreshes the snapshot for the host's own location.
// After repeated failures it skips ticks for a while; on-demand runs are not
// affected.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	interval  time.Duration
	circuit   *gobreaker.CircuitBreaker
}

// New creates a new Scheduler.
func New(interval time.Duration, service Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "scheduled-refresh",
			MaxRequests: 1,
			Timeout:     pauseIntervals * interval,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= tripAfter
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("scheduler: %s %s -> %s", name, from, to)
			},
		}),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: refresh interval is 0; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	_, err := s.circuit.Execute(func() (interface{}, error) {
		log.Println("scheduler: running scout refresh job")

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		snapshot, err := s.service.Refresh(ctx, "")
		if err != nil {
			return nil, err
		}
		log.Printf("scheduler: completed refresh %s for %s", snapshot.ID, snapshot.Result.Location.Key())
		return nil, nil
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		log.Printf("scheduler: skipping refresh after %d consecutive failures", tripAfter)
	case err != nil:
		log.Printf("scheduler: refresh failed: %v", err)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
