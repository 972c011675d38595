package scout

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Collector produces one composite result per call.
type Collector interface {
	Collect(ctx context.Context, ip string) (CompositeResult, error)
}

// Service orchestrates aggregation runs and persisting snapshots.
type Service struct {
	store     Store
	collector Collector
	now       func() time.Time
}

// NewService creates a new Service.
func NewService(store Store, collector Collector) *Service {
	return &Service{
		store:     store,
		collector: collector,
		now:       time.Now,
	}
}

// Refresh runs one aggregation for ip (empty for the host's own address)
// and stores the result under its location key.
func (s *Service) Refresh(ctx context.Context, ip string) (Snapshot, error) {
	result, err := s.collector.Collect(ctx, ip)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		ID:          uuid.NewString(),
		CollectedAt: s.now().UTC(),
		Result:      result,
	}
	s.store.SaveSnapshot(result.Location.Key(), snapshot)

	log.Printf("INFO: stored snapshot %s for %s: %d days, %d places, %d with photos",
		snapshot.ID, result.Location.Key(), len(result.Weather), len(result.Places), len(result.PhotosByPlace))
	return snapshot, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(key string) (Snapshot, error) {
	return s.store.GetLatest(key)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(key string, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(key, from, to)
}

// Keys lists the locations that have at least one snapshot.
func (s *Service) Keys() []string {
	return s.store.Keys()
}
