package scout

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// AggregatorConfig holds the knobs of a single aggregation run.
type AggregatorConfig struct {
	MaxPlaces     int
	PhotoRadiusKm int
	Retry         RetryConfig
}

// DefaultAggregatorConfig returns 5 places, a 5 km photo radius and the default retry policy.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		MaxPlaces:     5,
		PhotoRadiusKm: 5,
		Retry:         DefaultRetryConfig(),
	}
}

// Aggregator combines the five providers into one CompositeResult.
type Aggregator struct {
	sources Sources
	cfg     AggregatorConfig
}

// NewAggregator creates a new Aggregator.
func NewAggregator(sources Sources, cfg AggregatorConfig) *Aggregator {
	return &Aggregator{
		sources: sources,
		cfg:     cfg,
	}
}

// Collect runs one aggregation. Location, weather, sun times and places are
// required; photos are best effort per place.
func (a *Aggregator) Collect(ctx context.Context, ip string) (CompositeResult, error) {
	start := time.Now()
	result, err := a.collect(ctx, ip)
	aggregationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		aggregationRuns.WithLabelValues("failed").Inc()
		return CompositeResult{}, err
	}
	aggregationRuns.WithLabelValues("ok").Inc()
	return result, nil
}

func (a *Aggregator) collect(ctx context.Context, ip string) (CompositeResult, error) {
	loc, ok := Retry(ctx, a.cfg.Retry, "location", func(ctx context.Context) (Location, error) {
		return a.sources.Locator.Locate(ctx, ip)
	})
	if !ok {
		return CompositeResult{}, ErrLocationUnavailable
	}
	log.Printf("DEBUG: resolved location %s (%.4f,%.4f)", loc.Key(), loc.Latitude, loc.Longitude)

	var (
		forecast []DailyForecast
		sun      SunTimes
		places   []Place
	)

	// Plain group: siblings are not cancelled when one fails.
	var tier2 errgroup.Group
	tier2.Go(func() error {
		v, ok := Retry(ctx, a.cfg.Retry, "weather", func(ctx context.Context) ([]DailyForecast, error) {
			return a.sources.Weather.Forecast(ctx, loc.Latitude, loc.Longitude)
		})
		if !ok {
			return fmt.Errorf("%w: weather", ErrRequiredData)
		}
		forecast = v
		return nil
	})
	tier2.Go(func() error {
		v, ok := Retry(ctx, a.cfg.Retry, "sun_times", func(ctx context.Context) (SunTimes, error) {
			return a.sources.Sun.SunTimes(ctx, loc.Latitude, loc.Longitude)
		})
		if !ok {
			return fmt.Errorf("%w: sun_times", ErrRequiredData)
		}
		sun = v
		return nil
	})
	tier2.Go(func() error {
		v, ok := Retry(ctx, a.cfg.Retry, "places", func(ctx context.Context) ([]Place, error) {
			return a.sources.Places.Places(ctx, loc.Latitude, loc.Longitude)
		})
		if !ok {
			return fmt.Errorf("%w: places", ErrRequiredData)
		}
		places = v
		return nil
	})
	if err := tier2.Wait(); err != nil {
		log.Printf("ERROR: aggregation for %s failed: %v", loc.Key(), err)
		return CompositeResult{}, err
	}

	places = truncatePlaces(places, a.cfg.MaxPlaces)

	return CompositeResult{
		Location:      loc,
		Weather:       forecast,
		SunTimes:      sun,
		Places:        places,
		PhotosByPlace: a.collectPhotos(ctx, places),
	}, nil
}

// collectPhotos searches photos for every place concurrently, one slot per place.
func (a *Aggregator) collectPhotos(ctx context.Context, places []Place) map[string][]Photo {
	byPlace := make(map[string][]Photo, len(places))
	if len(places) == 0 {
		return byPlace
	}

	slots := make([][]Photo, len(places))

	var tier3 errgroup.Group
	tier3.SetLimit(len(places))
	for i, p := range places {
		tier3.Go(func() error {
			photos, ok := Retry(ctx, a.cfg.Retry, "photos", func(ctx context.Context) ([]Photo, error) {
				return a.sources.Photos.SearchPhotos(ctx, p.Name, p.Latitude, p.Longitude, a.cfg.PhotoRadiusKm)
			})
			if !ok {
				log.Printf("WARN: no photos for %q; continuing without them", p.Name)
				return nil
			}
			slots[i] = photos
			return nil
		})
	}
	_ = tier3.Wait()

	for i, p := range places {
		if len(slots[i]) > 0 {
			byPlace[p.Name] = slots[i]
		}
	}
	return byPlace
}

// truncatePlaces keeps at most limit places in provider order.
func truncatePlaces(places []Place, limit int) []Place {
	if limit < 0 {
		limit = 0
	}
	if len(places) > limit {
		places = places[:limit]
	}
	out := make([]Place, len(places))
	copy(out, places)
	return out
}
