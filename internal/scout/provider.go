package scout

import (
	"context"
	"time"
)

// Locator resolves the approximate location of an IP address.
// An empty ip means the address the request originates from.
type Locator interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// Forecaster fetches a daily forecast for coordinates.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lon float64) ([]DailyForecast, error)
}

// SunTimesSource fetches today's sunrise and sunset for coordinates.
type SunTimesSource interface {
	SunTimes(ctx context.Context, lat, lon float64) (SunTimes, error)
}

// PlaceFinder fetches points of interest around coordinates.
type PlaceFinder interface {
	Places(ctx context.Context, lat, lon float64) ([]Place, error)
}

// PhotoSearcher fetches sample photos matching text near coordinates.
type PhotoSearcher interface {
	SearchPhotos(ctx context.Context, text string, lat, lon float64, radiusKm int) ([]Photo, error)
}

// Sources bundles the provider clients used by an Aggregator.
type Sources struct {
	Locator Locator
	Weather Forecaster
	Sun     SunTimesSource
	Places  PlaceFinder
	Photos  PhotoSearcher
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(key string, snapshot Snapshot)
	GetLatest(key string) (Snapshot, error)
	GetRange(key string, from, to time.Time) ([]Snapshot, error)
	Keys() []string
}
