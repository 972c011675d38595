package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/shutterscout/internal/scout"
)

type AppConfig struct {
	TomorrowAPIKey   string
	FoursquareAPIKey string
	FlickrAPIKey     string
	AnthropicAPIKey  string

	// Aggregation knobs.
	MaxPlaces     int    `validate:"gte=0,lte=50"`
	PhotoRadiusKm int    `validate:"gte=1,lte=32"` // Flickr caps radius at 32 km
	PlacesRadiusM int    `validate:"gte=1,lte=100000"`
	PhotoSize     string `validate:"oneof=s q t m medium b h k"`

	RetryAttempts int           `validate:"gte=1,lte=10"`
	RetryDelay    time.Duration `validate:"gte=0"`

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// RefreshInterval controls how often the scheduler refreshes the snapshot (0 = disabled).
	RefreshInterval time.Duration `validate:"gte=0"`

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	ReportPath string `validate:"required"`
	Port       string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
// Missing provider keys are not an error here; the affected provider reports
// them when it is called.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.TomorrowAPIKey = os.Getenv("TOMORROW_API_KEY")
	cfg.FoursquareAPIKey = os.Getenv("FOURSQUARE_API_KEY")
	cfg.FlickrAPIKey = os.Getenv("FLICKR_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")

	cfg.MaxPlaces = getenvInt("SCOUT_MAX_PLACES", 5)
	cfg.PhotoRadiusKm = getenvInt("SCOUT_PHOTO_RADIUS_KM", 5)
	cfg.PlacesRadiusM = getenvInt("SCOUT_PLACES_RADIUS_M", 10000)
	cfg.PhotoSize = getenvDefault("SCOUT_PHOTO_SIZE", "medium")
	cfg.RetryAttempts = getenvInt("SCOUT_RETRY_ATTEMPTS", 3)

	var err error
	if cfg.RetryDelay, err = getenvDuration("SCOUT_RETRY_DELAY", "1s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "60m"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 48) // two days at hourly refresh
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "48h"); err != nil {
		return nil, err
	}

	cfg.ReportPath = getenvDefault("REPORT_PATH", "shutterscout_report.txt")
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	for name, key := range map[string]string{
		"TOMORROW_API_KEY":   cfg.TomorrowAPIKey,
		"FOURSQUARE_API_KEY": cfg.FoursquareAPIKey,
		"FLICKR_API_KEY":     cfg.FlickrAPIKey,
	} {
		if key == "" {
			log.Printf("WARN: %s is not set; that provider will fail with a configuration error", name)
		}
	}

	return cfg, nil
}

// Aggregator returns the aggregation settings derived from the configuration.
func (c *AppConfig) Aggregator() scout.AggregatorConfig {
	return scout.AggregatorConfig{
		MaxPlaces:     c.MaxPlaces,
		PhotoRadiusKm: c.PhotoRadiusKm,
		Retry: scout.RetryConfig{
			MaxAttempts:  c.RetryAttempts,
			InitialDelay: c.RetryDelay,
		},
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Printf("WARN: invalid %s=%q, using default %d", key, v, def)
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	s := getenvDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
