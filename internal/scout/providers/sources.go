package providers

import (
	"net/http"

	"github.com/i474232898/shutterscout/internal/scout"
)

// Credentials holds the per-provider API keys and search settings.
type Credentials struct {
	TomorrowAPIKey   string
	FoursquareAPIKey string
	FlickrAPIKey     string
	PlacesRadiusM    int
	PhotoSize        PhotoSize
}

// NewSources wires the five provider clients around one shared HTTP client.
func NewSources(client *http.Client, creds Credentials) scout.Sources {
	return scout.Sources{
		Locator: NewIPAPIProvider(client),
		Weather: NewTomorrowProvider(client, creds.TomorrowAPIKey),
		Sun:     NewSunriseSunsetProvider(client),
		Places:  NewFoursquareProvider(client, creds.FoursquareAPIKey, creds.PlacesRadiusM),
		Photos:  NewFlickrProvider(client, creds.FlickrAPIKey, creds.PhotoSize),
	}
}
