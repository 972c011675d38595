package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/shutterscout/internal/common"
	"github.com/i474232898/shutterscout/internal/scout"
)

// FoursquareCategories selects landmarks, cultural spots, museums,
// entertainment and scenic lookouts.
const FoursquareCategories = "16032,16015,16019,13003,10027"

// DefaultPlacesRadiusM is the default Foursquare search radius in meters.
const DefaultPlacesRadiusM = 10000

// FoursquareProvider fetches points of interest from the Foursquare Places API.
type FoursquareProvider struct {
	name    string
	apiKey  string
	baseURL string
	radiusM int
	client  *http.Client
}

func NewFoursquareProvider(client *http.Client, apiKey string, radiusM int) *FoursquareProvider {
	if radiusM <= 0 {
		radiusM = DefaultPlacesRadiusM
	}
	return &FoursquareProvider{
		name:    "foursquare",
		apiKey:  apiKey,
		baseURL: "https://api.foursquare.com/v3/places/search",
		radiusM: radiusM,
		client:  client,
	}
}

func (p *FoursquareProvider) Name() string {
	return p.name
}

type foursquarePayload struct {
	Results []foursquarePlace `json:"results"`
}

// foursquarePlace keeps only what the simplified Place projection needs.
type foursquarePlace struct {
	Name     *string `json:"name" validate:"required"`
	Geocodes *struct {
		Main *struct {
			Latitude  *float64 `json:"latitude" validate:"required"`
			Longitude *float64 `json:"longitude" validate:"required"`
		} `json:"main" validate:"required"`
	} `json:"geocodes" validate:"required"`
}

// Places returns nearby points of interest in provider order. Results without
// a name or main geocode are dropped with a warning.
func (p *FoursquareProvider) Places(ctx context.Context, lat, lon float64) ([]scout.Place, error) {
	places, err := p.places(ctx, lat, lon)
	return places, observe(p.name, err)
}

func (p *FoursquareProvider) places(ctx context.Context, lat, lon float64) ([]scout.Place, error) {
	if p.apiKey == "" {
		return nil, scout.NewError(p.name, scout.KindConfig, fmt.Errorf("FOURSQUARE_API_KEY: %w", errMissingKey))
	}

	values := url.Values{}
	values.Set("ll", common.LatLon(lat, lon))
	values.Set("radius", strconv.Itoa(p.radiusM))
	values.Set("categories", FoursquareCategories)

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, scout.NewError(p.name, scout.KindNetwork, err)
	}
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("accept", "application/json")

	var payload foursquarePayload
	if err := getJSON(ctx, p.name, p.client, req, &payload); err != nil {
		return nil, err
	}

	// Only the envelope is checked here; each result is checked on its own below.
	if payload.Results == nil {
		return nil, scout.NewError(p.name, scout.KindData, fmt.Errorf("unexpected response shape: missing results"))
	}

	places := make([]scout.Place, 0, len(payload.Results))
	for i, r := range payload.Results {
		if err := validate.Struct(r); err != nil {
			log.Printf("WARN: %s: dropping result %d without name or geocode: %v", p.name, i, err)
			continue
		}
		places = append(places, scout.Place{
			Name:      *r.Name,
			Latitude:  *r.Geocodes.Main.Latitude,
			Longitude: *r.Geocodes.Main.Longitude,
		})
	}
	return places, nil
}
