package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/shutterscout/internal/common"
	"github.com/i474232898/shutterscout/internal/scout"
)

// SunriseSunsetProvider fetches today's sun times from sunrise-sunset.org. Times are UTC.
type SunriseSunsetProvider struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewSunriseSunsetProvider(client *http.Client) *SunriseSunsetProvider {
	return &SunriseSunsetProvider{
		name:    "sunrise-sunset",
		baseURL: "https://api.sunrise-sunset.org/json",
		client:  client,
	}
}

func (p *SunriseSunsetProvider) Name() string {
	return p.name
}

// sunPayload keeps results raw: failed requests carry an empty string there.
type sunPayload struct {
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
}

type sunResults struct {
	Sunrise   *string `json:"sunrise" validate:"required"`
	Sunset    *string `json:"sunset" validate:"required"`
	DayLength *string `json:"day_length" validate:"required"`
}

// SunTimes returns today's sunrise, sunset and day length.
func (p *SunriseSunsetProvider) SunTimes(ctx context.Context, lat, lon float64) (scout.SunTimes, error) {
	st, err := p.sunTimes(ctx, lat, lon)
	return st, observe(p.name, err)
}

func (p *SunriseSunsetProvider) sunTimes(ctx context.Context, lat, lon float64) (scout.SunTimes, error) {
	values := url.Values{}
	values.Set("lat", common.FormatCoord(lat))
	values.Set("lng", common.FormatCoord(lon))
	values.Set("date", "today")

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	if err != nil {
		return scout.SunTimes{}, scout.NewError(p.name, scout.KindNetwork, err)
	}

	var payload sunPayload
	if err := getJSON(ctx, p.name, p.client, req, &payload); err != nil {
		return scout.SunTimes{}, err
	}

	if payload.Status != "OK" {
		return scout.SunTimes{}, scout.NewError(p.name, scout.KindProvider, fmt.Errorf("status %q", payload.Status))
	}

	if len(payload.Results) == 0 {
		return scout.SunTimes{}, scout.NewError(p.name, scout.KindData, fmt.Errorf("unexpected response shape: missing results"))
	}
	var results sunResults
	if err := json.Unmarshal(payload.Results, &results); err != nil {
		return scout.SunTimes{}, scout.NewError(p.name, scout.KindData, fmt.Errorf("decode results: %w", err))
	}
	if err := checkShape(p.name, results); err != nil {
		return scout.SunTimes{}, err
	}

	return scout.SunTimes{
		Sunrise:   *results.Sunrise,
		Sunset:    *results.Sunset,
		DayLength: *results.DayLength,
	}, nil
}
