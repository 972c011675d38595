package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/i474232898/shutterscout/internal/common"
	"github.com/i474232898/shutterscout/internal/scout"
)

// TomorrowProvider fetches daily forecasts from Tomorrow.io.
type TomorrowProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewTomorrowProvider(client *http.Client, apiKey string) *TomorrowProvider {
	return &TomorrowProvider{
		name:    "tomorrow",
		apiKey:  apiKey,
		baseURL: "https://api.tomorrow.io/v4/weather/forecast",
		client:  client,
	}
}

func (p *TomorrowProvider) Name() string {
	return p.name
}

type tomorrowPayload struct {
	// Set on application errors, e.g. {"code":400001,"type":"Invalid Body Parameters","message":"..."}.
	Code    *int   `json:"code"`
	Message string `json:"message"`

	Timelines *struct {
		Daily []tomorrowDay `json:"daily" validate:"required,dive"`
	} `json:"timelines" validate:"required"`
}

type tomorrowDay struct {
	Time   *string `json:"time" validate:"required"`
	Values *struct {
		TemperatureMin              *float64 `json:"temperatureMin" validate:"required"`
		TemperatureMax              *float64 `json:"temperatureMax" validate:"required"`
		CloudCoverAvg               *float64 `json:"cloudCoverAvg" validate:"required"`
		PrecipitationProbabilityAvg *float64 `json:"precipitationProbabilityAvg" validate:"required"`
		VisibilityAvg               *float64 `json:"visibilityAvg" validate:"required"`
		SunriseTime                 *string  `json:"sunriseTime" validate:"required"`
		SunsetTime                  *string  `json:"sunsetTime" validate:"required"`
		WindSpeedAvg                *float64 `json:"windSpeedAvg" validate:"required"`
		HumidityAvg                 *float64 `json:"humidityAvg" validate:"required"`
	} `json:"values" validate:"required"`
}

// Forecast returns the daily timeline for the coordinates.
func (p *TomorrowProvider) Forecast(ctx context.Context, lat, lon float64) ([]scout.DailyForecast, error) {
	days, err := p.forecast(ctx, lat, lon)
	return days, observe(p.name, err)
}

func (p *TomorrowProvider) forecast(ctx context.Context, lat, lon float64) ([]scout.DailyForecast, error) {
	if p.apiKey == "" {
		return nil, scout.NewError(p.name, scout.KindConfig, fmt.Errorf("TOMORROW_API_KEY: %w", errMissingKey))
	}

	values := url.Values{}
	values.Set("location", common.LatLon(lat, lon))
	values.Set("timesteps", "1d")
	values.Set("apikey", p.apiKey)

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, scout.NewError(p.name, scout.KindNetwork, err)
	}
	req.Header.Set("accept", "application/json")

	var payload tomorrowPayload
	if err := getJSON(ctx, p.name, p.client, req, &payload); err != nil {
		return nil, err
	}

	if payload.Timelines == nil && payload.Code != nil {
		return nil, scout.NewError(p.name, scout.KindProvider, fmt.Errorf("code %d: %s", *payload.Code, payload.Message))
	}

	if err := checkShape(p.name, payload); err != nil {
		return nil, err
	}

	forecast := make([]scout.DailyForecast, 0, len(payload.Timelines.Daily))
	for _, day := range payload.Timelines.Daily {
		v := day.Values
		forecast = append(forecast, scout.DailyForecast{
			Time:                     *day.Time,
			TemperatureMin:           *v.TemperatureMin,
			TemperatureMax:           *v.TemperatureMax,
			CloudCover:               percent(*v.CloudCoverAvg),
			PrecipitationProbability: percent(*v.PrecipitationProbabilityAvg),
			Visibility:               *v.VisibilityAvg,
			SunriseTime:              *v.SunriseTime,
			SunsetTime:               *v.SunsetTime,
			WindSpeed:                *v.WindSpeedAvg,
			Humidity:                 percent(*v.HumidityAvg),
		})
	}
	return forecast, nil
}

// percent rounds a provider average to a whole percentage in [0, 100].
func percent(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
