package scout

import (
	"time"
)

// Location is the caller's approximate position as resolved by the geo provider.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	City      string  `json:"city" yaml:"city"`
	Region    string  `json:"region" yaml:"region"`
	Country   string  `json:"country" yaml:"country"`
	Timezone  string  `json:"timezone" yaml:"timezone"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return LocationKey(l.City, l.Country)
}

// LocationKey builds the store key for a city/country pair.
func LocationKey(city, country string) string {
	return city + ":" + country
}

// DailyForecast is one day of the weather timeline.
type DailyForecast struct {
	Time                     string  `json:"time" yaml:"time"`
	TemperatureMin           float64 `json:"temperature_min" yaml:"temperature_min"`
	TemperatureMax           float64 `json:"temperature_max" yaml:"temperature_max"`
	CloudCover               int     `json:"cloud_cover" yaml:"cloud_cover"`                             // percent
	PrecipitationProbability int     `json:"precipitation_probability" yaml:"precipitation_probability"` // percent
	Visibility               float64 `json:"visibility" yaml:"visibility"`                               // km
	SunriseTime              string  `json:"sunrise_time" yaml:"sunrise_time"`
	SunsetTime               string  `json:"sunset_time" yaml:"sunset_time"`
	WindSpeed                float64 `json:"wind_speed" yaml:"wind_speed"`
	Humidity                 int     `json:"humidity" yaml:"humidity"` // percent
}

// SunTimes is today's sunrise/sunset snapshot at the queried coordinates.
type SunTimes struct {
	Sunrise   string `json:"sunrise" yaml:"sunrise"`
	Sunset    string `json:"sunset" yaml:"sunset"`
	DayLength string `json:"day_length" yaml:"day_length"`
}

// Place is a point of interest near the location.
type Place struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Photo is a sample photograph with a direct image URL.
type Photo struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// CompositeResult is the merged output of one aggregation run.
// PhotosByPlace only holds places that returned at least one photo.
type CompositeResult struct {
	Location      Location           `json:"location" yaml:"location"`
	Weather       []DailyForecast    `json:"weather" yaml:"weather"`
	SunTimes      SunTimes           `json:"sun_times" yaml:"sun_times"`
	Places        []Place            `json:"places" yaml:"places"`
	PhotosByPlace map[string][]Photo `json:"photos_by_place" yaml:"photos_by_place"`
}

// Snapshot is a stored aggregation run.
type Snapshot struct {
	ID          string          `json:"id" yaml:"id"`
	CollectedAt time.Time       `json:"collected_at" yaml:"collected_at"` // always UTC
	Result      CompositeResult `json:"result" yaml:"result"`
}
