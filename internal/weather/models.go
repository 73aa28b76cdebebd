package weather

import (
	"github.com/google/uuid"
)

// Units is the measurement convention passed through to the provider.
// The provider converts temperatures server-side, so samples always carry
// degrees in the unit system the caller asked for.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Valid reports whether u is one of the supported unit systems.
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// Location is a named geographic point from the provider, or a locally
// synthesized one for defaults.
type Location struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CountryCode string  `json:"countryCode"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// ValidCoordinates reports whether the location's coordinates lie within
// [-90,90] latitude and [-180,180] longitude.
func (l Location) ValidCoordinates() bool {
	return ValidCoordinates(l.Lat, l.Lon)
}

// ValidCoordinates reports whether lat/lon form a valid coordinate pair.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.ID != "" {
		return l.ID
	}
	return l.Name + ":" + l.CountryCode
}

// DefaultLocation is used on first run before the user has picked anything.
// Coordinates are Calgary, AB.
func DefaultLocation() Location {
	return Location{
		ID:          uuid.NewString(),
		Name:        "Calgary",
		CountryCode: "CA",
		Lat:         51.0447,
		Lon:         -114.0719,
	}
}

// WeatherSample is one observation or forecast point at a specific time.
// Samples are created fresh on every provider response and never mutated.
type WeatherSample struct {
	Timestamp int64 `json:"timestamp"` // unix seconds, UTC

	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"` // percent, 0-100
	Pressure    float64 `json:"pressure"` // hPa

	// WindSpeed is always meters/second regardless of the requested unit
	// system; display units are derived at formatting time.
	WindSpeed float64 `json:"windSpeed"`

	// PrecipProbability is 0.0-1.0. The provider omits the field for some
	// entries; an absent value is decoded as 0.
	PrecipProbability float64 `json:"precipitationProbability"`

	VisibilityM int `json:"visibility,omitempty"` // meters

	// Condition is the provider's short condition code ("Clear", "Rain", ...)
	// used to pick icons and descriptions downstream.
	Condition   string `json:"conditionCode"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// CurrentConditions is a current-weather sample with location metadata and
// sun times attached.
type CurrentConditions struct {
	WeatherSample
	Location Location `json:"location"`
	Sunrise  int64    `json:"sunrise,omitempty"`
	Sunset   int64    `json:"sunset,omitempty"`
}

// DailyForecast is one aggregated entry per calendar day, derived from the
// 3-hour sample feed. Entries are immutable once produced and never persisted.
type DailyForecast struct {
	// Timestamp is the timestamp of the first sample assigned to the day.
	Timestamp int64 `json:"timestamp"`

	TemperatureMin float64 `json:"temperatureMin"`
	TemperatureMax float64 `json:"temperatureMax"`

	// HumidityAvg is the rounded arithmetic mean across the day's samples.
	HumidityAvg int `json:"humidityAverage"`

	PrecipProbabilityMax float64 `json:"precipitationProbabilityMax"`

	// Condition is fixed to the first sample of the day. Picking, say, the
	// midday or most frequent condition would arguably be better, but the
	// first-sample rule is the established behaviour callers render against.
	Condition string `json:"conditionCode"`
	Icon      string `json:"icon,omitempty"`
}
