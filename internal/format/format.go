// Package format holds the pure display helpers: unit conversion and string
// formatting for values the provider reports in fixed source units.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/weathernow/weathernow/internal/weather"
)

// Wind speed display units. Wind is stored in meters/second everywhere;
// these only affect rendering.
const (
	WindKMH = "km/h"
	WindMPH = "mph"
	WindMS  = "m/s"
)

// Time display formats.
const (
	TimeFormat12h = "12h"
	TimeFormat24h = "24h"
)

// Temperature rounds and suffixes a temperature. The value is already in the
// unit system used for the original request; no celsius/fahrenheit conversion
// happens here.
func Temperature(temp float64, units weather.Units) string {
	rounded := int(math.Round(temp))
	if units == weather.UnitsImperial {
		return fmt.Sprintf("%d°F", rounded)
	}
	return fmt.Sprintf("%d°C", rounded)
}

// WindSpeed converts a meters/second value into the requested display unit.
// Unknown units render as km/h.
func WindSpeed(speedMS float64, unit string) string {
	switch unit {
	case WindMPH:
		return fmt.Sprintf("%d mph", int(math.Round(speedMS*2.237)))
	case WindMS:
		return fmt.Sprintf("%d m/s", int(math.Round(speedMS)))
	default:
		return fmt.Sprintf("%d km/h", int(math.Round(speedMS*3.6)))
	}
}

// Humidity renders a humidity percentage.
func Humidity(humidity float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(humidity)))
}

// Visibility renders a distance in meters as kilometers with one decimal.
func Visibility(meters float64) string {
	return fmt.Sprintf("%.1f km", meters/1000)
}

// UVIndexDescription maps a UV index value onto its WHO exposure category.
func UVIndexDescription(uvIndex float64) string {
	switch {
	case uvIndex <= 2:
		return "Low"
	case uvIndex <= 5:
		return "Moderate"
	case uvIndex <= 7:
		return "High"
	case uvIndex <= 10:
		return "Very High"
	default:
		return "Extreme"
	}
}

// FeelsLikeDescription explains the gap between measured and perceived
// temperature.
func FeelsLikeDescription(actual, feelsLike float64) string {
	if math.Abs(actual-feelsLike) < 2 {
		return "Similar to actual temperature"
	}
	if feelsLike < actual {
		return "Feels colder due to wind"
	}
	return "Feels warmer due to humidity"
}

// Time renders a unix timestamp as a clock time in tz. A nil tz means UTC.
func Time(timestamp int64, layout string, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	t := time.Unix(timestamp, 0).In(tz)
	if layout == TimeFormat24h {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// Date renders a unix timestamp as a readable date, optionally with time.
func Date(timestamp int64, includeTime bool, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	t := time.Unix(timestamp, 0).In(tz)
	if includeTime {
		return t.Format("Jan 2, 2006 15:04")
	}
	return t.Format("Jan 2, 2006")
}

// DayName returns the weekday name for a unix timestamp.
func DayName(timestamp int64, short bool, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	t := time.Unix(timestamp, 0).In(tz)
	if short {
		return t.Format("Mon")
	}
	return t.Format("Monday")
}

// iconNames maps OpenWeather icon codes onto the icon set the UI ships.
var iconNames = map[string]string{
	"01d": "sun",
	"01n": "moon",
	"02d": "cloud-sun",
	"02n": "cloud-moon",
	"03d": "cloud",
	"03n": "cloud",
	"04d": "cloud",
	"04n": "cloud",
	"09d": "cloud-rain",
	"09n": "cloud-rain",
	"10d": "cloud-sun-rain",
	"10n": "cloud-moon-rain",
	"11d": "cloud-lightning",
	"11n": "cloud-lightning",
	"13d": "cloud-snow",
	"13n": "cloud-snow",
	"50d": "cloud-fog",
	"50n": "cloud-fog",
}

// IconName maps a provider icon code to an icon identifier, defaulting to a
// plain cloud for codes the set doesn't cover.
func IconName(code string) string {
	if name, ok := iconNames[code]; ok {
		return name
	}
	return "cloud"
}

// Truncate shortens text to maxLength runes with an ellipsis.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}
