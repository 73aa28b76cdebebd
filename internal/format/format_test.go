package format

import (
	"testing"
	"time"

	"github.com/weathernow/weathernow/internal/weather"
)

func TestTemperature(t *testing.T) {
	if got := Temperature(18.4, weather.UnitsMetric); got != "18°C" {
		t.Fatalf("expected 18°C, got %q", got)
	}
	if got := Temperature(18.5, weather.UnitsMetric); got != "19°C" {
		t.Fatalf("expected rounding half up, got %q", got)
	}
	if got := Temperature(64.2, weather.UnitsImperial); got != "64°F" {
		t.Fatalf("expected 64°F, got %q", got)
	}
}

func TestWindSpeed(t *testing.T) {
	cases := []struct {
		speedMS float64
		unit    string
		want    string
	}{
		{10, WindKMH, "36 km/h"},
		{10, WindMS, "10 m/s"},
		{10, WindMPH, "22 mph"},
		{5.1, "furlongs", "18 km/h"}, // unknown unit falls back to km/h
	}
	for _, tc := range cases {
		if got := WindSpeed(tc.speedMS, tc.unit); got != tc.want {
			t.Errorf("WindSpeed(%v, %q) = %q, want %q", tc.speedMS, tc.unit, got, tc.want)
		}
	}
}

func TestUVIndexDescription(t *testing.T) {
	cases := []struct {
		uv   float64
		want string
	}{
		{0, "Low"},
		{2, "Low"},
		{3, "Moderate"},
		{6, "High"},
		{8, "Very High"},
		{11, "Extreme"},
	}
	for _, tc := range cases {
		if got := UVIndexDescription(tc.uv); got != tc.want {
			t.Errorf("UVIndexDescription(%v) = %q, want %q", tc.uv, got, tc.want)
		}
	}
}

func TestVisibility(t *testing.T) {
	if got := Visibility(9900); got != "9.9 km" {
		t.Fatalf("expected 9.9 km, got %q", got)
	}
	if got := Visibility(10000); got != "10.0 km" {
		t.Fatalf("expected 10.0 km, got %q", got)
	}
}

func TestHumidity(t *testing.T) {
	if got := Humidity(46.6); got != "47%" {
		t.Fatalf("expected 47%%, got %q", got)
	}
}

func TestTimeFormats(t *testing.T) {
	// 2024-06-03 15:04 UTC
	ts := time.Date(2024, time.June, 3, 15, 4, 0, 0, time.UTC).Unix()

	if got := Time(ts, TimeFormat24h, time.UTC); got != "15:04" {
		t.Fatalf("24h format: got %q", got)
	}
	if got := Time(ts, TimeFormat12h, time.UTC); got != "3:04 PM" {
		t.Fatalf("12h format: got %q", got)
	}

	east := time.FixedZone("UTC+3", 3*60*60)
	if got := Time(ts, TimeFormat24h, east); got != "18:04" {
		t.Fatalf("zone-shifted format: got %q", got)
	}
}

func TestDateAndDayName(t *testing.T) {
	ts := time.Date(2024, time.June, 3, 15, 4, 0, 0, time.UTC).Unix()

	if got := Date(ts, false, time.UTC); got != "Jun 3, 2024" {
		t.Fatalf("date: got %q", got)
	}
	if got := Date(ts, true, time.UTC); got != "Jun 3, 2024 15:04" {
		t.Fatalf("date with time: got %q", got)
	}
	if got := DayName(ts, false, time.UTC); got != "Monday" {
		t.Fatalf("day name: got %q", got)
	}
	if got := DayName(ts, true, time.UTC); got != "Mon" {
		t.Fatalf("short day name: got %q", got)
	}
}

func TestFeelsLikeDescription(t *testing.T) {
	if got := FeelsLikeDescription(20, 21); got != "Similar to actual temperature" {
		t.Fatalf("got %q", got)
	}
	if got := FeelsLikeDescription(20, 15); got != "Feels colder due to wind" {
		t.Fatalf("got %q", got)
	}
	if got := FeelsLikeDescription(20, 26); got != "Feels warmer due to humidity" {
		t.Fatalf("got %q", got)
	}
}

func TestIconName(t *testing.T) {
	if got := IconName("01d"); got != "sun" {
		t.Fatalf("got %q", got)
	}
	if got := IconName("99x"); got != "cloud" {
		t.Fatalf("unknown code must default to cloud, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Calgary", 20); got != "Calgary" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("San Pedro de Atacama", 8); got != "San Pedr..." {
		t.Fatalf("got %q", got)
	}
}
