package weather

import (
	"reflect"
	"testing"
	"time"
)

func ts(year int, month time.Month, day, hour int) int64 {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC).Unix()
}

func TestAggregateDailyGroupsByCalendarDay(t *testing.T) {
	samples := []WeatherSample{
		{Timestamp: ts(2024, time.June, 3, 9), Temperature: 10, Humidity: 40, Condition: "Clouds"},
		{Timestamp: ts(2024, time.June, 3, 15), Temperature: 15, Humidity: 50, Condition: "Clear"},
		{Timestamp: ts(2024, time.June, 4, 9), Temperature: 5, Humidity: 60, Condition: "Rain"},
	}

	days := AggregateDaily(samples, time.UTC)
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}

	mon := days[0]
	if mon.TemperatureMin != 10 || mon.TemperatureMax != 15 {
		t.Fatalf("expected min=10 max=15, got min=%v max=%v", mon.TemperatureMin, mon.TemperatureMax)
	}
	if mon.HumidityAvg != 45 {
		t.Fatalf("expected humidity average 45, got %d", mon.HumidityAvg)
	}
	if mon.Condition != "Clouds" {
		t.Fatalf("condition must be frozen to the day's first sample, got %q", mon.Condition)
	}
	if mon.Timestamp != samples[0].Timestamp {
		t.Fatalf("day timestamp must come from the first sample")
	}

	tue := days[1]
	if tue.TemperatureMin != 5 || tue.TemperatureMax != 5 {
		t.Fatalf("single-sample day must have min=max, got min=%v max=%v", tue.TemperatureMin, tue.TemperatureMax)
	}
	if tue.HumidityAvg != 60 {
		t.Fatalf("single-sample day humidity should be the sample's value, got %d", tue.HumidityAvg)
	}
}

func TestAggregateDailyEmptyInput(t *testing.T) {
	days := AggregateDaily(nil, time.UTC)
	if len(days) != 0 {
		t.Fatalf("empty input must yield empty output, got %d entries", len(days))
	}
}

func TestAggregateDailyPrecipitationMax(t *testing.T) {
	samples := []WeatherSample{
		{Timestamp: ts(2024, time.June, 3, 0), Temperature: 10, PrecipProbability: 0.2},
		{Timestamp: ts(2024, time.June, 3, 3), Temperature: 10, PrecipProbability: 0.7},
		// Missing pop decodes as 0 and must not win the max.
		{Timestamp: ts(2024, time.June, 3, 6), Temperature: 10},
	}

	days := AggregateDaily(samples, time.UTC)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].PrecipProbabilityMax != 0.7 {
		t.Fatalf("expected pop max 0.7, got %v", days[0].PrecipProbabilityMax)
	}
}

func TestAggregateDailyInvariants(t *testing.T) {
	samples := []WeatherSample{
		{Timestamp: ts(2024, time.June, 5, 3), Temperature: -2, Humidity: 80},
		{Timestamp: ts(2024, time.June, 5, 9), Temperature: 4, Humidity: 70},
		{Timestamp: ts(2024, time.June, 6, 3), Temperature: 1, Humidity: 65},
		{Timestamp: ts(2024, time.June, 7, 3), Temperature: 8, Humidity: 50},
		{Timestamp: ts(2024, time.June, 7, 9), Temperature: 3, Humidity: 55},
	}

	days := AggregateDaily(samples, time.UTC)
	if len(days) != 3 {
		t.Fatalf("entry count must equal distinct days, got %d", len(days))
	}
	for i, d := range days {
		if d.TemperatureMin > d.TemperatureMax {
			t.Fatalf("day %d violates min<=max: %v > %v", i, d.TemperatureMin, d.TemperatureMax)
		}
	}
	for i := 1; i < len(days); i++ {
		if days[i].Timestamp <= days[i-1].Timestamp {
			t.Fatalf("days must preserve first-appearance order")
		}
	}
}

func TestAggregateDailyIdempotent(t *testing.T) {
	samples := []WeatherSample{
		{Timestamp: ts(2024, time.June, 3, 9), Temperature: 10, Humidity: 41, PrecipProbability: 0.1, Condition: "Clear"},
		{Timestamp: ts(2024, time.June, 3, 15), Temperature: 14, Humidity: 48, PrecipProbability: 0.3, Condition: "Rain"},
		{Timestamp: ts(2024, time.June, 4, 9), Temperature: 7, Humidity: 66, Condition: "Snow"},
	}

	first := AggregateDaily(samples, time.UTC)
	second := AggregateDaily(samples, time.UTC)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation must be deterministic for identical input")
	}
}

func TestAggregateDailyZoneChangesDayBoundary(t *testing.T) {
	// 22:00 and next-day 01:00 UTC: two calendar days in UTC, one in UTC+3.
	samples := []WeatherSample{
		{Timestamp: ts(2024, time.June, 1, 22), Temperature: 12},
		{Timestamp: ts(2024, time.June, 2, 1), Temperature: 9},
	}

	utcDays := AggregateDaily(samples, time.UTC)
	if len(utcDays) != 2 {
		t.Fatalf("expected 2 days in UTC, got %d", len(utcDays))
	}

	east := time.FixedZone("UTC+3", 3*60*60)
	eastDays := AggregateDaily(samples, east)
	if len(eastDays) != 1 {
		t.Fatalf("expected 1 day in UTC+3, got %d", len(eastDays))
	}
	if eastDays[0].TemperatureMin != 9 || eastDays[0].TemperatureMax != 12 {
		t.Fatalf("merged day must span both samples, got min=%v max=%v",
			eastDays[0].TemperatureMin, eastDays[0].TemperatureMax)
	}
}

func TestAggregateDailyNilZoneDefaultsToUTC(t *testing.T) {
	samples := []WeatherSample{
		{Timestamp: ts(2024, time.June, 1, 22), Temperature: 12},
		{Timestamp: ts(2024, time.June, 2, 1), Temperature: 9},
	}
	if got := AggregateDaily(samples, nil); len(got) != 2 {
		t.Fatalf("nil zone should behave as UTC, got %d days", len(got))
	}
}
