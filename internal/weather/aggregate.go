package weather

import (
	"math"
	"time"

	"github.com/zsefvlol/timezonemapper"
)

// dayAccumulator carries the running state for one calendar day.
type dayAccumulator struct {
	first       WeatherSample
	tempMin     float64
	tempMax     float64
	humiditySum int
	count       int
	popMax      float64
}

// AggregateDaily groups a chronological 3-hour sample feed into one entry per
// calendar day. The caller supplies the order; samples are not re-sorted.
// Days are cut at midnight in tz, so the same feed can aggregate differently
// depending on the observer's zone. Empty input yields empty output.
func AggregateDaily(samples []WeatherSample, tz *time.Location) []DailyForecast {
	if tz == nil {
		tz = time.UTC
	}

	acc := make(map[string]*dayAccumulator)
	var order []string

	for _, s := range samples {
		key := time.Unix(s.Timestamp, 0).In(tz).Format("2006-01-02")

		day, ok := acc[key]
		if !ok {
			acc[key] = &dayAccumulator{
				first:       s,
				tempMin:     s.Temperature,
				tempMax:     s.Temperature,
				humiditySum: s.Humidity,
				count:       1,
				popMax:      s.PrecipProbability,
			}
			order = append(order, key)
			continue
		}

		day.tempMin = math.Min(day.tempMin, s.Temperature)
		day.tempMax = math.Max(day.tempMax, s.Temperature)
		day.humiditySum += s.Humidity
		day.count++
		day.popMax = math.Max(day.popMax, s.PrecipProbability)
	}

	forecasts := make([]DailyForecast, 0, len(order))
	for _, key := range order {
		day := acc[key]
		forecasts = append(forecasts, DailyForecast{
			Timestamp:            day.first.Timestamp,
			TemperatureMin:       day.tempMin,
			TemperatureMax:       day.tempMax,
			HumidityAvg:          int(math.Round(float64(day.humiditySum) / float64(day.count))),
			PrecipProbabilityMax: day.popMax,
			Condition:            day.first.Condition,
			Icon:                 day.first.Icon,
		})
	}
	return forecasts
}

// ZoneFor resolves the IANA time zone at the given coordinates so day
// boundaries follow the observed location rather than the server's ambient
// clock. Unresolvable coordinates or missing zone data fall back to UTC.
func ZoneFor(lat, lon float64) *time.Location {
	name := timezonemapper.LatLngToTimezoneString(lat, lon)
	if name == "" {
		return time.UTC
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return tz
}
