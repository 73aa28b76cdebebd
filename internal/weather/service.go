package weather

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ConditionsCache is the contract the last-known cache must satisfy.
type ConditionsCache interface {
	Put(loc Location, cc CurrentConditions)
	Get(loc Location) (CurrentConditions, time.Time, error)
}

// Overview bundles everything the home screen renders in one load: current
// conditions plus the hourly feed and its daily aggregation.
type Overview struct {
	Current CurrentConditions `json:"current"`
	Hourly  []WeatherSample   `json:"hourly"`
	Daily   []DailyForecast   `json:"daily"`
}

// Service coordinates the provider client, the daily aggregation and the
// last-known cache. The target location is always an explicit argument;
// the service holds no ambient "current location" state.
type Service struct {
	client *Client
	cache  ConditionsCache
	log    *zap.Logger

	// forceZone, when set, overrides per-location time zone resolution for
	// day boundaries. Useful for deterministic server-side deployments.
	forceZone *time.Location
}

// NewService creates a new Service. cache may be nil to disable caching.
func NewService(client *Client, cache ConditionsCache, log *zap.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		log:    log,
	}
}

// SetForceZone pins day-boundary aggregation to a fixed zone instead of
// resolving one per location.
func (s *Service) SetForceZone(tz *time.Location) {
	s.forceZone = tz
}

// Current fetches current conditions for loc and records them in the
// last-known cache on success.
func (s *Service) Current(ctx context.Context, loc Location, units Units) (CurrentConditions, error) {
	cc, err := s.client.CurrentWeather(ctx, loc.Lat, loc.Lon, units)
	if err != nil {
		return CurrentConditions{}, err
	}
	if s.cache != nil {
		s.cache.Put(cc.Location, cc)
	}
	return cc, nil
}

// CurrentByCity fetches current conditions by city name.
func (s *Service) CurrentByCity(ctx context.Context, city string, units Units) (CurrentConditions, error) {
	cc, err := s.client.CurrentWeatherByCity(ctx, city, units)
	if err != nil {
		return CurrentConditions{}, err
	}
	if s.cache != nil {
		s.cache.Put(cc.Location, cc)
	}
	return cc, nil
}

// Forecast returns the raw 5-day/3-hour sample feed for loc.
func (s *Service) Forecast(ctx context.Context, loc Location, units Units) ([]WeatherSample, error) {
	return s.client.Forecast(ctx, loc.Lat, loc.Lon, units)
}

// SevenDayForecast returns the daily aggregation of the forecast feed.
// The name promises seven days but the underlying 5-day/3-hour feed supplies
// at most five or six distinct calendar days; missing days are not
// synthesized.
func (s *Service) SevenDayForecast(ctx context.Context, loc Location, units Units) ([]DailyForecast, error) {
	samples, err := s.client.Forecast(ctx, loc.Lat, loc.Lon, units)
	if err != nil {
		return nil, err
	}
	return AggregateDaily(samples, s.zoneFor(loc)), nil
}

// Overview fetches current conditions and the forecast concurrently. Both
// requests must succeed; there is no ordering dependency between them.
func (s *Service) Overview(ctx context.Context, loc Location, units Units) (Overview, error) {
	var (
		wg          sync.WaitGroup
		current     CurrentConditions
		samples     []WeatherSample
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = s.Current(ctx, loc, units)
	}()
	go func() {
		defer wg.Done()
		samples, forecastErr = s.client.Forecast(ctx, loc.Lat, loc.Lon, units)
	}()
	wg.Wait()

	if currentErr != nil {
		return Overview{}, currentErr
	}
	if forecastErr != nil {
		return Overview{}, forecastErr
	}

	return Overview{
		Current: current,
		Hourly:  samples,
		Daily:   AggregateDaily(samples, s.zoneFor(loc)),
	}, nil
}

// SearchCities returns candidate locations for a query; an empty result is
// a valid outcome, not an error.
func (s *Service) SearchCities(ctx context.Context, query string, limit int) ([]Location, error) {
	return s.client.SearchCities(ctx, query, limit)
}

// LastKnown returns the cached conditions for loc, if any.
func (s *Service) LastKnown(loc Location) (CurrentConditions, time.Time, error) {
	if s.cache == nil {
		return CurrentConditions{}, time.Time{}, ErrNoCache
	}
	return s.cache.Get(loc)
}

// Refresh re-fetches current conditions for loc to keep the last-known cache
// warm. Failures are logged, not propagated; a stale cache entry beats none.
func (s *Service) Refresh(ctx context.Context, loc Location, units Units) {
	if _, err := s.Current(ctx, loc, units); err != nil {
		s.log.Warn("cache refresh failed",
			zap.String("location", loc.Key()),
			zap.Error(err))
	}
}

func (s *Service) zoneFor(loc Location) *time.Location {
	if s.forceZone != nil {
		return s.forceZone
	}
	return ZoneFor(loc.Lat, loc.Lon)
}
