package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// memCache is a minimal ConditionsCache for service tests.
type memCache struct {
	mu   sync.Mutex
	data map[string]CurrentConditions
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]CurrentConditions)}
}

func (m *memCache) Put(loc Location, cc CurrentConditions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[loc.Key()] = cc
}

func (m *memCache) Get(loc Location) (CurrentConditions, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cc, ok := m.data[loc.Key()]
	if !ok {
		return CurrentConditions{}, time.Time{}, fmt.Errorf("not cached")
	}
	return cc, time.Now(), nil
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *memCache) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(&http.Client{Timeout: 2 * time.Second}, srv.URL, "test-key", zap.NewNop())
	cache := newMemCache()
	svc := NewService(client, cache, zap.NewNop())
	svc.SetForceZone(time.UTC)
	return svc, cache
}

func TestCurrentPopulatesLastKnownCache(t *testing.T) {
	svc, cache := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(currentWeatherBody))
	})

	loc := Location{Lat: 51.0447, Lon: -114.0719}
	cc, err := svc.Current(context.Background(), loc, UnitsMetric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached, _, err := cache.Get(cc.Location)
	if err != nil {
		t.Fatalf("successful fetch must populate the cache: %v", err)
	}
	if cached.Temperature != cc.Temperature {
		t.Fatalf("cached conditions differ from fetched ones")
	}
}

func TestSevenDayForecastYieldsOnlyFeedDays(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		// Five distinct days of noon samples; the name says seven, the
		// feed says five.
		fmt.Fprint(w, `{"list": [`)
		for i := 0; i < 5; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			dt := time.Date(2024, time.June, 3+i, 12, 0, 0, 0, time.UTC).Unix()
			fmt.Fprintf(w, `{"dt": %d, "main": {"temp": 10, "humidity": 50}, "weather": [{"main": "Clear"}]}`, dt)
		}
		fmt.Fprint(w, `]}`)
	})

	days, err := svc.SevenDayForecast(context.Background(), Location{Lat: 51, Lon: -114}, UnitsMetric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 5 {
		t.Fatalf("must not synthesize days beyond the feed, got %d", len(days))
	}
}

func TestOverviewRequiresBothFetches(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/forecast" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message": "forecast unavailable"}`))
			return
		}
		w.Write([]byte(currentWeatherBody))
	})

	_, err := svc.Overview(context.Background(), Location{Lat: 51, Lon: -114}, UnitsMetric)
	if err == nil {
		t.Fatalf("overview must fail when either fetch fails")
	}
}

func TestOverviewBundlesCurrentAndDaily(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/forecast" {
			noon := time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC).Unix()
			fmt.Fprintf(w, `{"list": [{"dt": %d, "main": {"temp": 11, "humidity": 40}, "weather": [{"main": "Rain"}]}]}`, noon)
			return
		}
		w.Write([]byte(currentWeatherBody))
	})

	overview, err := svc.Overview(context.Background(), Location{Lat: 51, Lon: -114}, UnitsMetric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.Current.Location.Name != "Calgary" {
		t.Fatalf("current conditions missing: %+v", overview.Current)
	}
	if len(overview.Hourly) != 1 || len(overview.Daily) != 1 {
		t.Fatalf("expected 1 hourly sample and 1 day, got %d/%d", len(overview.Hourly), len(overview.Daily))
	}
	if overview.Daily[0].Condition != "Rain" {
		t.Fatalf("daily aggregation missing: %+v", overview.Daily)
	}
}
