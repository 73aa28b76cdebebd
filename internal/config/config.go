package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// HTTPTimeout bounds every outbound provider call. It is set once at
	// startup and shared by all requests.
	HTTPTimeout time.Duration

	// RefreshInterval controls how often the background refresher re-fetches
	// conditions for favorites and the last viewed location.
	RefreshInterval time.Duration

	// CacheMaxAge is how long a last-known cache entry stays servable.
	CacheMaxAge time.Duration

	// DBPath is the sqlite file backing the preference store. Empty selects
	// an in-memory store (preferences lost on restart).
	DBPath string

	// ForecastZone optionally pins daily aggregation to a fixed IANA zone
	// instead of resolving one per location.
	ForecastZone string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is required")
	}
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	interval, err := getenvDuration("REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval

	maxAge, err := getenvDuration("CACHE_MAX_AGE", "1h")
	if err != nil {
		return nil, err
	}
	cfg.CacheMaxAge = maxAge

	cfg.DBPath = getenvDefault("DB_PATH", "weathernow.db")
	cfg.ForecastZone = os.Getenv("FORECAST_TZ")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
