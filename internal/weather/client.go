package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const defaultSearchLimit = 5

// Client is a thin wrapper over the OpenWeatherMap data/2.5 API. All calls
// share the timeout configured on the underlying http.Client; a call that
// exceeds it surfaces as ErrNetwork. The client never retries.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewClient creates a Client against the given base URL
// (e.g. "https://api.openweathermap.org/data/2.5").
func NewClient(httpClient *http.Client, baseURL, apiKey string, log *zap.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    httpClient,
		circuit: cb,
		log:     log,
	}
}

// CurrentWeather fetches current conditions for the given coordinates.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64, units Units) (CurrentConditions, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	return c.fetchCurrent(ctx, values, units)
}

// CurrentWeatherByCity fetches current conditions by city name.
func (c *Client) CurrentWeatherByCity(ctx context.Context, city string, units Units) (CurrentConditions, error) {
	values := url.Values{}
	values.Set("q", city)
	return c.fetchCurrent(ctx, values, units)
}

func (c *Client) fetchCurrent(ctx context.Context, values url.Values, units Units) (CurrentConditions, error) {
	values.Set("units", string(units))

	body, err := c.get(ctx, "/weather", values)
	if err != nil {
		return CurrentConditions{}, err
	}

	var payload currentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return CurrentConditions{}, fmt.Errorf("decode current weather: %w", err)
	}

	return payload.toCurrentConditions(), nil
}

// Forecast fetches the 5-day/3-hour forecast for the given coordinates. The
// returned samples keep the provider's chronological order.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, units Units) ([]WeatherSample, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	values.Set("units", string(units))

	body, err := c.get(ctx, "/forecast", values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		List []forecastEntry `json:"list"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	samples := make([]WeatherSample, 0, len(payload.List))
	for _, entry := range payload.List {
		samples = append(samples, entry.toSample())
	}
	return samples, nil
}

// SearchCities returns up to limit candidate locations matching query.
// No matches is an empty slice, not an error.
func (c *Client) SearchCities(ctx context.Context, query string, limit int) ([]Location, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("type", "like")
	values.Set("cnt", strconv.Itoa(limit))

	body, err := c.get(ctx, "/find", values)
	if err != nil {
		return nil, err
	}

	var payload struct {
		List []currentPayload `json:"list"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode city search: %w", err)
	}

	locations := make([]Location, 0, len(payload.List))
	for _, item := range payload.List {
		locations = append(locations, item.toLocation())
	}
	return locations, nil
}

// Ping checks upstream reachability by fetching current conditions for the
// default location. Used at startup to log connectivity.
func (c *Client) Ping(ctx context.Context) error {
	loc := DefaultLocation()
	_, err := c.CurrentWeather(ctx, loc.Lat, loc.Lon, UnitsMetric)
	return err
}

// get executes one GET request and normalizes failures into the client's
// error taxonomy.
func (c *Client) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	values.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+values.Encode(), nil)
	if err != nil {
		return nil, &RequestError{Message: err.Error()}
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			// Transport failure or timeout: nothing reached the server.
			return nil, fmt.Errorf("%w: %v", ErrNetwork, doErr)
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, readErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, newServerError(resp.StatusCode, body)
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Open circuit means we didn't even try the server.
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		c.log.Warn("upstream request failed",
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, &RequestError{Message: "unexpected result type from circuit breaker"}
	}
	return body, nil
}

// newServerError extracts the provider's error message from the response body
// when present.
func newServerError(status int, body []byte) *ServerError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &ServerError{StatusCode: status, Message: payload.Message}
	}
	return &ServerError{StatusCode: status, Message: "server error occurred"}
}

// currentPayload matches the provider's current-weather shape; /find returns
// a list of the same objects.
type currentPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Dt    int64  `json:"dt"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int `json:"visibility"`
	Weather    []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
}

func (p currentPayload) toLocation() Location {
	return Location{
		ID:          strconv.FormatInt(p.ID, 10),
		Name:        p.Name,
		CountryCode: p.Sys.Country,
		Lat:         p.Coord.Lat,
		Lon:         p.Coord.Lon,
	}
}

func (p currentPayload) toCurrentConditions() CurrentConditions {
	sample := WeatherSample{
		Timestamp:   p.Dt,
		Temperature: p.Main.Temp,
		FeelsLike:   p.Main.FeelsLike,
		Humidity:    p.Main.Humidity,
		Pressure:    p.Main.Pressure,
		WindSpeed:   p.Wind.Speed,
		VisibilityM: p.Visibility,
	}
	if len(p.Weather) > 0 {
		sample.Condition = p.Weather[0].Main
		sample.Description = p.Weather[0].Description
		sample.Icon = p.Weather[0].Icon
	}

	return CurrentConditions{
		WeatherSample: sample,
		Location:      p.toLocation(),
		Sunrise:       p.Sys.Sunrise,
		Sunset:        p.Sys.Sunset,
	}
}

// forecastEntry matches one element of the /forecast list field.
type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int     `json:"visibility"`
	Pop        float64 `json:"pop"`
	Weather    []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

func (e forecastEntry) toSample() WeatherSample {
	sample := WeatherSample{
		Timestamp:         e.Dt,
		Temperature:       e.Main.Temp,
		FeelsLike:         e.Main.FeelsLike,
		Humidity:          e.Main.Humidity,
		Pressure:          e.Main.Pressure,
		WindSpeed:         e.Wind.Speed,
		PrecipProbability: e.Pop,
		VisibilityM:       e.Visibility,
	}
	if len(e.Weather) > 0 {
		sample.Condition = e.Weather[0].Main
		sample.Description = e.Weather[0].Description
		sample.Icon = e.Weather[0].Icon
	}
	return sample
}
