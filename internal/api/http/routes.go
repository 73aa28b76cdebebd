package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/weathernow/weathernow/internal/prefs"
	"github.com/weathernow/weathernow/internal/store"
	"github.com/weathernow/weathernow/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, preferences *prefs.Store) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		units := unitsFromQuery(c, preferences)

		if city := c.Query("city"); city != "" {
			cc, err := service.CurrentByCity(c.Context(), city, units)
			if err != nil {
				return mapWeatherError(err)
			}
			return c.JSON(cc)
		}

		q, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		cc, err := service.Current(c.Context(), q.toLocation(), units)
		if err != nil {
			return mapWeatherError(err)
		}
		return c.JSON(cc)
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		q, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		samples, err := service.Forecast(c.Context(), q.toLocation(), unitsFromQuery(c, preferences))
		if err != nil {
			return mapWeatherError(err)
		}
		return c.JSON(fiber.Map{"samples": samples})
	})

	v1.Get("/weather/daily", func(c *fiber.Ctx) error {
		q, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		daily, err := service.SevenDayForecast(c.Context(), q.toLocation(), unitsFromQuery(c, preferences))
		if err != nil {
			return mapWeatherError(err)
		}
		return c.JSON(fiber.Map{"days": daily})
	})

	v1.Get("/weather/overview", func(c *fiber.Ctx) error {
		q, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		overview, err := service.Overview(c.Context(), q.toLocation(), unitsFromQuery(c, preferences))
		if err != nil {
			return mapWeatherError(err)
		}
		return c.JSON(overview)
	})

	// Last-known conditions for offline fallback, keyed by location id.
	v1.Get("/weather/cached/:id", func(c *fiber.Ctx) error {
		cc, storedAt, err := service.LastKnown(weather.Location{ID: c.Params("id")})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no cached conditions for location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read cache")
		}
		return c.JSON(fiber.Map{"conditions": cc, "storedAt": storedAt.Unix()})
	})

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		var q searchQuery
		q.Query = c.Query("q")
		q.Limit = c.QueryInt("limit", 5)
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		locations, err := service.SearchCities(c.Context(), q.Query, q.Limit)
		if err != nil {
			return mapWeatherError(err)
		}
		// Zero matches is a valid, empty result.
		return c.JSON(fiber.Map{"locations": locations})
	})

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"favorites": preferences.Favorites()})
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		loc, err := parseLocationBody(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		added, err := preferences.SaveFavorite(loc)
		if err != nil {
			if errors.Is(err, prefs.ErrCapacityExceeded) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save favorite")
		}
		return c.JSON(fiber.Map{"added": added})
	})

	v1.Delete("/favorites/:id", func(c *fiber.Ctx) error {
		if err := preferences.RemoveFavorite(c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to remove favorite")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/searches/recent", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"searches": preferences.RecentSearches()})
	})

	v1.Post("/searches/recent", func(c *fiber.Ctx) error {
		loc, err := parseLocationBody(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := preferences.SaveRecentSearch(loc); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save recent search")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/searches/recent", func(c *fiber.Ctx) error {
		if err := preferences.ClearRecentSearches(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear recent searches")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(preferences.Settings())
	})

	v1.Patch("/settings", func(c *fiber.Ctx) error {
		var patch map[string]any
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid settings payload")
		}
		merged, err := preferences.SaveSettings(patch)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(merged)
	})

	v1.Post("/settings/reset", func(c *fiber.Ctx) error {
		if err := preferences.ResetSettings(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to reset settings")
		}
		return c.JSON(prefs.DefaultSettings())
	})

	v1.Get("/locations/last", func(c *fiber.Ctx) error {
		last, ok := preferences.LastLocation()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no last viewed location")
		}
		return c.JSON(last)
	})

	v1.Put("/locations/last", func(c *fiber.Ctx) error {
		loc, err := parseLocationBody(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := preferences.SaveLastLocation(loc); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save last location")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/data", func(c *fiber.Ctx) error {
		// Best effort: the backing store has no multi-key transaction.
		if err := preferences.ClearAll(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear all data")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// coordsQuery holds validated coordinates for weather lookups.
type coordsQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func (q coordsQuery) toLocation() weather.Location {
	return weather.Location{Lat: q.Lat, Lon: q.Lon}
}

func parseCoordsQuery(c *fiber.Ctx) (coordsQuery, error) {
	var q coordsQuery

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("lon must be a number")
	}

	q.Lat = lat
	q.Lon = lon
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// searchQuery holds query parameters for the city search endpoint.
type searchQuery struct {
	Query string `validate:"required"`
	Limit int    `validate:"gte=1,lte=20"`
}

// locationBody binds and validates a location payload.
type locationBody struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	CountryCode string  `json:"countryCode"`
	Lat         float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon         float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func parseLocationBody(c *fiber.Ctx) (weather.Location, error) {
	var body locationBody
	if err := c.BodyParser(&body); err != nil {
		return weather.Location{}, errors.New("invalid location payload")
	}
	if err := validate.Struct(body); err != nil {
		return weather.Location{}, err
	}
	return weather.Location{
		ID:          body.ID,
		Name:        body.Name,
		CountryCode: body.CountryCode,
		Lat:         body.Lat,
		Lon:         body.Lon,
	}, nil
}

// unitsFromQuery picks the unit system from the request, falling back to the
// stored settings.
func unitsFromQuery(c *fiber.Ctx, preferences *prefs.Store) weather.Units {
	if u := weather.Units(c.Query("units")); u.Valid() {
		return u
	}
	if u := weather.Units(preferences.Settings().TemperatureUnit); u.Valid() {
		return u
	}
	return weather.UnitsMetric
}

// mapWeatherError translates the client's error taxonomy into HTTP statuses.
func mapWeatherError(err error) error {
	var serverErr *weather.ServerError
	var requestErr *weather.RequestError

	switch {
	case errors.Is(err, weather.ErrNetwork):
		return fiber.NewError(fiber.StatusServiceUnavailable, "no response from weather provider; check your internet connection")
	case errors.As(err, &serverErr):
		return fiber.NewError(fiber.StatusBadGateway, serverErr.Message)
	case errors.As(err, &requestErr):
		return fiber.NewError(fiber.StatusBadRequest, requestErr.Message)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}
