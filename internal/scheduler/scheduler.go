package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/weathernow/weathernow/internal/prefs"
	"github.com/weathernow/weathernow/internal/weather"
)

// Refresher periodically re-fetches current conditions for the locations the
// user cares about (favorites plus the last viewed one) so the last-known
// cache stays warm for offline fallback.
type Refresher struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	prefs     *prefs.Store
	interval  time.Duration
	log       *zap.Logger
}

// New creates a new Refresher.
func New(service *weather.Service, store *prefs.Store, interval time.Duration, log *zap.Logger) *Refresher {
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		prefs:     store,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (r *Refresher) Start() error {
	seconds := int(r.interval.Seconds())
	if seconds <= 0 {
		seconds = 300
	}

	_, err := r.scheduler.Every(seconds).Seconds().Do(r.runOnce)
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

func (r *Refresher) runOnce() {
	locations := r.targets()
	if len(locations) == 0 {
		return
	}

	units := weather.Units(r.prefs.Settings().TemperatureUnit)
	if !units.Valid() {
		units = weather.UnitsMetric
	}

	r.log.Debug("refreshing cached conditions", zap.Int("locations", len(locations)))

	var wg sync.WaitGroup
	for _, loc := range locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			r.service.Refresh(ctx, loc, units)
		}(loc)
	}
	wg.Wait()
}

// targets collects favorites and the last viewed location, de-duplicated.
func (r *Refresher) targets() []weather.Location {
	seen := make(map[string]bool)
	var locations []weather.Location

	for _, fav := range r.prefs.Favorites() {
		if !seen[fav.Key()] {
			seen[fav.Key()] = true
			locations = append(locations, fav.Location)
		}
	}
	if last, ok := r.prefs.LastLocation(); ok && !seen[last.Key()] {
		locations = append(locations, last.Location)
	}
	return locations
}
