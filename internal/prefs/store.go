package prefs

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/weathernow/weathernow/internal/weather"
)

// Logical storage keys. Each holds one JSON blob; absence of a key is a
// valid, expected state.
const (
	keyFavorites      = "favorites"
	keyRecentSearches = "recentSearches"
	keySettings       = "settings"
	keyLastLocation   = "lastLocation"
)

const (
	// MaxFavorites caps the user-curated favorites set.
	MaxFavorites = 5
	// MaxRecentSearches caps the recency-ordered search history.
	MaxRecentSearches = 3
)

// ErrCapacityExceeded is returned when adding a favorite would push the list
// past MaxFavorites.
var ErrCapacityExceeded = errors.New("maximum favorites allowed")

// Favorite is a user-pinned location with its creation time.
type Favorite struct {
	weather.Location
	AddedAt int64 `json:"addedAt"`
}

// RecentSearch is one entry of the recency-ordered search history.
type RecentSearch struct {
	weather.Location
	SearchedAt int64 `json:"searchedAt"`
}

// LastLocation is the "last viewed" singleton.
type LastLocation struct {
	weather.Location
	SavedAt int64 `json:"savedAt"`
}

// Settings holds the per-installation preferences. Exactly one value exists;
// absence means defaults.
type Settings struct {
	TemperatureUnit string `json:"temperatureUnit" mapstructure:"temperatureUnit"` // metric | imperial
	WindSpeedUnit   string `json:"windSpeedUnit" mapstructure:"windSpeedUnit"`     // km/h | mph | m/s
	TimeFormat      string `json:"timeFormat" mapstructure:"timeFormat"`           // 12h | 24h
	WeatherAlerts   bool   `json:"weatherAlerts" mapstructure:"weatherAlerts"`
	DailyForecast   bool   `json:"dailyForecast" mapstructure:"dailyForecast"`
	AutoLocation    bool   `json:"autoLocation" mapstructure:"autoLocation"`
}

// DefaultSettings returns the hardcoded first-run settings.
func DefaultSettings() Settings {
	return Settings{
		TemperatureUnit: string(weather.UnitsMetric),
		WindSpeedUnit:   "km/h",
		TimeFormat:      "12h",
		WeatherAlerts:   true,
		DailyForecast:   true,
		AutoLocation:    true,
	}
}

// Store persists favorites, recent searches, settings and the last viewed
// location as keyed JSON blobs. Read-modify-write sequences are serialized
// with a mutex so concurrent saves cannot silently drop each other.
// A corrupt stored value is treated as absent, never surfaced as an error:
// the app staying usable beats strict data integrity here.
type Store struct {
	mu  sync.Mutex
	kv  KV
	log *zap.Logger
}

// NewStore creates a Store on top of the given KV backend.
func NewStore(kv KV, log *zap.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// SaveFavorite appends loc to the favorites list. Adding an id that is
// already present is a no-op reported via added=false. A full list fails
// with ErrCapacityExceeded and leaves the stored list untouched.
func (s *Store) SaveFavorite(loc weather.Location) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites := s.favoritesLocked()
	for _, fav := range favorites {
		if fav.ID == loc.ID {
			return false, nil
		}
	}
	if len(favorites) >= MaxFavorites {
		return false, ErrCapacityExceeded
	}

	favorites = append(favorites, Favorite{Location: loc, AddedAt: time.Now().Unix()})
	if err := s.writeJSON(keyFavorites, favorites); err != nil {
		return false, err
	}
	return true, nil
}

// Favorites returns the stored favorites, oldest first.
func (s *Store) Favorites() []Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.favoritesLocked()
}

func (s *Store) favoritesLocked() []Favorite {
	var favorites []Favorite
	if !s.readJSON(keyFavorites, &favorites) {
		return nil
	}
	return favorites
}

// RemoveFavorite deletes the favorite with the given id. Removing an absent
// id is a no-op success.
func (s *Store) RemoveFavorite(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites := s.favoritesLocked()
	kept := favorites[:0]
	for _, fav := range favorites {
		if fav.ID != id {
			kept = append(kept, fav)
		}
	}
	if len(kept) == len(favorites) {
		return nil
	}
	return s.writeJSON(keyFavorites, kept)
}

// IsFavorite reports whether the given id is pinned.
func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, fav := range s.favoritesLocked() {
		if fav.ID == id {
			return true
		}
	}
	return false
}

// SaveRecentSearch moves loc to the front of the search history, de-duplicated
// by id, and truncates the list to MaxRecentSearches by dropping the oldest
// excess entries.
func (s *Store) SaveRecentSearch(loc weather.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var searches []RecentSearch
	if !s.readJSON(keyRecentSearches, &searches) {
		searches = nil
	}

	kept := make([]RecentSearch, 0, len(searches)+1)
	kept = append(kept, RecentSearch{Location: loc, SearchedAt: time.Now().Unix()})
	for _, rs := range searches {
		if rs.ID != loc.ID {
			kept = append(kept, rs)
		}
	}
	if len(kept) > MaxRecentSearches {
		kept = kept[:MaxRecentSearches]
	}
	return s.writeJSON(keyRecentSearches, kept)
}

// RecentSearches returns the search history, most recent first.
func (s *Store) RecentSearches() []RecentSearch {
	s.mu.Lock()
	defer s.mu.Unlock()

	var searches []RecentSearch
	if !s.readJSON(keyRecentSearches, &searches) {
		return nil
	}
	return searches
}

// ClearRecentSearches empties the search history.
func (s *Store) ClearRecentSearches() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(keyRecentSearches, []RecentSearch{})
}

// Settings returns the stored settings, or the hardcoded defaults when
// nothing (or something unreadable) is stored.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settingsLocked()
}

func (s *Store) settingsLocked() Settings {
	// Decode over a copy of the defaults so a partial blob keeps default
	// values for its missing keys and a corrupt blob changes nothing.
	stored := DefaultSettings()
	if !s.readJSON(keySettings, &stored) {
		return DefaultSettings()
	}
	return stored
}

// SaveSettings merges the partial update into the stored settings: only keys
// present in patch change, everything else keeps its current value. Returns
// the merged result.
func (s *Store) SaveSettings(patch map[string]any) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.settingsLocked()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &merged,
	})
	if err != nil {
		return Settings{}, err
	}
	if err := dec.Decode(patch); err != nil {
		return Settings{}, err
	}
	if err := s.writeJSON(keySettings, merged); err != nil {
		return Settings{}, err
	}
	return merged, nil
}

// ResetSettings overwrites stored settings with the defaults.
func (s *Store) ResetSettings() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(keySettings, DefaultSettings())
}

// SaveLastLocation records the last viewed location.
func (s *Store) SaveLastLocation(loc weather.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(keyLastLocation, LastLocation{Location: loc, SavedAt: time.Now().Unix()})
}

// LastLocation returns the last viewed location, if one was recorded.
func (s *Store) LastLocation() (LastLocation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last LastLocation
	if !s.readJSON(keyLastLocation, &last) || last.ID == "" {
		return LastLocation{}, false
	}
	return last, true
}

// ClearAll removes all four logical keys. The backing store offers no
// multi-key transaction, so a partial failure can leave some keys removed
// and others not; the first error is returned after attempting every key.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, key := range []string{keyFavorites, keyRecentSearches, keySettings, keyLastLocation} {
		if err := s.kv.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// readJSON loads and decodes the blob at key into target. A missing,
// unreadable or corrupt value leaves target untouched and reports false.
func (s *Store) readJSON(key string, target any) bool {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.log.Warn("preference read failed, falling back to defaults",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		s.log.Warn("corrupt stored value, treating as absent",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	return true
}

func (s *Store) writeJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Set(key, string(raw))
}
