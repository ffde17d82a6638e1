package geocode

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/paulmach/orb"

	"snapsort/pkg/model"
	"snapsort/pkg/tracker"
)

// Cache fronts a rate-limited reverse-geocoding provider with a persistent
// lookup table keyed by quantized coordinate. Entries are never evicted or
// updated during a run; every new insertion is flushed to disk before the
// lookup returns.
//
// Cache assumes at most one in-flight Reverse call at a time.
type Cache struct {
	provider    Provider
	store       *FileStore
	tr          *tracker.Tracker
	entries     map[string]model.Place
	precision   int
	minInterval time.Duration

	// Injectable clock, so tests can run without wall-clock delays.
	now   func() time.Time
	sleep func(time.Duration)
	last  time.Time
}

// NewCache creates a cache over the given provider and store, loading any
// previously persisted entries.
func NewCache(p Provider, store *FileStore, tr *tracker.Tracker, precision int, minInterval time.Duration) *Cache {
	return &Cache{
		provider:    p,
		store:       store,
		tr:          tr,
		entries:     store.Load(),
		precision:   precision,
		minInterval: minInterval,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// Key derives the cache key for a coordinate: both values rounded to the
// configured precision and formatted as fixed-precision decimals. Formatting
// goes through strconv, so the result is locale-independent.
func (c *Cache) Key(lat, lon float64) string {
	return formatCoord(lat, c.precision) + "," + formatCoord(lon, c.precision)
}

// Reverse returns the place description for a coordinate. On a cache miss it
// queries the provider, spaced at least minInterval after the previous call.
// Provider failures and empty results yield an empty place and are NOT
// cached, so a later call with the same key retries the lookup.
func (c *Cache) Reverse(ctx context.Context, lat, lon float64) model.Place {
	key := c.Key(lat, lon)

	if place, ok := c.entries[key]; ok {
		c.tr.TrackCacheHit(ProviderName)
		return place
	}
	c.tr.TrackCacheMiss(ProviderName)

	c.pace()

	// The provider sees the same rounded values the key is built from.
	pt := orb.Point{roundTo(lon, c.precision), roundTo(lat, c.precision)}
	place, err := c.provider.Reverse(ctx, pt)
	if err != nil {
		c.tr.TrackAPIFailure(ProviderName)
		slog.Warn("Reverse geocode failed", "key", key, "error", err)
		return model.Place{}
	}
	if place.IsZero() {
		c.tr.TrackAPIZero(ProviderName)
		slog.Warn("Reverse geocode returned no result", "key", key)
		return model.Place{}
	}
	c.tr.TrackAPISuccess(ProviderName)

	c.entries[key] = *place
	if err := c.store.Save(c.entries); err != nil {
		slog.Error("Failed to persist geocode cache", "error", err)
	}

	return *place
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// pace enforces the process-wide minimum spacing between provider calls.
func (c *Cache) pace() {
	if !c.last.IsZero() {
		if wait := c.minInterval - c.now().Sub(c.last); wait > 0 {
			c.sleep(wait)
		}
	}
	c.last = c.now()
}

func roundTo(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

func formatCoord(v float64, precision int) string {
	return strconv.FormatFloat(roundTo(v, precision), 'f', precision, 64)
}
