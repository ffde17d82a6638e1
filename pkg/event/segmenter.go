// Package event partitions a time-sorted sequence of media records into
// events (a weekend trip, an afternoon in another town) using temporal-gap
// and place-continuity heuristics.
package event

import (
	"fmt"
	"strings"
	"time"

	"snapsort/pkg/config"
	"snapsort/pkg/model"
)

// Segmenter assigns each media record to exactly one event.
// It performs no I/O; missing or partial place data degrades to the sentinel
// location bucket and filename-based naming, never to a failure.
type Segmenter struct {
	gapDays          int
	sentinelAdmin    string
	sentinelPostcode string
}

// NewSegmenter creates a Segmenter from configuration.
func NewSegmenter(cfg *config.EventsConfig) *Segmenter {
	return &Segmenter{
		gapDays:          cfg.GapDays,
		sentinelAdmin:    cfg.SentinelAdmin,
		sentinelPostcode: cfg.SentinelPostcode,
	}
}

// Segment walks the records in order and attaches an Event to each one,
// returning the events in creation order. The input MUST already be sorted
// by CreatedAt ascending; unsorted input is a contract violation and fails
// fast, since silent misbehavior would scramble every downstream event.
//
// A record starts a new event iff the calendar-day gap since the previous
// record reaches gapDays, or its location bucket differs from the current
// event's. Short gaps at the same place are the same outing; a long silence
// ends an event even in one place, and a location change splits even
// same-day.
func (s *Segmenter) Segment(records []*model.MediaRecord) ([]*model.Event, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var events []*model.Event

	first := records[0]
	current := s.newEvent(first)
	events = append(events, current)
	first.LocationKey = s.locationKey(first)
	first.Event = current

	// The comparison reference moves forward with every record: gaps are
	// measured against the latest record in the current event, not against
	// the event's first record.
	refDate := dateOf(first.CreatedAt)

	for i := 1; i < len(records); i++ {
		r := records[i]
		if r.CreatedAt.Before(records[i-1].CreatedAt) {
			return nil, fmt.Errorf("records not sorted by timestamp: %q (%s) after %q (%s)",
				r.Filename, r.CreatedAt.Format(time.RFC3339),
				records[i-1].Filename, records[i-1].CreatedAt.Format(time.RFC3339))
		}

		date := dateOf(r.CreatedAt)
		gapDays := int(date.Sub(refDate).Hours() / 24)
		loc := s.locationKey(r)
		sameLocation := r.HasPlace() && loc == current.LocationKey

		if gapDays >= s.gapDays || !sameLocation {
			current = s.newEvent(r)
			events = append(events, current)
		}

		r.LocationKey = loc
		r.Event = current
		refDate = date
	}

	return events, nil
}

// locationKey derives the location bucket for a record. Records without
// place data share a fixed sentinel bucket instead of being dropped.
func (s *Segmenter) locationKey(r *model.MediaRecord) string {
	if !r.HasPlace() {
		return s.sentinelAdmin + "__" + s.sentinelPostcode
	}
	a := &r.Place.Address
	return a.AdminCode() + "__" + a.Postcode
}

func (s *Segmenter) newEvent(r *model.MediaRecord) *model.Event {
	date := dateOf(r.CreatedAt)
	loc := s.locationKey(r)
	return &model.Event{
		Date:        date,
		LocationKey: loc,
		Name:        s.eventName(r, date),
		Key:         date.Format("2006-01-02") + "__" + loc,
	}
}

// eventName builds the human-readable, path-safe event name. The locality
// priority guarantees a name even with minimal metadata: the original
// filename is the final fallback.
func (s *Segmenter) eventName(r *model.MediaRecord, date time.Time) string {
	var name, county string
	if r.HasPlace() {
		name = r.Place.Address.Locality()
		county = r.Place.Address.County
	}
	if name == "" {
		name = r.Filename
	}

	parts := []string{date.Format("2006-01-02"), strings.TrimSpace(name)}
	if county != "" {
		parts = append(parts, strings.TrimSpace(county))
	}

	joined := strings.Join(parts, "__")
	return strings.ReplaceAll(strings.ToLower(joined), " ", "-")
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
