package model

import (
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Address is the address block returned by the reverse-geocoding provider.
// All fields are optional; the provider populates whichever apply to a place.
type Address struct {
	Village      string `json:"village,omitempty"`
	Town         string `json:"town,omitempty"`
	City         string `json:"city,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	County       string `json:"county,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
}

// Locality returns the most specific populated-place name.
// Priority: village > town > city > municipality; empty if none is set.
func (a *Address) Locality() string {
	switch {
	case a.Village != "":
		return a.Village
	case a.Town != "":
		return a.Town
	case a.City != "":
		return a.City
	case a.Municipality != "":
		return a.Municipality
	}
	return ""
}

// AdminCode returns the upper-cased country code, or empty if unknown.
func (a *Address) AdminCode() string {
	return strings.ToUpper(a.CountryCode)
}

// Place is a reverse-geocoded place description.
type Place struct {
	DisplayName string  `json:"display_name,omitempty"`
	Address     Address `json:"address"`
}

// IsZero reports whether the place carries no address data at all.
func (p *Place) IsZero() bool {
	return p == nil || *p == Place{}
}

// MediaRecord holds the extracted facts about one scanned media file.
// The Event reference and LocationKey are filled in during segmentation;
// everything else is set by the scanner and the geocode cache.
type MediaRecord struct {
	Path      string     // absolute source path
	Filename  string     // original filename without extension
	Extension string     // including the leading dot
	Size      int64      // bytes
	CreatedAt time.Time  // capture time, UTC
	Location  *orb.Point // precise coordinate, nil when the file has no GPS data
	Place     *Place     // reverse-geocoded place, nil when unavailable

	LocationKey string
	Event       *Event
}

// HasPlace reports whether the record carries usable place data.
func (r *MediaRecord) HasPlace() bool {
	return !r.Place.IsZero()
}

// Run records one organizing pass over a source library.
type Run struct {
	ID          string
	Source      string
	Destination string
	StartedAt   time.Time
	FinishedAt  time.Time
	FileCount   int
	EventCount  int
}

// Event is a cluster of media records contiguous in time and place.
// Immutable once created; shared by every record assigned to it.
type Event struct {
	Date        time.Time // calendar date of the record that opened the cluster, UTC
	LocationKey string
	Name        string // human-readable, path-safe
	Key         string // "{date}__{location_key}", stable across runs
}
