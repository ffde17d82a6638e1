package scan

import (
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/rwcarlsen/goexif/exif"
)

// exifFacts holds whatever could be extracted from a photo's EXIF block.
// Either field may be missing.
type exifFacts struct {
	createdAt time.Time
	location  *orb.Point
}

// readEXIF extracts the capture timestamp and GPS coordinate from a photo.
// Cameras write DateTimeOriginal without a zone; we treat it as UTC so event
// keys stay stable regardless of the machine the scan runs on.
func readEXIF(path string) (exifFacts, error) {
	var facts exifFacts

	f, err := os.Open(path)
	if err != nil {
		return facts, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return facts, err
	}

	if ts, err := x.DateTime(); err == nil {
		facts.createdAt = asUTC(ts)
	}

	if lat, lon, err := x.LatLong(); err == nil {
		facts.location = &orb.Point{lon, lat}
	}

	return facts, nil
}

// asUTC reinterprets a zone-less camera timestamp as UTC wall time.
func asUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}
