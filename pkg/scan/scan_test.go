package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapsort/pkg/config"
	"snapsort/pkg/model"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestScanFiltersNonMedia(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "photo.jpg", []byte("not really a jpeg"))
	writeFile(t, dir, "clip.mp4", []byte("not really a video"))
	writeFile(t, dir, "notes.txt", []byte("ignore me"))
	writeFile(t, dir, ".hidden.jpg", []byte("ignore me too"))
	writeFile(t, dir, ".thumbs/cached.jpg", []byte("ignore dir"))

	records, err := NewScanner(&config.ScanConfig{}).Scan(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)

	names := []string{records[0].Filename, records[1].Filename}
	assert.Contains(t, names, "photo")
	assert.Contains(t, names, "clip")
}

func TestScanFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.jpg", []byte("no exif here"))

	mtime := time.Date(2024, 4, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	records, err := NewScanner(&config.ScanConfig{}).Scan(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "broken", r.Filename)
	assert.Equal(t, ".jpg", r.Extension)
	assert.True(t, r.CreatedAt.Equal(mtime), "expected mtime fallback, got %v", r.CreatedAt)
	assert.Nil(t, r.Location, "unreadable EXIF must not invent a coordinate")
}

func TestScanMaxFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"} {
		writeFile(t, dir, name, []byte("x"))
	}

	records, err := NewScanner(&config.ScanConfig{MaxFiles: 2}).Scan(dir)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSortByCreatedAtStable(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	records := []*model.MediaRecord{
		{Filename: "late", CreatedAt: ts.Add(time.Hour)},
		{Filename: "tie-1", CreatedAt: ts},
		{Filename: "tie-2", CreatedAt: ts},
		{Filename: "early", CreatedAt: ts.Add(-time.Hour)},
	}

	SortByCreatedAt(records)

	assert.Equal(t, "early", records[0].Filename)
	assert.Equal(t, "tie-1", records[1].Filename)
	assert.Equal(t, "tie-2", records[2].Filename)
	assert.Equal(t, "late", records[3].Filename)
}

func TestAsUTC(t *testing.T) {
	loc := time.FixedZone("EET", 2*3600)
	local := time.Date(2024, 7, 14, 9, 15, 30, 0, loc)

	got := asUTC(local)

	// Wall-clock components are preserved, only the zone is replaced.
	assert.Equal(t, time.Date(2024, 7, 14, 9, 15, 30, 0, time.UTC), got)
}
