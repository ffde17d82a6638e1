// Package scan walks a media library and extracts per-file facts (capture
// time, GPS coordinate) into media records for the rest of the pipeline.
// It never fails on a single bad file: unreadable metadata degrades to
// filesystem timestamps and a missing coordinate.
package scan

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"snapsort/pkg/config"
	"snapsort/pkg/model"
)

// photoExts are extensions worth attempting EXIF extraction on.
var photoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".dng":  true,
	".arw":  true,
	".cr2":  true,
	".nef":  true,
}

// videoExts are recognized as media but carry no EXIF we can read.
var videoExts = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

// Scanner discovers media files under a source directory.
type Scanner struct {
	maxFiles int
}

// NewScanner creates a Scanner from configuration.
func NewScanner(cfg *config.ScanConfig) *Scanner {
	return &Scanner{maxFiles: cfg.MaxFiles}
}

// Scan walks root and returns a record per media file, in walk order.
// Hidden files and directories are skipped. Per-file problems are logged
// and the file is still recorded with degraded metadata.
func (s *Scanner) Scan(root string) ([]*model.MediaRecord, error) {
	var records []*model.MediaRecord

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("Skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !photoExts[ext] && !videoExts[ext] {
			return nil
		}

		if s.maxFiles > 0 && len(records) >= s.maxFiles {
			return fs.SkipAll
		}

		records = append(records, s.buildRecord(path, d, ext))
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Scan complete", "root", root, "files", len(records))
	return records, nil
}

func (s *Scanner) buildRecord(path string, d fs.DirEntry, ext string) *model.MediaRecord {
	base := filepath.Base(path)
	rec := &model.MediaRecord{
		Path:      path,
		Filename:  strings.TrimSuffix(base, filepath.Ext(base)),
		Extension: ext,
	}

	if info, err := d.Info(); err == nil {
		rec.Size = info.Size()
		rec.CreatedAt = info.ModTime().UTC()
	}

	if photoExts[ext] {
		facts, err := readEXIF(path)
		if err != nil {
			slog.Debug("No usable EXIF data", "path", path, "error", err)
			return rec
		}
		if !facts.createdAt.IsZero() {
			rec.CreatedAt = facts.createdAt
		}
		rec.Location = facts.location
	}

	return rec
}

// SortByCreatedAt orders records chronologically, the precondition for
// segmentation. The sort is stable so files sharing a timestamp keep their
// walk order across runs.
func SortByCreatedAt(records []*model.MediaRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
