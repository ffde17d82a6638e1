// Package organize places segmented media files into per-event folders under
// a destination root: dest/<year>/<event-name>/<filename>.
package organize

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"snapsort/pkg/model"
)

// Organizer moves or copies records into their event folders.
type Organizer struct {
	destRoot string
	copyMode bool
	dryRun   bool
}

// New creates an Organizer. With copyMode the source files are left in
// place; with dryRun nothing touches the filesystem.
func New(destRoot string, copyMode, dryRun bool) *Organizer {
	return &Organizer{
		destRoot: destRoot,
		copyMode: copyMode,
		dryRun:   dryRun,
	}
}

// Plan returns the destination path for a segmented record.
func (o *Organizer) Plan(r *model.MediaRecord) string {
	return filepath.Join(
		o.destRoot,
		r.Event.Date.Format("2006"),
		r.Event.Name,
		r.Filename+r.Extension,
	)
}

// Apply places every record and returns the planned destinations, indexed
// like the input. Per-file failures are logged and leave an empty entry;
// they never abort the batch.
func (o *Organizer) Apply(records []*model.MediaRecord) ([]string, int) {
	dests := make([]string, len(records))
	placed := 0

	for i, r := range records {
		if r.Event == nil {
			slog.Warn("Record without event, skipping", "path", r.Path)
			continue
		}

		dest := o.Plan(r)
		if o.dryRun {
			dests[i] = dest
			placed++
			continue
		}

		dest, err := o.place(r.Path, dest)
		if err != nil {
			slog.Error("Failed to place file", "src", r.Path, "dest", dest, "error", err)
			continue
		}
		dests[i] = dest
		placed++
	}

	return dests, placed
}

// place puts one file at dest, suffixing the name when a different file
// already sits there.
func (o *Organizer) place(src, dest string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return dest, fmt.Errorf("failed to create event dir: %w", err)
	}

	dest, skip, err := resolveCollision(src, dest)
	if err != nil {
		return dest, err
	}
	if skip {
		slog.Debug("Identical file already at destination", "dest", dest)
		return dest, nil
	}

	if o.copyMode {
		return dest, copyFile(src, dest)
	}

	// Rename first; fall back to copy+remove for cross-device moves.
	if err := os.Rename(src, dest); err != nil {
		if err := copyFile(src, dest); err != nil {
			return dest, err
		}
		return dest, os.Remove(src)
	}
	return dest, nil
}

// resolveCollision picks a free destination name. A same-size file at the
// destination is treated as a duplicate and skipped.
func resolveCollision(src, dest string) (string, bool, error) {
	destInfo, err := os.Stat(dest)
	if os.IsNotExist(err) {
		return dest, false, nil
	}
	if err != nil {
		return dest, false, err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return dest, false, err
	}
	if srcInfo.Size() == destInfo.Size() {
		return dest, true, nil
	}

	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", base, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, false, nil
		}
	}
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
