// Package main provides the snapsort CLI: it scans a photo library, reverse
// geocodes GPS coordinates, groups files into events, and files them into
// per-event folders under a destination root.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"snapsort/pkg/config"
	"snapsort/pkg/db"
	"snapsort/pkg/event"
	"snapsort/pkg/geocode"
	"snapsort/pkg/logging"
	"snapsort/pkg/model"
	"snapsort/pkg/organize"
	"snapsort/pkg/request"
	"snapsort/pkg/scan"
	"snapsort/pkg/store"
	"snapsort/pkg/tracker"
	"snapsort/pkg/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfgPath := flag.String("config", "configs/snapsort.yaml", "Path to config file")
	source := flag.String("source", "", "Source directory to scan")
	dest := flag.String("dest", "", "Destination library root")
	copyMode := flag.Bool("copy", false, "Copy files instead of moving them")
	dryRun := flag.Bool("dry-run", false, "Plan everything but do not touch files")
	initConfig := flag.Bool("init-config", false, "Write a default config file and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("snapsort %s\n", version.Version)
		return nil
	}

	if *initConfig {
		if err := config.GenerateDefault(*cfgPath); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Printf("Config written to %s\n", *cfgPath)
		return nil
	}

	// Optional .env for NOMINATIM_EMAIL etc.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *source == "" || *dest == "" {
		flag.Usage()
		return fmt.Errorf("both -source and -dest are required")
	}

	cleanup, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting snapsort", "version", version.Version, "source", *source, "dest", *dest)

	database, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	st := store.NewSQLiteStore(database)
	tr := tracker.New()

	reqClient := request.New(request.ClientConfig{
		Timeout:   time.Duration(cfg.Geocode.Timeout),
		Retries:   cfg.Geocode.Retries,
		BaseDelay: time.Duration(cfg.Geocode.Backoff.BaseDelay),
		MaxDelay:  time.Duration(cfg.Geocode.Backoff.MaxDelay),
	}, logging.RequestLogger)

	provider := geocode.NewNominatim(reqClient, cfg.Geocode.Endpoint, cfg.Geocode.Email, cfg.Geocode.Language)
	gc := geocode.NewCache(provider, geocode.NewFileStore(cfg.Geocode.CachePath), tr,
		cfg.Geocode.Precision, time.Duration(cfg.Geocode.MinInterval))

	// 1. Scan
	records, err := scan.NewScanner(&cfg.Scan).Scan(*source)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No media files found.")
		return nil
	}

	// 2. Geocode
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.Location == nil {
			continue
		}
		if place := gc.Reverse(ctx, r.Location.Lat(), r.Location.Lon()); !place.IsZero() {
			r.Place = &place
		}
	}

	// 3. Segment
	scan.SortByCreatedAt(records)
	events, err := event.NewSegmenter(&cfg.Events).Segment(records)
	if err != nil {
		return fmt.Errorf("segmentation failed: %w", err)
	}
	slog.Info("Segmentation complete", "files", len(records), "events", len(events))

	// 4. Organize
	useCopy := *copyMode || cfg.Organize.Mode == "copy"
	org := organize.New(*dest, useCopy, *dryRun)
	dests, placed := org.Apply(records)

	// 5. Persist catalog. Dry runs leave the catalog untouched.
	if !*dryRun {
		if err := persist(ctx, st, records, events, dests, *source, *dest); err != nil {
			return fmt.Errorf("failed to persist catalog: %w", err)
		}
	}

	fmt.Printf("Organized %d of %d files into %d events\n", placed, len(records), len(events))
	fmt.Print(tr.Summary())
	return nil
}

func persist(ctx context.Context, st store.Store, records []*model.MediaRecord, events []*model.Event, dests []string, source, dest string) error {
	run, err := st.BeginRun(ctx, source, dest)
	if err != nil {
		return err
	}

	for _, e := range events {
		if err := st.SaveEvent(ctx, e); err != nil {
			return err
		}
	}

	for i, r := range records {
		if err := st.SaveMedia(ctx, run.ID, r, dests[i]); err != nil {
			return err
		}
	}

	return st.FinishRun(ctx, run.ID, len(records), len(events))
}
