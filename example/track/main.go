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

	"github.com/swdee/go-facetrack"
	"github.com/swdee/go-facetrack/affinity"
	"github.com/swdee/go-facetrack/config"
	"github.com/swdee/go-facetrack/report"
	"github.com/swdee/go-facetrack/video"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// cli flags override the FACETRACK_ environment variables
	vidFile := flag.String("v", "../data/face.mp4", "Video file to track faces in")
	flag.IntVar(&cfg.DetectionPeriod, "p", cfg.DetectionPeriod, "Detection period in frames")
	flag.StringVar(&cfg.DetectorType, "t", cfg.DetectorType, "Face detector type [dnn|cascade]")
	flag.StringVar(&cfg.DetectorModel, "m", cfg.DetectorModel, "Face detector model file")
	flag.StringVar(&cfg.DetectorConfig, "c", cfg.DetectorConfig, "Face detector network config file")
	flag.Float64Var(&cfg.FPS, "fps", cfg.FPS, "Frame rate to sample the video at, 0 reads every frame")
	flag.Float64Var(&cfg.OffsetMs, "offset", cfg.OffsetMs, "Start offset into the video in milliseconds")
	flag.StringVar(&cfg.CSVPath, "o", cfg.CSVPath, "CSV file to write tracking results to")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database to record the run in")
	flag.StringVar(&cfg.AnnotatedPath, "a", cfg.AnnotatedPath, "AVI file to write the annotated video to")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}

	if cfg.CPUCores != "" {
		if err := affinity.SetCores(cfg.CPUCores); err != nil {
			log.Printf("Failed to set CPU Affinity: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *vidFile, cfg, logger); err != nil {
		log.Fatalf("Error tracking faces: %v", err)
	}
}

// run tracks the faces of vidFile and writes the results to the configured
// outputs
func run(ctx context.Context, vidFile string, cfg *config.Config, logger *slog.Logger) error {

	reader, err := video.Open(vidFile, video.Options{
		FPS:      cfg.FPS,
		OffsetMs: cfg.OffsetMs,
		Logger:   logger,
	})

	if err != nil {
		return err
	}

	defer reader.Close()

	detector, err := facetrack.NewDetector(cfg, logger)

	if err != nil {
		return err
	}

	defer detector.Close()

	sched, err := facetrack.NewScheduler(cfg, detector, logger)

	if err != nil {
		return err
	}

	defer sched.Registry().Close()

	opts := []facetrack.Option{
		facetrack.WithLogger(logger),
		facetrack.WithROI(cfg.ROI()),
	}

	var csvOut *report.CSVWriter

	if cfg.CSVPath != "" {
		csvOut, err = report.CreateCSV(cfg.CSVPath)

		if err != nil {
			return err
		}

		// closes on error paths, the result of a successful run is checked
		// below
		defer csvOut.Close()
		opts = append(opts, facetrack.WithSinks(csvOut))
	}

	var (
		store *report.Store
		dbRun *report.Run
	)

	if cfg.DBPath != "" {
		store, err = report.OpenStore(cfg.DBPath, logger)

		if err != nil {
			return err
		}

		defer store.Close()

		dbRun, err = store.BeginRun(ctx, vidFile)

		if err != nil {
			return err
		}

		opts = append(opts, facetrack.WithSinks(dbRun))
	}

	if cfg.AnnotatedPath != "" {
		height, width := reader.Size()

		ann, err := facetrack.NewVideoAnnotator(cfg.AnnotatedPath, reader.FPS(),
			height, width, cfg.TrailSize)

		if err != nil {
			return err
		}

		defer ann.Close()
		opts = append(opts, facetrack.WithAnnotator(ann))
	}

	stats, err := facetrack.NewPipeline(reader, sched, opts...).Run(ctx)

	if err != nil {
		return err
	}

	if csvOut != nil {
		if err := csvOut.Close(); err != nil {
			return fmt.Errorf("error closing CSV file: %w", err)
		}
	}

	fmt.Printf("Processed %d frames in %s, detection cycles %d, face tracks %d, rows %d\n",
		stats.Frames, stats.Elapsed, stats.DetectionCycles, stats.Tracks, stats.Rows)

	if dbRun == nil {
		return nil
	}

	if err := dbRun.Finish(ctx, stats.Frames, stats.DetectionCycles, stats.Tracks); err != nil {
		return err
	}

	summaries, err := store.TrackSummaries(ctx, dbRun.ID)

	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", dbRun.ID)

	for _, s := range summaries {
		fmt.Printf("  face %d: frames %d-%d, tracked %d, detected %d, mean quality %.2f\n",
			s.FaceID, s.FirstFrame, s.LastFrame, s.Frames, s.Detections, s.MeanQuality)
	}

	return nil
}
