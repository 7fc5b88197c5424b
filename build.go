package facetrack

import (
	"fmt"
	"log/slog"

	"github.com/swdee/go-facetrack/config"
	"github.com/swdee/go-facetrack/correlation"
	"github.com/swdee/go-facetrack/detect"
	"github.com/swdee/go-facetrack/tracker"
)

// NewDetector creates the face detector described by cfg, wrapped to run over
// tiles when a tile size is set
func NewDetector(cfg *config.Config, logger *slog.Logger) (detect.Detector, error) {

	det, err := detect.New(cfg.DetectorType, cfg.DetectorModel,
		cfg.DetectorConfig, cfg.DetectorParams(), logger)

	if err != nil {
		return nil, fmt.Errorf("error creating face detector: %w", err)
	}

	if cfg.TileSize > 0 {
		tiled := detect.NewTiled(det, cfg.TileSize, cfg.TileSize, cfg.TileOverlap)
		tiled.SetLogger(logger)

		return tiled, nil
	}

	return det, nil
}

// NewScheduler creates the correlation tracker registry and the detection
// scheduler described by cfg running detector
func NewScheduler(cfg *config.Config, detector tracker.Detector,
	logger *slog.Logger) (*tracker.Scheduler, error) {

	params, err := cfg.TrackerParams()

	if err != nil {
		return nil, err
	}

	cadence, err := cfg.SchedulerCadence()

	if err != nil {
		return nil, err
	}

	registry, err := tracker.NewRegistry(
		correlation.NewFactory(cfg.CorrelationParams()), params)

	if err != nil {
		return nil, err
	}

	sched, err := tracker.NewScheduler(detector, registry, cfg.DetectionPeriod, cadence)

	if err != nil {
		return nil, err
	}

	sched.SetLogger(logger)

	for _, warn := range cfg.Warnings() {
		logger.Warn(warn)
	}

	return sched, nil
}
