// Package config loads the face tracking settings from the environment
package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/swdee/go-facetrack/affinity"
	"github.com/swdee/go-facetrack/correlation"
	"github.com/swdee/go-facetrack/detect"
	"github.com/swdee/go-facetrack/preprocess"
	"github.com/swdee/go-facetrack/tracker"
)

// Prefix of the environment variables read by Load
const Prefix = "FACETRACK"

// Config holds the face tracking settings
type Config struct {
	// Tracking
	DetectionPeriod int     `envconfig:"DETECTION_PERIOD" default:"5"`
	MinQuality      float64 `envconfig:"MIN_QUALITY" default:"7.0"`
	MinOverlap      float32 `envconfig:"MIN_OVERLAP" default:"0.5"`
	Association     string  `envconfig:"ASSOCIATION" default:"greedy"`
	ProbeMode       string  `envconfig:"PROBE_MODE" default:"commit"`
	Cadence         string  `envconfig:"CADENCE" default:"skip-period-start"`

	// Correlation tracker
	SearchScale  float64 `envconfig:"SEARCH_SCALE" default:"2.0"`
	LearningRate float64 `envconfig:"LEARNING_RATE" default:"0.1"`

	// Detector
	DetectorType   string  `envconfig:"DETECTOR_TYPE" default:"dnn"`
	DetectorModel  string  `envconfig:"DETECTOR_MODEL" default:"data/res10_300x300_ssd_iter_140000.caffemodel"`
	DetectorConfig string  `envconfig:"DETECTOR_CONFIG" default:"data/deploy.prototxt"`
	ConfThreshold  float32 `envconfig:"CONF_THRESHOLD" default:"0.65"`
	MinFaceSize    int     `envconfig:"MIN_FACE_SIZE" default:"20"`
	PaddingPercent float32 `envconfig:"PADDING_PERCENT" default:"0"`
	// TileSize runs the detector over tiles of the given size, zero runs it
	// on the whole frame
	TileSize    int     `envconfig:"TILE_SIZE" default:"0"`
	TileOverlap float32 `envconfig:"TILE_OVERLAP" default:"0.2"`

	// Face region output
	BBoxScaling float64 `envconfig:"BBOX_SCALING" default:"1.1"`
	Squarify    bool    `envconfig:"SQUARIFY" default:"true"`

	// Video
	FPS      float64 `envconfig:"FPS" default:"0"`
	OffsetMs float64 `envconfig:"OFFSET_MS" default:"0"`

	// Output
	CSVPath       string `envconfig:"CSV_PATH"`
	DBPath        string `envconfig:"DB_PATH"`
	AnnotatedPath string `envconfig:"ANNOTATED_PATH"`
	TrailSize     int    `envconfig:"TRAIL_SIZE" default:"30"`

	// CPUCores pins the process to the listed cores, eg: "4-7"
	CPUCores string `envconfig:"CPU_CORES"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads the configuration from FACETRACK_ prefixed environment
// variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks every setting is within range
func (c *Config) Validate() error {

	var errs []error

	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.DetectionPeriod > 0, "detection period must be positive, got %d", c.DetectionPeriod)
	check(c.MinQuality >= 0, "min quality must not be negative, got %v", c.MinQuality)
	check(c.MinOverlap >= 0 && c.MinOverlap <= 1, "min overlap must be within 0 and 1, got %v", c.MinOverlap)
	check(c.SearchScale >= 1, "search scale must be at least 1, got %v", c.SearchScale)
	check(c.LearningRate >= 0 && c.LearningRate <= 1, "learning rate must be within 0 and 1, got %v", c.LearningRate)
	check(c.DetectorType == detect.TypeDNN || c.DetectorType == detect.TypeCascade,
		"detector type must be %s or %s, got %q", detect.TypeDNN, detect.TypeCascade, c.DetectorType)
	check(c.ConfThreshold >= 0 && c.ConfThreshold <= 1, "confidence threshold must be within 0 and 1, got %v", c.ConfThreshold)
	check(c.MinFaceSize >= 0, "min face size must not be negative, got %d", c.MinFaceSize)
	check(c.PaddingPercent >= 0, "padding percent must not be negative, got %v", c.PaddingPercent)
	check(c.TileSize >= 0, "tile size must not be negative, got %d", c.TileSize)
	check(c.TileOverlap >= 0 && c.TileOverlap < 1, "tile overlap must be within 0 and 1, got %v", c.TileOverlap)
	check(c.BBoxScaling > 0, "bbox scaling must be positive, got %v", c.BBoxScaling)
	check(c.FPS >= 0, "fps must not be negative, got %v", c.FPS)
	check(c.OffsetMs >= 0, "offset must not be negative, got %v", c.OffsetMs)
	check(c.TrailSize >= 0, "trail size must not be negative, got %d", c.TrailSize)
	check(c.LogFormat == "text" || c.LogFormat == "json", "log format must be text or json, got %q", c.LogFormat)

	if c.CPUCores != "" {
		if _, err := affinity.ParseCores(c.CPUCores); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if _, err := c.TrackerParams(); err != nil {
		errs = append(errs, err)
	}

	if _, err := tracker.ParseCadence(c.Cadence); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Warnings returns settings that are valid but likely mistakes
func (c *Config) Warnings() []string {

	var warns []string

	if c.DetectionPeriod == 1 && c.Cadence == tracker.CadenceSkipPeriodStart.String() {
		warns = append(warns, "detection period 1 with skip-period-start cadence never runs the detector")
	}

	return warns
}

// TrackerParams returns the track registry parameters
func (c *Config) TrackerParams() (tracker.Params, error) {

	assoc, err := tracker.ParseAssociation(c.Association)

	if err != nil {
		return tracker.Params{}, err
	}

	probe, err := tracker.ParseProbeMode(c.ProbeMode)

	if err != nil {
		return tracker.Params{}, err
	}

	if assoc == tracker.AssociateOptimal && probe == tracker.ProbeRebindAll {
		return tracker.Params{}, tracker.ErrOptimalRebindAll
	}

	return tracker.Params{
		MinQuality:  c.MinQuality,
		MinOverlap:  c.MinOverlap,
		Association: assoc,
		Probe:       probe,
	}, nil
}

// SchedulerCadence returns the detection cadence
func (c *Config) SchedulerCadence() (tracker.Cadence, error) {
	return tracker.ParseCadence(c.Cadence)
}

// DetectorParams returns the face detector parameters
func (c *Config) DetectorParams() detect.Params {
	return detect.Params{
		Confidence:     c.ConfThreshold,
		MinFaceSize:    c.MinFaceSize,
		PaddingPercent: c.PaddingPercent,
	}
}

// CorrelationParams returns the correlation tracker parameters
func (c *Config) CorrelationParams() correlation.Params {
	p := correlation.DefaultParams()
	p.SearchScale = c.SearchScale
	p.LearningRate = c.LearningRate

	return p
}

// ROI returns the face region settings of reported boxes
func (c *Config) ROI() preprocess.ROI {
	return preprocess.ROI{
		Scale:  c.BBoxScaling,
		Square: c.Squarify,
	}
}
