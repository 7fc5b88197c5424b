package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Detector finds faces in a frame
type Detector interface {
	Detect(ctx context.Context, frame Frame) ([]Detection, error)
}

// DetectorFunc adapts a function to the Detector interface
type DetectorFunc func(ctx context.Context, frame Frame) ([]Detection, error)

// Detect calls f(ctx, frame)
func (f DetectorFunc) Detect(ctx context.Context, frame Frame) ([]Detection, error) {
	return f(ctx, frame)
}

// Cadence defines on which frames of each detection period the detector
// is run
type Cadence int

const (
	// CadenceSkipPeriodStart runs detection on every frame except the
	// first of each period, eg: with a period of 3 detection is skipped on
	// frames 0, 3, 6...  With a period of 1 detection never runs.
	CadenceSkipPeriodStart Cadence = 0
	// CadencePeriodStart runs detection only on the first frame of each
	// period, eg: with a period of 3 detection runs on frames 0, 3, 6...
	CadencePeriodStart Cadence = 1
)

var (
	// ErrInvalidPeriod is returned when the detection period is not positive
	ErrInvalidPeriod = errors.New("detection period must be greater than zero")
	// ErrDetection wraps errors returned by the detector
	ErrDetection = errors.New("face detection failed")
)

// Scheduler runs the detector periodically on a video stream and keeps the
// face tracks of the stream up to date on every frame.  It is not safe for
// concurrent use, frames must be processed in order.
type Scheduler struct {
	detector Detector
	registry *Registry
	// period is the detection period in frames
	period  int
	cadence Cadence
	// frameCounter is the number of frames processed
	frameCounter int
	// detectionCycles is the number of frames the detector was run on
	detectionCycles int
	logger          *slog.Logger
}

// NewScheduler returns a Scheduler running detector every period frames
// and tracking faces with registry
func NewScheduler(detector Detector, registry *Registry, period int,
	cadence Cadence) (*Scheduler, error) {

	if period <= 0 {
		return nil, ErrInvalidPeriod
	}

	return &Scheduler{
		detector: detector,
		registry: registry,
		period:   period,
		cadence:  cadence,
		logger:   slog.Default(),
	}, nil
}

// SetLogger sets the logger used by the scheduler and its registry
func (s *Scheduler) SetLogger(logger *slog.Logger) {
	s.logger = logger
	s.registry.SetLogger(logger)
}

// Registry returns the track registry
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// FrameCount returns the number of frames processed
func (s *Scheduler) FrameCount() int {
	return s.frameCounter
}

// DetectionCycles returns the number of frames the detector ran on
func (s *Scheduler) DetectionCycles() int {
	return s.detectionCycles
}

// IsDetectionFrame returns true if the detector runs on the frame with the
// given counter value
func (s *Scheduler) IsDetectionFrame(counter int) bool {

	if s.cadence == CadencePeriodStart {
		return counter%s.period == 0
	}

	return counter%s.period != 0
}

// Process tracks faces on the next frame of the stream and returns the
// state of every live track.  When detection fails the tracks propagated
// onto the frame are still returned along with an error wrapping
// ErrDetection.
func (s *Scheduler) Process(ctx context.Context, frame Frame) ([]Result, error) {

	counter := s.frameCounter
	s.frameCounter++

	retired := s.registry.PropagateAll(frame)

	if len(retired) > 0 {
		s.logger.Debug("tracks retired", "frame", frame.Seq(), "ids", retired)
	}

	if !s.IsDetectionFrame(counter) {
		return s.registry.Results(), nil
	}

	s.detectionCycles++

	dets, err := s.detector.Detect(ctx, frame)

	if err != nil {
		return s.registry.Results(),
			fmt.Errorf("%w on frame %d: %w", ErrDetection, frame.Seq(), err)
	}

	if err := s.registry.Reconcile(frame, snapDetections(dets)); err != nil {
		return s.registry.Results(),
			fmt.Errorf("error reconciling detections on frame %d: %w", frame.Seq(), err)
	}

	return s.registry.Results(), nil
}

// Reset clears all tracks and the frame counter
func (s *Scheduler) Reset() {
	s.registry.Reset()
	s.frameCounter = 0
	s.detectionCycles = 0
}
