package tracker

import (
	"fmt"
	"log/slog"
)

// SingleTracker binds a VisualTracker primitive to one persistent track ID
type SingleTracker struct {
	// id is the persistent track ID
	id int
	// vt is the visual tracking primitive following the face
	vt VisualTracker
	// lastSeq is the sequence number of the last frame the tracker was
	// bound or propagated on
	lastSeq int64
	// quality is the tracking quality recorded on lastSeq
	quality float64
	// detectConf is the confidence of the detection that bound the tracker
	// on lastSeq, nil if the tracker has been propagated since
	detectConf *float32
	logger     *slog.Logger
}

// newSingleTracker returns an unbound SingleTracker for the given ID
func newSingleTracker(id int, vt VisualTracker, logger *slog.Logger) *SingleTracker {
	return &SingleTracker{
		id:      id,
		vt:      vt,
		lastSeq: -1,
		logger:  logger,
	}
}

// ID returns the persistent track ID
func (s *SingleTracker) ID() int {
	return s.id
}

// Box returns the current tracked bounding box
func (s *SingleTracker) Box() Box {
	return s.vt.Position()
}

// Quality returns the tracking quality recorded on the last frame
func (s *SingleTracker) Quality() float64 {
	return s.quality
}

// DetectConf returns the confidence of the detection that last bound the
// tracker, or nil if it has been propagated since
func (s *SingleTracker) DetectConf() *float32 {
	return s.detectConf
}

// Start binds the tracker to box in frame
func (s *SingleTracker) Start(frame Frame, box Box) error {

	if err := s.vt.Start(frame, box); err != nil {
		return fmt.Errorf("error starting tracker %d: %w", s.id, err)
	}

	s.lastSeq = frame.Seq()
	s.quality = s.Score(frame, box)
	s.detectConf = nil

	return nil
}

// rebind starts the tracker on box and records the quality it was
// matched with
func (s *SingleTracker) rebind(frame Frame, box Box, quality float64) error {

	if err := s.vt.Start(frame, box); err != nil {
		return fmt.Errorf("error rebinding tracker %d: %w", s.id, err)
	}

	s.lastSeq = frame.Seq()
	s.quality = quality
	s.detectConf = nil

	return nil
}

// Propagate relocates the tracker on frame and returns the new box and its
// tracking quality.  Calling it again with the same frame returns the
// recorded result without running the visual tracker.  A visual tracker
// failure is reported as zero quality.
func (s *SingleTracker) Propagate(frame Frame) (Box, float64) {

	if frame.Seq() == s.lastSeq {
		return s.vt.Position(), s.quality
	}

	quality, err := s.vt.Update(frame)

	if err != nil {
		s.logger.Debug("visual tracker update failed",
			"track", s.id, "frame", frame.Seq(), "error", err)
		quality = 0
	}

	s.lastSeq = frame.Seq()
	s.quality = quality
	s.detectConf = nil

	return s.vt.Position(), quality
}

// Score returns how well the tracked face matches candidate in frame,
// without changing the tracker.  A visual tracker failure scores zero.
func (s *SingleTracker) Score(frame Frame, candidate Box) float64 {

	quality, err := s.vt.Score(frame, candidate)

	if err != nil {
		s.logger.Debug("visual tracker score failed",
			"track", s.id, "frame", frame.Seq(), "error", err)
		return 0
	}

	return quality
}

// ProbeAndRebind scores candidate in frame and then rebinds the tracker to
// candidate regardless of the score
func (s *SingleTracker) ProbeAndRebind(frame Frame, candidate Box) (float64, error) {

	quality := s.Score(frame, candidate)

	if err := s.rebind(frame, candidate, quality); err != nil {
		return 0, err
	}

	return quality, nil
}

// OverlapRatio returns the IoU between the tracked box and candidate
func (s *SingleTracker) OverlapRatio(candidate Box) float32 {
	return s.vt.Position().IoU(candidate)
}

// IsWithinFrame returns true if the tracked box overlaps the frame by at
// least some area
func (s *SingleTracker) IsWithinFrame(height, width int) bool {
	return s.vt.Position().InFrame(height, width)
}

// Result returns the tracker state as a Result
func (s *SingleTracker) Result() Result {
	return Result{
		Box:          s.vt.Position(),
		TrackID:      s.id,
		DetectConf:   s.detectConf,
		TrackQuality: s.quality,
	}
}

// Close frees the visual tracker
func (s *SingleTracker) Close() error {
	return s.vt.Close()
}
