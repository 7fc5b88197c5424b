package tracker

// Frame is a video frame as seen by the tracker.  Frames are treated as opaque
// handles, only their sequence number and dimensions are used.
type Frame interface {
	// Seq returns a number unique to this frame within a stream, it is
	// used to detect a tracker being propagated twice on the same frame
	Seq() int64
	// Size returns the frame height and width in pixels
	Size() (height, width int)
}

// VisualTracker is a single object visual tracking primitive, such as a
// correlation filter, that follows one region of the image across frames
type VisualTracker interface {
	// Start binds the tracker to box in frame, calling it again rebinds
	// the tracker to a new box
	Start(frame Frame, box Box) error
	// Update relocates the tracked region in frame and returns the
	// tracking quality of the new position
	Update(frame Frame) (float64, error)
	// Score returns the tracking quality the tracker would report for
	// guess in frame without changing its state
	Score(frame Frame, guess Box) (float64, error)
	// Position returns the current tracked region
	Position() Box
	// Close frees any resources held by the tracker
	Close() error
}

// VisualTrackerFactory creates a new unbound VisualTracker instance
type VisualTrackerFactory func() (VisualTracker, error)
