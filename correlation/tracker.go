package correlation

import (
	"errors"
	"image"

	"github.com/swdee/go-facetrack/tracker"
	"github.com/swdee/go-facetrack/video"
	"gocv.io/x/gocv"
)

var (
	// ErrFrameType is returned when a frame does not carry an image
	ErrFrameType = video.ErrFrameType
	// ErrEmptyTarget is returned when starting on a box with no pixels
	// inside the frame
	ErrEmptyTarget = errors.New("target box is outside the frame")
	// ErrNotStarted is returned when updating a tracker not yet started
	ErrNotStarted = errors.New("tracker not started")
	// ErrTargetLost is returned when the search window no longer fits the
	// target template
	ErrTargetLost = errors.New("target lost")
)

// minTemplateSize is the smallest template edge in pixels
const minTemplateSize = 4

// Params for the correlation tracker
type Params struct {
	// SearchScale is the size of the search window relative to the target box
	SearchScale float64
	// LearningRate is the weight of the latest target appearance blended
	// into the template after every update, zero keeps the initial template
	LearningRate float64
	// Exclusion is the size in pixels of the window around the correlation
	// peak excluded from the sidelobe
	Exclusion int
}

// DefaultParams returns the default tracker parameters
func DefaultParams() Params {
	return Params{
		SearchScale:  2.0,
		LearningRate: 0.1,
		Exclusion:    11,
	}
}

// Tracker follows a single target between frames by matching a grayscale
// template of the target within a search window around its last position
type Tracker struct {
	params   Params
	template gocv.Mat
	started  bool
	box      tracker.Box
	// offX, offY is the offset of the template from the box when the box
	// was clipped by the frame edge
	offX, offY float32
}

// New returns a correlation tracker
func New(params Params) *Tracker {

	if params.SearchScale < 1 {
		params.SearchScale = 1
	}

	return &Tracker{
		params: params,
	}
}

// NewFactory returns a factory creating correlation trackers for a registry
func NewFactory(params Params) tracker.VisualTrackerFactory {
	return func() (tracker.VisualTracker, error) {
		return New(params), nil
	}
}

// grayFrame returns a grayscale copy of the frame image
func grayFrame(frame tracker.Frame) (gocv.Mat, error) {

	src, err := video.MatOf(frame)

	if err != nil {
		return gocv.Mat{}, err
	}

	if src.Channels() == 1 {
		return src.Clone(), nil
	}

	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	return gray, nil
}

// Start binds the tracker to box on frame, taking a new template
func (t *Tracker) Start(frame tracker.Frame, box tracker.Box) error {

	gray, err := grayFrame(frame)

	if err != nil {
		return err
	}

	defer gray.Close()

	rect := box.Snap().Rectangle().Intersect(image.Rect(0, 0, gray.Cols(), gray.Rows()))

	if rect.Dx() < minTemplateSize || rect.Dy() < minTemplateSize {
		return ErrEmptyTarget
	}

	region := gray.Region(rect)
	defer region.Close()

	if t.started {
		_ = t.template.Close()
	}

	t.template = region.Clone()
	t.started = true
	t.box = box
	t.offX = float32(rect.Min.X) - box.Left
	t.offY = float32(rect.Min.Y) - box.Top

	return nil
}

// match finds the template within the search window around box returning
// the template top left position in frame coordinates and the PSR
func (t *Tracker) match(gray gocv.Mat, box tracker.Box) (image.Point, float64, error) {

	cx, cy := box.Center()
	hw := box.Width() * float32(t.params.SearchScale) / 2
	hh := box.Height() * float32(t.params.SearchScale) / 2

	search := image.Rect(int(cx-hw), int(cy-hh), int(cx+hw), int(cy+hh)).
		Intersect(image.Rect(0, 0, gray.Cols(), gray.Rows()))

	if search.Dx() < t.template.Cols() || search.Dy() < t.template.Rows() {
		return image.Point{}, 0, ErrTargetLost
	}

	window := gray.Region(search)
	defer window.Close()

	response := gocv.NewMat()
	defer response.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(window, t.template, &response, gocv.TmCcoeffNormed, mask)

	_, _, _, peak := gocv.MinMaxLoc(response)

	quality, err := peakToSidelobe(response, peak, t.params.Exclusion)

	if err != nil {
		return image.Point{}, 0, err
	}

	return search.Min.Add(peak), quality, nil
}

// Update locates the target on frame and returns the tracking quality
func (t *Tracker) Update(frame tracker.Frame) (float64, error) {

	if !t.started {
		return 0, ErrNotStarted
	}

	gray, err := grayFrame(frame)

	if err != nil {
		return 0, err
	}

	defer gray.Close()

	pos, quality, err := t.match(gray, t.box)

	if err != nil {
		return 0, err
	}

	t.box = tracker.BoxFromTlwh(float32(pos.X)-t.offX, float32(pos.Y)-t.offY,
		t.box.Width(), t.box.Height())

	if t.params.LearningRate > 0 {
		patch := gray.Region(image.Rect(pos.X, pos.Y,
			pos.X+t.template.Cols(), pos.Y+t.template.Rows()))
		gocv.AddWeighted(t.template, 1-t.params.LearningRate, patch,
			t.params.LearningRate, 0, &t.template)
		_ = patch.Close()
	}

	return quality, nil
}

// Score returns the quality of the target being found around guess on frame
// without changing the tracker state
func (t *Tracker) Score(frame tracker.Frame, guess tracker.Box) (float64, error) {

	if !t.started {
		return 0, ErrNotStarted
	}

	gray, err := grayFrame(frame)

	if err != nil {
		return 0, err
	}

	defer gray.Close()

	_, quality, err := t.match(gray, guess)

	if errors.Is(err, ErrTargetLost) {
		return 0, nil
	}

	return quality, err
}

// Position returns the current target box
func (t *Tracker) Position() tracker.Box {
	return t.box
}

// Close frees the template
func (t *Tracker) Close() error {

	if !t.started {
		return nil
	}

	t.started = false

	return t.template.Close()
}
