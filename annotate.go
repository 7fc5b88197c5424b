package facetrack

import (
	"fmt"
	"image"

	"github.com/swdee/go-facetrack/render"
	"github.com/swdee/go-facetrack/tracker"
	"github.com/swdee/go-facetrack/video"
	"gocv.io/x/gocv"
)

// Drawer renders tracking results with their trails and a status overlay
// onto frames
type Drawer struct {
	trail      *tracker.Trail
	font       render.Font
	statusFont render.Font
	trailStyle render.TrailStyle
}

// NewDrawer returns a Drawer keeping trails of trailSize points, zero
// disables trails
func NewDrawer(trailSize int) *Drawer {

	d := &Drawer{
		font:       render.DefaultFont(),
		statusFont: render.OverlayFont(),
		trailStyle: render.DefaultTrailStyle(),
	}

	if trailSize > 0 {
		d.trail = tracker.NewTrail(trailSize)
	}

	return d
}

// Draw annotates img with the results of frame, status lines are written
// across the top of the image
func (d *Drawer) Draw(img *gocv.Mat, frame *video.Frame, results []tracker.Result,
	status ...string) {

	render.TrackBoxes(img, results, d.font, 1)

	if d.trail != nil {
		d.trail.Add(results)
		render.Trail(img, results, d.trail, d.trailStyle)
	}

	lines := append([]string{
		fmt.Sprintf("Frame: %d, Time: %.0fms, Faces: %d", frame.Index(),
			frame.TimeMs(), len(results)),
	}, status...)

	render.Overlay(img, lines, d.statusFont)
}

// Reset clears the trail history
func (d *Drawer) Reset() {
	if d.trail != nil {
		d.trail.Reset()
	}
}

// VideoAnnotator writes every frame annotated with its tracking results to a
// video file
type VideoAnnotator struct {
	writer *gocv.VideoWriter
	drawer *Drawer
	size   image.Point
	img    gocv.Mat
}

// NewVideoAnnotator creates the video file at path, frames are written with
// the MJPG codec
func NewVideoAnnotator(path string, fps float64, height, width, trailSize int) (*VideoAnnotator, error) {

	writer, err := gocv.VideoWriterFile(path, "MJPG", fps, width, height, true)

	if err != nil {
		return nil, fmt.Errorf("error creating annotated video: %w", err)
	}

	return &VideoAnnotator{
		writer: writer,
		drawer: NewDrawer(trailSize),
		size:   image.Pt(width, height),
		img:    gocv.NewMat(),
	}, nil
}

// Annotate draws the results onto a copy of the frame and writes it out
func (a *VideoAnnotator) Annotate(frame *video.Frame, results []tracker.Result) error {

	src := frame.Mat()
	src.CopyTo(&a.img)
	a.drawer.Draw(&a.img, frame, results)

	return a.writer.Write(a.img)
}

// Close the video file
func (a *VideoAnnotator) Close() error {
	err := a.writer.Close()
	_ = a.img.Close()

	return err
}
