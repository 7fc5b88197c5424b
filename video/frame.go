package video

import (
	"errors"

	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

var (
	// ErrFrameType is returned when a frame does not carry an image
	ErrFrameType = errors.New("frame does not carry an image")
)

// Frame is a decoded video frame.  It implements tracker.Frame, the sequence
// number increases by one for every frame handed out by a Reader regardless
// of any frames skipped in the source video.
type Frame struct {
	mat gocv.Mat
	// seq is the position of the frame in the analysed stream
	seq int64
	// index is the position of the frame in the source video
	index int
	// timeMs is the presentation time of the frame in milliseconds
	timeMs float64
}

// NewFrame wraps an image Mat as a Frame
func NewFrame(mat gocv.Mat, seq int64, index int, timeMs float64) *Frame {
	return &Frame{
		mat:    mat,
		seq:    seq,
		index:  index,
		timeMs: timeMs,
	}
}

// Seq returns the frame sequence number
func (f *Frame) Seq() int64 {
	return f.seq
}

// Size returns the frame height and width in pixels
func (f *Frame) Size() (height, width int) {
	return f.mat.Rows(), f.mat.Cols()
}

// Mat returns the BGR image of the frame
func (f *Frame) Mat() gocv.Mat {
	return f.mat
}

// Index returns the frame number in the source video
func (f *Frame) Index() int {
	return f.index
}

// TimeMs returns the frame time in milliseconds from the start of the video
func (f *Frame) TimeMs() float64 {
	return f.timeMs
}

// MatFrame is a tracker.Frame carrying an image
type MatFrame interface {
	tracker.Frame
	Mat() gocv.Mat
}

// MatOf returns the image of a frame, frames without an image return
// ErrFrameType
func MatOf(frame tracker.Frame) (gocv.Mat, error) {

	mf, ok := frame.(MatFrame)

	if !ok {
		return gocv.Mat{}, ErrFrameType
	}

	mat := mf.Mat()

	if mat.Empty() {
		return gocv.Mat{}, ErrFrameType
	}

	return mat, nil
}
