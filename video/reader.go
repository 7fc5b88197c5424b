package video

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"gocv.io/x/gocv"
)

var (
	// ErrClosed is returned when reading from a closed Reader
	ErrClosed = errors.New("video reader closed")
)

// Options for opening a video
type Options struct {
	// FPS is the analysis frame rate, frames of the source video are skipped
	// to approximate it.  Zero analyses every frame.
	FPS float64
	// OffsetMs is the position in milliseconds to start reading from
	OffsetMs float64
	// PoolSize is the number of frame buffers kept for reuse
	PoolSize int
	Logger   *slog.Logger
}

// Reader decodes frames from a video file
type Reader struct {
	capture *gocv.VideoCapture
	pool    *MatPool
	// videoFPS is the frame rate of the source video
	videoFPS float64
	// coeff is the subsampling coefficient, every coeff'th frame is kept
	coeff int
	// index of the next frame to decode in the source video
	index int
	// start is the source index of the first frame read
	start int
	// seq of the next frame handed out
	seq    int64
	width  int
	height int
	closed bool
	logger *slog.Logger
}

// SubsampleCoeff returns the number of source frames per analysed frame when
// reading a video recorded at videoFPS at the given analysis fps
func SubsampleCoeff(videoFPS, fps float64) int {

	if fps <= 0 || videoFPS <= 0 {
		return 1
	}

	coeff := int(math.Round(videoFPS / fps))

	if coeff < 1 {
		return 1
	}

	return coeff
}

// Open a video file for reading
func Open(path string, opts Options) (*Reader, error) {

	capture, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, fmt.Errorf("error opening video %s: %w", path, err)
	}

	if !capture.IsOpened() {
		_ = capture.Close()
		return nil, fmt.Errorf("error opening video %s: unsupported or missing file", path)
	}

	logger := opts.Logger

	if logger == nil {
		logger = slog.Default()
	}

	poolSize := opts.PoolSize

	if poolSize <= 0 {
		poolSize = 4
	}

	r := &Reader{
		capture:  capture,
		pool:     NewMatPool(poolSize),
		videoFPS: capture.Get(gocv.VideoCaptureFPS),
		width:    int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:   int(capture.Get(gocv.VideoCaptureFrameHeight)),
		logger:   logger,
	}

	r.coeff = SubsampleCoeff(r.videoFPS, opts.FPS)

	if opts.OffsetMs > 0 {
		capture.Set(gocv.VideoCapturePosMsec, opts.OffsetMs)
		r.index = int(capture.Get(gocv.VideoCapturePosFrames))
	}

	r.start = r.index

	logger.Info("video opened", "path", path, "fps", r.videoFPS,
		"width", r.width, "height", r.height, "subsample", r.coeff,
		"start_frame", r.start)

	return r, nil
}

// VideoFPS returns the frame rate of the source video
func (r *Reader) VideoFPS() float64 {
	return r.videoFPS
}

// FPS returns the effective analysis frame rate
func (r *Reader) FPS() float64 {
	return r.videoFPS / float64(r.coeff)
}

// Size returns the frame height and width of the video
func (r *Reader) Size() (height, width int) {
	return r.height, r.width
}

// Next decodes the next analysed frame.  It returns io.EOF once the end of
// the video is reached.  Frames should be handed back with Release once no
// longer needed.
func (r *Reader) Next() (*Frame, error) {

	if r.closed {
		return nil, ErrClosed
	}

	mat := r.pool.Get()

	for {
		if ok := r.capture.Read(&mat); !ok || mat.Empty() {
			r.pool.Return(mat)
			return nil, io.EOF
		}

		index := r.index
		r.index++

		if (index-r.start)%r.coeff != 0 {
			continue
		}

		frame := NewFrame(mat, r.seq, index, r.frameTime(index))
		r.seq++

		return frame, nil
	}
}

// frameTime returns the time in milliseconds of the source frame index
func (r *Reader) frameTime(index int) float64 {

	if r.videoFPS <= 0 {
		return 0
	}

	return float64(index) * 1000 / r.videoFPS
}

// Release returns the frame's buffer for reuse, the frame must not be used
// afterwards
func (r *Reader) Release(frame *Frame) {
	if frame == nil {
		return
	}

	r.pool.Return(frame.mat)
}

// Close the video and free all frame buffers
func (r *Reader) Close() error {

	if r.closed {
		return nil
	}

	r.closed = true
	r.pool.Close()

	return r.capture.Close()
}
