package detect

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/swdee/go-facetrack/tracker"
	"github.com/swdee/go-facetrack/video"
	"gocv.io/x/gocv"
)

// Cascade is a Haar cascade face detector, every detection has a confidence
// of one
type Cascade struct {
	classifier gocv.CascadeClassifier
	params     Params
	mu         sync.Mutex
	logger     *slog.Logger
}

// NewCascade loads a cascade classifier from file
func NewCascade(file string, params Params) (*Cascade, error) {

	classifier := gocv.NewCascadeClassifier()

	if !classifier.Load(file) {
		_ = classifier.Close()
		return nil, fmt.Errorf("error reading cascade file %s", file)
	}

	return &Cascade{
		classifier: classifier,
		params:     params,
		logger:     slog.Default(),
	}, nil
}

// SetLogger sets the logger
func (c *Cascade) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Detect finds faces in frame
func (c *Cascade) Detect(ctx context.Context, frame tracker.Frame) ([]tracker.Detection, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := video.MatOf(frame)

	if err != nil {
		return nil, err
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}

	gocv.EqualizeHist(gray, &gray)

	minSize := image.Pt(c.params.MinFaceSize, c.params.MinFaceSize)

	c.mu.Lock()
	rects := c.classifier.DetectMultiScaleWithParams(gray, 1.1, 3, 0,
		minSize, image.Pt(0, 0))
	c.mu.Unlock()

	dets := make([]tracker.Detection, 0, len(rects))

	for _, r := range rects {
		dets = append(dets, tracker.NewDetection(tracker.BoxFromRectangle(r), 1))
	}

	height, width := frame.Size()
	dets = filter(dets, c.params, height, width)

	c.logger.Debug("faces detected", "frame", frame.Seq(), "count", len(dets))

	return dets, nil
}

// Close the classifier
func (c *Cascade) Close() error {
	return c.classifier.Close()
}
