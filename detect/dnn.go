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

// ssdStride is the number of values per detection in the output of an SSD
// network: image id, class id, confidence, left, top, right, bottom
const ssdStride = 7

// DNN is a face detector running an OpenCV DNN single shot detector, such as
// the res10 300x300 SSD Caffe model
type DNN struct {
	net    gocv.Net
	params Params
	// inputSize is the network input image size
	inputSize image.Point
	// mean is subtracted from every input pixel
	mean   gocv.Scalar
	mu     sync.Mutex
	logger *slog.Logger
}

// NewDNN loads the network from the model and config files, the framework is
// determined by the file extensions
func NewDNN(model, config string, params Params) (*DNN, error) {

	net := gocv.ReadNet(model, config)

	if net.Empty() {
		_ = net.Close()
		return nil, fmt.Errorf("error reading network model %s", model)
	}

	return &DNN{
		net:       net,
		params:    params,
		inputSize: image.Pt(300, 300),
		mean:      gocv.NewScalar(104, 177, 123, 0),
		logger:    slog.Default(),
	}, nil
}

// SetLogger sets the logger
func (d *DNN) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

// Detect finds faces in frame
func (d *DNN) Detect(ctx context.Context, frame tracker.Frame) ([]tracker.Detection, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := video.MatOf(frame)

	if err != nil {
		return nil, err
	}

	blob := gocv.BlobFromImage(img, 1.0, d.inputSize, d.mean, false, false)
	defer blob.Close()

	// network instance is not safe for concurrent use
	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()

	defer out.Close()

	data, err := out.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error reading network output: %w", err)
	}

	height, width := frame.Size()
	dets := filter(parseSSD(data, height, width), d.params, height, width)

	d.logger.Debug("faces detected", "frame", frame.Seq(), "count", len(dets))

	return dets, nil
}

// Close the network
func (d *DNN) Close() error {
	return d.net.Close()
}

// parseSSD converts raw SSD output with coordinates relative to the image
// size into detections in pixel coordinates
func parseSSD(data []float32, height, width int) []tracker.Detection {

	dets := make([]tracker.Detection, 0)

	for i := 0; i+ssdStride <= len(data); i += ssdStride {
		row := data[i : i+ssdStride]

		dets = append(dets, tracker.NewDetection(
			tracker.NewBox(
				row[3]*float32(width),
				row[4]*float32(height),
				row[5]*float32(width),
				row[6]*float32(height),
			),
			row[2],
		))
	}

	return dets
}
