package detect

import (
	"image"

	"github.com/swdee/go-facetrack/tracker"
)

// Params for face detection
type Params struct {
	// Confidence is the minimum detection confidence kept
	Confidence float32
	// MinFaceSize is the minimum face width and height in pixels
	MinFaceSize int
	// PaddingPercent grows every detected box by the given percentage of its
	// width and height on each side
	PaddingPercent float32
}

// DefaultParams returns the default detection parameters
func DefaultParams() Params {
	return Params{
		Confidence:  0.65,
		MinFaceSize: 20,
	}
}

// filter applies padding, clamps boxes to the frame and removes detections
// below the confidence or size limits
func filter(dets []tracker.Detection, params Params, height, width int) []tracker.Detection {

	frame := tracker.BoxFromRectangle(image.Rect(0, 0, width, height))
	kept := make([]tracker.Detection, 0, len(dets))

	for _, det := range dets {

		if det.Confidence < params.Confidence {
			continue
		}

		box := pad(det.Box, params.PaddingPercent)
		box = clamp(box, frame)

		if box.Width() < float32(params.MinFaceSize) ||
			box.Height() < float32(params.MinFaceSize) {
			continue
		}

		kept = append(kept, tracker.NewDetection(box, det.Confidence))
	}

	return kept
}

// pad grows box on every side by percent of its size
func pad(box tracker.Box, percent float32) tracker.Box {

	if percent <= 0 {
		return box
	}

	dx := box.Width() * percent / 100
	dy := box.Height() * percent / 100

	return tracker.NewBox(box.Left-dx, box.Top-dy, box.Right+dx, box.Bottom+dy)
}

// clamp limits box to the bounds
func clamp(box, bounds tracker.Box) tracker.Box {
	return tracker.NewBox(
		max(box.Left, bounds.Left),
		max(box.Top, bounds.Top),
		min(box.Right, bounds.Right),
		min(box.Bottom, bounds.Bottom),
	)
}
