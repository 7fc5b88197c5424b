package tracker

// snapDetections truncates the detection boxes to whole pixels, visual
// trackers are bound on the pixel grid
func snapDetections(dets []Detection) []Detection {

	out := make([]Detection, 0, len(dets))

	for _, det := range dets {
		out = append(out, NewDetection(det.Box.Snap(), det.Confidence))
	}

	return out
}

// DetectionBoxes returns the bounding boxes of the given detections
func DetectionBoxes(dets []Detection) []Box {

	boxes := make([]Box, 0, len(dets))

	for _, det := range dets {
		boxes = append(boxes, det.Box)
	}

	return boxes
}
