package tracker

// Detection is a face detected in a frame by a Detector
type Detection struct {
	// Box is the bounding box of the detected face
	Box Box
	// Confidence is the detector's probability score of the face
	Confidence float32
}

// NewDetection is a constructor function for the Detection struct
func NewDetection(box Box, confidence float32) Detection {
	return Detection{
		Box:        box,
		Confidence: confidence,
	}
}

// Result is the tracked state of one face in a frame
type Result struct {
	// Box is the current bounding box of the face
	Box Box
	// TrackID is the persistent ID of the face across frames
	TrackID int
	// DetectConf is the detector confidence when the track was matched or
	// started by a detection on this frame, otherwise nil
	DetectConf *float32
	// TrackQuality is the visual tracker's quality for this frame
	TrackQuality float64
}
