// Package report writes per frame face tracking results to CSV files and
// a SQLite results store
package report

import (
	"context"

	"github.com/swdee/go-facetrack/tracker"
)

// Row is the state of one tracked face on one frame
type Row struct {
	// Frame is the frame number in the source video
	Frame int
	// TimeMs is the frame time in milliseconds
	TimeMs float64
	Box    tracker.Box
	FaceID int
	// DetectConf is the detector confidence when the face was detected on
	// this frame, nil otherwise
	DetectConf *float32
	// TrackConf is the tracking quality
	TrackConf float64
}

// FromResults converts the tracker results of a frame into rows
func FromResults(frame int, timeMs float64, results []tracker.Result) []Row {

	rows := make([]Row, 0, len(results))

	for _, res := range results {
		rows = append(rows, Row{
			Frame:      frame,
			TimeMs:     timeMs,
			Box:        res.Box,
			FaceID:     res.TrackID,
			DetectConf: res.DetectConf,
			TrackConf:  res.TrackQuality,
		})
	}

	return rows
}

// Sink receives the rows of every processed frame
type Sink interface {
	WriteRows(ctx context.Context, rows []Row) error
	Close() error
}
