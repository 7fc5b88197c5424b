// Package detect provides OpenCV based face detectors for the tracking
// scheduler
package detect

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/swdee/go-facetrack/tracker"
)

var (
	// ErrUnknownType is returned when creating a detector of unknown type
	ErrUnknownType = errors.New("unknown detector type")
)

const (
	// TypeDNN is the DNN single shot face detector
	TypeDNN = "dnn"
	// TypeCascade is the Haar cascade face detector
	TypeCascade = "cascade"
)

// Detector is a face detector holding native resources
type Detector interface {
	tracker.Detector
	SetLogger(logger *slog.Logger)
	Close() error
}

// New creates a detector of the given type.  The config file is only used by
// the DNN detector.
func New(kind, model, config string, params Params, logger *slog.Logger) (Detector, error) {

	var (
		det Detector
		err error
	)

	switch kind {
	case TypeDNN:
		det, err = NewDNN(model, config, params)
	case TypeCascade:
		det, err = NewCascade(model, params)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, kind)
	}

	if err != nil {
		return nil, err
	}

	if logger != nil {
		det.SetLogger(logger)
	}

	return det, nil
}
