package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

func TestSquarify(t *testing.T) {

	tests := []struct {
		name string
		box  tracker.Box
		want tracker.Box
	}{
		{"wide", tracker.NewBox(0, 10, 40, 30), tracker.NewBox(0, 0, 40, 40)},
		{"tall", tracker.NewBox(10, 0, 30, 40), tracker.NewBox(0, 0, 40, 40)},
		{"square", tracker.NewBox(5, 5, 15, 15), tracker.NewBox(5, 5, 15, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Squarify(tt.box))
		})
	}
}

func TestExpandBox(t *testing.T) {

	tests := []struct {
		name  string
		box   tracker.Box
		scale float64
		want  tracker.Box
	}{
		{"grow square", tracker.NewBox(0, 0, 100, 100), 1.1,
			tracker.NewBox(-5, -5, 105, 105)},
		{"grow rectangle", tracker.NewBox(0, 0, 100, 50), 1.2,
			tracker.NewBox(-7.5, -7.5, 107.5, 57.5)},
		{"shrink", tracker.NewBox(0, 0, 100, 100), 0.5,
			tracker.NewBox(25, 25, 75, 75)},
		{"unchanged", tracker.NewBox(1, 2, 3, 4), 1,
			tracker.NewBox(1, 2, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandBox(tt.box, tt.scale)

			assert.InDelta(t, tt.want.Left, got.Left, 0.02)
			assert.InDelta(t, tt.want.Top, got.Top, 0.02)
			assert.InDelta(t, tt.want.Right, got.Right, 0.02)
			assert.InDelta(t, tt.want.Bottom, got.Bottom, 0.02)
		})
	}
}

func TestClipToFrame(t *testing.T) {

	assert.Equal(t, tracker.NewBox(0, 0, 100, 50),
		ClipToFrame(tracker.NewBox(-10, -5, 120, 80), 50, 100))

	assert.Equal(t, tracker.NewBox(20, 10, 30, 40),
		ClipToFrame(tracker.NewBox(20, 10, 30, 40), 50, 100))
}

func TestROIBox(t *testing.T) {

	roi := ROI{Scale: 1.1, Square: true, Size: 64}

	// squared to 40x40 at 0,0 then grown by 2 pixels each side and clipped
	got := roi.Box(tracker.NewBox(0, 10, 40, 30), 100, 100)
	assert.Equal(t, tracker.NewBox(0, 0, 42, 42), got)
}

func TestCropFace(t *testing.T) {

	img := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer img.Close()

	crop := gocv.NewMat()
	defer crop.Close()

	require.NoError(t, CropFace(img, tracker.NewBox(10, 20, 70, 50), 32, &crop))
	assert.Equal(t, 32, crop.Rows())
	assert.Equal(t, 32, crop.Cols())

	err := CropFace(img, tracker.NewBox(200, 200, 240, 240), 32, &crop)
	assert.ErrorIs(t, err, ErrEmptyROI)
}

func TestROICropSourceSize(t *testing.T) {

	img := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer img.Close()

	crop := gocv.NewMat()
	defer crop.Close()

	lb, err := ROI{Square: true}.Crop(img, tracker.NewBox(10, 20, 70, 50), &crop)
	require.NoError(t, err)

	// squared to 60x60 about the center 40,35
	assert.Equal(t, 60, crop.Rows())
	assert.Equal(t, 60, crop.Cols())
	assert.Equal(t, float32(1), lb.ScaleFactor())
}
