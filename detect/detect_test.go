package detect

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-facetrack/tracker"
)

func TestParseSSD(t *testing.T) {

	data := []float32{
		0, 1, 0.98, 0.1, 0.2, 0.3, 0.6,
		0, 1, 0.40, 0.5, 0.5, 0.75, 0.75,
		// trailing partial row is ignored
		0, 1,
	}

	dets := parseSSD(data, 100, 200)

	require.Len(t, dets, 2)
	assert.Equal(t, float32(0.98), dets[0].Confidence)
	assert.InDelta(t, 20, dets[0].Box.Left, 1e-4)
	assert.InDelta(t, 20, dets[0].Box.Top, 1e-4)
	assert.InDelta(t, 60, dets[0].Box.Right, 1e-4)
	assert.InDelta(t, 60, dets[0].Box.Bottom, 1e-4)
	assert.Equal(t, tracker.NewBox(100, 50, 150, 75), dets[1].Box)
}

func TestFilter(t *testing.T) {

	dets := []tracker.Detection{
		tracker.NewDetection(tracker.NewBox(10, 10, 50, 50), 0.9),
		// low confidence
		tracker.NewDetection(tracker.NewBox(10, 10, 50, 50), 0.5),
		// too small
		tracker.NewDetection(tracker.NewBox(60, 60, 70, 70), 0.99),
		// clamped to the frame
		tracker.NewDetection(tracker.NewBox(-20, 70, 40, 130), 0.8),
	}

	got := filter(dets, DefaultParams(), 100, 100)

	require.Len(t, got, 2)
	assert.Equal(t, tracker.NewBox(10, 10, 50, 50), got[0].Box)
	assert.Equal(t, tracker.NewBox(0, 70, 40, 100), got[1].Box)
	assert.Equal(t, float32(0.8), got[1].Confidence)
}

func TestFilterPadding(t *testing.T) {

	params := DefaultParams()
	params.PaddingPercent = 10

	dets := []tracker.Detection{
		tracker.NewDetection(tracker.NewBox(20, 20, 60, 80), 0.9),
	}

	got := filter(dets, params, 200, 200)

	require.Len(t, got, 1)
	assert.Equal(t, tracker.NewBox(16, 14, 64, 86), got[0].Box)
}

func TestNewUnknownType(t *testing.T) {

	_, err := New("hog", "", "", DefaultParams(), nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestNewCascadeMissingFile(t *testing.T) {

	_, err := New(TypeCascade, filepath.Join(t.TempDir(), "missing.xml"), "",
		DefaultParams(), nil)
	assert.Error(t, err)
}
