package facetrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swdee/go-facetrack/tracker"
	"github.com/swdee/go-facetrack/video"
	"gocv.io/x/gocv"
)

func TestDrawer(t *testing.T) {

	src := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer src.Close()
	src.SetTo(gocv.NewScalar(255, 255, 255, 0))

	frame := video.NewFrame(src, 3, 6, 240)

	img := src.Clone()
	defer img.Close()

	drawer := NewDrawer(5)

	results := []tracker.Result{
		{Box: tracker.NewBox(60, 60, 100, 100), TrackID: 2, TrackQuality: 12},
	}

	drawer.Draw(&img, frame, results, "Detection Cycles: 1")

	// status bar blanked across the top
	v := img.GetVecbAt(1, 158)
	assert.Equal(t, []uint8{0, 0, 0}, []uint8{v[0], v[1], v[2]})

	// face box drawn in the track color
	clr := img.GetVecbAt(95, 60)
	assert.NotEqual(t, []uint8{255, 255, 255}, []uint8{clr[0], clr[1], clr[2]})

	// bottom corner untouched
	v = img.GetVecbAt(118, 2)
	assert.Equal(t, []uint8{255, 255, 255}, []uint8{v[0], v[1], v[2]})

	assert.Len(t, drawer.trail.GetPoints(2), 1)

	drawer.Reset()
	assert.Empty(t, drawer.trail.GetPoints(2))
}

func TestDrawerWithoutTrail(t *testing.T) {

	drawer := NewDrawer(0)
	assert.Nil(t, drawer.trail)

	// reset without a trail is a no-op
	drawer.Reset()
}
