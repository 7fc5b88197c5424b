package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

func TestTrackColor(t *testing.T) {

	assert.Equal(t, trackColors[0], TrackColor(0))
	assert.Equal(t, trackColors[3], TrackColor(len(trackColors)+3))
	assert.Equal(t, trackColors[2], TrackColor(-2))
}

func TestLayoutLabel(t *testing.T) {

	box := image.Rect(100, 50, 200, 150)
	textSize := image.Pt(40, 10)

	tests := []struct {
		name      string
		alignment Alignment
		rect      image.Rectangle
		pos       image.Point
	}{
		{"left", AlignLeft, image.Rect(100, 30, 148, 50), image.Pt(104, 44)},
		{"center", AlignCenter, image.Rect(126, 30, 174, 50), image.Pt(130, 44)},
		{"right", AlignRight, image.Rect(152, 30, 200, 50), image.Pt(156, 44)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			font := DefaultFont()
			font.Alignment = tt.alignment

			rect, pos := layoutLabel(box, textSize, font, 1)
			assert.Equal(t, tt.rect, rect)
			assert.Equal(t, tt.pos, pos)
		})
	}
}

// blank returns a black BGR image
func blank() gocv.Mat {
	img := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	img.SetTo(gocv.NewScalar(0, 0, 0, 0))
	return img
}

// assertColor checks the BGR pixel at x,y
func assertColor(t *testing.T, img gocv.Mat, x, y int, want [3]uint8) {
	t.Helper()

	v := img.GetVecbAt(y, x)
	assert.Equal(t, want, [3]uint8{v[0], v[1], v[2]}, "pixel %d,%d", x, y)
}

func TestTrackBoxes(t *testing.T) {

	img := blank()
	defer img.Close()

	conf := float32(0.9)
	results := []tracker.Result{
		{Box: tracker.NewBox(20, 40, 60, 80), TrackID: 0, DetectConf: &conf, TrackQuality: 9.5},
	}

	TrackBoxes(&img, results, DefaultFont(), 1)

	clr := TrackColor(0)
	bgr := [3]uint8{clr.B, clr.G, clr.R}

	// left edge below the label
	assertColor(t, img, 20, 70, bgr)
	// inside the box is untouched
	assertColor(t, img, 40, 70, [3]uint8{0, 0, 0})
}

func TestTrail(t *testing.T) {

	img := blank()
	defer img.Close()

	trail := tracker.NewTrail(10)

	var results []tracker.Result

	for i := 0; i < 3; i++ {
		results = []tracker.Result{
			{Box: tracker.BoxFromTlwh(float32(20+i*20), 50, 10, 10), TrackID: 1},
		}
		trail.Add(results)
	}

	Trail(&img, results, trail, DefaultTrailStyle())

	clr := TrackColor(1)
	yellow := [3]uint8{Yellow.B, Yellow.G, Yellow.R}

	// circle on the last center point
	assertColor(t, img, 65, 55, [3]uint8{clr.B, clr.G, clr.R})
	// line between the first two points
	assertColor(t, img, 35, 55, yellow)
}

func TestOverlay(t *testing.T) {

	img := blank()
	defer img.Close()

	img.SetTo(gocv.NewScalar(255, 255, 255, 0))

	Overlay(&img, []string{"Frame: 1"}, OverlayFont())

	// bottom of the image keeps its content
	assertColor(t, img, 80, 110, [3]uint8{255, 255, 255})
	// right of the text is blanked
	assertColor(t, img, 155, 2, [3]uint8{0, 0, 0})
}
