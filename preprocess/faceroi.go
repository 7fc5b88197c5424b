package preprocess

import (
	"errors"
	"image/color"
	"math"

	clipper "github.com/ctessum/go.clipper"
	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

var (
	// ErrEmptyROI is returned when a face box has no pixels inside the image
	ErrEmptyROI = errors.New("face region is outside the image")

	// black is the letterbox border color of face crops
	black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// fixedScale is the fixed point scale used for clipper integer coordinates
const fixedScale = 100

// Squarify returns the square box with the same center as box and a side
// equal to the longest edge of box
func Squarify(box tracker.Box) tracker.Box {

	cx, cy := box.Center()
	half := max(box.Width(), box.Height()) / 2

	return tracker.NewBox(cx-half, cy-half, cx+half, cy+half)
}

// ExpandBox grows box outwards by offsetting its edges so a square box is
// scaled by scale.  Every edge moves by the same distance, a scale below 1
// shrinks the box.
func ExpandBox(box tracker.Box, scale float64) tracker.Box {

	if scale == 1 || box.Width() <= 0 || box.Height() <= 0 {
		return box
	}

	delta := (scale - 1) * float64(box.Width()+box.Height()) / 4

	path := clipper.Path{
		fixedPoint(box.Left, box.Top),
		fixedPoint(box.Right, box.Top),
		fixedPoint(box.Right, box.Bottom),
		fixedPoint(box.Left, box.Bottom),
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtMiter, clipper.EtClosedPolygon)

	solution := co.Execute(delta * fixedScale)

	if len(solution) == 0 {
		// shrunk to nothing
		cx, cy := box.Center()
		return tracker.NewBox(cx, cy, cx, cy)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, sol := range solution {
		for _, pt := range sol {
			minX = math.Min(minX, float64(pt.X))
			minY = math.Min(minY, float64(pt.Y))
			maxX = math.Max(maxX, float64(pt.X))
			maxY = math.Max(maxY, float64(pt.Y))
		}
	}

	return tracker.NewBox(
		float32(minX/fixedScale), float32(minY/fixedScale),
		float32(maxX/fixedScale), float32(maxY/fixedScale),
	)
}

func fixedPoint(x, y float32) *clipper.IntPoint {
	return &clipper.IntPoint{
		X: clipper.CInt(math.Round(float64(x) * fixedScale)),
		Y: clipper.CInt(math.Round(float64(y) * fixedScale)),
	}
}

// ClipToFrame limits box to an image of the given size
func ClipToFrame(box tracker.Box, height, width int) tracker.Box {
	return tracker.NewBox(
		min(max(box.Left, 0), float32(width)),
		min(max(box.Top, 0), float32(height)),
		max(min(box.Right, float32(width)), 0),
		max(min(box.Bottom, float32(height)), 0),
	)
}

// ROI prepares face crops for a classifier
type ROI struct {
	// Scale the face box is expanded by before cropping
	Scale float64
	// Square makes the face box square before expansion
	Square bool
	// Size is the width and height of the crop in pixels, zero keeps the
	// region at its source size
	Size int
}

// Box returns the region of the image cropped for a face box
func (r ROI) Box(face tracker.Box, height, width int) tracker.Box {

	if r.Square {
		face = Squarify(face)
	}

	if r.Scale > 0 {
		face = ExpandBox(face, r.Scale)
	}

	return ClipToFrame(face, height, width).Snap()
}

// Crop copies the face region of src into dest, letterboxed to Size x Size
func (r ROI) Crop(src gocv.Mat, face tracker.Box, dest *gocv.Mat) (Letterbox, error) {

	rect := r.Box(face, src.Rows(), src.Cols()).Rectangle()

	if rect.Empty() {
		return Letterbox{}, ErrEmptyROI
	}

	region := src.Region(rect)
	defer region.Close()

	if r.Size <= 0 {
		region.CopyTo(dest)
		return NewLetterbox(rect.Dx(), rect.Dy(), rect.Dx(), rect.Dy()), nil
	}

	lb := NewLetterbox(rect.Dx(), rect.Dy(), r.Size, r.Size)
	lb.Resize(region, dest, black)

	return lb, nil
}

// CropFace crops the face box from src letterboxed into a size x size image
func CropFace(src gocv.Mat, face tracker.Box, size int, dest *gocv.Mat) error {
	_, err := ROI{Size: size}.Crop(src, face, dest)
	return err
}
