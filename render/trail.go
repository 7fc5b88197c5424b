package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

// TrailStyle sets how face trails are drawn.  A zero color paints with the
// track color.
type TrailStyle struct {
	LineColor     color.RGBA
	LineThickness int
	// Fade draws older segments with thinner lines down to a width of one
	Fade         bool
	CircleColor  color.RGBA
	CircleRadius int
}

// DefaultTrailStyle returns yellow trails ending in a dot of the track color
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineColor:     Yellow,
		LineThickness: 1,
		CircleRadius:  3,
	}
}

// pick returns clr unless it is the zero color
func pick(clr color.RGBA, id int) color.RGBA {
	if clr == (color.RGBA{}) {
		return TrackColor(id)
	}
	return clr
}

// Trail draws the center point history of each tracked face, the latest
// point is marked with a filled circle
func Trail(img *gocv.Mat, results []tracker.Result, trail *tracker.Trail,
	style TrailStyle) {

	for _, res := range results {

		points := trail.GetPoints(res.TrackID)

		if len(points) < 2 {
			continue
		}

		lineClr := pick(style.LineColor, res.TrackID)
		segments := len(points) - 1

		for i := 1; i < len(points); i++ {
			thickness := style.LineThickness

			if style.Fade {
				thickness = max(1, style.LineThickness*i/segments)
			}

			gocv.Line(img,
				image.Pt(points[i-1].X, points[i-1].Y),
				image.Pt(points[i].X, points[i].Y),
				lineClr, thickness,
			)
		}

		last := points[len(points)-1]
		gocv.Circle(img, image.Pt(last.X, last.Y), style.CircleRadius,
			pick(style.CircleColor, res.TrackID), -1)
	}
}
