package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-facetrack/tracker"
	"gocv.io/x/gocv"
)

// boxLabel holds the layout of a text label drawn above a box
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// layoutLabel positions a label with text of textSize above box according to
// the font alignment
func layoutLabel(box image.Rectangle, textSize image.Point, font Font,
	lineThickness int) (image.Rectangle, image.Point) {

	var centerX int

	switch font.Alignment {
	case AlignCenter:
		centerX = (box.Min.X + box.Max.X) / 2

	case AlignRight:
		centerX = box.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case AlignLeft:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	textPos := image.Pt(centerX-textSize.X/2, box.Min.Y-font.BottomPad)

	rect := image.Rect(centerX-textSize.X/2-font.LeftPad,
		box.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
		centerX+textSize.X/2+font.RightPad, box.Min.Y)

	return rect, textPos
}

// drawBoxes draws the boxes then their labels so labels are the top most
// layer on the image
func drawBoxes(img *gocv.Mat, rects []image.Rectangle, clrs []color.RGBA,
	texts []string, font Font, lineThickness int) {

	labels := make([]boxLabel, 0, len(rects))

	for i, rect := range rects {
		gocv.Rectangle(img, rect, clrs[i], lineThickness)

		textSize := font.TextSize(texts[i])
		lRect, textPos := layoutLabel(rect, textSize, font, lineThickness)

		labels = append(labels, boxLabel{
			rect:    lRect,
			clr:     clrs[i],
			text:    texts[i],
			textPos: textPos,
		})
	}

	for _, l := range labels {
		gocv.Rectangle(img, l.rect, l.clr, -1)
		font.Put(img, l.text, l.textPos)
	}
}

// TrackBoxes renders the face boxes of tracker results labelled with the
// track id and tracking quality
func TrackBoxes(img *gocv.Mat, results []tracker.Result, font Font, lineThickness int) {

	rects := make([]image.Rectangle, len(results))
	clrs := make([]color.RGBA, len(results))
	texts := make([]string, len(results))

	for i, res := range results {
		rects[i] = res.Box.Rectangle()
		clrs[i] = TrackColor(res.TrackID)
		texts[i] = fmt.Sprintf("face %d q%.1f", res.TrackID, res.TrackQuality)

		if res.DetectConf != nil {
			texts[i] += fmt.Sprintf(" d%.2f", *res.DetectConf)
		}
	}

	drawBoxes(img, rects, clrs, texts, font, lineThickness)
}

// DetectionBoxes renders raw face detections labelled with their confidence
func DetectionBoxes(img *gocv.Mat, dets []tracker.Detection, font Font, lineThickness int) {

	rects := make([]image.Rectangle, len(dets))
	clrs := make([]color.RGBA, len(dets))
	texts := make([]string, len(dets))

	for i, det := range dets {
		rects[i] = det.Box.Rectangle()
		clrs[i] = Pink
		texts[i] = fmt.Sprintf("%.2f", det.Confidence)
	}

	drawBoxes(img, rects, clrs, texts, font, lineThickness)
}
