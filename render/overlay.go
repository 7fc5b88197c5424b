package render

import (
	"image"

	"gocv.io/x/gocv"
)

// Overlay blanks a bar across the top of the image and writes one line of
// status text per entry of lines into it
func Overlay(img *gocv.Mat, lines []string, font Font) {

	if len(lines) == 0 {
		return
	}

	lineHeight := font.LineHeight()

	gocv.Rectangle(img, image.Rect(0, 0, img.Cols(), lineHeight*len(lines)+font.TopPad),
		Black, -1)

	for i, line := range lines {
		font.Put(img, line, image.Pt(font.LeftPad, (i+1)*lineHeight))
	}
}
