package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Alignment of a label along the top edge of its box
type Alignment int

const (
	AlignLeft Alignment = iota + 1
	AlignCenter
	AlignRight
)

// Font holds the Hershey font settings and label padding used to write text
// onto frames
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// padding in pixels around the text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	Alignment Alignment
}

// DefaultFont returns the font used for face box labels
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.45,
		Color:     Black,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: AlignLeft,
	}
}

// OverlayFont returns the font used for status lines
func OverlayFont() Font {
	f := DefaultFont()
	f.Scale = 0.5
	f.Color = Pink
	f.TopPad = 2

	return f
}

// TextSize returns the size of text rendered in the font, excluding padding
func (f Font) TextSize(text string) image.Point {
	return gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)
}

// LineHeight is the height of one padded line of text
func (f Font) LineHeight() int {
	return f.TextSize("Ag").Y + f.TopPad + f.BottomPad
}

// Put writes text with its baseline starting at pt
func (f Font) Put(img *gocv.Mat, text string, pt image.Point) {
	gocv.PutTextWithParams(img, text, pt, f.Face, f.Scale, f.Color,
		f.Thickness, f.LineType, false)
}
