package tracker

import (
	"image"
	"math"
)

// Box is an axis aligned bounding box in Tlbr (left, top, right, bottom)
// format, in pixel coordinates of the frame
type Box struct {
	Left   float32
	Top    float32
	Right  float32
	Bottom float32
}

// NewBox creates a new Box with the given edges
func NewBox(left, top, right, bottom float32) Box {
	return Box{
		Left:   left,
		Top:    top,
		Right:  right,
		Bottom: bottom,
	}
}

// BoxFromRectangle converts an image.Rectangle into a Box
func BoxFromRectangle(r image.Rectangle) Box {
	return NewBox(float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X),
		float32(r.Max.Y))
}

// BoxFromTlwh creates a Box from Tlwh (top, left, width, height) format
func BoxFromTlwh(x, y, width, height float32) Box {
	return NewBox(x, y, x+width, y+height)
}

// Width returns the width of the box
func (b Box) Width() float32 {
	return b.Right - b.Left
}

// Height returns the height of the box
func (b Box) Height() float32 {
	return b.Bottom - b.Top
}

// Area returns the area of the box
func (b Box) Area() float32 {
	return b.Width() * b.Height()
}

// Center returns the center point of the box
func (b Box) Center() (x, y float32) {
	return b.Left + b.Width()/2, b.Top + b.Height()/2
}

// Rectangle converts the box to an image.Rectangle, truncating coordinates
// towards zero
func (b Box) Rectangle() image.Rectangle {
	return image.Rect(int(b.Left), int(b.Top), int(b.Right), int(b.Bottom))
}

// Snap truncates the box edges to whole pixels
func (b Box) Snap() Box {
	return NewBox(float32(int(b.Left)), float32(int(b.Top)),
		float32(int(b.Right)), float32(int(b.Bottom)))
}

// Translate returns the box moved by dx, dy
func (b Box) Translate(dx, dy float32) Box {
	return NewBox(b.Left+dx, b.Top+dy, b.Right+dx, b.Bottom+dy)
}

// IntersectionArea calculates the overlapping area of two boxes, boxes that
// do not overlap return zero
func (b Box) IntersectionArea(other Box) float32 {

	w := math.Min(float64(b.Right), float64(other.Right)) -
		math.Max(float64(b.Left), float64(other.Left))

	if w <= 0 {
		return 0
	}

	h := math.Min(float64(b.Bottom), float64(other.Bottom)) -
		math.Max(float64(b.Top), float64(other.Top))

	if h <= 0 {
		return 0
	}

	return float32(w * h)
}

// IoU calculates the Intersection over Union (IoU) with another box.  A zero
// union (both boxes degenerate) gives an IoU of zero.
func (b Box) IoU(other Box) float32 {

	inter := b.IntersectionArea(other)
	union := b.Area() + other.Area() - inter

	if union <= 0 || inter <= 0 {
		return 0
	}

	return inter / union
}

// InFrame returns true if at least part of the box lies inside the frame
// rectangle [0,width) x [0,height)
func (b Box) InFrame(height, width int) bool {
	return b.Right > 0 && b.Left < float32(width) &&
		b.Bottom > 0 && b.Top < float32(height)
}
