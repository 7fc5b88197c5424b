package preprocess

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Letterbox holds the scaling used to fit a source image into a destination
// image of fixed size whilst maintaining the source aspect
type Letterbox struct {
	// source and destination dimensions
	srcWidth   int
	srcHeight  int
	destWidth  int
	destHeight int
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
	// resize dimensions
	resizeW int
	resizeH int
}

// NewLetterbox calculates the letterbox scaling of a source image of the
// given size into the destination size
func NewLetterbox(srcWidth, srcHeight, destWidth, destHeight int) Letterbox {

	l := Letterbox{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
		resizeW:    destWidth,
		resizeH:    destHeight,
	}

	scaleW := float32(destWidth) / float32(srcWidth)
	scaleH := float32(destHeight) / float32(srcHeight)
	l.scale = scaleH

	if scaleW < scaleH {
		l.scale = scaleW
		l.resizeH = int(float32(srcHeight) * l.scale)
	} else {
		l.resizeW = int(float32(srcWidth) * l.scale)
	}

	l.yPad = (destHeight - l.resizeH) / 2
	l.xPad = (destWidth - l.resizeW) / 2

	return l
}

// Resize scales src into dest adding borders of the given color
func (l Letterbox) Resize(src gocv.Mat, dest *gocv.Mat, color color.RGBA) {

	tmp := gocv.NewMat()
	defer tmp.Close()

	gocv.Resize(src, &tmp, image.Pt(l.resizeW, l.resizeH), 0, 0,
		gocv.InterpolationArea)

	gocv.CopyMakeBorder(tmp, dest, l.yPad, l.destHeight-l.resizeH-l.yPad,
		l.xPad, l.destWidth-l.resizeW-l.xPad, gocv.BorderConstant, color)
}

// ToSource maps a point in the destination image back to the source image
func (l Letterbox) ToSource(p image.Point) image.Point {
	return image.Pt(
		int(float32(p.X-l.xPad)/l.scale),
		int(float32(p.Y-l.yPad)/l.scale),
	)
}

// ScaleFactor returns the scale factor used in letterbox resize
func (l Letterbox) ScaleFactor() float32 {
	return l.scale
}

// XPad returns the x padding used in letterbox resize
func (l Letterbox) XPad() int {
	return l.xPad
}

// YPad returns the y padding used in letterbox resize
func (l Letterbox) YPad() int {
	return l.yPad
}
