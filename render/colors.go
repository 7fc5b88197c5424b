package render

import (
	"image/color"
	"strconv"
)

// palette of track colors as RGB hex codes
var palette = []string{
	"FF3838", "FF701F", "FFB21D", "CFD231", "48F90A",
	"1A9334", "00D4BB", "00C2FF", "344593", "6473FF",
	"0018EC", "8438FF", "520085", "FF95C8", "FF37C7",
	"FF9D97", "2C99A8", "3DDB86", "CB38FF", "92CC17",
}

var (
	trackColors = parsePalette(palette)

	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

func parsePalette(codes []string) []color.RGBA {

	clrs := make([]color.RGBA, len(codes))

	for i, code := range codes {
		v, err := strconv.ParseUint(code, 16, 32)

		if err != nil {
			panic("render: bad palette color " + code)
		}

		clrs[i] = color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
	}

	return clrs
}

// TrackColor returns the color a track is painted with, each track ID keeps
// the same color for the life of the track
func TrackColor(id int) color.RGBA {

	if id < 0 {
		id = -id
	}

	return trackColors[id%len(trackColors)]
}
