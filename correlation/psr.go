package correlation

import (
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// maxPSR caps the quality reported for a correlation surface with no
// variance outside the peak
const maxPSR = 100

// peakToSidelobe calculates the PSR of a correlation response Mat around its
// peak.  The sidelobe is the response outside a square window of exclusion
// pixels centered on the peak.
func peakToSidelobe(response gocv.Mat, peak image.Point, exclusion int) (float64, error) {

	data, err := response.DataPtrFloat32()

	if err != nil {
		return 0, err
	}

	return psr(data, response.Cols(), peak, exclusion), nil
}

// psr calculates the peak-to-sidelobe ratio of a row major response surface
// with the given number of columns
func psr(data []float32, cols int, peak image.Point, exclusion int) float64 {

	if cols <= 0 || len(data) == 0 {
		return 0
	}

	peakVal := float64(data[peak.Y*cols+peak.X])

	if math.IsNaN(peakVal) {
		return 0
	}

	half := exclusion / 2
	sidelobe := make([]float64, 0, len(data))

	for i, v := range data {
		x, y := i%cols, i/cols

		if abs(x-peak.X) <= half && abs(y-peak.Y) <= half {
			continue
		}

		if math.IsNaN(float64(v)) {
			continue
		}

		sidelobe = append(sidelobe, float64(v))
	}

	// surface too small to measure the sidelobe
	if len(sidelobe) < 2 {
		return 0
	}

	mean, std := stat.MeanStdDev(sidelobe, nil)

	if std == 0 {
		if peakVal > mean {
			return maxPSR
		}
		return 0
	}

	return math.Min((peakVal-mean)/std, maxPSR)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
