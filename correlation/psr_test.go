package correlation

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPSR(t *testing.T) {

	// 5x5 surface with a single peak and alternating sidelobe
	data := make([]float32, 25)
	for i := range data {
		if i%2 == 0 {
			data[i] = 0.1
		} else {
			data[i] = -0.1
		}
	}
	data[12] = 1

	// exclusion of 1 only removes the peak, 12 values at 0.1 and 12 at -0.1
	got := psr(data, 5, image.Pt(2, 2), 1)

	// sample standard deviation of the sidelobe
	std := math.Sqrt(24 * 0.01 / 23)
	assert.InDelta(t, 1/std, got, 1e-5)
}

func TestPSRFlatSidelobe(t *testing.T) {

	data := []float32{0, 0, 0, 0, 1, 0, 0, 0, 0}

	assert.Equal(t, float64(maxPSR), psr(data, 3, image.Pt(1, 1), 1))

	flat := make([]float32, 9)
	assert.Zero(t, psr(flat, 3, image.Pt(1, 1), 1))
}

func TestPSRSmallSurface(t *testing.T) {

	// whole surface within the exclusion window
	data := []float32{0.2, 0.9, 0.1, 0.3}
	assert.Zero(t, psr(data, 2, image.Pt(1, 0), 11))
	assert.Zero(t, psr(nil, 0, image.Pt(0, 0), 11))
}

func TestPSRNaN(t *testing.T) {

	nan := float32(math.NaN())
	data := []float32{nan, nan, nan, nan, nan, nan, nan, nan, nan}

	assert.Zero(t, psr(data, 3, image.Pt(1, 1), 1))
}
