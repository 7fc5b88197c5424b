package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrail(t *testing.T) {

	trail := NewTrail(3)

	for i := 0; i < 5; i++ {
		trail.Add([]Result{
			{Box: BoxFromTlwh(float32(i*10), 0, 10, 10), TrackID: 4},
			{Box: NewBox(0, 0, 20, 20), TrackID: 7},
		})
	}

	// only the most recent points are kept
	assert.Equal(t, []Point{{25, 5}, {35, 5}, {45, 5}}, trail.GetPoints(4))
	assert.Len(t, trail.GetPoints(7), 3)

	// history of tracks no longer present is dropped
	trail.Add([]Result{{Box: NewBox(0, 0, 20, 20), TrackID: 7}})
	assert.Nil(t, trail.GetPoints(4))

	points := trail.GetPoints(7)
	points[0] = Point{-1, -1}
	assert.Equal(t, Point{10, 10}, trail.GetPoints(7)[0])

	trail.Reset()
	assert.Nil(t, trail.GetPoints(7))
}
