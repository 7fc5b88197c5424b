package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleTrackerPropagateMemoised(t *testing.T) {

	ft := &fakeTracker{
		move: func(seq int64, box Box) (Box, float64, error) {
			return box.Translate(1, 1), 9, nil
		},
	}

	st := newSingleTracker(3, ft, discardLogger())
	require.NoError(t, st.Start(frameN(0), NewBox(0, 0, 10, 10)))

	box, quality := st.Propagate(frameN(1))
	assert.Equal(t, NewBox(1, 1, 11, 11), box)
	assert.Equal(t, float64(9), quality)

	// same frame again does not run the visual tracker
	box, quality = st.Propagate(frameN(1))
	assert.Equal(t, NewBox(1, 1, 11, 11), box)
	assert.Equal(t, float64(9), quality)
	assert.Equal(t, 1, ft.updates)

	box, _ = st.Propagate(frameN(2))
	assert.Equal(t, NewBox(2, 2, 12, 12), box)
	assert.Equal(t, 2, ft.updates)
}

func TestSingleTrackerPropagateOnStartFrame(t *testing.T) {

	ft := &fakeTracker{}
	st := newSingleTracker(0, ft, discardLogger())
	require.NoError(t, st.Start(frameN(4), NewBox(0, 0, 10, 10)))

	box, quality := st.Propagate(frameN(4))
	assert.Equal(t, NewBox(0, 0, 10, 10), box)
	assert.Equal(t, float64(10), quality)
	assert.Equal(t, 0, ft.updates)
}

func TestSingleTrackerPropagateFailure(t *testing.T) {

	ft := &fakeTracker{
		move: func(seq int64, box Box) (Box, float64, error) {
			return box, 0, errLost
		},
	}

	st := newSingleTracker(0, ft, discardLogger())
	require.NoError(t, st.Start(frameN(0), NewBox(0, 0, 10, 10)))

	_, quality := st.Propagate(frameN(1))
	assert.Zero(t, quality)
}

func TestSingleTrackerScoreAndProbe(t *testing.T) {

	candidate := NewBox(2, 0, 12, 10)

	ft := &fakeTracker{
		score: scoreTable(map[Box]float64{candidate: 8.5}),
	}

	st := newSingleTracker(0, ft, discardLogger())
	require.NoError(t, st.Start(frameN(0), NewBox(0, 0, 10, 10)))

	// scoring does not move the tracker
	assert.Equal(t, 8.5, st.Score(frameN(1), candidate))
	assert.Equal(t, NewBox(0, 0, 10, 10), st.Box())

	quality, err := st.ProbeAndRebind(frameN(1), candidate)
	require.NoError(t, err)
	assert.Equal(t, 8.5, quality)
	assert.Equal(t, candidate, st.Box())
	assert.Equal(t, []Box{NewBox(0, 0, 10, 10), candidate}, ft.starts)
}

func TestSingleTrackerOverlapAndFrame(t *testing.T) {

	ft := &fakeTracker{}
	st := newSingleTracker(0, ft, discardLogger())
	require.NoError(t, st.Start(frameN(0), NewBox(0, 0, 10, 10)))

	assert.Equal(t, float32(1), st.OverlapRatio(NewBox(0, 0, 10, 10)))
	assert.Zero(t, st.OverlapRatio(NewBox(50, 50, 60, 60)))
	assert.True(t, st.IsWithinFrame(100, 100))

	ft.box = NewBox(-20, -20, -10, -10)
	assert.False(t, st.IsWithinFrame(100, 100))
}
