package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockDetector is a testify mock of the Detector interface
type mockDetector struct {
	mock.Mock
}

func (m *mockDetector) Detect(ctx context.Context, frame Frame) ([]Detection, error) {
	args := m.Called(ctx, frame)
	dets, _ := args.Get(0).([]Detection)
	return dets, args.Error(1)
}

func TestSchedulerInvalidPeriod(t *testing.T) {

	r := newTestRegistry(&fakeFactory{}, DefaultParams())

	_, err := NewScheduler(&mockDetector{}, r, 0, CadenceSkipPeriodStart)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = NewScheduler(&mockDetector{}, r, -2, CadencePeriodStart)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestSchedulerCadence(t *testing.T) {

	tests := []struct {
		name    string
		period  int
		cadence Cadence
		want    []bool
	}{
		{"skip period start", 3, CadenceSkipPeriodStart,
			[]bool{false, true, true, false, true, true, false}},
		{"period start", 3, CadencePeriodStart,
			[]bool{true, false, false, true, false, false, true}},
		{"skip period start of one", 1, CadenceSkipPeriodStart,
			[]bool{false, false, false}},
		{"period start of one", 1, CadencePeriodStart,
			[]bool{true, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			det := &mockDetector{}
			det.On("Detect", mock.Anything, mock.Anything).Return([]Detection{}, nil)

			r := newTestRegistry(&fakeFactory{}, DefaultParams())
			s, err := NewScheduler(det, r, tt.period, tt.cadence)
			require.NoError(t, err)
			s.SetLogger(discardLogger())

			var calls int

			for i, want := range tt.want {
				assert.Equal(t, want, s.IsDetectionFrame(i), "frame %d", i)

				_, err := s.Process(context.Background(), frameN(int64(i)))
				require.NoError(t, err)

				if want {
					calls++
				}
			}

			det.AssertNumberOfCalls(t, "Detect", calls)
			assert.Equal(t, calls, s.DetectionCycles())
			assert.Equal(t, len(tt.want), s.FrameCount())
		})
	}
}

func TestSchedulerScenario(t *testing.T) {

	ff := &fakeFactory{
		setup: func(n int, f *fakeTracker) {
			f.move = func(seq int64, box Box) (Box, float64, error) {
				return box.Translate(1, 1), 9, nil
			}
		},
	}

	det := &mockDetector{}
	det.On("Detect", mock.Anything, frameN(0)).
		Return([]Detection{NewDetection(NewBox(0, 0, 10, 10), 0.95)}, nil).Once()
	det.On("Detect", mock.Anything, frameN(2)).
		Return([]Detection{NewDetection(NewBox(12, 12, 22, 22), 0.9)}, nil).Once()

	r := newTestRegistry(ff, DefaultParams())
	s, err := NewScheduler(det, r, 2, CadencePeriodStart)
	require.NoError(t, err)
	s.SetLogger(discardLogger())

	ctx := context.Background()

	res, err := s.Process(ctx, frameN(0))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 0, res[0].TrackID)
	require.NotNil(t, res[0].DetectConf)
	assert.Equal(t, float32(0.95), *res[0].DetectConf)

	res, err = s.Process(ctx, frameN(1))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, Result{Box: NewBox(1, 1, 11, 11), TrackID: 0, TrackQuality: 9}, res[0])

	res, err = s.Process(ctx, frameN(2))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].TrackID)
	assert.Equal(t, NewBox(12, 12, 22, 22), res[0].Box)

	det.AssertExpectations(t)
}

func TestSchedulerSnapsDetections(t *testing.T) {

	det := &mockDetector{}
	det.On("Detect", mock.Anything, mock.Anything).
		Return([]Detection{NewDetection(NewBox(1.7, 2.2, 11.9, 12.5), 0.9)}, nil)

	r := newTestRegistry(&fakeFactory{}, DefaultParams())
	s, err := NewScheduler(det, r, 1, CadencePeriodStart)
	require.NoError(t, err)

	res, err := s.Process(context.Background(), frameN(0))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, NewBox(1, 2, 11, 12), res[0].Box)
}

func TestSchedulerDetectorError(t *testing.T) {

	errModel := errors.New("model failure")

	det := &mockDetector{}
	det.On("Detect", mock.Anything, frameN(1)).Return(nil, errModel)

	ff := &fakeFactory{}
	r := newTestRegistry(ff, DefaultParams())
	seed(r, frameN(0), NewBox(0, 0, 10, 10))

	s, err := NewScheduler(det, r, 3, CadenceSkipPeriodStart)
	require.NoError(t, err)
	s.SetLogger(discardLogger())

	// frame counter 0 is not a detection frame
	res, err := s.Process(context.Background(), frameN(0))
	require.NoError(t, err)
	require.Len(t, res, 1)

	// tracks are still propagated and returned when detection fails
	res, err = s.Process(context.Background(), frameN(1))
	assert.ErrorIs(t, err, errModel)
	assert.ErrorIs(t, err, ErrDetection)
	require.Len(t, res, 1)
	assert.Equal(t, 0, res[0].TrackID)
	assert.Equal(t, 2, s.FrameCount())
	assert.Equal(t, 1, ff.created[0].updates)
}

func TestSchedulerReset(t *testing.T) {

	det := &mockDetector{}
	det.On("Detect", mock.Anything, mock.Anything).
		Return([]Detection{NewDetection(NewBox(0, 0, 10, 10), 0.9)}, nil)

	r := newTestRegistry(&fakeFactory{}, DefaultParams())
	s, err := NewScheduler(det, r, 1, CadencePeriodStart)
	require.NoError(t, err)

	_, err = s.Process(context.Background(), frameN(0))
	require.NoError(t, err)

	s.Reset()
	assert.Zero(t, s.FrameCount())
	assert.Zero(t, s.DetectionCycles())
	assert.Zero(t, s.Registry().Len())
	assert.Equal(t, 1, s.Registry().NextID())

	// tracks found after the reset get new IDs
	res, err := s.Process(context.Background(), frameN(1))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].TrackID)
}
