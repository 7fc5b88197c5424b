package tracker

import (
	"errors"
	"io"
	"log/slog"
)

// testFrame is a Frame of fixed size
type testFrame struct {
	seq    int64
	height int
	width  int
}

func (f testFrame) Seq() int64 {
	return f.seq
}

func (f testFrame) Size() (int, int) {
	return f.height, f.width
}

// frameN returns a 100x100 frame with the given sequence number
func frameN(seq int64) testFrame {
	return testFrame{seq: seq, height: 100, width: 100}
}

// fakeTracker is a scripted VisualTracker
type fakeTracker struct {
	box Box
	// move returns the box and quality after an update on frame seq
	move func(seq int64, box Box) (Box, float64, error)
	// score returns the quality of a guess box
	score func(guess Box) (float64, error)
	// start fails binding the n'th box when it returns an error
	start func(n int, box Box) error
	// starts records every box the tracker was bound to
	starts  []Box
	updates int
	scores  int
	closed  bool
}

func (f *fakeTracker) Start(frame Frame, box Box) error {
	if f.start != nil {
		if err := f.start(len(f.starts), box); err != nil {
			return err
		}
	}

	f.box = box
	f.starts = append(f.starts, box)
	return nil
}

func (f *fakeTracker) Update(frame Frame) (float64, error) {
	f.updates++

	if f.move == nil {
		return 10, nil
	}

	box, quality, err := f.move(frame.Seq(), f.box)

	if err != nil {
		return 0, err
	}

	f.box = box
	return quality, nil
}

func (f *fakeTracker) Score(frame Frame, guess Box) (float64, error) {
	f.scores++

	if f.score == nil {
		return 10, nil
	}

	return f.score(guess)
}

func (f *fakeTracker) Position() Box {
	return f.box
}

func (f *fakeTracker) Close() error {
	f.closed = true
	return nil
}

// fakeFactory creates fakeTrackers and keeps them in creation order
type fakeFactory struct {
	created []*fakeTracker
	// setup configures the n'th created tracker
	setup func(n int, f *fakeTracker)
	err   error
}

func (ff *fakeFactory) New() (VisualTracker, error) {

	if ff.err != nil {
		return nil, ff.err
	}

	f := &fakeTracker{}

	if ff.setup != nil {
		ff.setup(len(ff.created), f)
	}

	ff.created = append(ff.created, f)

	return f, nil
}

// scoreTable returns a score function looking up the guess box in table,
// boxes not in the table score zero
func scoreTable(table map[Box]float64) func(Box) (float64, error) {
	return func(guess Box) (float64, error) {
		return table[guess], nil
	}
}

var errLost = errors.New("target lost")

// discardLogger returns a logger that drops all records
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRegistry returns a registry using ff with quiet logging
func newTestRegistry(ff *fakeFactory, params Params) *Registry {

	r, err := NewRegistry(ff.New, params)

	if err != nil {
		panic(err)
	}

	r.SetLogger(discardLogger())

	return r
}

// seed spawns a track on each box without association
func seed(r *Registry, frame Frame, boxes ...Box) {
	for _, box := range boxes {
		if err := r.spawn(frame, NewDetection(box, 0.9)); err != nil {
			panic(err)
		}
	}
}
