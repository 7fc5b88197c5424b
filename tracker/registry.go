package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ProbeMode defines how candidate tracks are scored against a detection
// during reconciliation
type ProbeMode int

const (
	// ProbeCommitWinner scores candidates without changing them and only
	// rebinds the track that claims the detection
	ProbeCommitWinner ProbeMode = 0
	// ProbeRebindAll rebinds every evaluated candidate to the detection box
	// as it is scored, a rejected candidate keeps the rebound box
	ProbeRebindAll ProbeMode = 1
)

// Association defines how detections are assigned to existing tracks
type Association int

const (
	// AssociateGreedy lets each detection, in the order given, claim the
	// best scoring unclaimed track
	AssociateGreedy Association = 0
	// AssociateOptimal solves the detection to track assignment over all
	// candidate scores using the Hungarian algorithm
	AssociateOptimal Association = 1
)

var (
	// ErrOptimalRebindAll is returned when optimal association is used with
	// a probe mode that changes tracks while scoring
	ErrOptimalRebindAll = errors.New("optimal association requires ProbeCommitWinner")
)

// Params defines the thresholds used by the Registry
type Params struct {
	// MinQuality is the tracking quality a track must exceed to stay alive
	// or to claim a detection
	MinQuality float64
	// MinOverlap is the IoU a track must exceed with a detection to be
	// considered a candidate for it
	MinOverlap float32
	// Association is the detection to track assignment strategy
	Association Association
	// Probe is the candidate scoring mode
	Probe ProbeMode
}

// DefaultParams returns the Registry parameters calibrated for correlation
// trackers reporting a peak to sidelobe ratio:
// - MinQuality: 7.0
// - MinOverlap: 0.5
// - Association: greedy
// - Probe: commit winner
func DefaultParams() Params {
	return Params{
		MinQuality:  7.0,
		MinOverlap:  0.5,
		Association: AssociateGreedy,
		Probe:       ProbeCommitWinner,
	}
}

// Registry owns the live face tracks of a single video stream, keyed by
// persistent track ID.  It is not safe for concurrent use.
type Registry struct {
	params  Params
	factory VisualTrackerFactory
	// tracks are the live tracks
	tracks map[int]*SingleTracker
	// nextID is the ID given to the next spawned track
	nextID int
	logger *slog.Logger
}

// NewRegistry returns an empty Registry creating its visual trackers with
// factory
func NewRegistry(factory VisualTrackerFactory, params Params) (*Registry, error) {

	if params.Association == AssociateOptimal && params.Probe != ProbeCommitWinner {
		return nil, ErrOptimalRebindAll
	}

	return &Registry{
		params:  params,
		factory: factory,
		tracks:  make(map[int]*SingleTracker),
		logger:  slog.Default(),
	}, nil
}

// SetLogger sets the logger used for track lifecycle events
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.logger = logger

	for _, t := range r.tracks {
		t.logger = logger
	}
}

// Params returns the Registry parameters
func (r *Registry) Params() Params {
	return r.params
}

// Len returns the number of live tracks
func (r *Registry) Len() int {
	return len(r.tracks)
}

// NextID returns the ID the next spawned track will get, which is also the
// number of tracks spawned so far
func (r *Registry) NextID() int {
	return r.nextID
}

// IDs returns the live track IDs in ascending order
func (r *Registry) IDs() []int {

	ids := make([]int, 0, len(r.tracks))

	for id := range r.tracks {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}

// Get returns the live track with the given ID
func (r *Registry) Get(id int) (*SingleTracker, bool) {
	t, ok := r.tracks[id]
	return t, ok
}

// Results returns the state of every live track ordered by track ID
func (r *Registry) Results() []Result {

	res := make([]Result, 0, len(r.tracks))

	for _, id := range r.IDs() {
		res = append(res, r.tracks[id].Result())
	}

	return res
}

// PropagateAll relocates every live track on frame and retires those whose
// tracking quality falls below MinQuality or whose box has left the frame.
// The IDs of the retired tracks are returned.
func (r *Registry) PropagateAll(frame Frame) []int {

	height, width := frame.Size()
	var retired []int

	for _, id := range r.IDs() {

		t := r.tracks[id]
		box, quality := t.Propagate(frame)

		if quality < r.params.MinQuality || !t.IsWithinFrame(height, width) {
			r.logger.Debug("track lost", "track", id, "frame", frame.Seq(),
				"quality", quality, "box", box)
			r.remove(id)
			retired = append(retired, id)
		}
	}

	return retired
}

// Reconcile matches detections found on frame against the live tracks.  A
// track claiming a detection is rebound to the detection box and keeps its
// ID, a detection no track claims spawns a new track.  Tracks that claim no
// detection are discarded.  A visual tracker failing to bind retires its
// track or skips its detection and the pass carries on, errors creating
// visual trackers are returned once every detection has been handled.
func (r *Registry) Reconcile(frame Frame, dets []Detection) error {

	// tracks existing before this pass, new tracks can not be claimed
	unmatched := r.IDs()

	var errs []error

	switch r.params.Association {
	case AssociateOptimal:
		unmatched, errs = r.reconcileOptimal(frame, dets, unmatched)
	default:
		unmatched, errs = r.reconcileGreedy(frame, dets, unmatched)
	}

	for _, id := range unmatched {
		r.logger.Debug("track unmatched", "track", id, "frame", frame.Seq())
		r.remove(id)
	}

	return errors.Join(errs...)
}

// reconcileGreedy lets each detection in turn claim its best scoring
// unmatched track and returns the tracks left unmatched
func (r *Registry) reconcileGreedy(frame Frame, dets []Detection,
	unmatched []int) ([]int, []error) {

	var errs []error

	for _, det := range dets {

		bestIdx := -1
		bestScore := float64(0)

		for i := 0; i < len(unmatched); {

			id := unmatched[i]
			score, err := r.candidateScore(frame, r.tracks[id], det.Box)

			if err != nil {
				// rebinding while probing failed, bestIdx is always below i
				r.retire(frame, id, err)
				unmatched = append(unmatched[:i], unmatched[i+1:]...)
				continue
			}

			if bestIdx < 0 || score > bestScore {
				bestIdx = i
				bestScore = score
			}

			i++
		}

		if bestIdx >= 0 && bestScore > r.params.MinQuality {

			id := unmatched[bestIdx]
			unmatched = append(unmatched[:bestIdx], unmatched[bestIdx+1:]...)

			if err := r.claim(frame, r.tracks[id], det, bestScore); err != nil {
				r.retire(frame, id, err)
			}

			continue
		}

		if err := r.spawn(frame, det); err != nil {
			errs = append(errs, err)
		}
	}

	return unmatched, errs
}

// candidateScore scores track against a detection box, tracks that do not
// overlap the box enough score zero without being evaluated
func (r *Registry) candidateScore(frame Frame, t *SingleTracker, box Box) (float64, error) {

	if t.OverlapRatio(box) <= r.params.MinOverlap {
		return 0, nil
	}

	if r.params.Probe == ProbeRebindAll {
		return t.ProbeAndRebind(frame, box)
	}

	return t.Score(frame, box), nil
}

// claim rebinds track to the detection it matched
func (r *Registry) claim(frame Frame, t *SingleTracker, det Detection,
	score float64) error {

	if r.params.Probe == ProbeCommitWinner {
		if err := t.rebind(frame, det.Box, score); err != nil {
			return err
		}
	}

	conf := det.Confidence
	t.detectConf = &conf

	return nil
}

// spawn starts a new track with a fresh ID on the detection.  A detection the
// visual tracker fails to start on is skipped without using an ID, only a
// failure to create the visual tracker is returned.
func (r *Registry) spawn(frame Frame, det Detection) error {

	vt, err := r.factory()

	if err != nil {
		return fmt.Errorf("error creating visual tracker: %w", err)
	}

	t := newSingleTracker(r.nextID, vt, r.logger)

	if err := t.Start(frame, det.Box); err != nil {
		_ = vt.Close()
		r.logger.Debug("detection skipped", "frame", frame.Seq(),
			"box", det.Box, "error", err)
		return nil
	}

	id := r.nextID
	r.nextID++

	conf := det.Confidence
	t.detectConf = &conf
	r.tracks[id] = t

	r.logger.Debug("track started", "track", id, "frame", frame.Seq(),
		"box", det.Box, "confidence", det.Confidence)

	return nil
}

// retire removes a track whose visual tracker failed to rebind
func (r *Registry) retire(frame Frame, id int, err error) {
	r.logger.Debug("track rebind failed", "track", id, "frame", frame.Seq(),
		"error", err)
	r.remove(id)
}

// remove retires the track with the given ID
func (r *Registry) remove(id int) {

	t, ok := r.tracks[id]

	if !ok {
		return
	}

	if err := t.Close(); err != nil {
		r.logger.Warn("error closing visual tracker", "track", id, "error", err)
	}

	delete(r.tracks, id)
}

// Reset retires all tracks, for use when a stream is restarted from the
// beginning.  IDs keep increasing so no ID is reused.
func (r *Registry) Reset() {

	for _, id := range r.IDs() {
		r.remove(id)
	}
}

// Close retires all tracks
func (r *Registry) Close() {

	for _, id := range r.IDs() {
		r.remove(id)
	}
}
