package tracker

import "sync"

// Point represents the x,y coordinates of the center of a tracked box
type Point struct {
	X, Y int
}

// history is the center point history of one track
type history struct {
	points []Point
}

// Trail keeps the recent center point history of each track, used for
// drawing a trail behind tracked faces
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// history of tracked points keyed by track ID
	history map[int]*history
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size is the number of most
// recent points to keep per track and specifies the maximum length of the
// trail to maintain
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int]*history),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int]*history)
}

// Add records the center points of the given results and drops the history
// of tracks no longer present
func (t *Trail) Add(results []Result) {
	t.Lock()
	defer t.Unlock()

	live := make(map[int]bool, len(results))

	for _, res := range results {

		live[res.TrackID] = true

		h, exists := t.history[res.TrackID]

		if !exists {
			h = &history{}
			t.history[res.TrackID] = h
		}

		x, y := res.Box.Center()
		h.points = append(h.points, Point{X: int(x), Y: int(y)})

		// drop oldest point once history is exceeded
		if len(h.points) > t.size {
			h.points = h.points[1:]
		}
	}

	for id := range t.history {
		if !live[id] {
			delete(t.history, id)
		}
	}
}

// GetPoints gets a copy of the point history for a specific track id
func (t *Trail) GetPoints(id int) []Point {
	t.Lock()
	defer t.Unlock()

	h, exists := t.history[id]

	if !exists {
		return nil
	}

	points := make([]Point, len(h.points))
	copy(points, h.points)

	return points
}
