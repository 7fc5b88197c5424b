package tracker

import (
	"fmt"

	hg "github.com/charles-haynes/munkres"
)

// reconcileOptimal assigns detections to unmatched tracks maximising the
// total candidate score and returns the tracks left unmatched.  Assignments
// scoring MinQuality or less are rejected and the detection spawns a new
// track, the same as in greedy association.
func (r *Registry) reconcileOptimal(frame Frame, dets []Detection,
	unmatched []int) ([]int, []error) {

	scores := r.scoreMatrix(frame, dets, unmatched)
	assigned := make([]int, len(dets))

	for i := range assigned {
		assigned[i] = -1
	}

	var errs []error

	if len(dets) > 0 && len(unmatched) > 0 {

		// solver minimises cost so invert the scores, padded to a square
		// matrix with dummy rows and columns scoring zero
		HA, err := hg.NewHungarianAlgorithm(costMatrix(scores, len(unmatched)))

		if err != nil {
			// nothing is assigned so every detection spawns
			errs = append(errs, fmt.Errorf("error building assignment problem: %w", err))
		} else {
			matches := HA.Execute()

			for row := range dets {
				if col := matches[row]; col >= 0 && col < len(unmatched) {
					assigned[row] = col
				}
			}
		}
	}

	claimed := make(map[int]bool)

	for row, det := range dets {

		col := assigned[row]

		if col >= 0 && scores[row][col] > r.params.MinQuality {

			id := unmatched[col]
			claimed[id] = true

			if err := r.claim(frame, r.tracks[id], det, scores[row][col]); err != nil {
				r.retire(frame, id, err)
			}

			continue
		}

		if err := r.spawn(frame, det); err != nil {
			errs = append(errs, err)
		}
	}

	var remaining []int

	for _, id := range unmatched {
		if !claimed[id] {
			remaining = append(remaining, id)
		}
	}

	return remaining, errs
}

// scoreMatrix scores every detection (rows) against every unmatched track
// (columns) without changing the tracks
func (r *Registry) scoreMatrix(frame Frame, dets []Detection, unmatched []int) [][]float64 {

	scores := make([][]float64, len(dets))

	for i, det := range dets {

		scores[i] = make([]float64, len(unmatched))

		for j, id := range unmatched {

			t := r.tracks[id]

			if t.OverlapRatio(det.Box) > r.params.MinOverlap {
				scores[i][j] = t.Score(frame, det.Box)
			}
		}
	}

	return scores
}

// costMatrix converts a score matrix into a square, non negative cost
// matrix where the highest score has the lowest cost
func costMatrix(scores [][]float64, cols int) [][]float64 {

	n := len(scores)

	if cols > n {
		n = cols
	}

	maxScore := float64(0)

	for _, row := range scores {
		for _, score := range row {
			if score > maxScore {
				maxScore = score
			}
		}
	}

	cost := make([][]float64, n)

	for i := range cost {

		cost[i] = make([]float64, n)

		for j := range cost[i] {
			cost[i][j] = maxScore

			if i < len(scores) && j < cols {
				cost[i][j] = maxScore - scores[i][j]
			}
		}
	}

	return cost
}
