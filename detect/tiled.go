package detect

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"math"
	"sort"

	"github.com/swdee/go-facetrack/tracker"
	"github.com/swdee/go-facetrack/video"
)

// Tiled runs a detector over overlapping tiles of the frame and merges the
// results, improving recall of small faces in high resolution video
type Tiled struct {
	inner Detector
	// tileWidth and tileHeight are the minimum tile dimensions
	tileWidth  int
	tileHeight int
	// overlap is a ratio from 0.0 to 1.0 of the tile dimensions that
	// neighbouring tiles overlap by
	overlap float32
	// iouThreshold and smallBoxOverlap control merging of duplicate faces
	// detected on tile boundaries
	iouThreshold    float32
	smallBoxOverlap float32
	logger          *slog.Logger
}

// NewTiled wraps a detector to run over tiles of the given size
func NewTiled(inner Detector, tileWidth, tileHeight int, overlap float32) *Tiled {
	return &Tiled{
		inner:           inner,
		tileWidth:       tileWidth,
		tileHeight:      tileHeight,
		overlap:         overlap,
		iouThreshold:    0.45,
		smallBoxOverlap: 0.7,
		logger:          slog.Default(),
	}
}

// SetLogger sets the logger of the tiled and inner detector
func (t *Tiled) SetLogger(logger *slog.Logger) {
	t.logger = logger
	t.inner.SetLogger(logger)
}

// Close the inner detector
func (t *Tiled) Close() error {
	return t.inner.Close()
}

// tilePositions returns the start coordinates of each tile along one axis,
// and the tile length.  It gives the smallest number of tiles n so that
// n*tileLen - (n-1)*step >= srcLen with an overlap of at least
// sliceLen*overlapRatio, leftover pixels are spread evenly via rounding.
func tilePositions(srcLen, sliceLen int, overlapRatio float32) ([]int, int) {

	// minimum pixel overlap
	minOv := int(math.Ceil(float64(sliceLen) * float64(overlapRatio)))
	tileLen := sliceLen + minOv

	if tileLen >= srcLen {
		return []int{0}, srcLen
	}

	// number of tiles needed stepping by sliceLen, so step =< sliceLen
	n := int(math.Ceil(float64(srcLen-tileLen)/float64(sliceLen))) + 1

	step := float64(srcLen-tileLen) / float64(n-1)
	positions := make([]int, n)

	for i := 0; i < n; i++ {
		p := int(math.Round(step * float64(i)))

		// clamp to [0, srcLen-tileLen]
		p = min(max(p, 0), srcLen-tileLen)
		positions[i] = p
	}

	return positions, tileLen
}

// tiles returns the tile rectangles covering an image of the given size
func (t *Tiled) tiles(height, width int) []image.Rectangle {

	xs, tileW := tilePositions(width, t.tileWidth, t.overlap)
	ys, tileH := tilePositions(height, t.tileHeight, t.overlap)

	rects := make([]image.Rectangle, 0, len(xs)*len(ys))

	for _, y := range ys {
		for _, x := range xs {
			rects = append(rects, image.Rect(x, y, x+tileW, y+tileH))
		}
	}

	return rects
}

// Detect finds faces in every tile of frame
func (t *Tiled) Detect(ctx context.Context, frame tracker.Frame) ([]tracker.Detection, error) {

	img, err := video.MatOf(frame)

	if err != nil {
		return nil, err
	}

	height, width := frame.Size()
	group := make([]tracker.Detection, 0)
	var errs []error

	for _, rect := range t.tiles(height, width) {

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		region := img.Region(rect)
		tile := video.NewFrame(region, frame.Seq(), 0, 0)

		dets, err := t.inner.Detect(ctx, tile)
		_ = region.Close()

		if err != nil {
			errs = append(errs, err)
			continue
		}

		// remap to the coordinates of the frame
		for _, det := range dets {
			det.Box = det.Box.Translate(float32(rect.Min.X), float32(rect.Min.Y))
			group = append(group, det)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// sort by descending confidence
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Confidence > group[j].Confidence
	})

	merged := mergeClusters(group, t.iouThreshold, t.smallBoxOverlap)

	t.logger.Debug("tiled faces detected", "frame", frame.Seq(),
		"raw", len(group), "merged", len(merged))

	return merged, nil
}

// mergeClusters picks one box per cluster of overlapping detections, the box
// with the largest area (tie break on confidence).  Boxes join a cluster when
// their IoU exceeds iouThreshold or when more than smallBoxOverlap of their
// area is covered by the cluster's first box.  Detections must be sorted by
// descending confidence.
func mergeClusters(dets []tracker.Detection, iouThreshold,
	smallBoxOverlap float32) []tracker.Detection {

	n := len(dets)
	suppressed := make([]bool, n)
	keep := make([]tracker.Detection, 0, n)

	for i, base := range dets {
		if suppressed[i] {
			continue
		}

		cluster := []tracker.Detection{base}
		suppressed[i] = true

		for j := i + 1; j < n; j++ {
			if suppressed[j] {
				continue
			}

			other := dets[j]
			inCluster := base.Box.IoU(other.Box) > iouThreshold

			if !inCluster {
				// small box overlap test
				area := other.Box.Area()
				inCluster = area > 0 &&
					base.Box.IntersectionArea(other.Box)/area > smallBoxOverlap
			}

			if !inCluster {
				continue
			}

			suppressed[j] = true
			cluster = append(cluster, other)
		}

		best := cluster[0]

		for _, c := range cluster[1:] {
			a, b := c.Box.Area(), best.Box.Area()

			if a > b || (a == b && c.Confidence > best.Confidence) {
				best = c
			}
		}

		keep = append(keep, best)
	}

	return keep
}
