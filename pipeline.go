package facetrack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/swdee/go-facetrack/preprocess"
	"github.com/swdee/go-facetrack/report"
	"github.com/swdee/go-facetrack/tracker"
	"github.com/swdee/go-facetrack/video"
)

// Source provides the frames of a video in order
type Source interface {
	// Next returns the next frame or io.EOF at the end of the video
	Next() (*video.Frame, error)
	// Release hands a frame back once processed
	Release(frame *video.Frame)
}

// Annotator receives every frame with its tracking results, eg: to render an
// annotated video
type Annotator interface {
	Annotate(frame *video.Frame, results []tracker.Result) error
}

// Stats summarise a pipeline run
type Stats struct {
	// Frames is the number of frames processed
	Frames int
	// DetectionCycles is the number of frames the detector ran on
	DetectionCycles int
	// DetectErrors is the number of failed detection cycles
	DetectErrors int
	// Tracks is the number of face tracks created
	Tracks int
	// Rows is the number of result rows written
	Rows    int
	Elapsed time.Duration
}

// Pipeline tracks faces through every frame of a source and writes the
// results to its sinks
type Pipeline struct {
	source    Source
	scheduler *tracker.Scheduler
	sinks     []report.Sink
	roi       *preprocess.ROI
	annotator Annotator
	logger    *slog.Logger
}

// Option configures a Pipeline
type Option func(p *Pipeline)

// WithSinks adds sinks receiving the result rows of every frame
func WithSinks(sinks ...report.Sink) Option {
	return func(p *Pipeline) {
		p.sinks = append(p.sinks, sinks...)
	}
}

// WithROI reports face boxes as the face region given by roi instead of the
// tracked box
func WithROI(roi preprocess.ROI) Option {
	return func(p *Pipeline) {
		p.roi = &roi
	}
}

// WithAnnotator sets the frame annotator
func WithAnnotator(a Annotator) Option {
	return func(p *Pipeline) {
		p.annotator = a
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline returns a pipeline tracking faces of source with scheduler
func NewPipeline(source Source, scheduler *tracker.Scheduler, opts ...Option) *Pipeline {

	p := &Pipeline{
		source:    source,
		scheduler: scheduler,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run processes frames until the end of the source or until ctx is
// cancelled.  Detection failures are logged and tracking continues, failures
// reading frames, creating trackers or writing results stop the run.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {

	stats := Stats{}
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			p.finish(&stats, start)
			return stats, err
		}

		frame, err := p.source.Next()

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			p.finish(&stats, start)
			return stats, fmt.Errorf("error reading frame: %w", err)
		}

		err = p.processFrame(ctx, frame, &stats)
		p.source.Release(frame)

		if err != nil {
			p.finish(&stats, start)
			return stats, err
		}
	}

	p.finish(&stats, start)

	p.logger.Info("tracking finished", "frames", stats.Frames,
		"detection_cycles", stats.DetectionCycles, "tracks", stats.Tracks,
		"rows", stats.Rows)

	return stats, nil
}

// finish fills in the totals kept by the scheduler
func (p *Pipeline) finish(stats *Stats, start time.Time) {
	stats.Elapsed = time.Since(start)
	stats.DetectionCycles = p.scheduler.DetectionCycles()
	stats.Tracks = p.scheduler.Registry().NextID()
}

// processFrame tracks faces on one frame and hands the results on
func (p *Pipeline) processFrame(ctx context.Context, frame *video.Frame, stats *Stats) error {

	results, err := p.scheduler.Process(ctx, frame)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if !errors.Is(err, tracker.ErrDetection) {
			return fmt.Errorf("error tracking frame %d: %w", frame.Index(), err)
		}

		stats.DetectErrors++
		p.logger.Warn("detection failed", "frame", frame.Index(), "error", err)
	}

	stats.Frames++

	if len(p.sinks) > 0 {
		rows := report.FromResults(frame.Index(), frame.TimeMs(), p.reported(frame, results))

		for _, sink := range p.sinks {
			if err := sink.WriteRows(ctx, rows); err != nil {
				return fmt.Errorf("error writing results of frame %d: %w", frame.Index(), err)
			}
		}

		stats.Rows += len(rows)
	}

	if p.annotator != nil {
		if err := p.annotator.Annotate(frame, results); err != nil {
			return fmt.Errorf("error annotating frame %d: %w", frame.Index(), err)
		}
	}

	return nil
}

// reported returns the results with boxes converted to the reported face
// region
func (p *Pipeline) reported(frame *video.Frame, results []tracker.Result) []tracker.Result {

	if p.roi == nil {
		return results
	}

	height, width := frame.Size()
	out := make([]tracker.Result, len(results))

	for i, res := range results {
		res.Box = p.roi.Box(res.Box, height, width)
		out[i] = res
	}

	return out
}
