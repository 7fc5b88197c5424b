package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/swdee/go-facetrack"
	"github.com/swdee/go-facetrack/affinity"
	"github.com/swdee/go-facetrack/config"
	"github.com/swdee/go-facetrack/detect"
	"github.com/swdee/go-facetrack/tracker"
	"github.com/swdee/go-facetrack/video"
	"gocv.io/x/gocv"
)

// Demo defines the struct for running the face tracking stream demo
type Demo struct {
	// vidBuffer buffers the video frames into memory
	vidBuffer []*video.Frame
	// detector is shared by all client streams
	detector detect.Detector
	cfg      *config.Config
	logger   *slog.Logger
	// interval between frames when streaming
	interval time.Duration
}

// NewDemo returns an instance of Demo, a streaming HTTP server showing video
// with tracked faces
func NewDemo(vidFile string, cfg *config.Config, logger *slog.Logger) (*Demo, error) {

	d := &Demo{
		cfg:    cfg,
		logger: logger,
	}

	fps, err := d.bufferVideo(vidFile)

	if err != nil {
		return nil, fmt.Errorf("Error buffering video: %w", err)
	}

	if len(d.vidBuffer) == 0 {
		return nil, fmt.Errorf("Video %s has no frames", vidFile)
	}

	d.interval = time.Duration(float64(time.Second) / fps)

	d.detector, err = facetrack.NewDetector(cfg, logger)

	if err != nil {
		return nil, err
	}

	return d, nil
}

// bufferVideo reads in the video frames and saves them to a buffer, the
// frame rate frames are read at is returned
func (d *Demo) bufferVideo(vidFile string) (float64, error) {

	reader, err := video.Open(vidFile, video.Options{
		FPS:      d.cfg.FPS,
		OffsetMs: d.cfg.OffsetMs,
		Logger:   d.logger,
	})

	if err != nil {
		return 0, err
	}

	defer reader.Close()

	for {
		frame, err := reader.Next()

		if err == io.EOF {
			break
		}

		if err != nil {
			return 0, err
		}

		// frames are kept so are never released back to the reader
		d.vidBuffer = append(d.vidBuffer, frame)
	}

	fps := reader.FPS()

	if fps <= 0 {
		fps = 30
	}

	return fps, nil
}

// Close frees the video buffer and detector
func (d *Demo) Close() {
	for _, frame := range d.vidBuffer {
		mat := frame.Mat()
		mat.Close()
	}

	d.detector.Close()
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	log.Printf("New client connection established\n")

	// each client gets its own tracks as the scheduler keeps state between
	// frames
	sched, err := facetrack.NewScheduler(d.cfg, d.detector, d.logger)

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	defer sched.Registry().Close()

	drawer := facetrack.NewDrawer(d.cfg.TrailSize)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	// create Mat for annotated image
	resImg := gocv.NewMat()
	defer resImg.Close()

	// pointer to position in video buffer
	frameNum := -1

	// used for calculating FPS
	frameCount := 0
	startTime := time.Now()
	fps := float64(0)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected\n")
			break loop

		case <-ticker.C:

			frameNum++
			if frameNum > len(d.vidBuffer)-1 {
				// last frame reached so loop back to start of video and
				// clear tracks
				frameNum = 0
				sched.Reset()
				drawer.Reset()
			}

			buf, err := d.processFrame(r.Context(), d.vidBuffer[frameNum],
				sched, drawer, &resImg, fps)

			if err != nil {
				log.Printf("Error occured during processFrame: %v", err)
				continue
			}

			// Write the image to the response writer
			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
			w.Write(buf.GetBytes())
			w.Write([]byte("\r\n"))

			// Flush the buffer
			flusher, ok := w.(http.Flusher)
			if ok {
				flusher.Flush()
			}

			buf.Close()

			// calculate FPS
			frameCount++
			elapsed := time.Since(startTime).Seconds()

			if elapsed >= 1.0 {
				fps = float64(frameCount) / elapsed
				frameCount = 0
				startTime = time.Now()
			}
		}
	}
}

// processFrame tracks faces on the frame, annotates a copy of it and returns
// the result encoded as a JPG file
func (d *Demo) processFrame(ctx context.Context, frame *video.Frame,
	sched *tracker.Scheduler, drawer *facetrack.Drawer, resImg *gocv.Mat,
	fps float64) (*gocv.NativeByteBuffer, error) {

	start := time.Now()

	results, err := sched.Process(ctx, frame)

	if err != nil {
		// tracks are still returned when detection fails
		log.Printf("Error tracking faces: %v", err)
	}

	trackTime := time.Since(start)

	// copy the source image and annotate the copy
	src := frame.Mat()
	src.CopyTo(resImg)

	drawer.Draw(resImg, frame, results,
		fmt.Sprintf("FPS: %.2f, Tracking: %.2fms, Tracks: %d, Detection Cycles: %d",
			fps, float32(trackTime)/float32(time.Millisecond),
			sched.Registry().NextID(), sched.DetectionCycles()),
	)

	// Encode the image to JPEG format
	return gocv.IMEncode(".jpg", *resImg)
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags, all other settings come from FACETRACK_ environment
	// variables
	vidFile := flag.String("v", "../data/face.mp4", "Video file to run face tracking on")
	httpAddr := flag.String("a", "localhost:8080", "HTTP Address to run server on, format address:port")

	flag.Parse()

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}

	if cfg.CPUCores != "" {
		if err := affinity.SetCores(cfg.CPUCores); err != nil {
			log.Printf("Failed to set CPU Affinity: %v", err)
		}
	}

	demo, err := NewDemo(*vidFile, cfg, logger)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	defer demo.Close()

	http.HandleFunc("/stream", demo.Stream)

	// start http server
	log.Printf("Open browser and view video at http://%s/stream\n", *httpAddr)
	log.Fatal(http.ListenAndServe(*httpAddr, nil))
}
