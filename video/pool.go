package video

import (
	"sync"

	"gocv.io/x/gocv"
)

// MatPool is a simple pool of image Mats reused between decoded frames to
// avoid allocating a new C buffer for every frame
type MatPool struct {
	// pool of mats
	mats chan gocv.Mat
	// size of pool
	size   int
	mu     sync.Mutex
	closed bool
}

// NewMatPool creates a new Mat pool holding up to size idle Mats
func NewMatPool(size int) *MatPool {

	if size < 1 {
		size = 1
	}

	return &MatPool{
		mats: make(chan gocv.Mat, size),
		size: size,
	}
}

// Get a Mat from the pool, a new one is created when the pool is empty
func (p *MatPool) Get() gocv.Mat {
	select {
	case mat, ok := <-p.mats:
		if ok {
			return mat
		}
	default:
	}

	return gocv.NewMat()
}

// Return a Mat to the pool
func (p *MatPool) Return(mat gocv.Mat) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = mat.Close()
		return
	}

	select {
	case p.mats <- mat:
	default:
		// pool is full
		_ = mat.Close()
	}
}

// Idle returns the number of Mats waiting in the pool
func (p *MatPool) Idle() int {
	return len(p.mats)
}

// Close the pool and all Mats in it
func (p *MatPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	close(p.mats)

	for next := range p.mats {
		_ = next.Close()
	}
}
