// Package scene drives the dual-ring visualization: a fixed-rate frame
// loop that pulls spectra from the audio engine and applies one mapper
// pass per frame.
package scene

import (
	"log/slog"
	"sync"
	"time"

	"github.com/stellarsound/ringlight/internal/ring"
)

// DataSource supplies the per-frame spectra. The audio engine implements
// it; tests substitute fixed arrays.
type DataSource interface {
	// VocalData returns the vocal spectrum snapshot (empty when inactive)
	VocalData() []float64

	// InstrumentalData returns the instrumental spectrum snapshot
	InstrumentalData() []float64
}

// Config controls ring geometry and the frame loop.
type Config struct {
	// InnerSegments is the segment count of the inner (vocal) ring
	InnerSegments int

	// OuterSegments is the segment count of the outer (instrumental) ring
	OuterSegments int

	// InnerRadius is the inner ring radius in scene units
	InnerRadius float64

	// OuterRadius is the outer ring radius in scene units
	OuterRadius float64

	// FrameRate is the target frames per second of the loop
	FrameRate int

	// Mapper configures the deformation mapping
	Mapper ring.Config
}

// DefaultConfig returns the standard scene: two 512-segment rings at radii
// 14 and 20, driven at 60 frames per second.
func DefaultConfig() Config {
	return Config{
		InnerSegments: 512,
		OuterSegments: 512,
		InnerRadius:   14,
		OuterRadius:   20,
		FrameRate:     60,
		Mapper:        ring.DefaultConfig(),
	}
}

// Driver owns the two rings and the frame loop. Frames run on a dedicated
// goroutine between Start and Stop; Step is the synchronous single-frame
// path used by tests and external render loops.
type Driver struct {
	logger *slog.Logger
	cfg    Config
	source DataSource

	mu      sync.RWMutex
	inner   []*ring.Segment
	outer   []*ring.Segment
	frames  uint64
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewDriver builds the rings and prepares the frame loop. The loop does
// not run until Start.
func NewDriver(logger *slog.Logger, cfg Config, source DataSource) *Driver {
	return &Driver{
		logger: logger,
		cfg:    cfg,
		source: source,
		inner:  ring.BuildRing(cfg.InnerSegments, float32(cfg.InnerRadius)),
		outer:  ring.BuildRing(cfg.OuterSegments, float32(cfg.OuterRadius)),
	}
}

// Start launches the frame loop. Calling Start on a running driver is a
// no-op.
func (d *Driver) Start() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.stop = make(chan struct{})
	stop := d.stop
	d.mu.Unlock()

	interval := time.Second / time.Duration(d.cfg.FrameRate)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		start := time.Now()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				d.Step(float64(now.Sub(start)) / float64(time.Millisecond))
			}
		}
	}()

	d.logger.Debug("scene driver started",
		slog.Int("inner_segments", d.cfg.InnerSegments),
		slog.Int("outer_segments", d.cfg.OuterSegments),
		slog.Int("frame_rate", d.cfg.FrameRate))
}

// Stop halts the frame loop and waits for the in-flight frame to finish.
// Idempotent.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stop)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Debug("scene driver stopped")
}

// Running reports whether the frame loop is active.
func (d *Driver) Running() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// Step applies one frame of deformation at the given elapsed-milliseconds
// time sample. Safe to call concurrently with the frame loop, though the
// usual arrangement is one or the other.
func (d *Driver) Step(elapsedMs float64) {
	vocal := d.source.VocalData()
	instrumental := d.source.InstrumentalData()

	d.mu.Lock()
	ring.AnimateDualRing(d.inner, d.outer, vocal, instrumental, elapsedMs, d.cfg.Mapper)
	d.frames++
	d.mu.Unlock()
}

// Frames returns the number of frames applied so far.
func (d *Driver) Frames() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frames
}

// Snapshot returns value copies of both rings for rendering or inspection.
// Mutating the returned slices does not affect the live scene.
func (d *Driver) Snapshot() (inner, outer []ring.Segment) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	inner = make([]ring.Segment, len(d.inner))
	for i, seg := range d.inner {
		inner[i] = *seg
	}
	outer = make([]ring.Segment, len(d.outer))
	for i, seg := range d.outer {
		outer[i] = *seg
	}
	return inner, outer
}
