package renderer

import (
	"image"
	"image/png"
	"os"
	"strconv"
	"time"

	"github.com/borealis-render/borealis/log"
	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/tracer"
	"github.com/borealis-render/borealis/tracer/compute"
)

// The default renderer splits each frame into row blocks, assigns them to
// the attached tracers via a block scheduler and accumulates results into a
// shared progressive buffer. All tracers write disjoint rows so no
// synchronization beyond the completion channels is needed.
type defaultRenderer struct {
	logger  log.Logger
	options Options

	sc        *scene.Scene
	tracers   []tracer.Tracer
	scheduler tracer.BlockScheduler

	accumBuffer []float32
	frameBuffer []uint8

	frameCount       uint32
	blockAssignments []uint32

	doneChan chan uint32
	errChan  chan error

	stats FrameStats
}

// Create a new default renderer for a compiled scene.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	opts.normalize()

	r := &defaultRenderer{
		logger:      log.New("renderer"),
		options:     opts,
		sc:          sc,
		scheduler:   scheduler,
		accumBuffer: make([]float32, opts.FrameW*opts.FrameH*3),
		frameBuffer: make([]uint8, opts.FrameW*opts.FrameH*4),
		doneChan:    make(chan uint32, opts.NumTracers),
		errChan:     make(chan error, opts.NumTracers),
	}

	params := compute.Params{
		MaxBounces:      opts.NumBounces,
		RussianRoulette: opts.MinBouncesForRR > 0,
		MinBouncesForRR: opts.MinBouncesForRR,
		MediumEnvBias:   !opts.NoMediumEnvBias,
	}

	for i := 0; i < opts.NumTracers; i++ {
		tr := compute.NewTracer("compute-"+strconv.Itoa(i), opts.NumWorkers, params)
		if err := tr.Setup(opts.FrameW, opts.FrameH, r.accumBuffer, r.frameBuffer); err != nil {
			r.Close()
			return nil, err
		}
		tr.AppendChange(tracer.UpdateScene, sc)
		r.tracers = append(r.tracers, tr)
	}
	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	return r, nil
}

// Render one accumulation pass over the whole frame.
func (r *defaultRenderer) Render() error {
	err := r.renderFrame(r.frameCount)
	if err != nil {
		return err
	}
	r.frameCount++
	return nil
}

func (r *defaultRenderer) renderFrame(frameCount uint32) error {
	start := time.Now()
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	var blockY uint32
	for idx, tr := range r.tracers {
		tr.Enqueue(tracer.BlockRequest{
			BlockY:          blockY,
			BlockH:          r.blockAssignments[idx],
			SamplesPerPixel: r.options.SamplesPerPixel,
			Exposure:        r.options.Exposure,
			Seed:            r.options.Seed,
			FrameCount:      frameCount,
			DoneChan:        r.doneChan,
			ErrChan:         r.errChan,
		})
		blockY += r.blockAssignments[idx]
	}

	var pending = r.options.FrameH
	for pending > 0 {
		select {
		case rows := <-r.doneChan:
			pending -= rows
		case err := <-r.errChan:
			return err
		}
	}

	r.collectStats(time.Since(start))
	return nil
}

func (r *defaultRenderer) collectStats(frameTime time.Duration) {
	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		RenderTime: frameTime,
	}
	for idx, tr := range r.tracers {
		trStats := tr.Stats()
		r.stats.Tracers[idx] = TracerStat{
			Id:           tr.Id(),
			IsPrimary:    idx == 0,
			BlockH:       trStats.BlockH,
			FramePercent: float32(trStats.BlockH) / float32(r.options.FrameH) * 100.0,
			RenderTime:   time.Duration(trStats.BlockTime),
		}
	}
}

// Write the current tone-mapped frame to a PNG file.
func (r *defaultRenderer) SaveFrame(path string) error {
	img := image.NewRGBA(image.Rect(0, 0, int(r.options.FrameW), int(r.options.FrameH)))
	copy(img.Pix, r.frameBuffer)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// Reset progressive accumulation after a scene or camera change.
func (r *defaultRenderer) resetAccumulation() {
	for i := range r.accumBuffer {
		r.accumBuffer[i] = 0
	}
	r.frameCount = 0
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}
