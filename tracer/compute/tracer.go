package compute

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/borealis-render/borealis/log"
	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/tracer"
	"github.com/borealis-render/borealis/types"
)

// A pure Go tracer that renders blocks on a pool of worker goroutines. Every
// pixel is traced independently with its own deterministic generator, so two
// renders with identical seed and frame count are bit-identical.
type computeTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	id         string
	numWorkers int

	kernel *kernel

	frameW      uint32
	frameH      uint32
	accumBuffer []float32
	frameBuffer []uint8

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.ChangeType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered frame.
	stats *tracer.Stats
}

// Create a new compute tracer. A non-positive worker count selects one
// worker per logical core.
func NewTracer(id string, numWorkers int, params Params) tracer.Tracer {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &computeTracer{
		logger:       log.New(fmt.Sprintf("compute tracer (%s)", id)),
		id:           id,
		numWorkers:   numWorkers,
		kernel:       &kernel{params: params},
		updateBuffer: make(map[tracer.ChangeType]interface{}),
		blockReqChan: make(chan tracer.BlockRequest, 1),
		stats:        &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *computeTracer) Id() string {
	return tr.id
}

// Get the computation speed estimate.
func (tr *computeTracer) SpeedEstimate() float32 {
	return float32(tr.numWorkers)
}

// Setup the tracer.
func (tr *computeTracer) Setup(frameW, frameH uint32, accumBuffer []float32, frameBuffer []uint8) error {
	tr.Lock()
	defer tr.Unlock()

	if frameW == 0 || frameH == 0 {
		return ErrInvalidFrameDims
	}
	pixels := int(frameW * frameH)
	if len(accumBuffer) < pixels*3 || len(frameBuffer) < pixels*4 {
		return ErrInvalidBufferSize
	}

	tr.frameW = frameW
	tr.frameH = frameH
	tr.accumBuffer = accumBuffer
	tr.frameBuffer = frameBuffer

	if tr.closeChan == nil {
		tr.startWorker()
	}
	return nil
}

// Shutdown and cleanup tracer.
func (tr *computeTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
	}
}

// Enqueue block request.
func (tr *computeTracer) Enqueue(blockReq tracer.BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		// drop the request if worker is not listening
		tr.logger.Error("request processor did not receive block request")
	}
}

// Append a change to the tracer's update buffer.
func (tr *computeTracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	tr.updateBuffer[changeType] = data
}

// Apply all pending changes from the update buffer.
func (tr *computeTracer) ApplyPendingChanges() error {
	for changeType, data := range tr.updateBuffer {
		switch changeType {
		case tracer.UpdateScene:
			tr.kernel.sc = data.(*scene.Scene)
		case tracer.UpdateCamera:
			if tr.kernel.sc == nil {
				return ErrNoSceneData
			}
			tr.kernel.sc.Camera = data.(*scene.Camera)
		default:
			return fmt.Errorf("compute tracer: unsupported change type %d", changeType)
		}
	}

	tr.updateBuffer = make(map[tracer.ChangeType]interface{})
	return nil
}

// Retrieve last frame statistics.
func (tr *computeTracer) Stats() *tracer.Stats {
	return tr.stats
}

// Spawn a go-routine to process block render requests.
func (tr *computeTracer) startWorker() {
	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		close(readyChan)
		for {
			select {
			case blockReq := <-tr.blockReqChan:
				if len(tr.updateBuffer) != 0 {
					if err := tr.ApplyPendingChanges(); err != nil {
						blockReq.ErrChan <- err
						continue
					}
				}

				startTime := time.Now()
				if err := tr.renderBlock(&blockReq); err != nil {
					blockReq.ErrChan <- err
					continue
				}

				tr.stats.BlockH = blockReq.BlockH
				tr.stats.BlockTime = time.Since(startTime).Nanoseconds()

				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				// Ack close
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render a block by fanning its rows out to the worker pool.
func (tr *computeTracer) renderBlock(blockReq *tracer.BlockRequest) error {
	if tr.kernel.sc == nil || tr.kernel.sc.Camera == nil {
		return ErrNoSceneData
	}

	spp := blockReq.SamplesPerPixel
	if spp == 0 {
		spp = 1
	}

	rowChan := make(chan uint32, blockReq.BlockH)
	for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
		rowChan <- y
	}
	close(rowChan)

	var wg sync.WaitGroup
	for worker := 0; worker < tr.numWorkers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rowChan {
				tr.renderRow(y, spp, blockReq)
			}
		}()
	}
	wg.Wait()

	if dropped := tr.kernel.drainStackOverflows(); dropped > 0 {
		tr.logger.Warningf("traversal stack saturated %d times; parts of the scene may be missing", dropped)
	}
	return nil
}

func (tr *computeTracer) renderRow(y, spp uint32, blockReq *tracer.BlockRequest) {
	camera := tr.kernel.sc.Camera
	accumScale := 1.0 / float32((blockReq.FrameCount+1)*spp)

	for x := uint32(0); x < tr.frameW; x++ {
		pixelIdx := y*tr.frameW + x
		r := newRNG(blockReq.Seed+blockReq.FrameCount*0x85ebca6b, pixelIdx)

		var sum types.Vec3
		for s := uint32(0); s < spp; s++ {
			origin, dir := camera.PrimaryRay(x, y, tr.frameW, tr.frameH, r.Float(), r.Float(), r.Float(), r.Float())
			sum = sum.Add(tr.kernel.li(origin, dir, &r))
		}

		accumIdx := int(pixelIdx) * 3
		frameIdx := int(pixelIdx) * 4
		for c := 0; c < 3; c++ {
			tr.accumBuffer[accumIdx+c] += sum[c]
		}
		for c := 0; c < 3; c++ {
			v := tr.accumBuffer[accumIdx+c] * accumScale * blockReq.Exposure
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			v = float32(math.Pow(float64(v), 1.0/2.2))
			tr.frameBuffer[frameIdx+c] = uint8(v*255.0 + 0.5)
		}
		tr.frameBuffer[frameIdx+3] = 255
	}
}
