package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/borealis-render/borealis/renderer"
	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func rendererOptions(ctx *cli.Context) renderer.Options {
	opts := renderer.Options{
		FrameW:          uint32(ctx.Int("width")),
		FrameH:          uint32(ctx.Int("height")),
		SamplesPerPixel: uint32(ctx.Int("spp")),
		Exposure:        float32(ctx.Float64("exposure")),
		NumBounces:      uint32(ctx.Int("num-bounces")),
		MinBouncesForRR: uint32(ctx.Int("rr-bounces")),
		Seed:            uint32(ctx.Int("seed")),
		NumTracers:      ctx.Int("num-tracers"),
		NumWorkers:      ctx.Int("num-workers"),
		NoMediumEnvBias: ctx.Bool("no-medium-env-bias"),
	}

	if opts.MinBouncesForRR >= opts.NumBounces {
		logger.Notice("disabling RR for path elimination")
		opts.MinBouncesForRR = 0
	}

	return opts
}

func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing scene preset argument")
	}
	return scene.NewPreset(ctx.Args().First())
}

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := rendererOptions(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(sc, tracer.NewNaiveScheduler(), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	start := time.Now()
	if err = r.Render(); err != nil {
		return err
	}
	logger.Noticef("rendered frame in %d ms", time.Since(start).Nanoseconds()/1e6)

	imgFile := ctx.String("out")
	if err = r.SaveFrame(imgFile); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", imgFile)

	displayFrameStats(r.Stats())
	return nil
}

// Use opengl to render a continuously updating view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	// The opengl context must stay on the main thread.
	runtime.LockOSThread()

	opts := rendererOptions(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}
	sc.Camera.InvertY = true
	sc.Camera.Update()

	r, err := renderer.NewInteractive(sc, tracer.NewPerfectScheduler(), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Render()
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Primary", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
