package main

import (
	"os"

	"github.com/borealis-render/borealis/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	renderFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: 16,
			Usage: "samples per pixel",
		},
		cli.IntFlag{
			Name:  "num-bounces",
			Value: 5,
			Usage: "number of indirect bounces",
		},
		cli.IntFlag{
			Name:  "rr-bounces",
			Value: 3,
			Usage: "min bounces before applying russian roulette; set >= num-bounces to disable",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.IntFlag{
			Name:  "seed",
			Value: 1,
			Usage: "base seed for the per-pixel generators",
		},
		cli.IntFlag{
			Name:  "num-tracers",
			Value: 1,
			Usage: "number of block tracers sharing the frame",
		},
		cli.IntFlag{
			Name:  "num-workers",
			Value: 0,
			Usage: "worker goroutines per tracer (0 = all logical cores)",
		},
		cli.BoolFlag{
			Name:  "no-medium-env-bias",
			Usage: "disable the biased environment term in medium sampling",
		},
	}

	app := cli.NewApp()
	app.Name = "borealis"
	app.Usage = "render scenes using path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-presets",
			Usage:  "list the built-in scene presets",
			Action: cmd.ListPresets,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame of a built-in preset and save it as PNG.`,
					ArgsUsage:   "preset",
					Flags: append([]cli.Flag{
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, renderFlags...),
					Action: cmd.RenderFrame,
				},
				{
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Progressively render a built-in preset into an opengl window.`,
					ArgsUsage:   "preset",
					Flags:       renderFlags,
					Action:      cmd.RenderInteractive,
				},
			},
		},
	}

	app.Run(os.Args)
}
