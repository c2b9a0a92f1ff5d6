package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/borealis-render/borealis/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the built-in scene presets and their contents.
func ListPresets(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Preset", "Triangles", "Materials", "Media"})
	for _, name := range scene.Presets() {
		sc, err := scene.NewPreset(name)
		if err != nil {
			return err
		}
		table.Append([]string{
			name,
			fmt.Sprintf("%d", sc.TriangleCount()),
			fmt.Sprintf("%d", len(sc.Materials)),
			fmt.Sprintf("%d", len(sc.Media)),
		})
	}

	table.Render()
	logger.Noticef("available presets (%d logical cores for tracing)\n%s", runtime.NumCPU(), buf.String())
	return nil
}
