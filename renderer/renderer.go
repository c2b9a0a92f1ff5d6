package renderer

type Renderer interface {
	// Render frame.
	Render() error

	// Write the current tone-mapped frame to a PNG file.
	SaveFrame(path string) error

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
