package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of indirect bounces.
	NumBounces uint32

	// Apply russian roulette path elimination after this many bounces; a
	// zero value disables roulette entirely.
	MinBouncesForRR uint32

	// Number of samples accumulated per pixel per frame.
	SamplesPerPixel uint32

	// Exposure for tonemapping.
	Exposure float32

	// Base seed for the per-pixel generators. Renders with equal seed,
	// frame count and resolution are bit-identical.
	Seed uint32

	// Tracer pool configuration. NumTracers controls how many block-level
	// tracers share the frame; NumWorkers caps the goroutines per tracer
	// (0 selects all logical cores).
	NumTracers int
	NumWorkers int

	// Disable the biased environment term in medium sampling.
	NoMediumEnvBias bool
}

// Fill in defaults for unset fields.
func (o *Options) normalize() {
	if o.FrameW == 0 {
		o.FrameW = 512
	}
	if o.FrameH == 0 {
		o.FrameH = 512
	}
	if o.NumBounces == 0 {
		o.NumBounces = 5
	}
	if o.SamplesPerPixel == 0 {
		o.SamplesPerPixel = 1
	}
	if o.Exposure == 0 {
		o.Exposure = 1.0
	}
	if o.NumTracers <= 0 {
		o.NumTracers = 1
	}
}
