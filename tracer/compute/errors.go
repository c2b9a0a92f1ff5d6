package compute

import "errors"

var (
	ErrNoSceneData       = errors.New("compute tracer: no scene data uploaded")
	ErrInvalidFrameDims  = errors.New("compute tracer: invalid frame dimensions")
	ErrInvalidBufferSize = errors.New("compute tracer: accumulation/frame buffer too small for frame dimensions")
)
