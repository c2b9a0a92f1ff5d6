package compute

// Per-path xorshift generator. Each pixel owns exactly one instance per
// sample pass, seeded from a hash of the frame seed and the pixel index so
// that repeated renders of the same frame are bit-identical.
type rng struct {
	state uint32
}

func newRNG(seed, pixelIdx uint32) rng {
	state := wangHash(seed + pixelIdx*0x9e3779b9)
	if state == 0 {
		state = 0x6b7d3c21
	}
	return rng{state: state}
}

func wangHash(v uint32) uint32 {
	v = (v ^ 61) ^ (v >> 16)
	v *= 9
	v = v ^ (v >> 4)
	v *= 0x27d4eb2d
	v = v ^ (v >> 15)
	return v
}

func (r *rng) next() uint32 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 17
	r.state ^= r.state << 5
	return r.state
}

// Float returns a uniform variate in [0, 1).
func (r *rng) Float() float32 {
	return float32(r.next()>>8) / float32(1<<24)
}

// Pick a uniform integer in [0, n).
func (r *rng) Intn(n int) int {
	idx := int(r.Float() * float32(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}
