package scene

import (
	"math"

	"github.com/borealis-render/borealis/types"
)

// AirMedium is the sentinel id for paths travelling outside any volume.
const AirMedium int32 = -1

// A homogeneous participating medium. Coefficients are per color channel;
// the phase function asymmetry g lies in [-1,1]. Media are immutable once
// compiled into a scene and referenced by id from paths and materials.
type Medium struct {
	// Scattering coefficient (sigma_s).
	Scattering types.Vec3

	// Absorption coefficient (sigma_a).
	Absorption types.Vec3

	// Henyey-Greenstein asymmetry parameter.
	G float32
}

// Extinction returns sigma_s + sigma_a.
func (m *Medium) Extinction() types.Vec3 {
	return m.Scattering.Add(m.Absorption)
}

// Albedo returns the single-scattering albedo sigma_s / sigma_t.
func (m *Medium) Albedo() types.Vec3 {
	var out types.Vec3
	for i := 0; i < 3; i++ {
		t := m.Scattering[i] + m.Absorption[i]
		if t > 0 {
			out[i] = m.Scattering[i] / t
		}
	}
	return out
}

// DiffusionProfile importance-samples exit radii for subsurface probing.
// Implementations are opaque to the kernels; they only draw radii and bound
// the probe extent.
type DiffusionProfile interface {
	// Draw an exit radius for one color channel from a uniform variate.
	SampleRadius(channel int, u float32) float32

	// Density of SampleRadius at a given radius.
	RadiusPdf(channel int, r float32) float32

	// The largest radius the profile can produce.
	MaxRadius() float32
}

// ExpDipoleProfile is the closed-form exponential falloff derived from the
// dipole diffusion approximation: radii distribute as exp(-sigma_tr*r) per
// channel, truncated at RMax.
type ExpDipoleProfile struct {
	// Effective transport coefficient per channel.
	SigmaTr types.Vec3

	RMax float32
}

// Derive a dipole profile from a medium's coefficients.
func NewDipoleProfile(med *Medium) *ExpDipoleProfile {
	var tr types.Vec3
	var minTr float32 = math.MaxFloat32
	for i := 0; i < 3; i++ {
		sigmaSPrime := med.Scattering[i] * (1.0 - med.G)
		sigmaTPrime := sigmaSPrime + med.Absorption[i]
		tr[i] = float32(math.Sqrt(float64(3.0 * med.Absorption[i] * sigmaTPrime)))
		if tr[i] > 0 && tr[i] < minTr {
			minTr = tr[i]
		}
	}

	// Truncate where the falloff has decayed to ~e^-10 on the widest channel.
	rMax := float32(10.0)
	if minTr > 0 && minTr != math.MaxFloat32 {
		rMax = 10.0 / minTr
	}
	return &ExpDipoleProfile{SigmaTr: tr, RMax: rMax}
}

func (p *ExpDipoleProfile) SampleRadius(channel int, u float32) float32 {
	tr := p.SigmaTr[channel]
	if tr <= 0 {
		return p.RMax
	}
	r := float32(-math.Log(float64(1.0-u))) / tr
	if r > p.RMax {
		r = p.RMax
	}
	return r
}

func (p *ExpDipoleProfile) RadiusPdf(channel int, r float32) float32 {
	tr := p.SigmaTr[channel]
	if tr <= 0 || r < 0 || r > p.RMax {
		return 0
	}
	// Normalize for the truncation at RMax.
	norm := 1.0 - float32(math.Exp(float64(-tr*p.RMax)))
	if norm <= 0 {
		return 0
	}
	return tr * float32(math.Exp(float64(-tr*r))) / norm
}

func (p *ExpDipoleProfile) MaxRadius() float32 {
	return p.RMax
}
