package compute

import (
	"math"

	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

// Weight of the biased environment contribution added on every medium
// interaction when enabled.
const mediumEnvWeight = 0.05

// Sample a free-flight distance through a homogeneous medium along the ray.
// When the sampled distance falls short of the surface at tSurface, the path
// scatters in-medium: throughput picks up the single-scattering albedo and a
// new direction is drawn from the phase function; the returned flag is true
// and the returned origin/direction replace the ray. Otherwise the ray
// reaches the surface unchanged.
//
// Independently of the outcome, a small fixed-weight environment lookup in a
// uniform random direction is added to the radiance estimate. This is a
// deliberate bias that brightens volumes far beyond what unbiased single
// scattering would resolve at low sample counts; it can be switched off via
// the MediumEnvBias parameter.
func (k *kernel) sampleMedium(med *scene.Medium, origin, dir types.Vec3, tSurface float32, beta *types.Vec3, radiance *types.Vec3, r *rng) (types.Vec3, types.Vec3, bool) {
	if k.params.MediumEnvBias && k.sc.EnvMap != nil {
		envDir := uniformSphere(r.Float(), r.Float())
		*radiance = radiance.Add(beta.MulVec(k.sc.EnvMap.SampleDir(envDir)).Mul(mediumEnvWeight))
	}

	ch := r.Intn(3)
	sigmaT := med.Extinction()[ch]
	if sigmaT <= 0 {
		return origin, dir, false
	}

	dist := -float32(math.Log(float64(1.0-r.Float()))) / sigmaT
	if dist >= tSurface {
		return origin, dir, false
	}

	point := origin.Add(dir.Mul(dist))
	*beta = beta.MulVec(med.Albedo())
	return point, sampleHG(dir, med.G, r.Float(), r.Float()), true
}

// Henyey-Greenstein phase function sampling around the current direction.
func sampleHG(dir types.Vec3, g, u1, u2 float32) types.Vec3 {
	var cosT float32
	if g > -1e-3 && g < 1e-3 {
		cosT = 1.0 - 2.0*u1
	} else {
		sq := (1.0 - g*g) / (1.0 - g + 2.0*g*u1)
		cosT = (1.0 + g*g - sq*sq) / (2.0 * g)
	}

	sinT := sqrt32(1.0 - cosT*cosT)
	phi := 2.0 * math.Pi * float64(u2)
	t1, t2 := buildFrame(dir)
	return t1.Mul(sinT * float32(math.Cos(phi))).
		Add(t2.Mul(sinT * float32(math.Sin(phi)))).
		Add(dir.Mul(cosT)).
		Normalize()
}

func uniformSphere(u1, u2 float32) types.Vec3 {
	z := 1.0 - 2.0*u1
	rad := sqrt32(1.0 - z*z)
	phi := 2.0 * math.Pi * float64(u2)
	return types.Vec3{rad * float32(math.Cos(phi)), rad * float32(math.Sin(phi)), z}
}
