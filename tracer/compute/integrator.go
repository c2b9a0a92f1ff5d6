package compute

import (
	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

// Paths surviving a roulette round are boosted by the inverse of this fixed
// continuation probability to keep the estimator unbiased.
const rrContinueProbability = 0.75

// Params tune the path integrator.
type Params struct {
	// Maximum number of path segments including the primary ray.
	MaxBounces uint32

	// Enable fixed-probability Russian roulette termination after
	// MinBouncesForRR bounces.
	RussianRoulette bool
	MinBouncesForRR uint32

	// Add the fixed-weight environment term on medium interactions. This
	// biases the estimator; disabling it yields slower but unbiased
	// volume convergence.
	MediumEnvBias bool
}

// DefaultParams returns the settings used when the renderer does not
// override them.
func DefaultParams() Params {
	return Params{
		MaxBounces:      5,
		RussianRoulette: false,
		MinBouncesForRR: 3,
		MediumEnvBias:   true,
	}
}

// Estimate the incident radiance along one primary ray. The loop alternates
// traversal, medium sampling and surface scattering until the path escapes,
// hits an emitter, exhausts its bounce allowance or loses the roulette.
func (k *kernel) li(origin, dir types.Vec3, r *rng) types.Vec3 {
	var radiance types.Vec3
	beta := types.Vec3{1, 1, 1}
	medium := scene.AirMedium

	for bounce := uint32(0); bounce < k.params.MaxBounces; bounce++ {
		hit := k.closestHit(origin, dir, tMax)
		if hit.WoopIdx < 0 {
			if k.sc.EnvMap != nil {
				radiance = radiance.Add(beta.MulVec(k.sc.EnvMap.SampleDir(dir)))
			}
			return radiance
		}

		// Volumetric interaction before the surface is reached.
		if medium != scene.AirMedium && int(medium) < len(k.sc.Media) {
			med := &k.sc.Media[medium]
			if p, d, scattered := k.sampleMedium(med, origin, dir, hit.T, &beta, &radiance, r); scattered {
				origin, dir = p, d
				continue
			}
		}

		sd := k.surfaceAt(origin, dir, hit)

		if sd.Material.Type == scene.EmissiveMaterial {
			if dir.Dot(sd.GeoNormal) < 0 {
				radiance = radiance.Add(beta.MulVec(sd.Material.Emissive))
			}
			return radiance
		}

		var ev scatterEvent
		switch sd.Material.Type {
		case scene.DiffuseMaterial:
			ev = k.scatterDiffuse(&sd, dir, medium, r)
		case scene.ConductorMaterial:
			ev = k.scatterConductor(&sd, dir, medium, r)
		case scene.PlasticMaterial:
			ev = k.scatterPlastic(&sd, dir, medium, r)
		case scene.FresnelBlendMaterial:
			ev = k.scatterFresnelBlend(&sd, dir, medium, r)
		case scene.DielectricMaterial:
			ev = k.scatterDielectric(&sd, dir, medium, r)
		case scene.PassThroughMaterial:
			ev = k.scatterPassThrough(&sd, dir)
		case scene.SubsurfaceMaterial:
			ev = k.scatterSubsurface(&sd, dir, medium, r)
		default:
			return radiance
		}
		if ev.Absorbed {
			return radiance
		}

		radiance = radiance.Add(beta.MulVec(ev.Direct))
		beta = beta.MulVec(ev.Weight)
		origin = ev.Origin
		dir = ev.Dir.Normalize()
		medium = ev.Medium

		if beta.MaxComponent() <= 0 {
			return radiance
		}

		if k.params.RussianRoulette && bounce >= k.params.MinBouncesForRR {
			if r.Float() >= rrContinueProbability {
				return radiance
			}
			beta = beta.Mul(1.0 / rrContinueProbability)
		}
	}

	return radiance
}
