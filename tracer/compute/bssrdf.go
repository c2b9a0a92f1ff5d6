package compute

import (
	"math"

	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

const (
	// Probe rays are re-sampled up to this many times before giving up and
	// falling back to plain diffuse shading at the entry point.
	probeMaxAttempts = 100

	// Accepted exit points per subsurface event.
	probeMaxCandidates = 4

	// Acceptance thresholds for probe hits: the actual exit radius may not
	// exceed the sampled radius by this ratio, and the exit normal must not
	// be grazing relative to the probe direction.
	probeRadiusRatioMax = 1.4
	probeNormalCosMin   = 0.5
)

type probeCandidate struct {
	Point  types.Vec3
	Normal types.Vec3
	Color  types.Vec3
}

// Subsurface event. Tries a Fresnel-weighted surface reflection first; when
// the transmission branch wins, importance-samples probe rays from the
// diffusion profile to find an exit point on the same surface and continues
// the path from there with a dipole-weighted throughput.
func (k *kernel) scatterSubsurface(sd *surfaceData, dir types.Vec3, medium int32, r *rng) scatterEvent {
	mat := &sd.Material
	n := orientedNormal(sd.Normal, dir)

	f0 := (mat.IOR - 1.0) / (mat.IOR + 1.0)
	f0 *= f0
	if r.Float() < schlick(-dir.Dot(n), f0) {
		wi, weight, ok := microfacetReflect(mat, n, dir, r)
		if !ok {
			return scatterEvent{Absorbed: true}
		}
		return scatterEvent{
			Origin: sd.Point.Add(n.Mul(surfaceOffsetEpsilon)),
			Dir:    wi,
			Weight: sd.Color.Mul(weight),
			Medium: medium,
		}
	}

	if int(mat.Profile) >= len(k.sc.Profiles) || int(mat.Medium) >= len(k.sc.Media) || mat.Medium < 0 {
		return k.scatterDiffuse(sd, dir, medium, r)
	}
	profile := k.sc.Profiles[mat.Profile]
	med := &k.sc.Media[mat.Medium]

	t1, t2 := buildFrame(n)
	scale := mat.SSScale
	if scale <= 0 {
		scale = 1
	}

	var candidates [probeMaxCandidates]probeCandidate
	var sampledRadius float32
	count := 0

	for attempt := 0; attempt < probeMaxAttempts && count == 0; attempt++ {
		// Pick a probe axis (normal-heavy), a channel and a radius.
		var axis, px, py types.Vec3
		uAxis := r.Float()
		switch {
		case uAxis < 0.5:
			axis, px, py = n, t1, t2
		case uAxis < 0.75:
			axis, px, py = t1, t2, n
		default:
			axis, px, py = t2, n, t1
		}

		ch := r.Intn(3)
		sampledRadius = profile.SampleRadius(ch, r.Float()) * scale
		rMax := profile.MaxRadius() * scale
		if sampledRadius >= rMax {
			continue
		}

		phi := 2.0 * math.Pi * float64(r.Float())
		span := 2.0 * sqrt32(rMax*rMax-sampledRadius*sampledRadius)
		base := sd.Point.
			Add(px.Mul(sampledRadius * float32(math.Cos(phi)))).
			Add(py.Mul(sampledRadius * float32(math.Sin(phi))))

		probeDir := axis.Mul(-1)
		start := base.Add(axis.Mul(span * 0.5))
		remaining := span

		// Walk the probe, re-launching from each hit.
		for count < probeMaxCandidates && remaining > 0 {
			hit := k.closestHit(start, probeDir, remaining)
			if hit.WoopIdx < 0 {
				break
			}
			psd := k.surfaceAt(start, probeDir, hit)
			remaining -= hit.T + surfaceOffsetEpsilon
			start = psd.Point.Add(probeDir.Mul(surfaceOffsetEpsilon))

			if psd.MatID != sd.MatID {
				continue
			}
			exitRadius := psd.Point.Sub(sd.Point).Len()
			if exitRadius >= sampledRadius*probeRadiusRatioMax {
				continue
			}
			if abs32(psd.Normal.Dot(probeDir)) <= probeNormalCosMin {
				continue
			}

			candidates[count] = probeCandidate{
				Point:  psd.Point,
				Normal: orientedNormal(psd.Normal, probeDir),
				Color:  psd.Color,
			}
			count++
		}
	}

	if count == 0 {
		// Graceful degradation: shade the entry point as plain diffuse.
		return k.scatterDiffuse(sd, dir, medium, r)
	}

	pick := candidates[r.Intn(count)]
	offset := pick.Point.Sub(sd.Point)
	radius := offset.Len()

	pdf := probePdf(profile, scale, n, t1, t2, offset, pick.Normal)
	if pdf <= 0 {
		return k.scatterDiffuse(sd, dir, medium, r)
	}

	rd := dipoleRd(med, radius)
	// Uniform candidate selection compensates with the candidate count.
	weight := pick.Color.MulVec(rd).Mul(float32(count) / pdf)

	wi := cosineSample(pick.Normal, r.Float(), r.Float())
	weight = weight.Mul(1.0 - schlick(wi.Dot(pick.Normal), f0))

	return scatterEvent{
		Origin: pick.Point.Add(pick.Normal.Mul(surfaceOffsetEpsilon)),
		Dir:    wi,
		Weight: weight,
		Direct: k.diskLightTerm(pick.Point, pick.Normal, pick.Color, r),
		Medium: medium,
	}
}

// Combined density of the probe sampling scheme in exit-surface area
// measure, summing the three axis strategies and three channels with the
// candidate normal's projection onto each axis.
func probePdf(profile scene.DiffusionProfile, scale float32, n, t1, t2, offset, exitNormal types.Vec3) float32 {
	axes := [3]types.Vec3{n, t1, t2}
	axisProb := [3]float32{0.5, 0.25, 0.25}

	var pdf float32
	for a := 0; a < 3; a++ {
		radial := offset.Sub(axes[a].Mul(offset.Dot(axes[a]))).Len()
		if radial < surfaceOffsetEpsilon {
			radial = surfaceOffsetEpsilon
		}
		cosA := abs32(exitNormal.Dot(axes[a]))
		for ch := 0; ch < 3; ch++ {
			pdfR := profile.RadiusPdf(ch, radial/scale) / scale
			pdf += axisProb[a] * (1.0 / 3.0) * pdfR / (2.0 * math.Pi * radial) * cosA
		}
	}
	return pdf
}

// Classical dipole diffuse reflectance Rd(r) per channel.
func dipoleRd(med *scene.Medium, radius float32) types.Vec3 {
	// Internal reflection parameter for a typical boundary.
	const boundaryA = 2.44

	var out types.Vec3
	for i := 0; i < 3; i++ {
		sigmaSPrime := med.Scattering[i] * (1.0 - med.G)
		sigmaTPrime := sigmaSPrime + med.Absorption[i]
		if sigmaTPrime <= 0 {
			continue
		}

		alphaPrime := sigmaSPrime / sigmaTPrime
		sigmaTr := sqrt32(3.0 * med.Absorption[i] * sigmaTPrime)

		zr := 1.0 / sigmaTPrime
		zv := zr * (1.0 + 4.0*boundaryA/3.0)

		dr := sqrt32(radius*radius + zr*zr)
		dv := sqrt32(radius*radius + zv*zv)

		cr := zr * (sigmaTr*dr + 1.0) * expf(-sigmaTr*dr) / (dr * dr * dr)
		cv := zv * (sigmaTr*dv + 1.0) * expf(-sigmaTr*dv) / (dv * dv * dv)

		out[i] = alphaPrime / (4.0 * math.Pi) * (cr + cv)
	}
	return out
}

func expf(v float32) float32 {
	return float32(math.Exp(float64(v)))
}
