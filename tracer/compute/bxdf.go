package compute

import (
	"math"

	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

const (
	// Hit points are pushed along the oriented normal by this amount before
	// the next traversal to avoid immediate self-intersection.
	surfaceOffsetEpsilon = 1e-3

	// Direct disk-light sampling is only evaluated for hit points within
	// this multiple of the light radius from the light's axis.
	lightFootprintScale = 8.0

	// Floor for microfacet roughness to keep the distribution sampleable.
	minRoughness = 1e-3
)

// The outcome of one scattering event. Weight multiplies the path throughput,
// Direct carries any next-event radiance already weighted by the local BRDF
// and MIS factor (the caller still applies the pre-event throughput).
type scatterEvent struct {
	Origin types.Vec3
	Dir    types.Vec3
	Weight types.Vec3
	Direct types.Vec3
	Medium int32

	// The path carries no more energy; stop bouncing.
	Absorbed bool
}

func (k *kernel) scatterDiffuse(sd *surfaceData, dir types.Vec3, medium int32, r *rng) scatterEvent {
	n := orientedNormal(sd.Normal, dir)
	return scatterEvent{
		Origin: sd.Point.Add(n.Mul(surfaceOffsetEpsilon)),
		Dir:    cosineSample(n, r.Float(), r.Float()),
		Weight: sd.Color,
		Direct: k.diskLightTerm(sd.Point, n, sd.Color, r),
		Medium: medium,
	}
}

func (k *kernel) scatterConductor(sd *surfaceData, dir types.Vec3, medium int32, r *rng) scatterEvent {
	n := orientedNormal(sd.Normal, dir)
	mat := &sd.Material

	if mat.RoughnessU == 0 && mat.RoughnessV == 0 {
		return scatterEvent{
			Origin: sd.Point.Add(n.Mul(surfaceOffsetEpsilon)),
			Dir:    reflectDir(dir, n).Normalize(),
			Weight: sd.Color.Mul(mat.Ks),
			Medium: medium,
		}
	}

	wi, weight, ok := microfacetReflect(mat, n, dir, r)
	if !ok {
		return scatterEvent{Absorbed: true}
	}
	return scatterEvent{
		Origin: sd.Point.Add(n.Mul(surfaceOffsetEpsilon)),
		Dir:    wi,
		Weight: sd.Color.Mul(mat.Ks * weight),
		Medium: medium,
	}
}

// One-sample mix of the reflective and diffuse branches; each branch carries
// its own weight without dividing by the branch probability.
func (k *kernel) scatterPlastic(sd *surfaceData, dir types.Vec3, medium int32, r *rng) scatterEvent {
	mat := &sd.Material
	total := mat.Ks + mat.Kd
	if total <= 0 {
		return scatterEvent{Absorbed: true}
	}

	if r.Float() < mat.Ks/total {
		return k.scatterConductor(sd, dir, medium, r)
	}

	n := orientedNormal(sd.Normal, dir)
	weight := sd.Color.Mul(mat.Kd)
	return scatterEvent{
		Origin: sd.Point.Add(n.Mul(surfaceOffsetEpsilon)),
		Dir:    cosineSample(n, r.Float(), r.Float()),
		Weight: weight,
		Direct: k.diskLightTerm(sd.Point, n, weight, r),
		Medium: medium,
	}
}

func (k *kernel) scatterFresnelBlend(sd *surfaceData, dir types.Vec3, medium int32, r *rng) scatterEvent {
	n := orientedNormal(sd.Normal, dir)
	cosI := -dir.Dot(n)
	f := schlick(cosI, sd.Material.F0)

	if r.Float() < f {
		return scatterEvent{
			Origin: sd.Point.Add(n.Mul(surfaceOffsetEpsilon)),
			Dir:    reflectDir(dir, n).Normalize(),
			Weight: types.Vec3{1, 1, 1},
			Medium: medium,
		}
	}
	return scatterEvent{
		Origin: sd.Point.Add(n.Mul(surfaceOffsetEpsilon)),
		Dir:    cosineSample(n, r.Float(), r.Float()),
		Weight: sd.Color,
		Direct: k.diskLightTerm(sd.Point, n, sd.Color, r),
		Medium: medium,
	}
}

func (k *kernel) scatterDielectric(sd *surfaceData, dir types.Vec3, medium int32, r *rng) scatterEvent {
	mat := &sd.Material
	n := orientedNormal(sd.Normal, dir)
	entering := dir.Dot(sd.GeoNormal) < 0

	eta := mat.IOR
	if entering {
		eta = 1.0 / mat.IOR
	}

	f0 := (mat.IOR - 1.0) / (mat.IOR + 1.0)
	f0 *= f0

	cosI := -dir.Dot(n)
	refracted, ok := refractDir(dir, n, eta)
	fresnel := float32(1.0)
	switch {
	case !ok:
		// Total internal reflection.
	case f0 == 0:
		// Matched indices never reflect.
		fresnel = 0
	default:
		fresnel = schlick(cosI, f0)
	}

	rough := mat.RoughnessU > 0 || mat.RoughnessV > 0

	if r.Float() < fresnel {
		wi := reflectDir(dir, n).Normalize()
		weight := float32(1.0)
		if rough {
			mwi, w, mok := microfacetReflect(mat, n, dir, r)
			if !mok {
				return scatterEvent{Absorbed: true}
			}
			wi = mwi
			weight = w
		}
		return scatterEvent{
			Origin: sd.Point.Add(n.Mul(surfaceOffsetEpsilon)),
			Dir:    wi,
			Weight: sd.Color.Mul(weight),
			Medium: medium,
		}
	}

	// Transmission crosses the interface: flip the medium and compress
	// radiance by the squared relative index of refraction.
	newMedium := scene.AirMedium
	if entering {
		newMedium = mat.Medium
	}
	ev := scatterEvent{
		Origin: sd.Point.Sub(n.Mul(surfaceOffsetEpsilon)),
		Dir:    refracted,
		Weight: sd.Color.Mul(eta * eta),
		Medium: newMedium,
	}
	if rough {
		ev.Direct = k.diskLightTerm(sd.Point, n, sd.Color, r)
	}
	return ev
}

// Pass-through boundary: nudge the origin across the surface and toggle the
// medium without altering the direction.
func (k *kernel) scatterPassThrough(sd *surfaceData, dir types.Vec3) scatterEvent {
	n := orientedNormal(sd.GeoNormal, dir)
	entering := dir.Dot(sd.GeoNormal) < 0

	newMedium := scene.AirMedium
	if entering {
		newMedium = sd.Material.Medium
	}
	return scatterEvent{
		Origin: sd.Point.Sub(n.Mul(surfaceOffsetEpsilon)),
		Dir:    dir,
		Weight: types.Vec3{1, 1, 1},
		Medium: newMedium,
	}
}

// Direct lighting toward the analytic disk with a balance-heuristic MIS
// weight against the cosine BSDF sample.
func (k *kernel) diskLightTerm(p, n, color types.Vec3, r *rng) types.Vec3 {
	l := k.sc.Light
	if l == nil {
		return types.Vec3{}
	}

	toCenter := p.Sub(l.Center)
	radial := toCenter.Sub(l.Normal.Mul(toCenter.Dot(l.Normal)))
	if radial.Len() > l.Radius*lightFootprintScale {
		return types.Vec3{}
	}

	t1, t2 := buildFrame(l.Normal)
	rad := l.Radius * sqrt32(r.Float())
	phi := 2.0 * math.Pi * float64(r.Float())
	q := l.Center.
		Add(t1.Mul(rad * float32(math.Cos(phi)))).
		Add(t2.Mul(rad * float32(math.Sin(phi))))

	wi := q.Sub(p)
	dist2 := wi.Len2()
	dist := sqrt32(dist2)
	if dist < surfaceOffsetEpsilon {
		return types.Vec3{}
	}
	wi = wi.Mul(1.0 / dist)

	cosS := n.Dot(wi)
	cosL := -l.Normal.Dot(wi)
	if cosS <= 0 || cosL <= 0 {
		return types.Vec3{}
	}

	if k.anyHit(p.Add(n.Mul(surfaceOffsetEpsilon)), wi, dist-2*surfaceOffsetEpsilon) {
		return types.Vec3{}
	}

	pdfLight := dist2 / (cosL * l.Area())
	pdfBsdf := cosS / math.Pi
	mis := pdfLight / (pdfLight + pdfBsdf)

	return l.Radiance.MulVec(color.Mul(1.0 / math.Pi)).Mul(cosS * mis / pdfLight)
}

// Sample a microfacet normal from the anisotropic distribution and reflect
// about it. The returned weight is the BRDF/PDF ratio without the Fresnel
// term; ok is false when the reflected direction dips under the surface.
func microfacetReflect(mat *scene.Material, n, dir types.Vec3, r *rng) (types.Vec3, float32, bool) {
	ax := mat.RoughnessU
	ay := mat.RoughnessV
	if ax < minRoughness {
		ax = minRoughness
	}
	if ay < minRoughness {
		ay = minRoughness
	}

	t1, t2 := buildFrame(n)
	if tangent := mat.Tangent.Sub(n.Mul(mat.Tangent.Dot(n))); tangent.Len2() > 1e-6 {
		t1 = tangent.Normalize()
		t2 = n.Cross(t1)
	}

	u1 := r.Float()
	phi := 2.0 * math.Pi * float64(r.Float())
	rad := sqrt32(u1 / (1.0 - u1))

	h := t1.Mul(ax * rad * float32(math.Cos(phi))).
		Add(t2.Mul(ay * rad * float32(math.Sin(phi)))).
		Add(n).
		Normalize()

	wi := reflectDir(dir, h).Normalize()
	cosWi := wi.Dot(n)
	if cosWi <= 0 {
		return types.Vec3{}, 0, false
	}

	wo := dir.Mul(-1)
	cosWo := wo.Dot(n)
	cosH := h.Dot(n)
	if cosWo <= 0 || cosH <= 0 {
		return types.Vec3{}, 0, false
	}

	alpha := sqrt32(ax * ay)
	g := smithG1(cosWo, alpha) * smithG1(cosWi, alpha)
	weight := g * abs32(wo.Dot(h)) / (cosWo * cosH)
	return wi, weight, true
}

func smithG1(cosV, alpha float32) float32 {
	if cosV <= 0 {
		return 0
	}
	tan2 := (1.0 - cosV*cosV) / (cosV * cosV)
	return 2.0 / (1.0 + sqrt32(1.0+alpha*alpha*tan2))
}

// Orthonormal tangent frame around a unit vector.
func buildFrame(n types.Vec3) (types.Vec3, types.Vec3) {
	axis := types.Vec3{1, 0, 0}
	if abs32(n[0]) > 0.9 {
		axis = types.Vec3{0, 1, 0}
	}
	t1 := n.Cross(axis).Normalize()
	t2 := n.Cross(t1)
	return t1, t2
}

// Cosine-weighted hemisphere sample around a unit normal.
func cosineSample(n types.Vec3, u1, u2 float32) types.Vec3 {
	t1, t2 := buildFrame(n)
	rad := sqrt32(u1)
	phi := 2.0 * math.Pi * float64(u2)
	z := sqrt32(1.0 - u1)
	return t1.Mul(rad * float32(math.Cos(phi))).
		Add(t2.Mul(rad * float32(math.Sin(phi)))).
		Add(n.Mul(z)).
		Normalize()
}

func reflectDir(d, n types.Vec3) types.Vec3 {
	return d.Sub(n.Mul(2.0 * d.Dot(n)))
}

// Refract d about n with relative index eta = n_incident/n_transmitted.
// Returns false on total internal reflection.
func refractDir(d, n types.Vec3, eta float32) (types.Vec3, bool) {
	cosI := -d.Dot(n)
	sin2T := eta * eta * (1.0 - cosI*cosI)
	if sin2T > 1.0 {
		return types.Vec3{}, false
	}
	cosT := sqrt32(1.0 - sin2T)
	return d.Mul(eta).Add(n.Mul(eta*cosI - cosT)).Normalize(), true
}

func schlick(cosTheta, f0 float32) float32 {
	c := 1.0 - cosTheta
	return f0 + (1.0-f0)*c*c*c*c*c
}

// Flip a normal so it faces against the incoming direction.
func orientedNormal(n, dir types.Vec3) types.Vec3 {
	if n.Dot(dir) > 0 {
		return n.Mul(-1)
	}
	return n
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
