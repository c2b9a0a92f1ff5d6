package compute

import (
	"math"
	"testing"

	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

func TestFreeFlightScatterFraction(t *testing.T) {
	med := scene.Medium{
		Scattering: types.Vec3{0.5, 0.5, 0.5},
		Absorption: types.Vec3{0.5, 0.5, 0.5},
	}
	k := testKernel(&scene.Scene{}, Params{MediumEnvBias: false})

	const (
		surfaceDist = 2.0
		trials      = 50000
	)

	origin := types.Vec3{0, 0, 0}
	dir := types.Vec3{0, 0, 1}

	r := newRNG(1234, 0)
	scattered := 0
	for i := 0; i < trials; i++ {
		beta := types.Vec3{1, 1, 1}
		var radiance types.Vec3
		if _, _, ok := k.sampleMedium(&med, origin, dir, surfaceDist, &beta, &radiance, &r); ok {
			scattered++

			// An in-medium scatter applies the single-scattering albedo.
			if beta != med.Albedo() {
				t.Fatalf("expected albedo throughput %v; got %v", med.Albedo(), beta)
			}
		}
	}

	// Extinction is 1 per channel, so P(scatter) = 1 - exp(-sigma_t * D).
	expected := 1.0 - math.Exp(-1.0*surfaceDist)
	got := float64(scattered) / float64(trials)
	if math.Abs(got-expected) > 0.01 {
		t.Fatalf("scatter fraction %f deviates from %f", got, expected)
	}
}

func TestHGSampling(t *testing.T) {
	dir := types.Vec3{0, 0, 1}

	r := newRNG(99, 5)
	var meanCos float32
	const samples = 20000
	for i := 0; i < samples; i++ {
		wi := sampleHG(dir, 0, r.Float(), r.Float())
		if abs32(wi.Len()-1) > 1e-4 {
			t.Fatalf("sample %v is not normalized", wi)
		}
		meanCos += wi.Dot(dir)
	}
	meanCos /= samples
	// Isotropic phase has zero mean cosine.
	if abs32(meanCos) > 0.02 {
		t.Fatalf("isotropic mean cosine %f deviates from 0", meanCos)
	}

	// Forward-peaked phase pulls the mean cosine toward g.
	r = newRNG(7, 3)
	meanCos = 0
	for i := 0; i < samples; i++ {
		meanCos += sampleHG(dir, 0.7, r.Float(), r.Float()).Dot(dir)
	}
	meanCos /= samples
	if abs32(meanCos-0.7) > 0.02 {
		t.Fatalf("mean cosine %f deviates from g=0.7", meanCos)
	}
}

func TestMediumEnvBiasTerm(t *testing.T) {
	med := scene.Medium{
		Scattering: types.Vec3{1, 1, 1},
	}
	env := scene.NewUniformTexture(types.Vec3{2, 2, 2})

	k := testKernel(&scene.Scene{EnvMap: env}, Params{MediumEnvBias: true})
	r := newRNG(5, 5)
	beta := types.Vec3{1, 1, 1}
	var radiance types.Vec3
	k.sampleMedium(&med, types.Vec3{}, types.Vec3{0, 0, 1}, 10, &beta, &radiance, &r)

	expected := types.Vec3{2, 2, 2}.Mul(mediumEnvWeight)
	if !vecNear(radiance, expected, 1e-6) {
		t.Fatalf("expected biased env contribution %v; got %v", expected, radiance)
	}

	// The term must vanish when disabled.
	k = testKernel(&scene.Scene{EnvMap: env}, Params{MediumEnvBias: false})
	radiance = types.Vec3{}
	beta = types.Vec3{1, 1, 1}
	k.sampleMedium(&med, types.Vec3{}, types.Vec3{0, 0, 1}, 10, &beta, &radiance, &r)
	if radiance != (types.Vec3{}) {
		t.Fatalf("expected no env contribution; got %v", radiance)
	}
}
