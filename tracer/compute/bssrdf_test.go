package compute

import (
	"testing"

	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

func subsurfaceResources() scene.Resources {
	med := scene.Medium{
		Scattering: types.Vec3{2.19, 2.62, 3.00},
		Absorption: types.Vec3{0.0021, 0.0041, 0.0071},
	}
	return scene.Resources{
		Materials: []scene.Material{{
			Type:    scene.SubsurfaceMaterial,
			Diffuse: types.Vec3{0.8, 0.8, 0.8},
			IOR:     1.0,
			Medium:  0,
			Profile: 0,
			SSScale: 1.0,
		}},
		Media:    []scene.Medium{med},
		Profiles: []scene.DiffusionProfile{scene.NewDipoleProfile(&med)},
	}
}

func TestSubsurfaceProbeAcceptance(t *testing.T) {
	res := subsurfaceResources()
	sc := buildTestScene(t, makeGroundPlane(0, 100, 0), res)
	k := testKernel(sc, DefaultParams())

	origin := types.Vec3{0, 1, 0}
	dir := types.Vec3{0, -1, 0}
	hit := k.closestHit(origin, dir, tMax)
	if hit.WoopIdx < 0 {
		t.Fatal("expected a hit")
	}
	sd := k.surfaceAt(origin, dir, hit)

	maxRadius := sc.Profiles[0].MaxRadius() * probeRadiusRatioMax

	for seed := uint32(0); seed < 64; seed++ {
		r := newRNG(seed, 101)
		ev := k.scatterSubsurface(&sd, dir, scene.AirMedium, &r)
		if ev.Absorbed {
			t.Fatalf("[seed %d] subsurface on an infinite plane must not absorb", seed)
		}

		// Exit points stay on the plane within the probe extent.
		if ev.Origin[1] < 0 || ev.Origin[1] > 2*surfaceOffsetEpsilon {
			t.Fatalf("[seed %d] exit origin %v left the surface plane", seed, ev.Origin)
		}
		offset := ev.Origin.Sub(sd.Point)
		offset[1] = 0
		if offset.Len() > maxRadius {
			t.Fatalf("[seed %d] exit radius %f exceeds probe bound %f", seed, offset.Len(), maxRadius)
		}

		if ev.Dir[1] <= 0 {
			t.Fatalf("[seed %d] outgoing direction %v points into the surface", seed, ev.Dir)
		}
		for c := 0; c < 3; c++ {
			if ev.Weight[c] < 0 {
				t.Fatalf("[seed %d] negative throughput %v", seed, ev.Weight)
			}
		}
	}
}

func TestSubsurfaceFallback(t *testing.T) {
	res := subsurfaceResources()
	// The only geometry sits far outside any probe's reach.
	sc := buildTestScene(t, makeGroundPlane(0, 1, 0), res)
	k := testKernel(sc, DefaultParams())

	sd := surfaceData{
		Point:     types.Vec3{5000, 0, 5000},
		Normal:    types.Vec3{0, 1, 0},
		GeoNormal: types.Vec3{0, 1, 0},
		MatID:     0,
		Material:  sc.Materials[0],
		Color:     sc.Materials[0].Diffuse,
	}
	dir := types.Vec3{0, -1, 0}

	for seed := uint32(0); seed < 16; seed++ {
		r := newRNG(seed, 17)
		ev := k.scatterSubsurface(&sd, dir, scene.AirMedium, &r)
		if ev.Absorbed {
			t.Fatalf("[seed %d] fallback must not absorb", seed)
		}
		// Graceful degradation: plain diffuse shading at the entry point.
		if ev.Weight != sd.Color {
			t.Fatalf("[seed %d] expected diffuse fallback weight %v; got %v", seed, sd.Color, ev.Weight)
		}
		if ev.Dir[1] <= 0 {
			t.Fatalf("[seed %d] fallback direction %v points into the surface", seed, ev.Dir)
		}
	}
}

func TestDipoleRdFalloff(t *testing.T) {
	med := scene.Medium{
		Scattering: types.Vec3{2, 2, 2},
		Absorption: types.Vec3{0.01, 0.01, 0.01},
	}
	near := dipoleRd(&med, 0.1)
	far := dipoleRd(&med, 2.0)
	for c := 0; c < 3; c++ {
		if near[c] <= far[c] {
			t.Fatalf("channel %d: Rd must decay with radius (near %f, far %f)", c, near[c], far[c])
		}
		if near[c] <= 0 {
			t.Fatalf("channel %d: Rd must be positive near the entry", c)
		}
	}
}
