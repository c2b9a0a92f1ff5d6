package compute

import (
	"testing"

	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

func TestClosestHitBarycentrics(t *testing.T) {
	sc := buildTestScene(t, makeGroundPlane(0, 5, 0), scene.Resources{
		Materials: []scene.Material{{Type: scene.DiffuseMaterial, Diffuse: types.Vec3{1, 1, 1}}},
	})
	k := testKernel(sc, DefaultParams())

	origins := []types.Vec3{
		{0.2, 1, 0.3},
		{-3.5, 2, 4.1},
		{4.9, 0.5, -4.9},
		{0, 10, 0},
	}
	dir := types.Vec3{0, -1, 0}

	for idx, origin := range origins {
		hit := k.closestHit(origin, dir, tMax)
		if hit.WoopIdx < 0 {
			t.Fatalf("[ray %d] expected a hit on the ground plane", idx)
		}
		if hit.T <= 0 || hit.T > origin[1]+1e-3 {
			t.Fatalf("[ray %d] hit distance %f outside expected range", idx, hit.T)
		}

		w := 1.0 - hit.U - hit.V
		if hit.U < 0 || hit.V < 0 || hit.U+hit.V > 1 {
			t.Fatalf("[ray %d] invalid barycentrics u=%f v=%f", idx, hit.U, hit.V)
		}

		tri := sc.WoopToTri[hit.WoopIdx]
		v0, v1, v2 := sc.TriangleVertices(tri)
		reconstructed := v0.Mul(w).Add(v1.Mul(hit.U)).Add(v2.Mul(hit.V))
		point := origin.Add(dir.Mul(hit.T))
		if !vecNear(reconstructed, point, 1e-3) {
			t.Fatalf("[ray %d] barycentric reconstruction %v does not match hit point %v", idx, reconstructed, point)
		}
	}
}

func TestNearestHitWithinRange(t *testing.T) {
	sc := buildTestScene(t, makeGroundPlane(0, 5, 0), scene.Resources{
		Materials: []scene.Material{{Type: scene.DiffuseMaterial}},
	})
	k := testKernel(sc, DefaultParams())

	origin := types.Vec3{0, 2, 0}
	dir := types.Vec3{0, -1, 0}

	// The plane lies at t=2; a shorter range must miss it.
	if hit := k.closestHit(origin, dir, 1.5); hit.WoopIdx >= 0 {
		t.Fatalf("expected no hit within tmax=1.5; got t=%f", hit.T)
	}
	hit := k.closestHit(origin, dir, 3)
	if hit.WoopIdx < 0 {
		t.Fatal("expected a hit within tmax=3")
	}
	if hit.T <= 0 || hit.T >= 3 {
		t.Fatalf("hit distance %f outside (0, tmax)", hit.T)
	}
}

func TestAnyHitMonotonic(t *testing.T) {
	tris := makeGroundPlane(0, 2, 0)
	tris = append(tris, makeDisk(types.Vec3{0, 1, 0}, 0.5, 8, 0)...)
	sc := buildTestScene(t, tris, scene.Resources{
		Materials: []scene.Material{{Type: scene.DiffuseMaterial}},
	})
	k := testKernel(sc, DefaultParams())

	r := newRNG(42, 0)
	for i := 0; i < 500; i++ {
		origin := types.Vec3{r.Float()*8 - 4, r.Float()*4 - 1, r.Float()*8 - 4}
		dir := uniformSphere(r.Float(), r.Float())

		any := k.anyHit(origin, dir, tMax)
		nearest := k.closestHit(origin, dir, tMax)
		if !any && nearest.WoopIdx >= 0 {
			t.Fatalf("[ray %d] any-hit missed but nearest-hit found t=%f", i, nearest.T)
		}
		if any && nearest.WoopIdx < 0 {
			t.Fatalf("[ray %d] any-hit found a hit but nearest-hit missed", i)
		}
	}
}

func TestGeometricNormal(t *testing.T) {
	sc := buildTestScene(t, makeGroundPlane(0, 5, 0), scene.Resources{
		Materials: []scene.Material{{Type: scene.DiffuseMaterial}},
	})
	k := testKernel(sc, DefaultParams())

	hit := k.closestHit(types.Vec3{0.5, 1, 0.5}, types.Vec3{0, -1, 0}, tMax)
	if hit.WoopIdx < 0 {
		t.Fatal("expected a hit")
	}
	n := hit.Normal.Normalize()
	if !vecNear(n, types.Vec3{0, 1, 0}, 1e-5) {
		t.Fatalf("expected geometric normal (0,1,0); got %v", n)
	}
}
