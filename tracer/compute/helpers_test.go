package compute

import (
	"math"
	"testing"

	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

// Two triangles spanning a quad with a shared face normal.
func makeQuad(a, b, c, d, n types.Vec3, mat int32) []scene.Triangle {
	return []scene.Triangle{
		{
			Vertices: [3]types.Vec3{a, b, c},
			Normals:  [3]types.Vec3{n, n, n},
			UVs:      [3]types.Vec2{{0, 0}, {1, 0}, {1, 1}},
			Material: mat,
		},
		{
			Vertices: [3]types.Vec3{a, c, d},
			Normals:  [3]types.Vec3{n, n, n},
			UVs:      [3]types.Vec2{{0, 0}, {1, 1}, {0, 1}},
			Material: mat,
		},
	}
}

// A fan-tessellated disk in the y = height plane facing up.
func makeDisk(center types.Vec3, radius float32, segments int, mat int32) []scene.Triangle {
	n := types.Vec3{0, 1, 0}
	var out []scene.Triangle
	for i := 0; i < segments; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(segments)
		a1 := 2 * math.Pi * float64(i+1) / float64(segments)
		p0 := center.Add(types.Vec3{radius * float32(math.Cos(a0)), 0, radius * float32(math.Sin(a0))})
		p1 := center.Add(types.Vec3{radius * float32(math.Cos(a1)), 0, radius * float32(math.Sin(a1))})
		out = append(out, scene.Triangle{
			Vertices: [3]types.Vec3{center, p1, p0},
			Normals:  [3]types.Vec3{n, n, n},
			UVs:      [3]types.Vec2{{0.5, 0.5}, {0, 0}, {1, 0}},
			Material: mat,
		})
	}
	return out
}

// A large quad in the y = height plane facing up.
func makeGroundPlane(height, halfSize float32, mat int32) []scene.Triangle {
	return makeQuad(
		types.Vec3{-halfSize, height, halfSize},
		types.Vec3{halfSize, height, halfSize},
		types.Vec3{halfSize, height, -halfSize},
		types.Vec3{-halfSize, height, -halfSize},
		types.Vec3{0, 1, 0},
		mat,
	)
}

func buildTestScene(t *testing.T, tris []scene.Triangle, res scene.Resources) *scene.Scene {
	t.Helper()
	if res.Camera == nil {
		res.Camera = scene.NewCamera(45)
	}
	sc, err := scene.Compile(tris, res)
	if err != nil {
		t.Fatalf("scene compilation failed: %v", err)
	}
	return sc
}

func testKernel(sc *scene.Scene, params Params) *kernel {
	return &kernel{sc: sc, params: params}
}

func vecNear(a, b types.Vec3, eps float32) bool {
	return abs32(a[0]-b[0]) < eps && abs32(a[1]-b[1]) < eps && abs32(a[2]-b[2]) < eps
}
