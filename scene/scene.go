package scene

import "github.com/borealis-render/borealis/types"

// An analytic emissive disk used for direct light sampling. The disk must
// also be present as emissive geometry so that paths can hit it directly.
type DiskLight struct {
	Center   types.Vec3
	Radius   float32
	Normal   types.Vec3
	Radiance types.Vec3
}

// Area of the disk.
func (l *DiskLight) Area() float32 {
	return 3.14159265 * l.Radius * l.Radius
}

// The compiled, render-ready scene view. All slices are bound once by the
// host and treated as strictly read-only by the kernels; the parallel
// triangle arrays are index aligned 1:1:1:1 per original triangle.
type Scene struct {
	// Acceleration structure.
	Nodes []BvhNode

	// Unit-triangle transform rows, three per triangle plus leaf
	// terminators, in leaf emission order.
	Woop []types.Vec4

	// Remap from Woop row offset to original triangle, -1 on terminator
	// rows; aligned 1:1 with Woop.
	WoopToTri []int32

	// Original geometry, three entries per triangle.
	Vertices []types.Vec3
	Normals  []types.Vec3
	UVs      []types.Vec2

	// Original triangle index to material id.
	MaterialIndex []int32

	Materials []Material
	Media     []Medium
	Profiles  []DiffusionProfile

	// Environment radiance map and surface color map.
	EnvMap   *Texture
	ColorMap *Texture

	// Optional analytic light for next event estimation.
	Light *DiskLight

	// The scene camera.
	Camera *Camera
}

// Number of original triangles in the scene.
func (sc *Scene) TriangleCount() int {
	return len(sc.MaterialIndex)
}

// Fetch the three original vertices of a triangle.
func (sc *Scene) TriangleVertices(tri int32) (types.Vec3, types.Vec3, types.Vec3) {
	base := tri * 3
	return sc.Vertices[base], sc.Vertices[base+1], sc.Vertices[base+2]
}
