package scene

import (
	"math"

	"github.com/borealis-render/borealis/types"
)

// Bvh nodes pack the bounding boxes of both children plus two multipurpose
// child references:
//
//   - A reference >= 0 is the index of a child node in the node list.
//   - A reference < 0 marks a leaf child; its bitwise complement is the
//     offset of the leaf's first Woop row in the triangle row list.
//
// Leaf triangles are stored contiguously, three rows per triangle, and each
// leaf run ends with a terminator row carrying WoopTerminator in its first
// component.
type BvhNode struct {
	LMin types.Vec3
	LMax types.Vec3
	RMin types.Vec3
	RMax types.Vec3

	Left  int32
	Right int32
}

// Set the left child bounding box.
func (n *BvhNode) SetLeftBBox(bbox [2]types.Vec3) {
	n.LMin = bbox[0]
	n.LMax = bbox[1]
}

// Set the right child bounding box.
func (n *BvhNode) SetRightBBox(bbox [2]types.Vec3) {
	n.RMin = bbox[0]
	n.RMax = bbox[1]
}

// Encode a leaf reference for a Woop row offset.
func LeafRef(woopOffset int32) int32 {
	return ^woopOffset
}

// Decode a leaf reference back into a Woop row offset.
func LeafOffset(ref int32) int32 {
	return ^ref
}

// WoopTerminator marks the row after the last triangle of a leaf.
var WoopTerminator = float32(math.Inf(1))

// WoopRows holds the three rows of the affine transform that maps a triangle
// to the unit triangle. Row i evaluates the i-th local coordinate of a world
// point p as Dot(row.xyz, p) + row.w; the third coordinate vanishes on the
// triangle plane and the first two are the barycentric weights of the second
// and third vertex.
type WoopRows [3]types.Vec4

const degenerateTriEpsilon = 1e-12

// Build the unit-triangle transform rows for a triangle. Returns false for
// degenerate triangles with (near) zero area.
func WoopTransform(v0, v1, v2 types.Vec3) (WoopRows, bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	n := e1.Cross(e2)

	det := e1.Dot(e2.Cross(n))
	if det > -degenerateTriEpsilon && det < degenerateTriEpsilon {
		return WoopRows{}, false
	}
	inv := 1.0 / det

	r0 := e2.Cross(n).Mul(inv)
	r1 := n.Cross(e1).Mul(inv)
	r2 := e1.Cross(e2).Mul(inv)

	return WoopRows{
		r0.Vec4(-r0.Dot(v0)),
		r1.Vec4(-r1.Dot(v0)),
		r2.Vec4(-r2.Dot(v0)),
	}, true
}
