package compute

import (
	"math"
	"sync/atomic"

	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

const (
	// Traversal stack capacity. Deep trees saturate instead of overflowing;
	// dropped subtrees are counted and reported after the frame.
	traversalStackSize = 64

	stackSentinel = int32(math.MinInt32)

	// Near-zero direction components are replaced by this signed epsilon
	// before inversion.
	dirEpsilon = 1e-7

	tMax = float32(math.MaxFloat32)
)

// The result of a nearest-hit traversal. WoopIdx points at the first
// transform row of the hit triangle and is -1 when the ray escapes. Normal is
// the geometric normal built from the original triangle edges.
type hitInfo struct {
	WoopIdx int32
	T       float32
	U       float32
	V       float32
	Normal  types.Vec3
}

// A kernel bundles the immutable scene view with the integrator parameters.
// Kernels are shared by all workers of a tracer; the only mutable field is
// the saturation counter which is updated atomically.
type kernel struct {
	sc     *scene.Scene
	params Params

	stackOverflows uint64
}

// Find the closest triangle intersection along the ray within (0, tmax).
func (k *kernel) closestHit(origin, dir types.Vec3, tmax float32) hitInfo {
	hit := k.intersect(origin, dir, tmax, false)
	if hit.WoopIdx >= 0 {
		tri := k.sc.WoopToTri[hit.WoopIdx]
		v0, v1, v2 := k.sc.TriangleVertices(tri)
		hit.Normal = v1.Sub(v0).Cross(v2.Sub(v0))
	}
	return hit
}

// Report whether any triangle blocks the ray within (0, tmax).
func (k *kernel) anyHit(origin, dir types.Vec3, tmax float32) bool {
	return k.intersect(origin, dir, tmax, true).WoopIdx >= 0
}

func (k *kernel) intersect(origin, dir types.Vec3, tmax float32, anyHit bool) hitInfo {
	hit := hitInfo{WoopIdx: -1, T: tmax}
	if len(k.sc.Nodes) == 0 {
		return hit
	}

	invDir := types.Vec3{
		1.0 / nonZero(dir[0]),
		1.0 / nonZero(dir[1]),
		1.0 / nonZero(dir[2]),
	}

	var stack [traversalStackSize]int32
	stack[0] = stackSentinel
	stackPtr := 0
	addr := int32(0)

	for addr != stackSentinel {
		if addr >= 0 {
			node := &k.sc.Nodes[addr]
			leftT, leftHit := slabTest(node.LMin, node.LMax, origin, invDir, hit.T)
			rightT, rightHit := slabTest(node.RMin, node.RMax, origin, invDir, hit.T)

			switch {
			case leftHit && rightHit:
				near, far := node.Left, node.Right
				if rightT < leftT {
					near, far = far, near
				}
				addr = near
				if stackPtr+1 < traversalStackSize {
					stackPtr++
					stack[stackPtr] = far
				} else {
					atomic.AddUint64(&k.stackOverflows, 1)
				}
			case leftHit:
				addr = node.Left
			case rightHit:
				addr = node.Right
			default:
				addr = stack[stackPtr]
				stackPtr--
			}
			continue
		}

		// Leaf: walk the contiguous transform rows until the terminator.
		for rowAddr := scene.LeafOffset(addr); k.sc.Woop[rowAddr][0] != scene.WoopTerminator; rowAddr += 3 {
			m0 := k.sc.Woop[rowAddr]
			m1 := k.sc.Woop[rowAddr+1]
			m2 := k.sc.Woop[rowAddr+2]

			ow := origin.Dot(m2.Vec3()) + m2[3]
			dw := dir.Dot(m2.Vec3())
			t := -ow / dw
			// The negated comparison also rejects NaN from parallel rays.
			if !(t > 0 && t < hit.T) {
				continue
			}

			u := origin.Dot(m0.Vec3()) + m0[3] + t*dir.Dot(m0.Vec3())
			if u < 0 || u > 1 {
				continue
			}
			v := origin.Dot(m1.Vec3()) + m1[3] + t*dir.Dot(m1.Vec3())
			if v < 0 || u+v > 1 {
				continue
			}

			hit.WoopIdx = rowAddr
			hit.T = t
			hit.U = u
			hit.V = v
			if anyHit {
				return hit
			}
		}

		addr = stack[stackPtr]
		stackPtr--
	}

	return hit
}

// Slab test against an AABB. Returns the entry distance and whether the ray
// overlaps the box within (0, tmax].
func slabTest(min, max, origin, invDir types.Vec3, tmax float32) (float32, bool) {
	var tNear float32
	tFar := tmax

	for axis := 0; axis < 3; axis++ {
		t0 := (min[axis] - origin[axis]) * invDir[axis]
		t1 := (max[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
	}

	return tNear, tNear <= tFar
}

func nonZero(v float32) float32 {
	if v > -dirEpsilon && v < dirEpsilon {
		if math.Signbit(float64(v)) {
			return -dirEpsilon
		}
		return dirEpsilon
	}
	return v
}

// Drain and reset the stack saturation counter.
func (k *kernel) drainStackOverflows() uint64 {
	return atomic.SwapUint64(&k.stackOverflows, 0)
}
