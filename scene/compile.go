package scene

import (
	"fmt"
	"sort"
	"time"

	"github.com/borealis-render/borealis/log"
	"github.com/borealis-render/borealis/types"
)

// Triangle is the authoring-side description of one scene triangle before
// compilation into the packed traversal layout.
type Triangle struct {
	Vertices [3]types.Vec3
	Normals  [3]types.Vec3
	UVs      [3]types.Vec2

	// Index into the resource material list.
	Material int32
}

// Resources groups the non-geometry assets referenced by a compiled scene.
type Resources struct {
	Materials []Material
	Media     []Medium
	Profiles  []DiffusionProfile
	EnvMap    *Texture
	ColorMap  *Texture
	Light     *DiskLight
	Camera    *Camera
}

// The compiler will emit a leaf when a partition holds this many items or
// fewer.
const minLeafItems = 4

type workItem struct {
	tri    int32
	min    types.Vec3
	max    types.Vec3
	center types.Vec3
	rows   WoopRows
}

type compiler struct {
	logger log.Logger

	input []Triangle
	sc    *Scene

	nodes    int
	leafs    int
	maxDepth int
}

// Compile partitions the triangle soup into a two-wide BVH and packs nodes,
// unit-triangle transform rows and the index-aligned attribute arrays into a
// render-ready scene.
func Compile(triangles []Triangle, res Resources) (*Scene, error) {
	if len(triangles) == 0 {
		return nil, fmt.Errorf("scene: no triangles to compile")
	}
	if res.Camera == nil {
		return nil, fmt.Errorf("scene: no camera defined")
	}
	if len(res.Materials) == 0 {
		return nil, fmt.Errorf("scene: no materials defined")
	}

	c := &compiler{
		logger: log.New("compiler"),
		input:  triangles,
		sc: &Scene{
			Materials: res.Materials,
			Media:     res.Media,
			Profiles:  res.Profiles,
			EnvMap:    res.EnvMap,
			ColorMap:  res.ColorMap,
			Light:     res.Light,
			Camera:    res.Camera,
		},
	}

	// Copy the attribute arrays in input order; traversal refers back to
	// them through the per-row remap table.
	workList := make([]workItem, 0, len(triangles))
	for idx, tri := range triangles {
		if int(tri.Material) >= len(res.Materials) {
			return nil, fmt.Errorf("scene: triangle %d references undefined material %d", idx, tri.Material)
		}

		c.sc.Vertices = append(c.sc.Vertices, tri.Vertices[0], tri.Vertices[1], tri.Vertices[2])
		c.sc.Normals = append(c.sc.Normals, tri.Normals[0], tri.Normals[1], tri.Normals[2])
		c.sc.UVs = append(c.sc.UVs, tri.UVs[0], tri.UVs[1], tri.UVs[2])
		c.sc.MaterialIndex = append(c.sc.MaterialIndex, tri.Material)

		rows, ok := WoopTransform(tri.Vertices[0], tri.Vertices[1], tri.Vertices[2])
		if !ok {
			c.logger.Warningf("skipping degenerate triangle %d", idx)
			continue
		}

		item := workItem{
			tri:    int32(idx),
			min:    types.MinVec3(tri.Vertices[0], types.MinVec3(tri.Vertices[1], tri.Vertices[2])),
			max:    types.MaxVec3(tri.Vertices[0], types.MaxVec3(tri.Vertices[1], tri.Vertices[2])),
			rows:   rows,
		}
		item.center = item.min.Add(item.max).Mul(0.5)
		workList = append(workList, item)
	}
	if len(workList) == 0 {
		return nil, fmt.Errorf("scene: all input triangles are degenerate")
	}

	start := time.Now()
	ref, bbox := c.partition(workList, 0)
	if ref < 0 {
		// Tiny scenes collapse to a single leaf; wrap it in a root node
		// with an empty right child so traversal always starts at node 0.
		empty := int32(len(c.sc.Woop))
		c.sc.Woop = append(c.sc.Woop, types.Vec4{WoopTerminator})
		c.sc.WoopToTri = append(c.sc.WoopToTri, -1)

		root := BvhNode{Left: ref, Right: LeafRef(empty)}
		root.SetLeftBBox(bbox)
		root.SetRightBBox([2]types.Vec3{
			{WoopTerminator, WoopTerminator, WoopTerminator},
			{-WoopTerminator, -WoopTerminator, -WoopTerminator},
		})
		c.sc.Nodes = append(c.sc.Nodes, root)
		c.nodes++
	}

	c.logger.Debugf(
		"compiled %d triangles in %d ms: nodes %d, leafs %d, max depth %d",
		len(workList), time.Since(start).Nanoseconds()/1e6,
		c.nodes, c.leafs, c.maxDepth,
	)
	return c.sc, nil
}

// Partition a work list, returning the child reference and bounding box for
// the emitted subtree.
func (c *compiler) partition(items []workItem, depth int) (int32, [2]types.Vec3) {
	if depth > c.maxDepth {
		c.maxDepth = depth
	}

	bbox := [2]types.Vec3{items[0].min, items[0].max}
	for _, it := range items[1:] {
		bbox[0] = types.MinVec3(bbox[0], it.min)
		bbox[1] = types.MaxVec3(bbox[1], it.max)
	}

	if len(items) <= minLeafItems {
		return c.emitLeaf(items), bbox
	}

	// Median split over the longest bbox axis.
	side := bbox[1].Sub(bbox[0])
	axis := 0
	if side[1] > side[axis] {
		axis = 1
	}
	if side[2] > side[axis] {
		axis = 2
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].center[axis] < items[j].center[axis]
	})
	mid := len(items) / 2

	nodeIdx := int32(len(c.sc.Nodes))
	c.sc.Nodes = append(c.sc.Nodes, BvhNode{})
	c.nodes++

	leftRef, leftBBox := c.partition(items[:mid], depth+1)
	rightRef, rightBBox := c.partition(items[mid:], depth+1)

	node := &c.sc.Nodes[nodeIdx]
	node.Left = leftRef
	node.Right = rightRef
	node.SetLeftBBox(leftBBox)
	node.SetRightBBox(rightBBox)

	return nodeIdx, bbox
}

// Emit the Woop rows and remap entries for a leaf and return its encoded
// reference.
func (c *compiler) emitLeaf(items []workItem) int32 {
	offset := int32(len(c.sc.Woop))
	for _, it := range items {
		c.sc.Woop = append(c.sc.Woop, it.rows[0], it.rows[1], it.rows[2])
		c.sc.WoopToTri = append(c.sc.WoopToTri, it.tri, it.tri, it.tri)
	}
	c.sc.Woop = append(c.sc.Woop, types.Vec4{WoopTerminator})
	c.sc.WoopToTri = append(c.sc.WoopToTri, -1)

	c.leafs++
	return LeafRef(offset)
}
