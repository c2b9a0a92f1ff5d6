package scene

import (
	"testing"

	"github.com/borealis-render/borealis/types"
)

func makeTri(v0, v1, v2 types.Vec3, mat int32) Triangle {
	n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	return Triangle{
		Vertices: [3]types.Vec3{v0, v1, v2},
		Normals:  [3]types.Vec3{n, n, n},
		Material: mat,
	}
}

func gridTriangles(count int) []Triangle {
	tris := make([]Triangle, 0, count)
	for i := 0; i < count; i++ {
		x := float32(i)
		tris = append(tris, makeTri(
			types.Vec3{x, 0, 0},
			types.Vec3{x + 1, 0, 0},
			types.Vec3{x, 1, 0},
			0,
		))
	}
	return tris
}

func TestCompileValidation(t *testing.T) {
	camera := NewCamera(45)
	materials := []Material{{Type: DiffuseMaterial}}

	type spec struct {
		tris []Triangle
		res  Resources
	}
	specs := []spec{
		// no triangles
		{nil, Resources{Materials: materials, Camera: camera}},
		// no camera
		{gridTriangles(1), Resources{Materials: materials}},
		// no materials
		{gridTriangles(1), Resources{Camera: camera}},
		// out of range material reference
		{gridTriangles(1), Resources{Materials: nil, Camera: camera}},
	}
	specs[3].res.Materials = materials
	specs[3].tris[0].Material = 5

	for index, s := range specs {
		if _, err := Compile(s.tris, s.res); err == nil {
			t.Fatalf("[spec %d] expected compilation error", index)
		}
	}
}

func TestCompileSingleLeaf(t *testing.T) {
	sc, err := Compile(gridTriangles(2), Resources{
		Materials: []Material{{Type: DiffuseMaterial}},
		Camera:    NewCamera(45),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Nodes) != 1 {
		t.Fatalf("expected a single wrapper node; got %d", len(sc.Nodes))
	}
	root := sc.Nodes[0]
	if root.Left >= 0 || root.Right >= 0 {
		t.Fatalf("expected both root children to be leaf refs; got %d, %d", root.Left, root.Right)
	}

	// Two triangles emit six rows plus a terminator; the empty right leaf
	// adds one more terminator row.
	if len(sc.Woop) != 8 {
		t.Fatalf("expected 8 woop rows; got %d", len(sc.Woop))
	}
	if len(sc.WoopToTri) != len(sc.Woop) {
		t.Fatalf("remap table (%d) not aligned with woop rows (%d)", len(sc.WoopToTri), len(sc.Woop))
	}
	if sc.Woop[6][0] != WoopTerminator || sc.WoopToTri[6] != -1 {
		t.Fatal("expected terminator after the last triangle rows")
	}
	if sc.Woop[LeafOffset(root.Right)][0] != WoopTerminator {
		t.Fatal("expected the empty right leaf to start with a terminator")
	}
}

func TestCompileLeafEncoding(t *testing.T) {
	sc, err := Compile(gridTriangles(64), Resources{
		Materials: []Material{{Type: DiffuseMaterial}},
		Camera:    NewCamera(45),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Nodes) < 2 {
		t.Fatalf("expected an internal hierarchy for 64 triangles; got %d nodes", len(sc.Nodes))
	}

	leafRows := 0
	for _, node := range sc.Nodes {
		for _, ref := range [2]int32{node.Left, node.Right} {
			if ref >= 0 {
				if int(ref) >= len(sc.Nodes) {
					t.Fatalf("internal child %d out of node range", ref)
				}
				continue
			}
			offset := LeafOffset(ref)
			if offset < 0 || int(offset) >= len(sc.Woop) {
				t.Fatalf("leaf offset %d out of woop range", offset)
			}
			for row := offset; sc.Woop[row][0] != WoopTerminator; row += 3 {
				tri := sc.WoopToTri[row]
				if tri < 0 || int(tri) >= sc.TriangleCount() {
					t.Fatalf("leaf row %d remaps to invalid triangle %d", row, tri)
				}
				if sc.WoopToTri[row+1] != tri || sc.WoopToTri[row+2] != tri {
					t.Fatalf("rows of triangle %d are not remap-aligned", tri)
				}
				leafRows += 3
			}
		}
	}
	if leafRows != 64*3 {
		t.Fatalf("expected every triangle to appear in exactly one leaf; saw %d rows", leafRows)
	}

	if len(sc.Vertices) != 64*3 || len(sc.Normals) != 64*3 || len(sc.MaterialIndex) != 64 {
		t.Fatal("attribute arrays are not index aligned with the input triangles")
	}
}

func TestWoopTransform(t *testing.T) {
	v0 := types.Vec3{1, 2, 3}
	v1 := types.Vec3{4, 2, 3}
	v2 := types.Vec3{1, 6, 3}

	rows, ok := WoopTransform(v0, v1, v2)
	if !ok {
		t.Fatal("expected a valid transform")
	}

	eval := func(row types.Vec4, p types.Vec3) float32 {
		return row.Vec3().Dot(p) + row[3]
	}

	type spec struct {
		point      types.Vec3
		expU, expV float32
	}
	specs := []spec{
		{v0, 0, 0},
		{v1, 1, 0},
		{v2, 0, 1},
		{v0.Add(v1).Add(v2).Mul(1.0 / 3.0), 1.0 / 3.0, 1.0 / 3.0},
	}
	for index, s := range specs {
		u := eval(rows[0], s.point)
		v := eval(rows[1], s.point)
		if absDiff(u, s.expU) > 1e-5 || absDiff(v, s.expV) > 1e-5 {
			t.Fatalf("[spec %d] expected barycentrics (%f, %f); got (%f, %f)", index, s.expU, s.expV, u, v)
		}
		// The third coordinate vanishes on the triangle plane.
		if w := eval(rows[2], s.point); absDiff(w, 0) > 1e-5 {
			t.Fatalf("[spec %d] expected zero plane distance; got %f", index, w)
		}
	}

	if _, ok := WoopTransform(v0, v0, v2); ok {
		t.Fatal("expected degenerate triangle rejection")
	}
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
