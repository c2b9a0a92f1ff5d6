package compute

import (
	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
)

// Resolved shading data for one surface hit. Material is a per-bounce copy;
// scattering code may overwrite its fields freely without touching the scene.
type surfaceData struct {
	Point     types.Vec3
	Normal    types.Vec3
	GeoNormal types.Vec3
	UV        types.Vec2
	Color     types.Vec3

	Tri      int32
	MatID    int32
	Material scene.Material
}

// Resolve the shading attributes at a hit point by recomputing barycentric
// weights against the original triangle and blending the per-vertex
// attributes.
func (k *kernel) surfaceAt(origin, dir types.Vec3, hit hitInfo) surfaceData {
	tri := k.sc.WoopToTri[hit.WoopIdx]
	point := origin.Add(dir.Mul(hit.T))
	u, v := barycentrics(point, k.sc, tri)
	w := 1.0 - u - v

	base := tri * 3
	normal := k.sc.Normals[base].Mul(w).
		Add(k.sc.Normals[base+1].Mul(u)).
		Add(k.sc.Normals[base+2].Mul(v)).
		Normalize()
	uv := k.sc.UVs[base].Mul(w).
		Add(k.sc.UVs[base+1].Mul(u)).
		Add(k.sc.UVs[base+2].Mul(v))

	matID := k.sc.MaterialIndex[tri]
	sd := surfaceData{
		Point:     point,
		Normal:    normal,
		GeoNormal: hit.Normal.Normalize(),
		UV:        uv,
		Tri:       tri,
		MatID:     matID,
		Material:  k.sc.Materials[matID],
	}

	sd.Color = sd.Material.Diffuse
	if sd.Material.Textured && k.sc.ColorMap != nil {
		sd.Color = k.sc.ColorMap.Sample(uv)
	}
	return sd
}

// Barycentric weights of a point on a triangle's plane; returns the weights
// of the second and third vertex.
func barycentrics(p types.Vec3, sc *scene.Scene, tri int32) (float32, float32) {
	v0, v1, v2 := sc.TriangleVertices(tri)
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	d := p.Sub(v0)

	d11 := e1.Dot(e1)
	d12 := e1.Dot(e2)
	d22 := e2.Dot(e2)
	dp1 := d.Dot(e1)
	dp2 := d.Dot(e2)

	denom := d11*d22 - d12*d12
	if denom == 0 {
		return 0, 0
	}
	inv := 1.0 / denom
	u := (d22*dp1 - d12*dp2) * inv
	v := (d11*dp2 - d12*dp1) * inv
	return u, v
}
