package scene

import (
	"fmt"
	"math"

	"github.com/borealis-render/borealis/types"
)

// Built-in scenes. They are compiled on demand so the renderer can be
// exercised without an external asset pipeline.

// Presets returns the names of the built-in scenes.
func Presets() []string {
	return []string{"cornell", "orbs"}
}

// NewPreset compiles a built-in scene by name.
func NewPreset(name string) (*Scene, error) {
	switch name {
	case "cornell":
		return newCornellScene()
	case "orbs":
		return newOrbScene()
	}
	return nil, fmt.Errorf("scene: unknown preset %q", name)
}

// A cornell-style box showcasing every material type: diffuse walls, a glass
// sphere, a plastic block, a subsurface orb, a brushed conductor panel and a
// smoke volume bounded by pass-through faces, lit by a ceiling disk.
func newCornellScene() (*Scene, error) {
	smoke := Medium{
		Scattering: types.Vec3{0.35, 0.35, 0.35},
		Absorption: types.Vec3{0.03, 0.03, 0.03},
		G:          0.3,
	}
	marble := Medium{
		Scattering: types.Vec3{2.19, 2.62, 3.00},
		Absorption: types.Vec3{0.0021, 0.0041, 0.0071},
		G:          0.0,
	}

	materials := []Material{
		{Type: DiffuseMaterial, Diffuse: types.Vec3{0.75, 0.75, 0.75}, Textured: true},
		{Type: DiffuseMaterial, Diffuse: types.Vec3{0.63, 0.06, 0.05}},
		{Type: DiffuseMaterial, Diffuse: types.Vec3{0.14, 0.45, 0.09}},
		{Type: EmissiveMaterial, Emissive: types.Vec3{18, 18, 18}},
		{Type: DielectricMaterial, Diffuse: types.Vec3{1, 1, 1}, IOR: 1.52, Medium: AirMedium},
		{Type: PlasticMaterial, Diffuse: types.Vec3{0.2, 0.3, 0.75}, Kd: 0.7, Ks: 0.3, RoughnessU: 0.15, RoughnessV: 0.15},
		{Type: SubsurfaceMaterial, Diffuse: types.Vec3{0.83, 0.79, 0.75}, IOR: 1.3, Medium: 1, Profile: 0, SSScale: DefaultSSScale, RoughnessU: 0.05, RoughnessV: 0.05},
		{Type: PassThroughMaterial, Medium: 0},
		{Type: ConductorMaterial, Diffuse: types.Vec3{0.95, 0.93, 0.88}, Ks: 1.0, RoughnessU: 0.02, RoughnessV: 0.25, Tangent: types.Vec3{0, 1, 0}},
		{Type: FresnelBlendMaterial, Diffuse: types.Vec3{0.7, 0.1, 0.12}, F0: 0.08},
	}

	var tris []Triangle

	// Room: floor, ceiling, back wall, left and right walls.
	tris = append(tris, quadTris(
		types.Vec3{-3, 0, 3}, types.Vec3{3, 0, 3}, types.Vec3{3, 0, -3}, types.Vec3{-3, 0, -3}, 0)...)
	tris = append(tris, quadTris(
		types.Vec3{-3, 5, -3}, types.Vec3{3, 5, -3}, types.Vec3{3, 5, 3}, types.Vec3{-3, 5, 3}, 0)...)
	tris = append(tris, quadTris(
		types.Vec3{-3, 0, -3}, types.Vec3{3, 0, -3}, types.Vec3{3, 5, -3}, types.Vec3{-3, 5, -3}, 0)...)
	tris = append(tris, quadTris(
		types.Vec3{-3, 0, 3}, types.Vec3{-3, 0, -3}, types.Vec3{-3, 5, -3}, types.Vec3{-3, 5, 3}, 1)...)
	tris = append(tris, quadTris(
		types.Vec3{3, 0, -3}, types.Vec3{3, 0, 3}, types.Vec3{3, 5, 3}, types.Vec3{3, 5, -3}, 2)...)

	// Ceiling disk light plus its analytic descriptor.
	light := &DiskLight{
		Center:   types.Vec3{0, 4.99, 0},
		Radius:   0.8,
		Normal:   types.Vec3{0, -1, 0},
		Radiance: types.Vec3{18, 18, 18},
	}
	tris = append(tris, diskTris(light.Center, light.Radius, 16, 3)...)

	// Objects.
	tris = append(tris, sphereTris(types.Vec3{-1.4, 1.0, -0.4}, 1.0, 12, 24, 4)...)
	tris = append(tris, boxTris(types.Vec3{0.6, 0, -2.2}, types.Vec3{2.2, 1.6, -0.8}, 5)...)
	tris = append(tris, sphereTris(types.Vec3{1.6, 0.7, 1.2}, 0.7, 12, 24, 6)...)
	tris = append(tris, quadTris(
		types.Vec3{-2.97, 0.4, -1.8}, types.Vec3{-2.97, 0.4, 1.0}, types.Vec3{-2.97, 3.2, 1.0}, types.Vec3{-2.97, 3.2, -1.8}, 8)...)
	tris = append(tris, sphereTris(types.Vec3{-0.2, 0.45, 1.6}, 0.45, 10, 20, 9)...)
	tris = append(tris, boxTris(types.Vec3{-1.0, 2.6, -2.4}, types.Vec3{1.0, 4.2, -1.2}, 7)...)

	camera := NewCamera(42)
	camera.Position = types.Vec3{0, 2.5, 7.5}
	camera.LookAt = types.Vec3{0, 2.3, 0}
	camera.FocalDist = 7.5
	camera.Update()

	return Compile(tris, Resources{
		Materials: materials,
		Media:     []Medium{smoke, marble},
		Profiles:  []DiffusionProfile{NewDipoleProfile(&marble)},
		EnvMap:    NewUniformTexture(types.Vec3{0.02, 0.02, 0.03}),
		ColorMap:  checkerTexture(8, types.Vec3{0.78, 0.78, 0.78}, types.Vec3{0.45, 0.45, 0.5}),
		Light:     light,
		Camera:    camera,
	})
}

// An open scene: textured ground plane, three spheres and a sky gradient.
func newOrbScene() (*Scene, error) {
	materials := []Material{
		{Type: DiffuseMaterial, Diffuse: types.Vec3{0.7, 0.7, 0.7}, Textured: true},
		{Type: ConductorMaterial, Diffuse: types.Vec3{0.9, 0.9, 0.95}, Ks: 1.0},
		{Type: DielectricMaterial, Diffuse: types.Vec3{1, 1, 1}, IOR: 1.5, Medium: AirMedium},
		{Type: FresnelBlendMaterial, Diffuse: types.Vec3{0.2, 0.5, 0.7}, F0: 0.05},
		{Type: EmissiveMaterial, Emissive: types.Vec3{18, 17, 15}},
	}

	var tris []Triangle
	tris = append(tris, quadTris(
		types.Vec3{-20, 0, 20}, types.Vec3{20, 0, 20}, types.Vec3{20, 0, -20}, types.Vec3{-20, 0, -20}, 0)...)
	tris = append(tris, sphereTris(types.Vec3{-2.2, 1, 0}, 1.0, 12, 24, 1)...)
	tris = append(tris, sphereTris(types.Vec3{0, 1, 0}, 1.0, 12, 24, 2)...)
	tris = append(tris, sphereTris(types.Vec3{2.2, 1, 0}, 1.0, 12, 24, 3)...)

	light := &DiskLight{
		Center:   types.Vec3{0, 8, 2},
		Radius:   1.5,
		Normal:   types.Vec3{0, -1, 0},
		Radiance: types.Vec3{18, 17, 15},
	}
	tris = append(tris, diskTris(light.Center, light.Radius, 16, 4)...)

	sky := NewTexture(1, 2, ClampAddress)
	sky.SetTexel(0, 0, types.Vec3{0.35, 0.55, 0.95})
	sky.SetTexel(0, 1, types.Vec3{0.9, 0.9, 0.9})

	camera := NewCamera(50)
	camera.Position = types.Vec3{0, 2.2, 7}
	camera.LookAt = types.Vec3{0, 1, 0}
	camera.FocalDist = 7
	camera.Aperture = 0.05
	camera.Update()

	return Compile(tris, Resources{
		Materials: materials,
		EnvMap:    sky,
		ColorMap:  checkerTexture(16, types.Vec3{0.8, 0.8, 0.8}, types.Vec3{0.25, 0.25, 0.25}),
		Light:     light,
		Camera:    camera,
	})
}

func checkerTexture(cells uint32, a, b types.Vec3) *Texture {
	tex := NewTexture(cells, cells, WrapAddress)
	for y := uint32(0); y < cells; y++ {
		for x := uint32(0); x < cells; x++ {
			if (x+y)%2 == 0 {
				tex.SetTexel(x, y, a)
			} else {
				tex.SetTexel(x, y, b)
			}
		}
	}
	return tex
}

// Two triangles spanning the quad a-b-c-d (counter-clockwise).
func quadTris(a, b, c, d types.Vec3, mat int32) []Triangle {
	n := b.Sub(a).Cross(d.Sub(a)).Normalize()
	uvA, uvB, uvC, uvD := types.Vec2{0, 0}, types.Vec2{1, 0}, types.Vec2{1, 1}, types.Vec2{0, 1}
	return []Triangle{
		{
			Vertices: [3]types.Vec3{a, b, c},
			Normals:  [3]types.Vec3{n, n, n},
			UVs:      [3]types.Vec2{uvA, uvB, uvC},
			Material: mat,
		},
		{
			Vertices: [3]types.Vec3{a, c, d},
			Normals:  [3]types.Vec3{n, n, n},
			UVs:      [3]types.Vec2{uvA, uvC, uvD},
			Material: mat,
		},
	}
}

// Axis-aligned box from min/max corners.
func boxTris(min, max types.Vec3, mat int32) []Triangle {
	var out []Triangle
	// bottom, top
	out = append(out, quadTris(
		types.Vec3{min[0], min[1], min[2]}, types.Vec3{max[0], min[1], min[2]},
		types.Vec3{max[0], min[1], max[2]}, types.Vec3{min[0], min[1], max[2]}, mat)...)
	out = append(out, quadTris(
		types.Vec3{min[0], max[1], max[2]}, types.Vec3{max[0], max[1], max[2]},
		types.Vec3{max[0], max[1], min[2]}, types.Vec3{min[0], max[1], min[2]}, mat)...)
	// front, back
	out = append(out, quadTris(
		types.Vec3{min[0], min[1], max[2]}, types.Vec3{max[0], min[1], max[2]},
		types.Vec3{max[0], max[1], max[2]}, types.Vec3{min[0], max[1], max[2]}, mat)...)
	out = append(out, quadTris(
		types.Vec3{max[0], min[1], min[2]}, types.Vec3{min[0], min[1], min[2]},
		types.Vec3{min[0], max[1], min[2]}, types.Vec3{max[0], max[1], min[2]}, mat)...)
	// left, right
	out = append(out, quadTris(
		types.Vec3{min[0], min[1], min[2]}, types.Vec3{min[0], min[1], max[2]},
		types.Vec3{min[0], max[1], max[2]}, types.Vec3{min[0], max[1], min[2]}, mat)...)
	out = append(out, quadTris(
		types.Vec3{max[0], min[1], max[2]}, types.Vec3{max[0], min[1], min[2]},
		types.Vec3{max[0], max[1], min[2]}, types.Vec3{max[0], max[1], max[2]}, mat)...)
	return out
}

// Fan-tessellated horizontal disk facing down.
func diskTris(center types.Vec3, radius float32, segments int, mat int32) []Triangle {
	n := types.Vec3{0, -1, 0}
	var out []Triangle
	for i := 0; i < segments; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(segments)
		a1 := 2 * math.Pi * float64(i+1) / float64(segments)
		p0 := center.Add(types.Vec3{radius * float32(math.Cos(a0)), 0, radius * float32(math.Sin(a0))})
		p1 := center.Add(types.Vec3{radius * float32(math.Cos(a1)), 0, radius * float32(math.Sin(a1))})
		out = append(out, Triangle{
			Vertices: [3]types.Vec3{center, p0, p1},
			Normals:  [3]types.Vec3{n, n, n},
			UVs:      [3]types.Vec2{{0.5, 0.5}, {0, 0}, {1, 0}},
			Material: mat,
		})
	}
	return out
}

// Latitude/longitude tessellated sphere with smooth normals.
func sphereTris(center types.Vec3, radius float32, rings, segments int, mat int32) []Triangle {
	point := func(ring, seg int) (types.Vec3, types.Vec3, types.Vec2) {
		theta := math.Pi * float64(ring) / float64(rings)
		phi := 2 * math.Pi * float64(seg) / float64(segments)
		n := types.Vec3{
			float32(math.Sin(theta) * math.Cos(phi)),
			float32(math.Cos(theta)),
			float32(math.Sin(theta) * math.Sin(phi)),
		}
		uv := types.Vec2{float32(seg) / float32(segments), float32(ring) / float32(rings)}
		return center.Add(n.Mul(radius)), n, uv
	}

	var out []Triangle
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			p00, n00, t00 := point(ring, seg)
			p10, n10, t10 := point(ring+1, seg)
			p01, n01, t01 := point(ring, seg+1)
			p11, n11, t11 := point(ring+1, seg+1)

			if ring != 0 {
				out = append(out, Triangle{
					Vertices: [3]types.Vec3{p00, p10, p01},
					Normals:  [3]types.Vec3{n00, n10, n01},
					UVs:      [3]types.Vec2{t00, t10, t01},
					Material: mat,
				})
			}
			if ring != rings-1 {
				out = append(out, Triangle{
					Vertices: [3]types.Vec3{p01, p10, p11},
					Normals:  [3]types.Vec3{n01, n10, n11},
					UVs:      [3]types.Vec2{t01, t10, t11},
					Material: mat,
				})
			}
		}
	}
	return out
}
