package scene

import "github.com/borealis-render/borealis/types"

type MaterialType uint8

const (
	EmissiveMaterial MaterialType = iota
	DiffuseMaterial
	ConductorMaterial
	PlasticMaterial
	FresnelBlendMaterial
	DielectricMaterial
	PassThroughMaterial
	SubsurfaceMaterial
)

func (t MaterialType) String() string {
	switch t {
	case EmissiveMaterial:
		return "emissive"
	case DiffuseMaterial:
		return "diffuse"
	case ConductorMaterial:
		return "conductor"
	case PlasticMaterial:
		return "plastic"
	case FresnelBlendMaterial:
		return "fresnelBlend"
	case DielectricMaterial:
		return "dielectric"
	case PassThroughMaterial:
		return "passThrough"
	case SubsurfaceMaterial:
		return "subsurface"
	}

	return "invalid"
}

// Defines a scene material. Materials are plain parameter blocks; the kernels
// copy the block for the hit surface on every bounce and dispatch on Type.
type Material struct {
	// The type of the material.
	Type MaterialType

	// Base reflectance. When Textured is set the color map sampled at the
	// interpolated UV replaces it.
	Diffuse  types.Vec3
	Textured bool

	// Emitted radiance (emissive surfaces only).
	Emissive types.Vec3

	// Microfacet roughness along the two tangent directions. Zero in both
	// selects the perfect specular path.
	RoughnessU float32
	RoughnessV float32

	// Anisotropy direction hint; projected onto the shading tangent plane.
	Tangent types.Vec3

	// Diffuse/specular mix weights for the blended types.
	Kd float32
	Ks float32

	// Index of refraction (dielectric, subsurface boundary).
	IOR float32

	// Fresnel reflectance at normal incidence (fresnelBlend only).
	F0 float32

	// Interior medium id; AirMedium when the surface encloses no volume.
	Medium int32

	// Diffusion profile index and radius scale (subsurface only).
	Profile int32
	SSScale float32
}

var (
	DefaultRoughness float32 = 0.1
	DefaultIOR       float32 = 1.5
	DefaultSSScale   float32 = 1.0
)
