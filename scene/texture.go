package scene

import (
	"image"
	"math"

	"github.com/borealis-render/borealis/types"
)

type AddressMode uint8

const (
	WrapAddress AddressMode = iota
	ClampAddress
)

// A 2D RGB texture with linear texel values, sampled by normalized UV with
// bilinear filtering. Textures are bound once into a scene and are strictly
// read-only while kernels run.
type Texture struct {
	Width  uint32
	Height uint32
	Mode   AddressMode

	Texels []types.Vec3
}

// Create an empty texture.
func NewTexture(width, height uint32, mode AddressMode) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Mode:   mode,
		Texels: make([]types.Vec3, width*height),
	}
}

// Create a 1x1 texture holding a constant color.
func NewUniformTexture(c types.Vec3) *Texture {
	tex := NewTexture(1, 1, ClampAddress)
	tex.Texels[0] = c
	return tex
}

// Convert a decoded image into a linear RGB texture. The usual 2.2 display
// gamma is removed so texel values are linear radiance factors.
func NewTextureFromImage(img image.Image, mode AddressMode) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(uint32(bounds.Dx()), uint32(bounds.Dy()), mode)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			tex.SetTexel(uint32(x-bounds.Min.X), uint32(y-bounds.Min.Y), types.Vec3{
				toLinear(float32(r) / 65535.0),
				toLinear(float32(g) / 65535.0),
				toLinear(float32(b) / 65535.0),
			})
		}
	}
	return tex
}

func toLinear(v float32) float32 {
	return float32(math.Pow(float64(v), 2.2))
}

// Set a texel value.
func (t *Texture) SetTexel(x, y uint32, c types.Vec3) {
	t.Texels[y*t.Width+x] = c
}

// Sample the texture at normalized UV coordinates with bilinear filtering.
func (t *Texture) Sample(uv types.Vec2) types.Vec3 {
	fx := uv[0]*float32(t.Width) - 0.5
	fy := uv[1]*float32(t.Height) - 0.5

	x0 := int32(floorf(fx))
	y0 := int32(floorf(fy))
	dx := fx - floorf(fx)
	dy := fy - floorf(fy)

	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y0+1)
	c11 := t.texel(x0+1, y0+1)

	top := c00.Mul(1 - dx).Add(c10.Mul(dx))
	bot := c01.Mul(1 - dx).Add(c11.Mul(dx))
	return top.Mul(1 - dy).Add(bot.Mul(dy))
}

// Sample the texture as a latitude-longitude environment map for a world
// space direction.
func (t *Texture) SampleDir(dir types.Vec3) types.Vec3 {
	d := dir.Normalize()
	u := 0.5 + float32(math.Atan2(float64(d[2]), float64(d[0])))/(2.0*math.Pi)
	v := float32(math.Acos(float64(clampf(d[1], -1, 1)))) / math.Pi
	return t.Sample(types.Vec2{u, v})
}

func (t *Texture) texel(x, y int32) types.Vec3 {
	w := int32(t.Width)
	h := int32(t.Height)

	switch t.Mode {
	case WrapAddress:
		x = ((x % w) + w) % w
		y = ((y % h) + h) % h
	default:
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
	}
	return t.Texels[y*w+x]
}

func floorf(v float32) float32 {
	return float32(math.Floor(float64(v)))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
