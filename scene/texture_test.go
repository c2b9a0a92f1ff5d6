package scene

import (
	"testing"

	"github.com/borealis-render/borealis/types"
)

func TestUniformTextureSample(t *testing.T) {
	tex := NewUniformTexture(types.Vec3{0.25, 0.5, 0.75})

	uvs := []types.Vec2{{0, 0}, {0.5, 0.5}, {1, 1}, {-3, 7}}
	for index, uv := range uvs {
		if got := tex.Sample(uv); got != (types.Vec3{0.25, 0.5, 0.75}) {
			t.Fatalf("[uv %d] expected constant color; got %v", index, got)
		}
	}
}

func TestTextureAddressing(t *testing.T) {
	makeTex := func(mode AddressMode) *Texture {
		tex := NewTexture(2, 1, mode)
		tex.SetTexel(0, 0, types.Vec3{1, 0, 0})
		tex.SetTexel(1, 0, types.Vec3{0, 1, 0})
		return tex
	}

	wrap := makeTex(WrapAddress)
	clamp := makeTex(ClampAddress)

	// Texel centers avoid filtering between neighbours.
	if got := wrap.Sample(types.Vec2{0.25, 0.5}); !colorNear(got, types.Vec3{1, 0, 0}) {
		t.Fatalf("expected red texel; got %v", got)
	}
	if got := wrap.Sample(types.Vec2{1.25, 0.5}); !colorNear(got, types.Vec3{1, 0, 0}) {
		t.Fatalf("expected wrapped red texel; got %v", got)
	}
	if got := clamp.Sample(types.Vec2{1.9, 0.5}); !colorNear(got, types.Vec3{0, 1, 0}) {
		t.Fatalf("expected clamped green texel; got %v", got)
	}
}

func TestSampleDir(t *testing.T) {
	tex := NewTexture(1, 2, ClampAddress)
	tex.SetTexel(0, 0, types.Vec3{0, 0, 1})
	tex.SetTexel(0, 1, types.Vec3{0, 1, 0})

	up := tex.SampleDir(types.Vec3{0, 1, 0})
	down := tex.SampleDir(types.Vec3{0, -1, 0})

	if up[2] <= up[1] {
		t.Fatalf("expected the up direction to favour the top texel; got %v", up)
	}
	if down[1] <= down[2] {
		t.Fatalf("expected the down direction to favour the bottom texel; got %v", down)
	}
}

func colorNear(a, b types.Vec3) bool {
	return absDiff(a[0], b[0]) < 1e-4 && absDiff(a[1], b[1]) < 1e-4 && absDiff(a[2], b[2]) < 1e-4
}
