package renderer

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/tracer"
	"github.com/borealis-render/borealis/types"
)

func testScene(t *testing.T) *scene.Scene {
	t.Helper()

	tris := []scene.Triangle{
		{
			Vertices: [3]types.Vec3{{-10, -1, 10}, {10, -1, 10}, {0, -1, -10}},
			Normals:  [3]types.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
			Material: 0,
		},
	}

	camera := scene.NewCamera(45)
	camera.Position = types.Vec3{0, 1, 5}
	camera.LookAt = types.Vec3{0, 0, 0}
	camera.Update()

	sc, err := scene.Compile(tris, scene.Resources{
		Materials: []scene.Material{
			{Type: scene.DiffuseMaterial, Diffuse: types.Vec3{0.5, 0.5, 0.5}},
		},
		Camera: camera,
	})
	if err != nil {
		t.Fatalf("scene compilation failed: %v", err)
	}
	sc.EnvMap = scene.NewUniformTexture(types.Vec3{0.2, 0.3, 0.4})
	return sc
}

func TestNewDefaultValidation(t *testing.T) {
	opts := Options{FrameW: 16, FrameH: 16}

	if _, err := NewDefault(nil, tracer.NewNaiveScheduler(), opts); err != ErrSceneNotDefined {
		t.Fatalf("expected ErrSceneNotDefined; got %v", err)
	}
	if _, err := NewDefault(&scene.Scene{}, tracer.NewNaiveScheduler(), opts); err != ErrCameraNotDefined {
		t.Fatalf("expected ErrCameraNotDefined; got %v", err)
	}
}

func TestDefaultRendererFrame(t *testing.T) {
	sc := testScene(t)

	r, err := NewDefault(sc, tracer.NewNaiveScheduler(), Options{
		FrameW:          16,
		FrameH:          16,
		SamplesPerPixel: 1,
		NumBounces:      2,
		Exposure:        1.0,
		NumTracers:      1,
		NumWorkers:      2,
	})
	if err != nil {
		t.Fatalf("renderer creation failed: %v", err)
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	stats := r.Stats()
	if len(stats.Tracers) != 1 {
		t.Fatalf("expected stats for one tracer; got %d", len(stats.Tracers))
	}
	var total uint32
	for _, trStat := range stats.Tracers {
		total += trStat.BlockH
	}
	if total != 16 {
		t.Fatalf("expected tracers to cover all 16 rows; got %d", total)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err = r.SaveFrame(path); err != nil {
		t.Fatalf("frame export failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("exported frame is not a valid png: %v", err)
	}
	if bounds := img.Bounds(); bounds.Dx() != 16 || bounds.Dy() != 16 {
		t.Fatalf("expected a 16x16 frame; got %v", bounds)
	}
	// Tone-mapped pixels are fully opaque.
	if _, _, _, a := img.At(8, 8).RGBA(); a != 0xffff {
		t.Fatalf("expected opaque frame pixels; got alpha %d", a)
	}
}
