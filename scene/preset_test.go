package scene

import "testing"

func TestPresetsCompile(t *testing.T) {
	for _, name := range Presets() {
		sc, err := NewPreset(name)
		if err != nil {
			t.Fatalf("[%s] preset failed to build: %v", name, err)
		}
		if sc.Camera == nil {
			t.Fatalf("[%s] preset has no camera", name)
		}
		if sc.TriangleCount() == 0 {
			t.Fatalf("[%s] preset has no geometry", name)
		}
		if len(sc.Materials) == 0 {
			t.Fatalf("[%s] preset has no materials", name)
		}
		if sc.EnvMap == nil {
			t.Fatalf("[%s] preset has no environment map", name)
		}

		for _, matID := range sc.MaterialIndex {
			if int(matID) >= len(sc.Materials) {
				t.Fatalf("[%s] triangle references material %d out of %d", name, matID, len(sc.Materials))
			}
		}
	}
}

func TestUnknownPreset(t *testing.T) {
	if _, err := NewPreset("no-such-preset"); err == nil {
		t.Fatal("expected an error for an unknown preset")
	}
}
