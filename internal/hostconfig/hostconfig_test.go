package hostconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Screen.Width != 0x100 || cfg.Screen.Height != 0x100 {
		t.Fatalf("default screen size = %dx%d, want 256x256", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.FS.Root != "." {
		t.Fatalf("default fs root = %q, want \".\"", cfg.FS.Root)
	}
}

func TestLoadFillsMissingFieldsFromDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uxnhost.yaml")
	yaml := "screen:\n  zoom: 3\nfilesystem:\n  root: /roms\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Screen.Width != 0x100 {
		t.Fatalf("Width = %d, want default 256 when omitted", cfg.Screen.Width)
	}
	if cfg.Screen.Zoom != 3 {
		t.Fatalf("Zoom = %d, want 3", cfg.Screen.Zoom)
	}
	if cfg.FS.Root != "/roms" {
		t.Fatalf("Root = %q, want /roms", cfg.FS.Root)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestKeyMapParsesIntoStringMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uxnhost.yaml")
	yaml := "keymap:\n  Up: Up\n  z: A\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.KeyMap["z"] != "A" {
		t.Fatalf("KeyMap[\"z\"] = %q, want \"A\"", cfg.KeyMap["z"])
	}
}
