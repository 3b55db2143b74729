package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/jointmorph/pkg/formats"
)

const bundleV1 = `
model:
  name: v1
  joints: [{name: root}]
`

const bundleV2 = `
model:
  name: v2
  joints: [{name: root}, {name: arm, parent: root}]
`

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestIsBundleFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"hero.yaml", true},
		{"hero.YML", true},
		{"rig.gltf", true},
		{"rig.glb", true},
		{"notes.txt", false},
		{"hero.yaml.swp", false},
	}

	for _, tt := range tests {
		if got := IsBundleFile(tt.path); got != tt.want {
			t.Errorf("IsBundleFile(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.yaml")
	writeFile(t, path, bundleV1)

	w, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "other.yaml"), bundleV1)
	writeFile(t, path, bundleV2)

	select {
	case got := <-w.Events:
		if got != path {
			t.Errorf("expected event for %s, got %s", path, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatcherDirectory(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	path := filepath.Join(dir, "rig.yml")
	writeFile(t, path, bundleV1)

	select {
	case got := <-w.Events:
		if got != path {
			t.Errorf("expected event for %s, got %s", path, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatcherMissingPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing path")
	}
	if _, err := New(); err == nil {
		t.Error("expected error for no paths")
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Error("expected Events to be closed")
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.yaml")
	writeFile(t, path, bundleV1)

	w, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	writeFile(t, path, bundleV2)

	var got *formats.Bundle
	err = w.Reload(ctx, 30, func(p string, b *formats.Bundle) {
		got = b
		cancel()
	})
	if err != context.Canceled {
		t.Fatalf("expected cancel after reload, got %v", err)
	}
	if got == nil || got.Model.Name != "v2" || len(got.Model.Joints) != 2 {
		t.Errorf("expected reloaded v2 bundle, got %+v", got)
	}
}
