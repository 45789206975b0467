package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestArchiveWriteAndList(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	path, err := a.Write([]byte(`{"items":[]}`), now)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "snapshot-20240510-120000.json" {
		t.Errorf("snapshot name = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `{"items":[]}` {
		t.Errorf("snapshot content = %s", data)
	}

	paths, err := a.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("snapshots = %d, want 1", len(paths))
	}
}

func TestArchiveSkipsIdenticalSnapshot(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	first, err := a.Write([]byte("same"), now)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Write([]byte("same"), now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical data should reuse the existing snapshot")
	}

	paths, _ := a.List()
	if len(paths) != 1 {
		t.Errorf("snapshots = %d, want 1", len(paths))
	}
}

func TestArchiveListOldestFirst(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := a.Write([]byte{byte('a' + i)}, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := a.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(paths))
	}
	for i := 1; i < len(paths); i++ {
		if paths[i-1] >= paths[i] {
			t.Errorf("list not chronological: %v", paths)
		}
	}
}

func TestArchivePrune(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := a.Write([]byte{byte('a' + i)}, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	if err := a.Prune(2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	paths, _ := a.List()
	if len(paths) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(paths))
	}
	// The newest survive.
	if filepath.Base(paths[1]) != "snapshot-20240510-120400.json" {
		t.Errorf("kept = %v", paths)
	}
}

func TestArchiveIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArchive(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := a.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("list = %v, want foreign files ignored", paths)
	}
}
