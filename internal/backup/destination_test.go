package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemDestination(t *testing.T) {
	t.Run("put get round trip", func(t *testing.T) {
		d, err := NewFileSystemDestination(filepath.Join(t.TempDir(), "backups"))
		if err != nil {
			t.Fatalf("NewFileSystemDestination() error = %v", err)
		}

		content := []byte("snapshot bytes")
		if err := d.Put("worktimer-20240115-103000.db", bytes.NewReader(content)); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		var out bytes.Buffer
		if err := d.Get("worktimer-20240115-103000.db", &out); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !bytes.Equal(out.Bytes(), content) {
			t.Errorf("Get() = %q, want %q", out.Bytes(), content)
		}
	})

	t.Run("get of missing snapshot fails", func(t *testing.T) {
		d, _ := NewFileSystemDestination(t.TempDir())
		var out bytes.Buffer
		if err := d.Get("nope.db", &out); err == nil {
			t.Error("Get() expected error for missing snapshot")
		}
	})

	t.Run("list is sorted and skips temp files", func(t *testing.T) {
		root := t.TempDir()
		d, _ := NewFileSystemDestination(root)

		d.Put("b.db", strings.NewReader("b"))
		d.Put("a.db", strings.NewReader("a"))
		// A stray temp file from an interrupted Put must not show up.
		os.WriteFile(filepath.Join(root, ".tmp-123"), []byte("junk"), 0644)

		names, err := d.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(names) != 2 || names[0] != "a.db" || names[1] != "b.db" {
			t.Errorf("List() = %v, want [a.db b.db]", names)
		}
	})
}

func TestMemoryDestination(t *testing.T) {
	d := NewMemoryDestination()

	if err := d.Put("x.db", strings.NewReader("data")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	var out bytes.Buffer
	if err := d.Get("x.db", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.String() != "data" {
		t.Errorf("Get() = %q, want data", out.String())
	}

	names, _ := d.List()
	if len(names) != 1 || names[0] != "x.db" {
		t.Errorf("List() = %v", names)
	}
}

func TestNewDestination(t *testing.T) {
	if _, err := NewDestination("memory", ""); err != nil {
		t.Errorf("NewDestination(memory) error = %v", err)
	}
	if _, err := NewDestination("filesystem", ""); err == nil {
		t.Error("NewDestination(filesystem) expected error without dir")
	}
	if _, err := NewDestination("tape", "/dev/tape"); err == nil {
		t.Error("NewDestination() expected error for unknown type")
	}
}
