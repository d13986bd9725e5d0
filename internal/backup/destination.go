// Package backup snapshots the database to a destination, optionally
// age-encrypted.
package backup

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Destination is a place backup snapshots are written to and restored from.
type Destination interface {
	// Put stores the stream under name. Writes are atomic: a partially
	// written snapshot must never be visible under its final name.
	Put(name string, r io.Reader) error

	// Get streams the named snapshot to w.
	Get(name string, w io.Writer) error

	// List returns stored snapshot names, oldest first.
	List() ([]string, error)
}

// FileSystemDestination stores snapshots as files in a directory.
type FileSystemDestination struct {
	root string
}

// NewFileSystemDestination creates the directory if needed.
func NewFileSystemDestination(root string) (*FileSystemDestination, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}
	return &FileSystemDestination{root: root}, nil
}

var _ Destination = (*FileSystemDestination)(nil)

// Put writes to a temp file in the same directory and renames it into
// place, so readers never observe a half-written snapshot.
func (d *FileSystemDestination) Put(name string, r io.Reader) error {
	tmp, err := os.CreateTemp(d.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(d.root, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming snapshot into place: %w", err)
	}
	return nil
}

func (d *FileSystemDestination) Get(name string, w io.Writer) error {
	f, err := os.Open(filepath.Join(d.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("snapshot not found: %s", name)
		}
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	return nil
}

func (d *FileSystemDestination) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("listing backup directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// MemoryDestination keeps snapshots in memory. Useful for testing.
// Safe for concurrent use.
type MemoryDestination struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryDestination() *MemoryDestination {
	return &MemoryDestination{snapshots: make(map[string][]byte)}
}

var _ Destination = (*MemoryDestination)(nil)

func (d *MemoryDestination) Put(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshots[name] = data
	return nil
}

func (d *MemoryDestination) Get(name string, w io.Writer) error {
	d.mu.RLock()
	data, ok := d.snapshots[name]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("snapshot not found: %s", name)
	}
	_, err := io.Copy(w, bytes.NewReader(data))
	return err
}

func (d *MemoryDestination) List() ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.snapshots))
	for name := range d.snapshots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
