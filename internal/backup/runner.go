package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MackanT/WorkTimer/internal/timer"
)

// Snapshotter produces a consistent database snapshot at the given path.
// The path must not exist beforehand; VACUUM INTO refuses to overwrite.
type Snapshotter interface {
	Snapshot(destPath string) error
}

// Runner orchestrates the snapshot-encrypt-store pipeline.
type Runner struct {
	dest   Destination
	enc    *Encryptor // nil means snapshots are stored in plaintext
	clock  timer.Clock
	logger timer.Logger
}

// NewRunner creates a Runner. enc may be nil to disable encryption.
func NewRunner(dest Destination, enc *Encryptor, clock timer.Clock, logger timer.Logger) *Runner {
	return &Runner{dest: dest, enc: enc, clock: clock, logger: logger}
}

// Run takes a snapshot and stores it at the destination. Returns the
// stored snapshot name.
func (r *Runner) Run(src Snapshotter) (string, error) {
	tmpDir, err := os.MkdirTemp("", "worktimer-backup-")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, "snapshot.db")
	if err := src.Snapshot(tmpPath); err != nil {
		return "", fmt.Errorf("taking snapshot: %w", err)
	}

	name := "worktimer-" + r.clock.Now().Format("20060102-150405") + ".db"

	f, err := os.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if r.enc != nil && r.enc.IsConfigured() {
		name += ".age"
		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(r.enc.Encrypt(f, pw))
		}()
		if err := r.dest.Put(name, pr); err != nil {
			return "", fmt.Errorf("storing encrypted snapshot: %w", err)
		}
	} else if err := r.dest.Put(name, f); err != nil {
		return "", fmt.Errorf("storing snapshot: %w", err)
	}

	r.logger.Info("backup stored", "name", name, "encrypted", strings.HasSuffix(name, ".age"))
	return name, nil
}

// Restore fetches a stored snapshot and writes it to destPath, decrypting
// with the passphrase when the snapshot is encrypted. The write is atomic.
func (r *Runner) Restore(name, destPath, passphrase string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating restore directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".restore-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { tmp.Close(); os.Remove(tmpPath) }

	if strings.HasSuffix(name, ".age") {
		if r.enc == nil {
			cleanup()
			return fmt.Errorf("snapshot %s is encrypted but no key pair is configured", name)
		}
		pr, pw := io.Pipe()
		go func() {
			pw.CloseWithError(r.dest.Get(name, pw))
		}()
		if err := r.enc.Decrypt(passphrase, pr, tmp); err != nil {
			cleanup()
			return fmt.Errorf("restoring %s: %w", name, err)
		}
	} else if err := r.dest.Get(name, tmp); err != nil {
		cleanup()
		return fmt.Errorf("restoring %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing restored file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("moving restored file into place: %w", err)
	}

	r.logger.Info("backup restored", "name", name, "path", destPath)
	return nil
}

// List returns the stored snapshot names, oldest first.
func (r *Runner) List() ([]string, error) {
	return r.dest.List()
}
