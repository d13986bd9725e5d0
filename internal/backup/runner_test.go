package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/MackanT/WorkTimer/internal/testutil"
	"github.com/MackanT/WorkTimer/internal/timer"
)

// fileSnapshotter writes fixed bytes to the snapshot path.
type fileSnapshotter struct {
	data []byte
}

func (f *fileSnapshotter) Snapshot(destPath string) error {
	return os.WriteFile(destPath, f.data, 0644)
}

func TestRunner_PlaintextRoundTrip(t *testing.T) {
	dest := NewMemoryDestination()
	r := NewRunner(dest, nil, testutil.FixedClock(), timer.NopLogger{})

	name, err := r.Run(&fileSnapshotter{data: []byte("db contents")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if name != "worktimer-20240115-103000.db" {
		t.Errorf("name = %q, want timestamped .db", name)
	}

	restorePath := filepath.Join(t.TempDir(), "restored.db")
	if err := r.Restore(name, restorePath, ""); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got, err := os.ReadFile(restorePath)
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}
	if string(got) != "db contents" {
		t.Errorf("restored = %q, want original bytes", got)
	}
}

func TestRunner_EncryptedRoundTrip(t *testing.T) {
	keyDir := t.TempDir()
	enc := NewEncryptor(
		filepath.Join(keyDir, "worktimer.pub"),
		filepath.Join(keyDir, "worktimer.key"),
	)
	if enc.IsConfigured() {
		t.Fatal("encryptor configured before setup")
	}
	if err := enc.Setup("hunter2"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !enc.IsConfigured() {
		t.Fatal("encryptor not configured after setup")
	}

	dest := NewMemoryDestination()
	r := NewRunner(dest, enc, testutil.FixedClock(), timer.NopLogger{})

	name, err := r.Run(&fileSnapshotter{data: []byte("secret db")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if filepath.Ext(name) != ".age" {
		t.Errorf("name = %q, want .age suffix", name)
	}

	t.Run("stored bytes are not plaintext", func(t *testing.T) {
		var stored bytes.Buffer
		if err := dest.Get(name, &stored); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if bytes.Contains(stored.Bytes(), []byte("secret db")) {
			t.Error("snapshot stored unencrypted")
		}
	})

	t.Run("restore with the passphrase", func(t *testing.T) {
		restorePath := filepath.Join(t.TempDir(), "restored.db")
		if err := r.Restore(name, restorePath, "hunter2"); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		got, _ := os.ReadFile(restorePath)
		if string(got) != "secret db" {
			t.Errorf("restored = %q, want original bytes", got)
		}
	})

	t.Run("wrong passphrase fails", func(t *testing.T) {
		restorePath := filepath.Join(t.TempDir(), "restored.db")
		if err := r.Restore(name, restorePath, "wrong"); err == nil {
			t.Error("Restore() expected error with wrong passphrase")
		}
		if _, err := os.Stat(restorePath); !os.IsNotExist(err) {
			t.Error("failed restore left a partial file behind")
		}
	})
}

func TestEncryptor_RoundTrip(t *testing.T) {
	keyDir := t.TempDir()
	enc := NewEncryptor(
		filepath.Join(keyDir, "worktimer.pub"),
		filepath.Join(keyDir, "worktimer.key"),
	)
	if err := enc.Setup("first"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	var ciphertext bytes.Buffer
	if err := enc.Encrypt(bytes.NewReader([]byte("payload")), &ciphertext); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	var plaintext bytes.Buffer
	if err := enc.Decrypt("first", bytes.NewReader(ciphertext.Bytes()), &plaintext); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if plaintext.String() != "payload" {
		t.Errorf("Decrypt() = %q, want payload", plaintext.String())
	}
}
