package app

import (
	"path/filepath"
	"testing"

	"github.com/MackanT/WorkTimer/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig(base)
	cfg.Database.Path = filepath.Join(base, "worktimer.db")
	cfg.Database.DimensionStart = "2024-01-01"
	cfg.Database.DimensionEnd = "2024-12-31"
	cfg.Backup.Type = "memory"
	return cfg
}

func TestApp_Lifecycle(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(cfg, "AddCustomer")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := a.AddCustomer("Acme", "2024-01-01", 100, "", ""); err != nil {
		t.Fatalf("AddCustomer() error = %v", err)
	}
	if _, err := a.AddProject("Acme", "Platform", 0); err != nil {
		t.Fatalf("AddProject() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	t.Run("state survives reopen", func(t *testing.T) {
		a, err := New(cfg, "ListCustomers")
		if err != nil {
			t.Fatalf("New() reopen error = %v", err)
		}
		defer a.Close()

		customers, err := a.Customers(false)
		if err != nil {
			t.Fatalf("Customers() error = %v", err)
		}
		if len(customers) != 1 || customers[0].Name != "Acme" {
			t.Errorf("customers = %v", customers)
		}
	})

	t.Run("mutating commands leave an audit row", func(t *testing.T) {
		a, err := New(cfg, "Query")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer a.Close()

		res, err := a.Query("SELECT operation, status FROM operations ORDER BY operation_id")
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(res.Rows) == 0 {
			t.Fatal("no audit rows recorded")
		}
		if res.Rows[0][0] != "AddCustomer" || res.Rows[0][1] != "success" {
			t.Errorf("first audit row = %v", res.Rows[0])
		}
	})
}

func TestApp_RejectsBadDates(t *testing.T) {
	a, err := New(testConfig(t), "AddCustomer")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if _, err := a.AddCustomer("Acme", "01/15/2024", 100, "", ""); err == nil {
		t.Error("AddCustomer() expected error for non-ISO date")
	}
	if _, err := a.AddHistoric("Acme", "P", "2024-01-15", "2024-01-15 11:00:00", "", 0); err == nil {
		t.Error("AddHistoric() expected error for date-only start")
	}
}

func TestApp_Backup(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, "Backup")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if _, err := a.AddCustomer("Acme", "2024-01-01", 100, "", ""); err != nil {
		t.Fatalf("AddCustomer() error = %v", err)
	}

	name, err := a.Backup()
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	names, err := a.Backups()
	if err != nil {
		t.Fatalf("Backups() error = %v", err)
	}
	if len(names) != 1 || names[0] != name {
		t.Errorf("Backups() = %v, want [%s]", names, name)
	}
}
