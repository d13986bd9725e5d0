package timer_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MackanT/WorkTimer/internal/testutil"
	"github.com/MackanT/WorkTimer/internal/timer"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestService_Toggle(t *testing.T) {
	setup := func(t *testing.T) (*timer.Service, *testutil.StubClock) {
		t.Helper()
		svc, _, clock := testutil.NewTestService(t)
		if _, err := svc.AddCustomer("Acme", date("2024-01-01"), 100, "", ""); err != nil {
			t.Fatalf("AddCustomer() error = %v", err)
		}
		if _, err := svc.AddProject("Acme", "Platform", 0); err != nil {
			t.Fatalf("AddProject() error = %v", err)
		}
		return svc, clock
	}

	t.Run("start stop round trip computes derived fields", func(t *testing.T) {
		svc, clock := setup(t)
		if err := svc.AddBonus(date("2024-01-01"), 25); err != nil {
			t.Fatalf("AddBonus() error = %v", err)
		}

		res, err := svc.Toggle("Acme", "Platform", "", 0)
		if err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		if !res.Started {
			t.Fatal("first Toggle() should start a timer")
		}
		if res.Entry.EndTime != nil {
			t.Error("started entry must have no end time")
		}

		clock.Advance(2 * time.Hour)

		res, err = svc.Toggle("Acme", "Platform", "infra work", 0)
		if err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		if res.Started {
			t.Fatal("second Toggle() should stop the timer")
		}

		e := res.Entry
		if e.TotalTime != 2.0 {
			t.Errorf("TotalTime = %v, want 2.0", e.TotalTime)
		}
		if e.Cost != 200 {
			t.Errorf("Cost = %v, want 200", e.Cost)
		}
		if e.UserBonus != 50 {
			t.Errorf("UserBonus = %v, want 50", e.UserBonus)
		}
		if e.Comment != "infra work" {
			t.Errorf("Comment = %q, want %q", e.Comment, "infra work")
		}
	})

	t.Run("third toggle starts a fresh span", func(t *testing.T) {
		svc, clock := setup(t)

		svc.Toggle("Acme", "Platform", "", 0)
		clock.Advance(time.Hour)
		svc.Toggle("Acme", "Platform", "", 0)

		res, err := svc.Toggle("Acme", "Platform", "", 0)
		if err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		if !res.Started {
			t.Error("toggle after a stop should start again")
		}

		entries, err := svc.RecentEntries(10)
		if err != nil {
			t.Fatalf("RecentEntries() error = %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("got %d entries, want 2", len(entries))
		}
	})

	t.Run("concurrent toggles on one pair never double-start", func(t *testing.T) {
		svc, _ := setup(t)

		results := make([]*timer.ToggleResult, 2)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := svc.Toggle("Acme", "Platform", "", 0)
				if err != nil {
					t.Errorf("Toggle() error = %v", err)
					return
				}
				results[i] = res
			}(i)
		}
		wg.Wait()

		started := 0
		for _, res := range results {
			if res != nil && res.Started {
				started++
			}
		}
		if started != 1 {
			t.Errorf("got %d starts, want exactly 1", started)
		}

		entries, err := svc.RecentEntries(10)
		if err != nil {
			t.Fatalf("RecentEntries() error = %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("got %d entries, want 1", len(entries))
		}
		if entries[0].EndTime == nil {
			t.Error("the second toggle should have closed the span")
		}
	})

	t.Run("missing wage resolves to zero, never fails", func(t *testing.T) {
		svc, _, clock := testutil.NewTestService(t)
		// Wage version starts after the span: resolution misses.
		if _, err := svc.AddCustomer("Late", date("2024-06-01"), 80, "", ""); err != nil {
			t.Fatalf("AddCustomer() error = %v", err)
		}
		if _, err := svc.AddProject("Late", "Setup", 0); err != nil {
			t.Fatalf("AddProject() error = %v", err)
		}

		svc.Toggle("Late", "Setup", "", 0)
		clock.Advance(time.Hour)
		res, err := svc.Toggle("Late", "Setup", "", 0)
		if err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		if res.Entry.TotalTime != 1.0 {
			t.Errorf("TotalTime = %v, want 1.0", res.Entry.TotalTime)
		}
		if res.Entry.Cost != 0 {
			t.Errorf("Cost = %v, want 0 on resolution miss", res.Entry.Cost)
		}
	})

	t.Run("unknown pair fails", func(t *testing.T) {
		svc, _ := setup(t)
		if _, err := svc.Toggle("Acme", "Nonexistent", "", 0); err == nil {
			t.Error("Toggle() expected error for unknown project")
		}
		if _, err := svc.Toggle("Nobody", "Platform", "", 0); err == nil {
			t.Error("Toggle() expected error for unknown customer")
		}
	})

	t.Run("blank names are rejected before enqueueing", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Toggle("  ", "Platform", "", 0)
		var verr *timer.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Toggle() error = %v, want ValidationError", err)
		}
	})
}

func TestService_Cancel(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)
	svc.AddCustomer("Acme", date("2024-01-01"), 100, "", "")
	svc.AddProject("Acme", "Platform", 0)

	t.Run("errors when nothing is running", func(t *testing.T) {
		if err := svc.Cancel("Acme", "Platform"); err == nil {
			t.Error("Cancel() expected error with no running timer")
		}
	})

	t.Run("discards the running span", func(t *testing.T) {
		if _, err := svc.Toggle("Acme", "Platform", "", 0); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		if err := svc.Cancel("Acme", "Platform"); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}

		entries, err := svc.RecentEntries(10)
		if err != nil {
			t.Fatalf("RecentEntries() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("got %d entries after cancel, want 0", len(entries))
		}
	})
}

func TestService_AddHistoric(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)
	// Wage 50 from Jan 1, superseded by 100 from Jan 10.
	svc.AddCustomer("Acme", date("2024-01-01"), 50, "", "")
	svc.AddCustomer("Acme", date("2024-01-10"), 100, "", "")
	svc.AddProject("Acme", "Platform", 0)

	t.Run("rates come from the span's start date", func(t *testing.T) {
		id, err := svc.AddHistoric("Acme", "Platform",
			date("2024-01-05").Add(9*time.Hour), date("2024-01-05").Add(11*time.Hour), "old rate", 0)
		if err != nil {
			t.Fatalf("AddHistoric() error = %v", err)
		}
		if id == 0 {
			t.Fatal("AddHistoric() returned id 0")
		}

		entries, _ := svc.RecentEntries(1)
		if entries[0].Wage != 50 {
			t.Errorf("Wage = %v, want 50 (rate effective on the start date)", entries[0].Wage)
		}
		if entries[0].Cost != 100 {
			t.Errorf("Cost = %v, want 100", entries[0].Cost)
		}
	})

	t.Run("spans after the cutover use the new rate", func(t *testing.T) {
		_, err := svc.AddHistoric("Acme", "Platform",
			date("2024-01-12").Add(9*time.Hour), date("2024-01-12").Add(10*time.Hour), "", 0)
		if err != nil {
			t.Fatalf("AddHistoric() error = %v", err)
		}

		entries, _ := svc.RecentEntries(1)
		if entries[0].Wage != 100 {
			t.Errorf("Wage = %v, want 100", entries[0].Wage)
		}
	})
}

func TestService_EditEntry(t *testing.T) {
	setup := func(t *testing.T) (*timer.Service, int64) {
		t.Helper()
		svc, _, _ := testutil.NewTestService(t)
		svc.AddCustomer("Acme", date("2024-01-01"), 100, "", "")
		svc.AddProject("Acme", "Platform", 0)
		svc.AddBonus(date("2024-01-01"), 25)
		id, err := svc.AddHistoric("Acme", "Platform",
			date("2024-01-15").Add(9*time.Hour), date("2024-01-15").Add(11*time.Hour), "", 0)
		if err != nil {
			t.Fatalf("AddHistoric() error = %v", err)
		}
		return svc, id
	}

	t.Run("moving end time recomputes from stored snapshots", func(t *testing.T) {
		svc, id := setup(t)

		// Rates change after the entry was recorded; the edit must keep
		// using the entry's own snapshots, not re-resolve.
		svc.AddBonus(date("2024-01-16"), 50)

		if err := svc.EditEntry(id, "end_time", "2024-01-15 12:00:00"); err != nil {
			t.Fatalf("EditEntry() error = %v", err)
		}

		entries, _ := svc.RecentEntries(1)
		e := entries[0]
		if e.TotalTime != 3.0 {
			t.Errorf("TotalTime = %v, want 3.0", e.TotalTime)
		}
		if e.Cost != 300 {
			t.Errorf("Cost = %v, want 300", e.Cost)
		}
		if e.Bonus != 0.25 {
			t.Errorf("Bonus = %v, want stored snapshot 0.25", e.Bonus)
		}
		if e.UserBonus != 75 {
			t.Errorf("UserBonus = %v, want 75", e.UserBonus)
		}
	})

	t.Run("closing a running span resolves rates", func(t *testing.T) {
		svc, _ := setup(t)

		res, err := svc.Toggle("Acme", "Platform", "", 0)
		if err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		// The open row has no snapshots yet; the closing edit must resolve
		// them instead of pricing the span at zero.
		end := res.Entry.StartTime.Add(2 * time.Hour).Format("2006-01-02 15:04:05")
		if err := svc.EditEntry(res.Entry.ID, "end_time", end); err != nil {
			t.Fatalf("EditEntry() error = %v", err)
		}

		entries, _ := svc.RecentEntries(1)
		e := entries[0]
		if e.EndTime == nil {
			t.Fatal("edit should have closed the span")
		}
		if e.Wage != 100 {
			t.Errorf("Wage = %v, want resolved 100", e.Wage)
		}
		if e.Cost != 200 {
			t.Errorf("Cost = %v, want 200", e.Cost)
		}
		if e.UserBonus != 50 {
			t.Errorf("UserBonus = %v, want 50", e.UserBonus)
		}
	})

	t.Run("moving start time refreshes the date key", func(t *testing.T) {
		svc, id := setup(t)

		if err := svc.EditEntry(id, "start_time", "2024-01-14 09:00:00"); err != nil {
			t.Fatalf("EditEntry() error = %v", err)
		}
		entries, _ := svc.RecentEntries(1)
		if entries[0].DateKey != 20240114 {
			t.Errorf("DateKey = %d, want 20240114", entries[0].DateKey)
		}
	})

	t.Run("editing the comment leaves derived fields alone", func(t *testing.T) {
		svc, id := setup(t)

		if err := svc.EditEntry(id, "comment", "updated"); err != nil {
			t.Fatalf("EditEntry() error = %v", err)
		}
		entries, _ := svc.RecentEntries(1)
		if entries[0].Comment != "updated" {
			t.Errorf("Comment = %q, want %q", entries[0].Comment, "updated")
		}
		if entries[0].TotalTime != 2.0 {
			t.Errorf("TotalTime = %v, want unchanged 2.0", entries[0].TotalTime)
		}
	})

	t.Run("rejects unknown fields and bad values inline", func(t *testing.T) {
		svc, id := setup(t)

		var verr *timer.ValidationError
		if err := svc.EditEntry(id, "customer_id", "2"); !errors.As(err, &verr) {
			t.Errorf("EditEntry(customer_id) error = %v, want ValidationError", err)
		}
		if err := svc.EditEntry(id, "end_time", "yesterday"); !errors.As(err, &verr) {
			t.Errorf("EditEntry(bad time) error = %v, want ValidationError", err)
		}
	})
}

func TestService_Bonuses(t *testing.T) {
	t.Run("percent is stored as a capped fraction", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)

		if err := svc.AddBonus(date("2024-01-01"), 25); err != nil {
			t.Fatalf("AddBonus() error = %v", err)
		}
		bonuses, _ := svc.Bonuses()
		if bonuses[0].Percent != 0.25 {
			t.Errorf("Percent = %v, want 0.25", bonuses[0].Percent)
		}

		if err := svc.AddBonus(date("2024-02-01"), 150); err != nil {
			t.Fatalf("AddBonus() error = %v", err)
		}
		bonuses, _ = svc.Bonuses()
		if bonuses[1].Percent != 1.0 {
			t.Errorf("Percent = %v, want capped 1.0", bonuses[1].Percent)
		}
	})

	t.Run("new bonus closes the open interval", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		svc.AddBonus(date("2024-01-01"), 20)
		svc.AddBonus(date("2024-01-10"), 30)

		bonuses, err := svc.Bonuses()
		if err != nil {
			t.Fatalf("Bonuses() error = %v", err)
		}
		if len(bonuses) != 2 {
			t.Fatalf("got %d bonuses, want 2", len(bonuses))
		}
		if bonuses[0].EndDate == nil {
			t.Fatal("first bonus should be closed")
		}
		if got := bonuses[0].EndDate.Format("2006-01-02"); got != "2024-01-09" {
			t.Errorf("first EndDate = %s, want 2024-01-09", got)
		}
		if bonuses[1].EndDate != nil {
			t.Error("second bonus should be open-ended")
		}
	})

	t.Run("negative percent is rejected", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		var verr *timer.ValidationError
		if err := svc.AddBonus(date("2024-01-01"), -5); !errors.As(err, &verr) {
			t.Errorf("AddBonus() error = %v, want ValidationError", err)
		}
	})
}

func TestService_ValidateStartup(t *testing.T) {
	t.Run("clean schedule passes", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		svc.AddBonus(date("2024-01-01"), 25)
		if err := svc.ValidateStartup(); err != nil {
			t.Errorf("ValidateStartup() error = %v", err)
		}
	})

	t.Run("overlapping intervals are flagged", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		// Overlap can only arise from manual edits, so create it that way.
		mustQuery(t, svc, "INSERT INTO bonus (bonus_percent, start_date, end_date) VALUES (0.2, '2024-01-01', '2024-12-31')")
		mustQuery(t, svc, "INSERT INTO bonus (bonus_percent, start_date) VALUES (0.3, '2024-01-10')")

		if err := svc.ValidateStartup(); err == nil {
			t.Error("ValidateStartup() expected error for overlapping bonus intervals")
		}
	})

	t.Run("duplicate current customer versions are flagged", func(t *testing.T) {
		svc, _, _ := testutil.NewTestService(t)
		if _, err := svc.AddCustomer("Acme", date("2024-01-01"), 100, "", ""); err != nil {
			t.Fatalf("AddCustomer() error = %v", err)
		}
		// The fixed operations always close the prior version; a duplicate
		// can only arise from manual edits.
		mustQuery(t, svc, "INSERT INTO customers (customer_name, wage, valid_from, is_current, inserted_at) VALUES ('Acme', 120, '2024-02-01', 1, '2024-02-01 00:00:00')")

		err := svc.ValidateStartup()
		if err == nil {
			t.Fatal("ValidateStartup() expected error for duplicate current versions")
		}
		if !strings.Contains(err.Error(), "Acme") {
			t.Errorf("ValidateStartup() error = %v, want mention of Acme", err)
		}
	})
}

func mustQuery(t *testing.T, svc *timer.Service, sql string) {
	t.Helper()
	if _, err := svc.Query(sql); err != nil {
		t.Fatalf("Query(%q) error = %v", sql, err)
	}
}

func TestService_CustomerVersioning(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)

	firstID, err := svc.AddCustomer("Acme", date("2024-01-01"), 50, "", "")
	if err != nil {
		t.Fatalf("AddCustomer() error = %v", err)
	}
	svc.AddProject("Acme", "Platform", 0)

	secondID, err := svc.AddCustomer("Acme", date("2024-01-10"), 100, "", "")
	if err != nil {
		t.Fatalf("AddCustomer() v2 error = %v", err)
	}

	t.Run("exactly one current version remains", func(t *testing.T) {
		customers, err := svc.Customers(false)
		if err != nil {
			t.Fatalf("Customers() error = %v", err)
		}
		if len(customers) != 1 {
			t.Fatalf("got %d current customers, want 1", len(customers))
		}
		if customers[0].ID != secondID {
			t.Errorf("current id = %d, want %d", customers[0].ID, secondID)
		}
		if customers[0].Wage != 100 {
			t.Errorf("current wage = %v, want 100", customers[0].Wage)
		}
	})

	t.Run("resolution spans the whole lineage", func(t *testing.T) {
		// Resolving through the old version id still finds the right
		// interval for any date.
		rates, err := svc.ResolveRates(firstID, date("2024-01-05"))
		if err != nil {
			t.Fatalf("ResolveRates() error = %v", err)
		}
		if rates.Wage != 50 {
			t.Errorf("wage on Jan 5 = %v, want 50", rates.Wage)
		}

		rates, err = svc.ResolveRates(firstID, date("2024-01-20"))
		if err != nil {
			t.Fatalf("ResolveRates() error = %v", err)
		}
		if rates.Wage != 100 {
			t.Errorf("wage on Jan 20 = %v, want 100", rates.Wage)
		}
	})

	t.Run("projects follow the new version", func(t *testing.T) {
		projects, err := svc.Projects("Acme", false)
		if err != nil {
			t.Fatalf("Projects() error = %v", err)
		}
		if len(projects) != 1 {
			t.Fatalf("got %d projects, want 1", len(projects))
		}
		if projects[0].CustomerID != secondID {
			t.Errorf("project customer_id = %d, want %d", projects[0].CustomerID, secondID)
		}
	})
}

func TestService_DisableEnable(t *testing.T) {
	svc, _, clock := testutil.NewTestService(t)
	svc.AddCustomer("Acme", date("2024-01-01"), 100, "", "")
	svc.AddProject("Acme", "Platform", 0)

	// Record some history first.
	svc.Toggle("Acme", "Platform", "", 0)
	clock.Advance(time.Hour)
	svc.Toggle("Acme", "Platform", "", 0)

	if err := svc.DisableCustomer("Acme"); err != nil {
		t.Fatalf("DisableCustomer() error = %v", err)
	}

	t.Run("disabled customers disappear from active lists", func(t *testing.T) {
		customers, _ := svc.Customers(false)
		if len(customers) != 0 {
			t.Errorf("got %d active customers, want 0", len(customers))
		}
		all, _ := svc.Customers(true)
		if len(all) != 1 {
			t.Errorf("got %d customers including disabled, want 1", len(all))
		}
	})

	t.Run("history survives disabling", func(t *testing.T) {
		entries, _ := svc.RecentEntries(10)
		if len(entries) != 1 {
			t.Errorf("got %d entries, want 1", len(entries))
		}
	})

	t.Run("enable restores the latest version", func(t *testing.T) {
		if err := svc.EnableCustomer("Acme"); err != nil {
			t.Fatalf("EnableCustomer() error = %v", err)
		}
		customers, _ := svc.Customers(false)
		if len(customers) != 1 {
			t.Errorf("got %d active customers after enable, want 1", len(customers))
		}
	})
}

func TestService_MoveCustomer(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)
	svc.AddCustomer("First", date("2024-01-01"), 10, "", "")
	svc.AddCustomer("Second", date("2024-01-01"), 20, "", "")
	svc.AddCustomer("Third", date("2024-01-01"), 30, "", "")

	if err := svc.MoveCustomer("Third", true); err != nil {
		t.Fatalf("MoveCustomer() error = %v", err)
	}

	customers, _ := svc.Customers(false)
	names := make([]string, len(customers))
	for i, c := range customers {
		names[i] = c.Name
	}
	want := []string{"First", "Third", "Second"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}

	// Moving the top entry up is a no-op, not an error.
	if err := svc.MoveCustomer("First", true); err != nil {
		t.Errorf("MoveCustomer() at edge error = %v", err)
	}
}

func TestService_Summarize(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)
	svc.AddCustomer("Acme", date("2024-01-01"), 100, "", "")
	svc.AddProject("Acme", "Platform", 0)
	svc.AddProject("Acme", "Support", 0)
	svc.AddCustomer("Beta", date("2024-01-01"), 50, "", "")
	svc.AddProject("Beta", "Consulting", 0)
	svc.AddBonus(date("2024-01-01"), 10)

	// Two hours of Platform and one of Support today, plus one Beta hour
	// last week.
	day := date("2024-01-15")
	svc.AddHistoric("Acme", "Platform", day.Add(9*time.Hour), day.Add(11*time.Hour), "", 0)
	svc.AddHistoric("Acme", "Support", day.Add(13*time.Hour), day.Add(14*time.Hour), "", 0)
	lastWeek := date("2024-01-08")
	svc.AddHistoric("Beta", "Consulting", lastWeek.Add(9*time.Hour), lastWeek.Add(10*time.Hour), "", 0)

	t.Run("daily hours cover only today", func(t *testing.T) {
		report, err := svc.Summarize(timer.PeriodDay, timer.MetricHours)
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if len(report.Totals) != 1 {
			t.Fatalf("got %d customer totals, want 1", len(report.Totals))
		}
		if report.Totals[0].Value != 3.0 {
			t.Errorf("Acme total = %v, want 3.0", report.Totals[0].Value)
		}
		if len(report.Rows) != 2 {
			t.Errorf("got %d project rows, want 2", len(report.Rows))
		}
	})

	t.Run("all time includes every customer", func(t *testing.T) {
		report, err := svc.Summarize(timer.PeriodAllTime, timer.MetricHours)
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if len(report.Totals) != 2 {
			t.Fatalf("got %d customer totals, want 2", len(report.Totals))
		}
	})

	t.Run("currency is cost plus bonus", func(t *testing.T) {
		report, err := svc.Summarize(timer.PeriodDay, timer.MetricCurrency)
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		// 3 h x 100 = 300 cost, plus 10% bonus = 330.
		if got := report.Totals[0].Value; got < 329.999 || got > 330.001 {
			t.Errorf("Acme currency total = %v, want 330", got)
		}
	})

	t.Run("weekly range respects ISO weeks", func(t *testing.T) {
		// Jan 15 2024 is a Monday; the Beta entry from Jan 8 falls in the
		// previous ISO week and must not appear.
		report, err := svc.Summarize(timer.PeriodWeek, timer.MetricHours)
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		for _, total := range report.Totals {
			if total.CustomerName == "Beta" {
				t.Error("Beta hours from last ISO week leaked into this week")
			}
		}
	})
}

func TestService_Query(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t)
	svc.AddCustomer("Acme", date("2024-01-01"), 100, "", "")

	t.Run("select returns rows", func(t *testing.T) {
		res, err := svc.Query("SELECT customer_name, wage FROM customers")
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(res.Columns) != 2 {
			t.Fatalf("got %d columns, want 2", len(res.Columns))
		}
		if len(res.Rows) != 1 || res.Rows[0][0] != "Acme" {
			t.Errorf("rows = %v", res.Rows)
		}
	})

	t.Run("update reports affected rows", func(t *testing.T) {
		res, err := svc.Query("UPDATE customers SET wage = 120 WHERE customer_name = 'Acme'")
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if res.RowsAffected != 1 {
			t.Errorf("RowsAffected = %d, want 1", res.RowsAffected)
		}
	})

	t.Run("sql errors come back as values", func(t *testing.T) {
		if _, err := svc.Query("SELECT * FROM no_such_table"); err == nil {
			t.Error("Query() expected error for missing table")
		}
	})

	t.Run("blank statements are rejected", func(t *testing.T) {
		var verr *timer.ValidationError
		_, err := svc.Query("   ")
		if !errors.As(err, &verr) {
			t.Errorf("Query() error = %v, want ValidationError", err)
		}
	})
}
