package timer

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Service is the orchestration layer between the CLI and the store. Every
// storage operation is funneled through the dispatcher so that exactly one
// goroutine ever touches the connection; check-then-act sequences (toggle,
// version supersession) run inside a single dispatched task and are
// therefore atomic with respect to other callers.
type Service struct {
	store     Store
	disp      *Dispatcher
	clock     Clock
	logger    Logger
	workItems WorkItemRegistry
}

// NewService creates a Service with the provided dependencies. workItems
// may be nil when no external tracker is configured.
func NewService(store Store, disp *Dispatcher, clock Clock, logger Logger, workItems WorkItemRegistry) *Service {
	if workItems == nil {
		workItems = NopWorkItemRegistry{}
	}
	return &Service{
		store:     store,
		disp:      disp,
		clock:     clock,
		logger:    logger,
		workItems: workItems,
	}
}

// ValidateStartup checks the temporal invariants the schema cannot express:
// at most one bonus interval covers the current instant, and each customer
// name has at most one open current version.
func (s *Service) ValidateStartup() error {
	now := s.clock.Now()
	_, err := s.disp.Call("ValidateStartup", func() (any, error) {
		n, err := s.store.CountBonusesCovering(now)
		if err != nil {
			return nil, fmt.Errorf("validating bonus schedule: %w", err)
		}
		if n > 1 {
			return nil, fmt.Errorf("bonus schedule is ambiguous: %d intervals cover today", n)
		}
		dups, err := s.store.DuplicateCurrentCustomers()
		if err != nil {
			return nil, fmt.Errorf("validating customer versions: %w", err)
		}
		if len(dups) > 0 {
			return nil, fmt.Errorf("multiple current versions for customer %s", strings.Join(dups, ", "))
		}
		return nil, nil
	})
	return err
}

// Customer operations

// AddCustomer inserts a new temporal version of a customer, superseding any
// current version. wage is the hourly rate in currency units.
func (s *Service) AddCustomer(name string, effectiveFrom time.Time, wage float64, orgURL, patToken string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, validationErr("customer name", "must not be blank")
	}
	if wage < 0 {
		return 0, validationErr("wage", "must not be negative")
	}
	if effectiveFrom.IsZero() {
		return 0, validationErr("start date", "must be set")
	}

	v, err := s.disp.Call("AddCustomer", func() (any, error) {
		return s.store.InsertCustomerVersion(name, effectiveFrom, wage, orgURL, patToken)
	})
	if err != nil {
		return 0, err
	}
	id := v.(int64)
	s.logger.Info("customer version added", "customer", name, "customer_id", id, "wage", wage)
	return id, nil
}

// UpdateCustomer renames a customer and updates its DevOps credentials.
// The rename propagates to historical time entries so display names stay
// consistent.
func (s *Service) UpdateCustomer(oldName, newName, orgURL, patToken string) error {
	if strings.TrimSpace(newName) == "" {
		return validationErr("customer name", "must not be blank")
	}
	_, err := s.disp.Call("UpdateCustomer", func() (any, error) {
		return nil, s.store.RenameCustomer(oldName, newName, orgURL, patToken)
	})
	if err != nil {
		return err
	}
	s.logger.Info("customer updated", "customer", oldName, "new_name", newName)
	return nil
}

// DisableCustomer hides a customer from active selection. Its ledger rows
// and temporal versions are untouched.
func (s *Service) DisableCustomer(name string) error {
	return s.setCustomerCurrent(name, false)
}

// EnableCustomer makes a previously disabled customer selectable again.
func (s *Service) EnableCustomer(name string) error {
	return s.setCustomerCurrent(name, true)
}

func (s *Service) setCustomerCurrent(name string, current bool) error {
	_, err := s.disp.Call("SetCustomerCurrent", func() (any, error) {
		return nil, s.store.SetCustomerCurrent(name, current)
	})
	if err != nil {
		return err
	}
	s.logger.Info("customer flag changed", "customer", name, "is_current", current)
	return nil
}

// MoveCustomer shifts a customer one position up or down in display order.
func (s *Service) MoveCustomer(name string, up bool) error {
	direction := 1
	if up {
		direction = -1
	}
	_, err := s.disp.Call("MoveCustomer", func() (any, error) {
		return nil, s.store.SwapCustomerSortOrder(name, direction)
	})
	return err
}

// Customers lists customers in display order.
func (s *Service) Customers(includeDisabled bool) ([]*Customer, error) {
	v, err := s.disp.Call("ListCustomers", func() (any, error) {
		return s.store.ListCustomers(includeDisabled)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Customer), nil
}

// Project operations

// AddProject creates a project under a customer, reactivating a previously
// disabled project of the same name instead of duplicating it.
func (s *Service) AddProject(customerName, projectName string, workItemID int64) (int64, error) {
	if strings.TrimSpace(projectName) == "" {
		return 0, validationErr("project name", "must not be blank")
	}
	v, err := s.disp.Call("AddProject", func() (any, error) {
		return s.store.UpsertProject(customerName, projectName, workItemID)
	})
	if err != nil {
		return 0, err
	}
	id := v.(int64)
	s.logger.Info("project added", "customer", customerName, "project", projectName, "project_id", id)
	return id, nil
}

// UpdateProject renames a project and updates its default work item.
func (s *Service) UpdateProject(customerName, projectName, newName string, workItemID int64) error {
	if strings.TrimSpace(newName) == "" {
		return validationErr("project name", "must not be blank")
	}
	_, err := s.disp.Call("UpdateProject", func() (any, error) {
		return nil, s.store.RenameProject(customerName, projectName, newName, workItemID)
	})
	return err
}

// DisableProject soft-deletes a project.
func (s *Service) DisableProject(customerName, projectName string) error {
	return s.setProjectCurrent(customerName, projectName, false)
}

// EnableProject reactivates a soft-deleted project.
func (s *Service) EnableProject(customerName, projectName string) error {
	return s.setProjectCurrent(customerName, projectName, true)
}

func (s *Service) setProjectCurrent(customerName, projectName string, current bool) error {
	_, err := s.disp.Call("SetProjectCurrent", func() (any, error) {
		return nil, s.store.SetProjectCurrent(customerName, projectName, current)
	})
	return err
}

// Projects lists a customer's projects.
func (s *Service) Projects(customerName string, includeDisabled bool) ([]*Project, error) {
	v, err := s.disp.Call("ListProjects", func() (any, error) {
		return s.store.ListProjects(customerName, includeDisabled)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Project), nil
}

// Bonus operations

// AddBonus starts a new bonus interval. percent is given in whole percent
// (25 means 25%); it is stored as a fraction capped at 1.0. Any open-ended
// bonus is closed to the day before the new start date.
func (s *Service) AddBonus(startDate time.Time, percent float64) error {
	if startDate.IsZero() {
		return validationErr("start date", "must be set")
	}
	if percent < 0 {
		return validationErr("bonus percent", "must not be negative")
	}
	fraction := percent / 100
	if fraction > 1 {
		fraction = 1
	}
	fraction = roundTo(fraction, 3)

	_, err := s.disp.Call("AddBonus", func() (any, error) {
		return nil, s.store.InsertBonus(startDate, fraction)
	})
	if err != nil {
		return err
	}
	s.logger.Info("bonus added", "percent", percent, "start_date", startDate.Format(DateLayout))
	return nil
}

// Bonuses lists all bonus intervals, oldest first.
func (s *Service) Bonuses() ([]*Bonus, error) {
	v, err := s.disp.Call("ListBonuses", func() (any, error) {
		return s.store.ListBonuses()
	})
	if err != nil {
		return nil, err
	}
	return v.([]*Bonus), nil
}

// Rate resolution

// ResolveRates returns the wage and bonus fraction effective for a customer
// on a date. The two lookups are independent; a miss on either side yields
// zero for that side, so the result is defined for every date.
func (s *Service) ResolveRates(customerID int64, date time.Time) (Rates, error) {
	v, err := s.disp.Call("ResolveRates", func() (any, error) {
		return s.resolveRates(customerID, date)
	})
	if err != nil {
		return Rates{}, err
	}
	return v.(Rates), nil
}

// resolveRates must run on the worker.
func (s *Service) resolveRates(customerID int64, date time.Time) (Rates, error) {
	wage, err := s.store.ResolveWage(customerID, date)
	if err != nil {
		return Rates{}, fmt.Errorf("resolving wage: %w", err)
	}
	bonus, err := s.store.ResolveBonus(date)
	if err != nil {
		return Rates{}, fmt.Errorf("resolving bonus: %w", err)
	}
	return Rates{Wage: wage, BonusPercent: bonus}, nil
}

// Ledger operations

// ToggleResult reports what a Toggle call did.
type ToggleResult struct {
	Started bool
	Entry   *TimeEntry
}

// Toggle starts a timer for the (customer, project) pair, or stops the
// running one. On stop the span's derived fields are computed from the
// rates effective at its start date, and the comment and work item id are
// recorded. The whole check-then-act runs as one dispatched task, so two
// concurrent toggles on the same pair can never both observe "no open span".
func (s *Service) Toggle(customerName, projectName, comment string, workItemID int64) (*ToggleResult, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, validationErr("customer name", "must not be blank")
	}
	if strings.TrimSpace(projectName) == "" {
		return nil, validationErr("project name", "must not be blank")
	}
	now := s.clock.Now()

	v, err := s.disp.Call("Toggle", func() (any, error) {
		customer, project, err := s.lookupPair(customerName, projectName)
		if err != nil {
			return nil, err
		}

		open, err := s.store.FindOpenEntry(customer.ID, project.ID)
		if err != nil {
			return nil, fmt.Errorf("checking for running timer: %w", err)
		}

		if open == nil {
			id, err := s.store.OpenEntry(customer.ID, project.ID, now)
			if err != nil {
				return nil, fmt.Errorf("starting timer: %w", err)
			}
			entry, err := s.store.GetEntry(id)
			if err != nil {
				return nil, err
			}
			return &ToggleResult{Started: true, Entry: entry}, nil
		}

		rates, err := s.resolveRates(customer.ID, open.StartTime)
		if err != nil {
			return nil, err
		}
		end := now
		open.EndTime = &end
		open.Comment = comment
		if workItemID != 0 {
			open.WorkItemID = workItemID
		}
		open.ComputeDerived(rates)
		if err := s.store.CloseEntry(open); err != nil {
			return nil, fmt.Errorf("stopping timer: %w", err)
		}
		return &ToggleResult{Started: false, Entry: open}, nil
	})
	if err != nil {
		return nil, err
	}

	res := v.(*ToggleResult)
	if res.Started {
		s.logger.Info("timer started", "customer", customerName, "project", projectName)
	} else {
		s.logger.Info("timer stopped", "customer", customerName, "project", projectName,
			"hours", fmt.Sprintf("%.2f", res.Entry.TotalTime))
	}
	return res, nil
}

// Cancel discards the running span for a pair without recording any time.
func (s *Service) Cancel(customerName, projectName string) error {
	_, err := s.disp.Call("Cancel", func() (any, error) {
		customer, project, err := s.lookupPair(customerName, projectName)
		if err != nil {
			return nil, err
		}
		open, err := s.store.FindOpenEntry(customer.ID, project.ID)
		if err != nil {
			return nil, err
		}
		if open == nil {
			return nil, fmt.Errorf("no running timer for %s / %s", customerName, projectName)
		}
		return nil, s.store.DeleteEntry(open.ID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("timer cancelled", "customer", customerName, "project", projectName)
	return nil
}

// AddHistoric backfills an already-finished span. Rates are resolved as of
// the span's start date, same as a live close.
func (s *Service) AddHistoric(customerName, projectName string, start, end time.Time, comment string, workItemID int64) (int64, error) {
	if start.IsZero() || end.IsZero() {
		return 0, validationErr("time bounds", "start and end must both be set")
	}

	v, err := s.disp.Call("AddHistoric", func() (any, error) {
		customer, project, err := s.lookupPair(customerName, projectName)
		if err != nil {
			return nil, err
		}
		rates, err := s.resolveRates(customer.ID, start)
		if err != nil {
			return nil, err
		}
		endCopy := end
		entry := &TimeEntry{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			ProjectID:    project.ID,
			ProjectName:  project.Name,
			DateKey:      DateKeyOf(start),
			StartTime:    start,
			EndTime:      &endCopy,
			WorkItemID:   workItemID,
			Comment:      comment,
		}
		entry.ComputeDerived(rates)
		return s.store.InsertHistoric(entry)
	})
	if err != nil {
		return 0, err
	}
	id := v.(int64)
	s.logger.Info("historic entry added", "customer", customerName, "project", projectName, "time_id", id)
	return id, nil
}

// EditEntry changes one editable field of a time entry. The raw value is
// validated and coerced by the field's kind before any storage work is
// enqueued. Changing a time bound recomputes the derived fields from the
// entry's stored wage and bonus snapshots and refreshes its date key.
// Reassigning an entry to another customer or project is not supported.
func (s *Service) EditEntry(timeID int64, field, raw string) error {
	kind, ok := EntryFields[field]
	if !ok {
		return validationErr("field", fmt.Sprintf("%q is not editable", field))
	}
	value, err := CoerceField(field, kind, raw)
	if err != nil {
		return err
	}

	_, err = s.disp.Call("EditEntry", func() (any, error) {
		entry, err := s.store.GetEntry(timeID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, fmt.Errorf("time entry %d not found", timeID)
		}

		wasOpen := entry.EndTime == nil

		switch field {
		case "start_time":
			entry.StartTime = value.(time.Time)
		case "end_time":
			t := value.(time.Time)
			entry.EndTime = &t
		case "comment":
			entry.Comment = value.(string)
		case "work_item_id":
			entry.WorkItemID = value.(int64)
		}

		if field == "start_time" || field == "end_time" {
			entry.DateKey = DateKeyOf(entry.StartTime)
			// A closed entry keeps the rate snapshots taken at close time.
			// An open span has no snapshots yet, so closing it through an
			// edit resolves rates the same way a toggle close does.
			rates := Rates{Wage: entry.Wage, BonusPercent: entry.Bonus}
			if wasOpen && entry.EndTime != nil {
				rates, err = s.resolveRates(entry.CustomerID, entry.StartTime)
				if err != nil {
					return nil, err
				}
			}
			entry.ComputeDerived(rates)
		}
		return nil, s.store.UpdateEntry(entry)
	})
	if err != nil {
		return err
	}
	s.logger.Info("entry edited", "time_id", timeID, "field", field)
	return nil
}

// DeleteEntry removes a time entry row entirely.
func (s *Service) DeleteEntry(timeID int64) error {
	_, err := s.disp.Call("DeleteEntry", func() (any, error) {
		return nil, s.store.DeleteEntry(timeID)
	})
	return err
}

// RecentEntries returns the newest ledger rows, most recent first.
func (s *Service) RecentEntries(limit int) ([]*TimeEntry, error) {
	v, err := s.disp.Call("ListRecentEntries", func() (any, error) {
		return s.store.ListRecentEntries(limit)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*TimeEntry), nil
}

// Reporting

// Summarize aggregates the ledger over the given period ending today.
func (s *Service) Summarize(p Period, m Metric) (*Report, error) {
	today := s.clock.Now()
	v, err := s.disp.Call("Summarize", func() (any, error) {
		startKey, endKey, err := s.store.PeriodKeyRange(p, today)
		if err != nil {
			return nil, fmt.Errorf("resolving period %s: %w", p, err)
		}
		return s.store.Summarize(startKey, endKey, m)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// SummarizeRange aggregates the ledger over an explicit date-key range.
func (s *Service) SummarizeRange(startKey, endKey int, m Metric) (*Report, error) {
	v, err := s.disp.Call("SummarizeRange", func() (any, error) {
		return s.store.Summarize(startKey, endKey, m)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// Ad hoc queries

// Query runs a caller-supplied SQL statement on the worker. The statement
// is user-trusted; errors come back as values, never as worker crashes.
func (s *Service) Query(sql string) (*QueryResult, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, validationErr("query", "must not be blank")
	}
	v, err := s.disp.Call("Query", func() (any, error) {
		return s.store.Query(sql)
	})
	if err != nil {
		return nil, err
	}
	return v.(*QueryResult), nil
}

// Maintenance

// Snapshot writes a consistent copy of the database to destPath. Running
// on the worker guarantees no write is in flight during the copy.
func (s *Service) Snapshot(destPath string) error {
	_, err := s.disp.Call("Snapshot", func() (any, error) {
		return nil, s.store.BackupTo(destPath)
	})
	return err
}

// External work-item tracker

// SaveWorkItemComment appends a comment to a work item through the
// customer's configured tracker connection. The network call runs on the
// calling goroutine, outside the storage queue.
func (s *Service) SaveWorkItemComment(customerName string, workItemID int64, text string) error {
	if workItemID == 0 {
		return validationErr("work item id", "must be set")
	}
	client := s.workItems.ClientFor(customerName)
	if client == nil {
		return fmt.Errorf("no work-item connection configured for %s", customerName)
	}
	if err := client.AddComment(workItemID, text); err != nil {
		s.logger.Warn("work item comment failed", "customer", customerName, "work_item_id", workItemID, "error", err)
		return err
	}
	s.logger.Info("work item comment saved", "customer", customerName, "work_item_id", workItemID)
	return nil
}

// lookupPair resolves current customer and project rows by name.
// Must run on the worker.
func (s *Service) lookupPair(customerName, projectName string) (*Customer, *Project, error) {
	customer, err := s.store.GetCurrentCustomer(customerName)
	if err != nil {
		return nil, nil, err
	}
	if customer == nil {
		return nil, nil, fmt.Errorf("no active customer named %q", customerName)
	}
	project, err := s.store.GetProject(customerName, projectName)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, fmt.Errorf("no project named %q for customer %q", projectName, customerName)
	}
	return customer, project, nil
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
