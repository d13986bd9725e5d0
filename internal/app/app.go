// Package app is the application layer between the CLI and the timer
// engine. It constructs all dependencies from config, exposes high-level
// operations that accept raw string arguments, and manages lifecycle on
// Close.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/MackanT/WorkTimer/internal/backup"
	"github.com/MackanT/WorkTimer/internal/config"
	"github.com/MackanT/WorkTimer/internal/database"
	"github.com/MackanT/WorkTimer/internal/devops"
	"github.com/MackanT/WorkTimer/internal/timer"
)

// App wires the store, dispatcher, service, tracker registry and backup
// pipeline together for one CLI invocation.
type App struct {
	cfg       *config.Config
	store     *database.SQLiteStore
	disp      *timer.Dispatcher
	service   *timer.Service
	registry  *devops.Registry
	encryptor *backup.Encryptor
	runner    *backup.Runner
	clock     timer.Clock
	op        *Operation
	logFile   *os.File
	logger    timer.Logger
}

// New creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Toggle", "AddCustomer").
// The caller must call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	dimStart, dimEnd, err := cfg.DimensionRange()
	if err != nil {
		return nil, fmt.Errorf("reading date dimension config: %w", err)
	}

	store, err := database.New(cfg.Database.Path, dimStart, dimEnd)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}
	logger.Info("starting", "operation", operation, "install", cfg.InstallID)

	// The registry is built before the dispatcher starts, so reading the
	// store directly here is safe.
	customers, err := store.ListCustomers(true)
	if err != nil {
		logFile.Close()
		store.Close()
		return nil, fmt.Errorf("loading customers: %w", err)
	}
	registry := devops.NewRegistry(customers)

	disp := timer.NewDispatcher(logger, timer.UUIDGenerator{})
	clock := timer.RealClock{}
	service := timer.NewService(store, disp, clock, logger, registry)

	if err := service.ValidateStartup(); err != nil {
		logger.Warn("startup validation", "error", err)
	}

	encryptor := backup.NewEncryptor(cfg.Backup.PublicKeyPath, cfg.Backup.PrivateKeyPath)
	var runner *backup.Runner
	dest, err := backup.NewDestination(cfg.Backup.Type, cfg.Backup.Dir)
	if err == nil {
		var enc *backup.Encryptor
		if cfg.Backup.Encrypt {
			enc = encryptor
		}
		runner = backup.NewRunner(dest, enc, clock, logger)
	} else {
		logger.Warn("backup destination unavailable", "error", err)
	}

	return &App{
		cfg:       cfg,
		store:     store,
		disp:      disp,
		service:   service,
		registry:  registry,
		encryptor: encryptor,
		runner:    runner,
		clock:     clock,
		op:        NewOperation(operation, ""),
		logFile:   logFile,
		logger:    logger,
	}, nil
}

// persistOperation saves the operation to the audit log, giving it an
// auto-increment ID. Called only by mutating commands.
func (a *App) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = parameters
	id, err := a.store.CreateOperation(a.op.Operation, parameters, a.clock.Now())
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = id
	return nil
}

// MarkFailed records that the command failed; the audit row is stamped
// with the status on Close.
func (a *App) MarkFailed() {
	a.op.Status = "error"
}

// Customers

// AddCustomer registers a customer or a new wage version of an existing
// one, effective from the given date (YYYY-MM-DD).
func (a *App) AddCustomer(name, startDate string, wage float64, orgURL, patToken string) (int64, error) {
	effectiveFrom, err := timer.ParseDate(startDate)
	if err != nil {
		return 0, err
	}
	if err := a.persistOperation(fmt.Sprintf("customer=%s start=%s", name, startDate)); err != nil {
		return 0, err
	}
	return a.service.AddCustomer(name, effectiveFrom, wage, orgURL, patToken)
}

// UpdateCustomer renames a customer and updates its tracker credentials.
func (a *App) UpdateCustomer(oldName, newName, orgURL, patToken string) error {
	if err := a.persistOperation(fmt.Sprintf("customer=%s new_name=%s", oldName, newName)); err != nil {
		return err
	}
	return a.service.UpdateCustomer(oldName, newName, orgURL, patToken)
}

// DisableCustomer hides a customer from pickers without touching history.
func (a *App) DisableCustomer(name string) error {
	if err := a.persistOperation("customer=" + name); err != nil {
		return err
	}
	return a.service.DisableCustomer(name)
}

// EnableCustomer re-activates a disabled customer's latest version.
func (a *App) EnableCustomer(name string) error {
	if err := a.persistOperation("customer=" + name); err != nil {
		return err
	}
	return a.service.EnableCustomer(name)
}

// MoveCustomer shifts a customer one position in the display order.
func (a *App) MoveCustomer(name string, up bool) error {
	if err := a.persistOperation("customer=" + name); err != nil {
		return err
	}
	return a.service.MoveCustomer(name, up)
}

// Customers lists customers in display order.
func (a *App) Customers(includeDisabled bool) ([]*timer.Customer, error) {
	return a.service.Customers(includeDisabled)
}

// Projects

// AddProject registers a project under a customer.
func (a *App) AddProject(customerName, projectName string, workItemID int64) (int64, error) {
	if err := a.persistOperation(fmt.Sprintf("customer=%s project=%s", customerName, projectName)); err != nil {
		return 0, err
	}
	return a.service.AddProject(customerName, projectName, workItemID)
}

// UpdateProject renames a project and updates its work item reference.
func (a *App) UpdateProject(customerName, projectName, newName string, workItemID int64) error {
	if err := a.persistOperation(fmt.Sprintf("customer=%s project=%s new_name=%s", customerName, projectName, newName)); err != nil {
		return err
	}
	return a.service.UpdateProject(customerName, projectName, newName, workItemID)
}

// DisableProject hides a project from pickers.
func (a *App) DisableProject(customerName, projectName string) error {
	if err := a.persistOperation(fmt.Sprintf("customer=%s project=%s", customerName, projectName)); err != nil {
		return err
	}
	return a.service.DisableProject(customerName, projectName)
}

// EnableProject re-activates a disabled project.
func (a *App) EnableProject(customerName, projectName string) error {
	if err := a.persistOperation(fmt.Sprintf("customer=%s project=%s", customerName, projectName)); err != nil {
		return err
	}
	return a.service.EnableProject(customerName, projectName)
}

// Projects lists a customer's projects.
func (a *App) Projects(customerName string, includeDisabled bool) ([]*timer.Project, error) {
	return a.service.Projects(customerName, includeDisabled)
}

// Bonuses

// AddBonus records a new bonus percentage effective from the given date.
// percent is human-scale (25 means 25%).
func (a *App) AddBonus(startDate string, percent float64) error {
	from, err := timer.ParseDate(startDate)
	if err != nil {
		return err
	}
	if err := a.persistOperation(fmt.Sprintf("start=%s percent=%v", startDate, percent)); err != nil {
		return err
	}
	return a.service.AddBonus(from, percent)
}

// Bonuses lists all bonus intervals, oldest first.
func (a *App) Bonuses() ([]*timer.Bonus, error) {
	return a.service.Bonuses()
}

// Timers and entries

// Toggle starts or stops the timer for a (customer, project) pair.
func (a *App) Toggle(customerName, projectName, comment string, workItemID int64) (*timer.ToggleResult, error) {
	if err := a.persistOperation(fmt.Sprintf("customer=%s project=%s", customerName, projectName)); err != nil {
		return nil, err
	}
	return a.service.Toggle(customerName, projectName, comment, workItemID)
}

// Cancel discards a running timer without recording a span.
func (a *App) Cancel(customerName, projectName string) error {
	if err := a.persistOperation(fmt.Sprintf("customer=%s project=%s", customerName, projectName)); err != nil {
		return err
	}
	return a.service.Cancel(customerName, projectName)
}

// AddHistoric records an already-finished span. start and end use the
// "2006-01-02 15:04:05" layout.
func (a *App) AddHistoric(customerName, projectName, start, end, comment string, workItemID int64) (int64, error) {
	startTime, err := timer.ParseDateTime(start)
	if err != nil {
		return 0, err
	}
	endTime, err := timer.ParseDateTime(end)
	if err != nil {
		return 0, err
	}
	if err := a.persistOperation(fmt.Sprintf("customer=%s project=%s start=%s", customerName, projectName, start)); err != nil {
		return 0, err
	}
	return a.service.AddHistoric(customerName, projectName, startTime, endTime, comment, workItemID)
}

// EditEntry changes one field of a recorded entry, recomputing derived
// values when a time bound moves.
func (a *App) EditEntry(timeID int64, field, value string) error {
	if err := a.persistOperation(fmt.Sprintf("time_id=%d field=%s", timeID, field)); err != nil {
		return err
	}
	return a.service.EditEntry(timeID, field, value)
}

// DeleteEntry removes a recorded entry.
func (a *App) DeleteEntry(timeID int64) error {
	if err := a.persistOperation(fmt.Sprintf("time_id=%d", timeID)); err != nil {
		return err
	}
	return a.service.DeleteEntry(timeID)
}

// RecentEntries returns the newest entries, most recent first.
func (a *App) RecentEntries(limit int) ([]*timer.TimeEntry, error) {
	return a.service.RecentEntries(limit)
}

// Reporting

// Report rolls up closed entries for a period ("day", "week", "month",
// "year", "all") and metric ("hours", "currency").
func (a *App) Report(period, metric string) (*timer.Report, error) {
	p, err := timer.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	m, err := timer.ParseMetric(metric)
	if err != nil {
		return nil, err
	}
	return a.service.Summarize(p, m)
}

// Query runs an ad hoc SQL statement against the database.
func (a *App) Query(sql string) (*timer.QueryResult, error) {
	if err := a.persistOperation(""); err != nil {
		return nil, err
	}
	return a.service.Query(sql)
}

// Work item tracker

// SaveWorkItemComment appends a comment to a work item through the
// customer's tracker connection.
func (a *App) SaveWorkItemComment(customerName string, workItemID int64, text string) error {
	return a.service.SaveWorkItemComment(customerName, workItemID, text)
}

// VerifyConnections checks every configured tracker connection and
// returns per-customer failures.
func (a *App) VerifyConnections() map[string]error {
	return a.registry.Verify()
}

// Backups

// Backup snapshots the database to the configured destination. Returns
// the stored snapshot name.
func (a *App) Backup() (string, error) {
	if a.runner == nil {
		return "", fmt.Errorf("no backup destination configured")
	}
	if err := a.persistOperation(""); err != nil {
		return "", err
	}
	return a.runner.Run(a.service)
}

// RestoreBackup writes a stored snapshot next to the configured database
// path (with a ".restored" suffix). The live database stays open, so the
// user swaps the files in after the process exits.
func (a *App) RestoreBackup(name, passphrase string) error {
	if a.runner == nil {
		return fmt.Errorf("no backup destination configured")
	}
	return a.runner.Restore(name, a.store.Path()+".restored", passphrase)
}

// Backups lists stored snapshot names, oldest first.
func (a *App) Backups() ([]string, error) {
	if a.runner == nil {
		return nil, fmt.Errorf("no backup destination configured")
	}
	return a.runner.List()
}

// SetupEncryption generates the age key pair used for encrypted backups.
func (a *App) SetupEncryption(passphrase string) error {
	if a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	return a.encryptor.Setup(passphrase)
}

// Close drains the dispatcher, stamps the audit row and releases all
// resources.
func (a *App) Close() error {
	var firstErr error

	// Drain the queue first so direct store access below cannot race a
	// queued task.
	a.disp.Close()

	if a.op.Persisted() {
		if err := a.store.FinishOperation(a.op.ID, a.op.Status, a.clock.Now()); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
