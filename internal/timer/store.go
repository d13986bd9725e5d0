package timer

import "time"

// Store provides the storage operations the engine needs. Implementations
// are not required to be safe for concurrent use: all calls are serialized
// through the Dispatcher, which owns the single connection.
type Store interface {
	// Customer operations

	// InsertCustomerVersion inserts a new temporal version of a customer.
	// If a current version exists it is closed (valid_to = effectiveFrom - 1
	// day, is_current = 0) and the customer's projects are re-pointed at the
	// new row, all in one transaction. Returns the new customer_id.
	InsertCustomerVersion(name string, effectiveFrom time.Time, wage float64, orgURL, patToken string) (int64, error)

	// RenameCustomer updates the name and DevOps credentials of a customer,
	// propagating the new name to historical time entries.
	RenameCustomer(oldName, newName, orgURL, patToken string) error

	// SetCustomerCurrent flips the is_current flag without touching the
	// temporal bounds. Disabled customers stay resolvable for history.
	SetCustomerCurrent(name string, current bool) error

	// GetCurrentCustomer returns the current version for a name, or nil.
	GetCurrentCustomer(name string) (*Customer, error)

	// ListCustomers returns customer versions, ordered by sort order.
	// When includeDisabled is false only current rows are returned.
	ListCustomers(includeDisabled bool) ([]*Customer, error)

	// SwapCustomerSortOrder exchanges the sort positions of the current
	// customer and its neighbor in the given direction (-1 up, +1 down).
	SwapCustomerSortOrder(name string, direction int) error

	// Project operations

	// UpsertProject creates a project under the customer's current version,
	// or reactivates a previously disabled row with the same name. An
	// already active project adopts the new work item id. Returns the
	// project_id.
	UpsertProject(customerName, projectName string, workItemID int64) (int64, error)

	// RenameProject updates a project's name and work item reference,
	// propagating the new name to historical time entries.
	RenameProject(customerName, projectName, newName string, workItemID int64) error

	// SetProjectCurrent flips a project's is_current flag.
	SetProjectCurrent(customerName, projectName string, current bool) error

	// GetProject returns a project by customer and name, or nil.
	GetProject(customerName, projectName string) (*Project, error)

	// ListProjects returns all projects for a customer's current version.
	ListProjects(customerName string, includeDisabled bool) ([]*Project, error)

	// Bonus operations

	// InsertBonus closes any open-ended bonus (end_date = startDate - 1 day)
	// and inserts the new one in a single transaction. The percent is a
	// fraction (0.25 = 25%).
	InsertBonus(startDate time.Time, percent float64) error

	// ListBonuses returns all bonus rows, oldest first.
	ListBonuses() ([]*Bonus, error)

	// CountBonusesCovering returns how many bonus intervals contain the
	// given date. Startup validation requires this to be at most 1.
	CountBonusesCovering(date time.Time) (int, error)

	// DuplicateCurrentCustomers returns names that have more than one open
	// current version. Startup validation requires none; the fixed
	// operations cannot produce one, but ad hoc SQL can.
	DuplicateCurrentCustomers() ([]string, error)

	// Rate resolution

	// ResolveWage returns the wage of the customer version whose validity
	// interval contains the date. A miss returns 0, not an error.
	ResolveWage(customerID int64, date time.Time) (float64, error)

	// ResolveBonus returns the bonus fraction effective on the date.
	// A miss returns 0, not an error.
	ResolveBonus(date time.Time) (float64, error)

	// Time entry operations

	// FindOpenEntry returns the open span for a (customer, project) pair,
	// or nil when no timer is running.
	FindOpenEntry(customerID, projectID int64) (*TimeEntry, error)

	// OpenEntry inserts a new running span starting at the given instant.
	// Returns the time_id.
	OpenEntry(customerID, projectID int64, start time.Time) (int64, error)

	// CloseEntry writes the end time, comment, work item id and derived
	// fields of a closing span.
	CloseEntry(entry *TimeEntry) error

	// InsertHistoric inserts an already-closed span, bypassing live-timer
	// semantics. Returns the time_id.
	InsertHistoric(entry *TimeEntry) (int64, error)

	// GetEntry returns a time entry by id, or nil.
	GetEntry(timeID int64) (*TimeEntry, error)

	// UpdateEntry rewrites the mutable fields of an entry (time bounds,
	// comment, work item id) together with its derived fields and date key.
	UpdateEntry(entry *TimeEntry) error

	// DeleteEntry removes a time entry row entirely. Used only to discard a
	// just-started, not-yet-meaningful span.
	DeleteEntry(timeID int64) error

	// ListRecentEntries returns the newest entries, most recent first.
	ListRecentEntries(limit int) ([]*TimeEntry, error)

	// Reporting

	// Summarize rolls up entries with date keys in [startKey, endKey] into
	// per-(customer, project) rows plus per-customer totals.
	Summarize(startKey, endKey int, metric Metric) (*Report, error)

	// DateDimensionRange returns the min and max date keys of the date
	// dimension; the "All-Time" period resolves to this range.
	DateDimensionRange() (minKey, maxKey int, err error)

	// PeriodKeyRange resolves a period selector to a [start, end] date-key
	// range using the date dimension's ISO week / month / year columns.
	PeriodKeyRange(p Period, today time.Time) (startKey, endKey int, err error)

	// Ad hoc queries

	// Query executes a caller-supplied SQL statement. Statements that
	// return rows yield a result set; others report affected rows.
	Query(sql string) (*QueryResult, error)

	// Operation audit log

	// CreateOperation records the start of a mutating command.
	CreateOperation(operation, parameters string, startedAt time.Time) (int64, error)

	// FinishOperation stamps an operation's end time and status.
	FinishOperation(id int64, status string, finishedAt time.Time) error

	// Maintenance

	// BackupTo writes a consistent snapshot of the database to destPath.
	BackupTo(destPath string) error

	// Close closes the underlying connection.
	Close() error
}

// QueryResult holds the outcome of an ad hoc query.
type QueryResult struct {
	Columns      []string
	Rows         [][]string
	RowsAffected int64 // only meaningful when Columns is empty
}
