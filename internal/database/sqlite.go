// Package database implements timer.Store on SQLite.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MackanT/WorkTimer/internal/database/migrations"
	"github.com/MackanT/WorkTimer/internal/timer"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the timer.Store interface. It is not safe for
// concurrent use; the dispatcher serializes all access onto one goroutine,
// which is also why a single connection suffices.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path, applies pending migrations,
// and populates the date dimension for the given horizon if it is empty.
// path can be a file path or ":memory:" for tests.
func New(path string, horizonStart, horizonEnd time.Time) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.populateDates(horizonStart, horizonEnd); err != nil {
		db.Close()
		return nil, fmt.Errorf("populating date dimension: %w", err)
	}
	return s, nil
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the schema relies on.
func OpenConnection(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite defaults foreign keys to OFF for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return db, nil
}

// populateDates fills the date dimension with one row per day in
// [start, end]. A no-op when the table already has rows.
func (s *SQLiteStore) populateDates(start, end time.Time) error {
	var count int
	if err := s.db.QueryRow("SELECT count(*) FROM dates").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO dates (date_key, date, year, month, week, day)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		_, week := d.ISOWeek()
		_, err := stmt.Exec(timer.DateKeyOf(d), d.Format(timer.DateLayout),
			d.Year(), int(d.Month()), week, d.Day())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Customer operations

func (s *SQLiteStore) InsertCustomerVersion(name string, effectiveFrom time.Time, wage float64, orgURL, patToken string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Close the prior current version, if any.
	var oldID int64
	var oldSort sql.NullInt64
	err = tx.QueryRow(`
		SELECT customer_id, sort_order FROM customers
		WHERE customer_name = ? AND is_current = 1
		ORDER BY customer_id DESC LIMIT 1`, name).Scan(&oldID, &oldSort)
	hasPrior := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("finding current version: %w", err)
	}

	sortOrder := int64(1)
	if hasPrior {
		validTo := timer.DayBefore(effectiveFrom).Format(timer.DateLayout)
		_, err = tx.Exec(`
			UPDATE customers SET is_current = 0, valid_to = ?
			WHERE customer_name = ? AND is_current = 1`, validTo, name)
		if err != nil {
			return 0, fmt.Errorf("closing current version: %w", err)
		}
		sortOrder = oldSort.Int64
	} else {
		err = tx.QueryRow(`SELECT coalesce(max(sort_order), 0) + 1 FROM customers`).Scan(&sortOrder)
		if err != nil {
			return 0, fmt.Errorf("computing sort order: %w", err)
		}
	}

	res, err := tx.Exec(`
		INSERT INTO customers (customer_name, wage, sort_order, org_url, pat_token,
			valid_from, valid_to, is_current, inserted_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, 1, ?)`,
		name, wage, sortOrder, orgURL, patToken,
		effectiveFrom.Format(timer.DateLayout), time.Now().Format(timer.TimeLayout))
	if err != nil {
		return 0, fmt.Errorf("inserting customer version: %w", err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// Re-point projects at the new version so toggles find them.
	if hasPrior {
		_, err = tx.Exec(`UPDATE projects SET customer_id = ? WHERE customer_id = ?`, newID, oldID)
		if err != nil {
			return 0, fmt.Errorf("moving projects to new version: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return newID, nil
}

func (s *SQLiteStore) RenameCustomer(oldName, newName, orgURL, patToken string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE customers SET customer_name = ?, org_url = ?, pat_token = ?
		WHERE customer_name = ?`, newName, orgURL, patToken, oldName)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no customer named %q", oldName)
	}

	// Keep denormalized ledger names in sync.
	_, err = tx.Exec(`UPDATE time SET customer_name = ? WHERE customer_name = ?`, newName, oldName)
	if err != nil {
		return fmt.Errorf("renaming ledger rows: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) SetCustomerCurrent(name string, current bool) error {
	if !current {
		_, err := s.db.Exec(`UPDATE customers SET is_current = 0 WHERE customer_name = ?`, name)
		return err
	}
	// Re-enabling applies only to the latest open version of the lineage.
	_, err := s.db.Exec(`
		UPDATE customers SET is_current = 1
		WHERE customer_name = ? AND valid_to IS NULL
		AND customer_id = (
			SELECT customer_id FROM customers
			WHERE customer_name = ? AND valid_to IS NULL
			ORDER BY datetime(inserted_at) DESC LIMIT 1
		)`, name, name)
	return err
}

const customerColumns = `customer_id, customer_name, wage, sort_order, org_url,
	pat_token, valid_from, valid_to, is_current, inserted_at`

func (s *SQLiteStore) GetCurrentCustomer(name string) (*timer.Customer, error) {
	row := s.db.QueryRow(`
		SELECT `+customerColumns+` FROM customers
		WHERE customer_name = ? AND is_current = 1
		ORDER BY customer_id DESC LIMIT 1`, name)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding customer %q: %w", name, err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCustomers(includeDisabled bool) ([]*timer.Customer, error) {
	query := `
		SELECT ` + customerColumns + ` FROM customers
		WHERE valid_to IS NULL`
	if !includeDisabled {
		query += ` AND is_current = 1`
	}
	query += ` ORDER BY sort_order, customer_name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*timer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *SQLiteStore) SwapCustomerSortOrder(name string, direction int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var id, sort int64
	err = tx.QueryRow(`
		SELECT customer_id, sort_order FROM customers
		WHERE customer_name = ? AND is_current = 1
		ORDER BY customer_id DESC LIMIT 1`, name).Scan(&id, &sort)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no active customer named %q", name)
	}
	if err != nil {
		return err
	}

	comparison, order := "<", "DESC"
	if direction > 0 {
		comparison, order = ">", "ASC"
	}
	var neighborID, neighborSort int64
	err = tx.QueryRow(`
		SELECT customer_id, sort_order FROM customers
		WHERE is_current = 1 AND valid_to IS NULL AND sort_order `+comparison+` ?
		ORDER BY sort_order `+order+` LIMIT 1`, sort).Scan(&neighborID, &neighborSort)
	if errors.Is(err, sql.ErrNoRows) {
		// Already at the edge.
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE customers SET sort_order = ? WHERE customer_id = ?`, neighborSort, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE customers SET sort_order = ? WHERE customer_id = ?`, sort, neighborID); err != nil {
		return err
	}
	return tx.Commit()
}

// Project operations

func (s *SQLiteStore) UpsertProject(customerName, projectName string, workItemID int64) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var customerID int64
	err = tx.QueryRow(`
		SELECT customer_id FROM customers
		WHERE customer_name = ? AND is_current = 1
		ORDER BY customer_id DESC LIMIT 1`, customerName).Scan(&customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no active customer named %q", customerName)
	}
	if err != nil {
		return 0, err
	}

	var projectID int64
	var isCurrent bool
	err = tx.QueryRow(`
		SELECT project_id, is_current FROM projects
		WHERE project_name = ? AND customer_id = ?`, projectName, customerID).Scan(&projectID, &isCurrent)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.Exec(`
			INSERT INTO projects (customer_id, project_name, work_item_id, is_current)
			VALUES (?, ?, ?, 1)`, customerID, projectName, workItemID)
		if err != nil {
			return 0, fmt.Errorf("inserting project: %w", err)
		}
		projectID, err = res.LastInsertId()
		if err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	case !isCurrent:
		// Reactivate the existing row instead of duplicating the name.
		_, err := tx.Exec(`
			UPDATE projects SET is_current = 1, work_item_id = ?
			WHERE project_id = ?`, workItemID, projectID)
		if err != nil {
			return 0, fmt.Errorf("reactivating project: %w", err)
		}
	default:
		// Already active; adopt the new work item reference.
		_, err := tx.Exec(`
			UPDATE projects SET work_item_id = ?
			WHERE project_id = ?`, workItemID, projectID)
		if err != nil {
			return 0, fmt.Errorf("updating project: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return projectID, nil
}

func (s *SQLiteStore) RenameProject(customerName, projectName, newName string, workItemID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE projects SET project_name = ?, work_item_id = ?
		WHERE project_name = ? AND customer_id IN (
			SELECT customer_id FROM customers WHERE customer_name = ? AND is_current = 1
		)`, newName, workItemID, projectName, customerName)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no project named %q for customer %q", projectName, customerName)
	}

	_, err = tx.Exec(`
		UPDATE time SET project_name = ?
		WHERE project_name = ? AND customer_name = ?`, newName, projectName, customerName)
	if err != nil {
		return fmt.Errorf("renaming ledger rows: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) SetProjectCurrent(customerName, projectName string, current bool) error {
	_, err := s.db.Exec(`
		UPDATE projects SET is_current = ?
		WHERE project_name = ? AND customer_id IN (
			SELECT customer_id FROM customers WHERE customer_name = ?
		)`, current, projectName, customerName)
	return err
}

func (s *SQLiteStore) GetProject(customerName, projectName string) (*timer.Project, error) {
	row := s.db.QueryRow(`
		SELECT p.project_id, p.customer_id, p.project_name, p.work_item_id, p.is_current
		FROM projects p
		JOIN customers c ON c.customer_id = p.customer_id
		WHERE c.customer_name = ? AND c.is_current = 1
			AND p.project_name = ? AND p.is_current = 1
		ORDER BY p.project_id DESC LIMIT 1`, customerName, projectName)

	var p timer.Project
	err := row.Scan(&p.ID, &p.CustomerID, &p.Name, &p.WorkItemID, &p.IsCurrent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding project %q: %w", projectName, err)
	}
	return &p, nil
}

func (s *SQLiteStore) ListProjects(customerName string, includeDisabled bool) ([]*timer.Project, error) {
	query := `
		SELECT p.project_id, p.customer_id, p.project_name, p.work_item_id, p.is_current
		FROM projects p
		JOIN customers c ON c.customer_id = p.customer_id
		WHERE c.customer_name = ? AND c.is_current = 1`
	if !includeDisabled {
		query += ` AND p.is_current = 1`
	}
	query += ` ORDER BY p.project_name`

	rows, err := s.db.Query(query, customerName)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*timer.Project
	for rows.Next() {
		var p timer.Project
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.Name, &p.WorkItemID, &p.IsCurrent); err != nil {
			return nil, err
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// Bonus operations

func (s *SQLiteStore) InsertBonus(startDate time.Time, percent float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	dayBefore := timer.DayBefore(startDate).Format(timer.DateLayout)
	if _, err := tx.Exec(`UPDATE bonus SET end_date = ? WHERE end_date IS NULL`, dayBefore); err != nil {
		return fmt.Errorf("closing open bonus: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO bonus (bonus_percent, start_date) VALUES (?, ?)`,
		percent, startDate.Format(timer.DateLayout))
	if err != nil {
		return fmt.Errorf("inserting bonus: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListBonuses() ([]*timer.Bonus, error) {
	rows, err := s.db.Query(`
		SELECT bonus_id, bonus_percent, start_date, end_date
		FROM bonus ORDER BY date(start_date), bonus_id`)
	if err != nil {
		return nil, fmt.Errorf("listing bonuses: %w", err)
	}
	defer rows.Close()

	var bonuses []*timer.Bonus
	for rows.Next() {
		var b timer.Bonus
		var start string
		var end sql.NullString
		if err := rows.Scan(&b.ID, &b.Percent, &start, &end); err != nil {
			return nil, err
		}
		if b.StartDate, err = time.Parse(timer.DateLayout, start); err != nil {
			return nil, fmt.Errorf("parsing bonus start date: %w", err)
		}
		if end.Valid {
			t, err := time.Parse(timer.DateLayout, end.String)
			if err != nil {
				return nil, fmt.Errorf("parsing bonus end date: %w", err)
			}
			b.EndDate = &t
		}
		bonuses = append(bonuses, &b)
	}
	return bonuses, rows.Err()
}

func (s *SQLiteStore) CountBonusesCovering(date time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT count(*) FROM bonus
		WHERE date(?) BETWEEN date(start_date) AND date(ifnull(end_date, ?))`,
		date.Format(timer.DateLayout), timer.OpenEndSentinel).Scan(&n)
	return n, err
}

func (s *SQLiteStore) DuplicateCurrentCustomers() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT customer_name FROM customers
		WHERE is_current = 1 AND valid_to IS NULL
		GROUP BY customer_name HAVING count(*) > 1
		ORDER BY customer_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Rate resolution

func (s *SQLiteStore) ResolveWage(customerID int64, date time.Time) (float64, error) {
	// The id may belong to an old version; resolve across the name lineage.
	var wage float64
	err := s.db.QueryRow(`
		SELECT wage FROM customers
		WHERE customer_name = (SELECT customer_name FROM customers WHERE customer_id = ?)
			AND date(?) BETWEEN date(valid_from) AND date(ifnull(valid_to, ?))
		ORDER BY customer_id DESC LIMIT 1`,
		customerID, date.Format(timer.DateLayout), timer.OpenEndSentinel).Scan(&wage)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil // resolution miss: defined zero-rate fallback
	}
	if err != nil {
		return 0, fmt.Errorf("resolving wage: %w", err)
	}
	return wage, nil
}

func (s *SQLiteStore) ResolveBonus(date time.Time) (float64, error) {
	var percent float64
	err := s.db.QueryRow(`
		SELECT bonus_percent FROM bonus
		WHERE date(?) BETWEEN date(start_date) AND date(ifnull(end_date, ?))
		ORDER BY bonus_id DESC LIMIT 1`,
		date.Format(timer.DateLayout), timer.OpenEndSentinel).Scan(&percent)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("resolving bonus: %w", err)
	}
	return percent, nil
}

// Time entry operations

const entryColumns = `time_id, customer_id, customer_name, project_id, project_name,
	date_key, start_time, end_time, total_time, wage, bonus, cost, user_bonus,
	work_item_id, comment`

func (s *SQLiteStore) FindOpenEntry(customerID, projectID int64) (*timer.TimeEntry, error) {
	row := s.db.QueryRow(`
		SELECT `+entryColumns+` FROM time
		WHERE customer_id = ? AND project_id = ? AND end_time IS NULL
		ORDER BY time_id DESC LIMIT 1`, customerID, projectID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding open entry: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) OpenEntry(customerID, projectID int64, start time.Time) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO time (customer_id, customer_name, project_id, project_name, date_key, start_time)
		VALUES (
			?,
			(SELECT customer_name FROM customers WHERE customer_id = ?),
			?,
			(SELECT project_name FROM projects WHERE project_id = ?),
			?, ?
		)`,
		customerID, customerID, projectID, projectID,
		timer.DateKeyOf(start), start.Format(timer.TimeLayout))
	if err != nil {
		return 0, fmt.Errorf("opening entry: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) CloseEntry(entry *timer.TimeEntry) error {
	if entry.EndTime == nil {
		return fmt.Errorf("closing entry %d: end time not set", entry.ID)
	}
	res, err := s.db.Exec(`
		UPDATE time SET end_time = ?, total_time = ?, wage = ?, bonus = ?,
			cost = ?, user_bonus = ?, work_item_id = ?, comment = ?
		WHERE time_id = ?`,
		entry.EndTime.Format(timer.TimeLayout), entry.TotalTime, entry.Wage, entry.Bonus,
		entry.Cost, entry.UserBonus, entry.WorkItemID, entry.Comment, entry.ID)
	if err != nil {
		return fmt.Errorf("closing entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("time entry %d not found", entry.ID)
	}
	return nil
}

func (s *SQLiteStore) InsertHistoric(entry *timer.TimeEntry) (int64, error) {
	if entry.EndTime == nil {
		return 0, fmt.Errorf("historic entry requires an end time")
	}
	res, err := s.db.Exec(`
		INSERT INTO time (customer_id, customer_name, project_id, project_name,
			date_key, start_time, end_time, total_time, wage, bonus, cost,
			user_bonus, work_item_id, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.CustomerID, entry.CustomerName, entry.ProjectID, entry.ProjectName,
		entry.DateKey, entry.StartTime.Format(timer.TimeLayout),
		entry.EndTime.Format(timer.TimeLayout), entry.TotalTime, entry.Wage,
		entry.Bonus, entry.Cost, entry.UserBonus, entry.WorkItemID, entry.Comment)
	if err != nil {
		return 0, fmt.Errorf("inserting historic entry: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) GetEntry(timeID int64) (*timer.TimeEntry, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM time WHERE time_id = ?`, timeID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding entry %d: %w", timeID, err)
	}
	return e, nil
}

func (s *SQLiteStore) UpdateEntry(entry *timer.TimeEntry) error {
	var end any
	if entry.EndTime != nil {
		end = entry.EndTime.Format(timer.TimeLayout)
	}
	res, err := s.db.Exec(`
		UPDATE time SET date_key = ?, start_time = ?, end_time = ?, total_time = ?,
			wage = ?, bonus = ?, cost = ?, user_bonus = ?, work_item_id = ?, comment = ?
		WHERE time_id = ?`,
		entry.DateKey, entry.StartTime.Format(timer.TimeLayout), end, entry.TotalTime,
		entry.Wage, entry.Bonus, entry.Cost, entry.UserBonus, entry.WorkItemID,
		entry.Comment, entry.ID)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("time entry %d not found", entry.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteEntry(timeID int64) error {
	res, err := s.db.Exec(`DELETE FROM time WHERE time_id = ?`, timeID)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("time entry %d not found", timeID)
	}
	return nil
}

func (s *SQLiteStore) ListRecentEntries(limit int) ([]*timer.TimeEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+entryColumns+` FROM time
		ORDER BY time_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*timer.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reporting

func (s *SQLiteStore) Summarize(startKey, endKey int, metric timer.Metric) (*timer.Report, error) {
	value := "sum(t.total_time)"
	if metric == timer.MetricCurrency {
		value = "sum(t.cost + t.user_bonus)"
	}

	rows, err := s.db.Query(`
		SELECT t.customer_name, t.project_name, `+value+` AS value
		FROM time t
		JOIN dates d ON d.date_key = t.date_key
		WHERE d.date_key BETWEEN ? AND ? AND t.end_time IS NOT NULL
		GROUP BY t.customer_name, t.project_name
		HAVING `+value+` > 0
		ORDER BY t.customer_name, t.project_name`, startKey, endKey)
	if err != nil {
		return nil, fmt.Errorf("summarizing by project: %w", err)
	}
	defer rows.Close()

	report := &timer.Report{Metric: metric}
	for rows.Next() {
		var r timer.ReportRow
		if err := rows.Scan(&r.CustomerName, &r.ProjectName, &r.Value); err != nil {
			return nil, err
		}
		report.Rows = append(report.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totals, err := s.db.Query(`
		SELECT t.customer_name, `+value+` AS value
		FROM time t
		JOIN dates d ON d.date_key = t.date_key
		WHERE d.date_key BETWEEN ? AND ? AND t.end_time IS NOT NULL
		GROUP BY t.customer_name
		HAVING `+value+` > 0
		ORDER BY t.customer_name`, startKey, endKey)
	if err != nil {
		return nil, fmt.Errorf("summarizing by customer: %w", err)
	}
	defer totals.Close()

	for totals.Next() {
		var t timer.CustomerTotal
		if err := totals.Scan(&t.CustomerName, &t.Value); err != nil {
			return nil, err
		}
		report.Totals = append(report.Totals, t)
	}
	return report, totals.Err()
}

func (s *SQLiteStore) DateDimensionRange() (int, int, error) {
	var minKey, maxKey int
	err := s.db.QueryRow(`SELECT min(date_key), max(date_key) FROM dates`).Scan(&minKey, &maxKey)
	if err != nil {
		return 0, 0, fmt.Errorf("reading date dimension range: %w", err)
	}
	return minKey, maxKey, nil
}

func (s *SQLiteStore) PeriodKeyRange(p timer.Period, today time.Time) (int, int, error) {
	if p == timer.PeriodAllTime {
		return s.DateDimensionRange()
	}

	todayKey := timer.DateKeyOf(today)
	var year, month, week int
	err := s.db.QueryRow(`SELECT year, month, week FROM dates WHERE date_key = ?`, todayKey).
		Scan(&year, &month, &week)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("date %s is outside the date dimension", today.Format(timer.DateLayout))
	}
	if err != nil {
		return 0, 0, err
	}

	switch p {
	case timer.PeriodDay:
		return todayKey, todayKey, nil
	case timer.PeriodWeek:
		return s.keyRange(`SELECT min(date_key), max(date_key) FROM dates WHERE year = ? AND week = ?`, year, week)
	case timer.PeriodMonth:
		return s.keyRange(`SELECT min(date_key), max(date_key) FROM dates WHERE year = ? AND month = ?`, year, month)
	case timer.PeriodYear:
		return s.keyRange(`SELECT min(date_key), max(date_key) FROM dates WHERE year = ?`, year)
	default:
		return 0, 0, fmt.Errorf("unknown period %v", p)
	}
}

func (s *SQLiteStore) keyRange(query string, args ...any) (int, int, error) {
	var startKey, endKey int
	if err := s.db.QueryRow(query, args...).Scan(&startKey, &endKey); err != nil {
		return 0, 0, err
	}
	return startKey, endKey, nil
}

// Ad hoc queries

// Query executes a caller-supplied statement. SELECTs (and WITH queries)
// return a result set; anything else is executed and reports affected rows.
// Statements come from the user-trusted query surface; fixed operations
// never go through here.
func (s *SQLiteStore) Query(query string) (*timer.QueryResult, error) {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	returnsRows := strings.HasPrefix(trimmed, "select") || strings.HasPrefix(trimmed, "with")

	if !returnsRows {
		res, err := s.db.Exec(query)
		if err != nil {
			return nil, fmt.Errorf("executing query: %w", err)
		}
		affected, _ := res.RowsAffected()
		return &timer.QueryResult{RowsAffected: affected}, nil
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &timer.QueryResult{Columns: columns}
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result, rows.Err()
}

// Operation audit log

func (s *SQLiteStore) CreateOperation(operation, parameters string, startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO operations (operation, parameters, started_at)
		VALUES (?, ?, ?)`, operation, parameters, startedAt.Format(timer.TimeLayout))
	if err != nil {
		return 0, fmt.Errorf("creating operation record: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) FinishOperation(id int64, status string, finishedAt time.Time) error {
	_, err := s.db.Exec(`
		UPDATE operations SET finished_at = ?, status = ?
		WHERE operation_id = ?`, finishedAt.Format(timer.TimeLayout), status, id)
	if err != nil {
		return fmt.Errorf("finishing operation record: %w", err)
	}
	return nil
}

// Maintenance

// BackupTo writes a consistent snapshot of the database using VACUUM INTO.
func (s *SQLiteStore) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanning helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*timer.Customer, error) {
	var c timer.Customer
	var validFrom, insertedAt string
	var validTo sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Wage, &c.SortOrder, &c.OrgURL, &c.PATToken,
		&validFrom, &validTo, &c.IsCurrent, &insertedAt)
	if err != nil {
		return nil, err
	}
	if c.ValidFrom, err = time.Parse(timer.DateLayout, validFrom); err != nil {
		return nil, fmt.Errorf("parsing valid_from: %w", err)
	}
	if validTo.Valid {
		t, err := time.Parse(timer.DateLayout, validTo.String)
		if err != nil {
			return nil, fmt.Errorf("parsing valid_to: %w", err)
		}
		c.ValidTo = &t
	}
	if c.InsertedAt, err = time.Parse(timer.TimeLayout, insertedAt); err != nil {
		return nil, fmt.Errorf("parsing inserted_at: %w", err)
	}
	return &c, nil
}

func scanEntry(row rowScanner) (*timer.TimeEntry, error) {
	var e timer.TimeEntry
	var start string
	var end sql.NullString
	err := row.Scan(&e.ID, &e.CustomerID, &e.CustomerName, &e.ProjectID, &e.ProjectName,
		&e.DateKey, &start, &end, &e.TotalTime, &e.Wage, &e.Bonus, &e.Cost,
		&e.UserBonus, &e.WorkItemID, &e.Comment)
	if err != nil {
		return nil, err
	}
	if e.StartTime, err = time.Parse(timer.TimeLayout, start); err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	if end.Valid {
		t, err := time.Parse(timer.TimeLayout, end.String)
		if err != nil {
			return nil, fmt.Errorf("parsing end_time: %w", err)
		}
		e.EndTime = &t
	}
	return &e, nil
}

// Compile-time check that SQLiteStore implements timer.Store.
var _ timer.Store = (*SQLiteStore)(nil)
