/*
Package sqlite provides a SQLite-backed implementation of the billing and
worklog storage interfaces.

PURPOSE:
  Alternative to the CSV backend for installations that prefer a single
  database file. Implements the exact same contracts: loads return the
  whole table, saves replace it wholesale inside one transaction, so the
  read-modify-write-as-one-step semantics of the flat files carry over.

KEY TABLES:
  payables             Outstanding entries
  historical_payables  Paid entries
  recurring_templates  Recurring obligation rules
  worklog_events       Service-ledger events

STORAGE CONVENTIONS:
  Amounts are TEXT (decimal string) to avoid float drift; dates are TEXT
  "2006-01-02", empty string for "no date".

WAL MODE:
  Opened with WAL for better crash recovery; the schema is auto-migrated
  on New().

SEE ALSO:
  - billing/store.go: Interface definitions
  - store/csvfile: The primary flat-file backend
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/contafacil/bill-engine/billing"
	"github.com/contafacil/bill-engine/worklog"
)

// Store implements billing.Store and worklog.EventStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payables (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL,
		payment_date TEXT NOT NULL DEFAULT '',
		origin TEXT NOT NULL DEFAULT 'Manual'
	);

	CREATE TABLE IF NOT EXISTS historical_payables (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Paga',
		payment_date TEXT NOT NULL DEFAULT '',
		origin TEXT NOT NULL DEFAULT 'Manual'
	);

	CREATE TABLE IF NOT EXISTS recurring_templates (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		frequency TEXT NOT NULL,
		due_day INTEGER NOT NULL,
		next_due TEXT NOT NULL DEFAULT '',
		last_generated TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS worklog_events (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		event_date TEXT NOT NULL,
		kind TEXT NOT NULL,
		worker TEXT NOT NULL DEFAULT '',
		equipment TEXT NOT NULL DEFAULT '',
		reference TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		running_balance TEXT NOT NULL DEFAULT '0'
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PAYABLE TABLES (billing.PayableStore)
// =============================================================================

func (s *Store) LoadOutstanding(ctx context.Context) ([]billing.PayableEntry, error) {
	return s.loadPayables(ctx, "payables")
}

func (s *Store) SaveOutstanding(ctx context.Context, entries []billing.PayableEntry) error {
	return s.savePayables(ctx, "payables", entries)
}

func (s *Store) LoadHistorical(ctx context.Context) ([]billing.PayableEntry, error) {
	return s.loadPayables(ctx, "historical_payables")
}

func (s *Store) SaveHistorical(ctx context.Context, entries []billing.PayableEntry) error {
	return s.savePayables(ctx, "historical_payables", entries)
}

func (s *Store) loadPayables(ctx context.Context, table string) ([]billing.PayableEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`
		SELECT id, description, amount, due_date, status, payment_date, origin
		FROM %s ORDER BY position`, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []billing.PayableEntry
	for rows.Next() {
		var id, description, amount, dueDate, status, paymentDate, origin string
		if err := rows.Scan(&id, &description, &amount, &dueDate, &status, &paymentDate, &origin); err != nil {
			return nil, err
		}
		entries = append(entries, billing.PayableEntry{
			ID:          billing.EntryID(id),
			Description: description,
			Amount:      parseDecimal(amount),
			DueDate:     parseDate(dueDate),
			Status:      billing.Status(status),
			PaymentDate: parseDate(paymentDate),
			Origin:      billing.Origin(origin),
		})
	}
	return entries, rows.Err()
}

func (s *Store) savePayables(ctx context.Context, table string, entries []billing.PayableEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replaceAll(ctx, table, func(tx *sql.Tx) error {
		stmt := fmt.Sprintf(`
			INSERT INTO %s (id, description, amount, due_date, status, payment_date, origin)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, table)
		for _, e := range entries {
			_, err := tx.ExecContext(ctx, stmt,
				string(e.ID), e.Description, e.Amount.String(), e.DueDate.String(),
				string(e.Status), e.PaymentDate.String(), string(e.Origin))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// TEMPLATE TABLE (billing.TemplateStore)
// =============================================================================

func (s *Store) LoadTemplates(ctx context.Context) ([]*billing.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, amount, frequency, due_day, next_due, last_generated, active
		FROM recurring_templates ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*billing.RecurringTemplate
	for rows.Next() {
		var id, description, amount, frequency, nextDue, lastGenerated string
		var dueDay int
		var active bool
		if err := rows.Scan(&id, &description, &amount, &frequency, &dueDay, &nextDue, &lastGenerated, &active); err != nil {
			return nil, err
		}
		freq, err := billing.ParseFrequency(frequency)
		if err != nil {
			freq = billing.FrequencyAnnual
		}
		templates = append(templates, &billing.RecurringTemplate{
			ID:            billing.TemplateID(id),
			Description:   description,
			Amount:        parseDecimal(amount),
			Frequency:     freq,
			DueDay:        dueDay,
			NextDue:       parseDate(nextDue),
			LastGenerated: parseDate(lastGenerated),
			Active:        active,
		})
	}
	return templates, rows.Err()
}

func (s *Store) SaveTemplates(ctx context.Context, templates []*billing.RecurringTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replaceAll(ctx, "recurring_templates", func(tx *sql.Tx) error {
		for _, t := range templates {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO recurring_templates
				(id, description, amount, frequency, due_day, next_due, last_generated, active)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				string(t.ID), t.Description, t.Amount.String(), string(t.Frequency),
				t.DueDay, t.NextDue.String(), t.LastGenerated.String(), t.Active)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// WORKLOG TABLE (worklog.EventStore)
// =============================================================================

func (s *Store) LoadEvents(ctx context.Context) ([]worklog.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_date, kind, worker, equipment, reference, amount, running_balance
		FROM worklog_events ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []worklog.Event
	for rows.Next() {
		var id, eventDate, kind, worker, equipment, reference, amount, runningBalance string
		if err := rows.Scan(&id, &eventDate, &kind, &worker, &equipment, &reference, &amount, &runningBalance); err != nil {
			return nil, err
		}
		events = append(events, worklog.Event{
			ID:             worklog.EventID(id),
			Date:           parseDate(eventDate),
			Kind:           worklog.Kind(kind),
			Worker:         worker,
			Equipment:      equipment,
			Reference:      reference,
			Amount:         parseDecimal(amount),
			RunningBalance: parseDecimal(runningBalance),
		})
	}
	return events, rows.Err()
}

func (s *Store) SaveEvents(ctx context.Context, events []worklog.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replaceAll(ctx, "worklog_events", func(tx *sql.Tx) error {
		for _, e := range events {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO worklog_events
				(id, event_date, kind, worker, equipment, reference, amount, running_balance)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				string(e.ID), e.Date.String(), string(e.Kind), e.Worker,
				e.Equipment, e.Reference, e.Amount.String(), e.RunningBalance.String())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// replaceAll deletes every row of the table and re-inserts the new set in
// one transaction, mirroring the flat-file full-table rewrite.
func (s *Store) replaceAll(ctx context.Context, table string, insert func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		tx.Rollback()
		return err
	}
	if err := insert(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) billing.Date {
	d, err := billing.ParseDate(s)
	if err != nil {
		return billing.Date{}
	}
	return d
}
