/*
store.go - Persistence interfaces for the billing tables

PURPOSE:
  Defines the boundary between the billing domain and persistence. Each
  repository owns exactly one table and replaces it wholesale on save:
  every mutating operation is a read-modify-write of the full affected
  table, never a streaming update. Between interactions the persisted
  tables are the sole source of truth.

IMPLEMENTATIONS:
  - store/csvfile: Flat CSV tables with the legacy headers (primary)
  - store/sqlite:  SQLite tables, auto-migrated on open
  - store/memory:  In-memory, for tests

BOOTSTRAP CONTRACT:
  Loading an absent table yields an empty slice and no error. Missing
  expected columns are backfilled with defaults; malformed dates and
  amounts are coerced to zero values rather than raised, so a corrupt file
  degrades gracefully instead of blocking startup.
*/
package billing

import "context"

// PayableStore persists the outstanding and historical payable tables.
type PayableStore interface {
	LoadOutstanding(ctx context.Context) ([]PayableEntry, error)
	SaveOutstanding(ctx context.Context, entries []PayableEntry) error

	LoadHistorical(ctx context.Context) ([]PayableEntry, error)
	SaveHistorical(ctx context.Context, entries []PayableEntry) error
}

// TemplateStore persists the recurring-templates table.
type TemplateStore interface {
	LoadTemplates(ctx context.Context) ([]*RecurringTemplate, error)
	SaveTemplates(ctx context.Context, templates []*RecurringTemplate) error
}

// Store is the full persistence surface the billing service needs.
type Store interface {
	PayableStore
	TemplateStore
}
