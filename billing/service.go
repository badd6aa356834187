/*
service.go - Orchestration and persistence boundary for billing

PURPOSE:
  The Service wires the payable ledger, the recurring templates and their
  store together. It is the only layer that persists: each mutating
  operation saves the affected table before returning, so a successful
  call means the table on disk already reflects the change. A failed save
  leaves in-memory state ahead of disk; the next Load reconciles from the
  persisted tables.

CONCURRENCY:
  The system is single-user request/response, but the generation scheduler
  runs on its own goroutine, so the service serializes all access behind
  one mutex, the same way the sqlite store in the original engine did.

SEE ALSO:
  - recurrence.go: MaterializeDue/ForecastDueWithin contracts
  - api/scheduler.go: Scheduled catch-up calling GenerateDue
*/
package billing

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service owns the in-memory billing state and its persistence.
type Service struct {
	mu        sync.Mutex
	store     Store
	payables  *PayableLedger
	templates []*RecurringTemplate
	log       zerolog.Logger

	// now is swappable for tests.
	now func() Date
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		payables: NewPayableLedger(nil, nil),
		log:      log.With().Str("component", "billing").Logger(),
		now:      Today,
	}
}

// SetClock overrides the service's notion of "today". Test hook.
func (s *Service) SetClock(now func() Date) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Load reads all three tables from the store, replacing in-memory state.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outstanding, err := s.store.LoadOutstanding(ctx)
	if err != nil {
		return err
	}
	historical, err := s.store.LoadHistorical(ctx)
	if err != nil {
		return err
	}
	templates, err := s.store.LoadTemplates(ctx)
	if err != nil {
		return err
	}

	s.payables = NewPayableLedger(outstanding, historical)
	s.templates = templates
	s.log.Info().
		Int("outstanding", len(outstanding)).
		Int("historical", len(historical)).
		Int("templates", len(templates)).
		Msg("tables loaded")
	return nil
}

// =============================================================================
// PAYABLE OPERATIONS
// =============================================================================

// AddPayable appends a manually entered bill and persists the table.
func (s *Service) AddPayable(ctx context.Context, description string, amount decimal.Decimal, due Date) (EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.payables.Add(PayableEntry{
		Description: description,
		Amount:      amount,
		DueDate:     due,
		Origin:      OriginManual,
	})
	if err != nil {
		return "", err
	}
	if err := s.store.SaveOutstanding(ctx, s.payables.Outstanding()); err != nil {
		return "", err
	}
	return id, nil
}

// MarkPaid moves an entry to historical. Both tables change, so both are
// persisted.
func (s *Service) MarkPaid(ctx context.Context, id EntryID, paidOn Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.payables.MarkPaid(id, paidOn); err != nil {
		return err
	}
	if err := s.store.SaveOutstanding(ctx, s.payables.Outstanding()); err != nil {
		return err
	}
	if err := s.store.SaveHistorical(ctx, s.payables.Historical()); err != nil {
		return err
	}
	s.log.Info().Str("entry", string(id)).Str("paid_on", paidOn.String()).Msg("entry paid")
	return nil
}

// EditPayable updates an entry in place in whichever collection holds it.
func (s *Service) EditPayable(ctx context.Context, col Collection, id EntryID, update EntryUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.payables.Edit(col, id, update); err != nil {
		return err
	}
	return s.saveCollection(ctx, col)
}

// DeletePayable permanently removes an entry. Confirmation happens at the
// presentation boundary before this is called.
func (s *Service) DeletePayable(ctx context.Context, col Collection, id EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.payables.Delete(col, id); err != nil {
		return err
	}
	return s.saveCollection(ctx, col)
}

// QueryPayables returns entries matching the filter, ascending by due date.
// Pending and upcoming results are the union of concrete pending entries
// and synthetic rows for recurring templates that have not materialized
// yet; upcoming takes only the templates due today or later. Overdue stays
// concrete-only: an overdue template becomes visible there by
// materializing, not by projection.
func (s *Service) QueryPayables(filter Filter) []PayableEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	result := s.payables.Query(filter, today)
	switch filter {
	case FilterPending:
		result = append(result, SyntheticPending(s.templates, s.payables.HasPending)...)
		sortByDueDate(result)
	case FilterUpcoming:
		for _, row := range SyntheticPending(s.templates, s.payables.HasPending) {
			if row.DueDate.AfterOrEqual(today) {
				result = append(result, row)
			}
		}
		sortByDueDate(result)
	}
	return result
}

func (s *Service) saveCollection(ctx context.Context, col Collection) error {
	if col == CollectionHistorical {
		return s.store.SaveHistorical(ctx, s.payables.Historical())
	}
	return s.store.SaveOutstanding(ctx, s.payables.Outstanding())
}

// =============================================================================
// TEMPLATE OPERATIONS
// =============================================================================

// Templates returns a copy of the current template set.
func (s *Service) Templates() []RecurringTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecurringTemplate, len(s.templates))
	for i, t := range s.templates {
		out[i] = *t
	}
	return out
}

// AddTemplate creates a recurring template with its initial due date
// computed from today.
func (s *Service) AddTemplate(ctx context.Context, description string, amount decimal.Decimal, freq Frequency, dueDay int) (TemplateID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := NewTemplate(description, amount, freq, dueDay, s.now())
	if err != nil {
		return "", err
	}
	s.templates = append(s.templates, t)
	if err := s.store.SaveTemplates(ctx, s.templates); err != nil {
		return "", err
	}
	return t.ID, nil
}

// EditTemplate updates a template in place.
func (s *Service) EditTemplate(ctx context.Context, id TemplateID, update TemplateUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findTemplate(id)
	if t == nil {
		return &NotFoundError{Collection: "templates", ID: string(id)}
	}
	if update.Description != nil {
		if *update.Description == "" {
			return &FieldError{Field: "description", Message: "required"}
		}
		t.Description = *update.Description
	}
	if update.Amount != nil {
		if update.Amount.IsNegative() {
			return &FieldError{Field: "amount", Message: "must be >= 0"}
		}
		t.Amount = *update.Amount
	}
	if update.Frequency != nil {
		f, err := ParseFrequency(string(*update.Frequency))
		if err != nil {
			return err
		}
		t.Frequency = f
	}
	if update.DueDay != nil {
		if *update.DueDay < 1 || *update.DueDay > 31 {
			return &FieldError{Field: "due_day", Message: "must be between 1 and 31"}
		}
		t.DueDay = *update.DueDay
	}
	if update.NextDue != nil {
		t.NextDue = *update.NextDue
	}
	if update.Active != nil {
		t.Active = *update.Active
	}
	return s.store.SaveTemplates(ctx, s.templates)
}

// DeleteTemplate hard-deletes a template. Deactivation via EditTemplate is
// the soft alternative.
func (s *Service) DeleteTemplate(ctx context.Context, id TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.templates {
		if t.ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return s.store.SaveTemplates(ctx, s.templates)
		}
	}
	return &NotFoundError{Collection: "templates", ID: string(id)}
}

// =============================================================================
// GENERATION AND PROJECTIONS
// =============================================================================

// GenerateDue materializes every due template into a pending entry and
// persists both affected tables. Safe to call repeatedly: the idempotency
// check in MaterializeDue makes the second run a no-op. Both the scheduler
// and the explicit generate endpoint call exactly this.
func (s *Service) GenerateDue(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asOf := s.now()
	generated := MaterializeDue(s.templates, s.payables.HasPending, asOf)
	if len(generated) == 0 {
		return 0, nil
	}

	for _, e := range generated {
		if _, err := s.payables.Add(e); err != nil {
			return 0, err
		}
		s.log.Info().
			Str("description", e.Description).
			Str("due", e.DueDate.String()).
			Str("amount", e.Amount.String()).
			Msg("materialized recurring entry")
	}

	if err := s.store.SaveOutstanding(ctx, s.payables.Outstanding()); err != nil {
		return 0, err
	}
	if err := s.store.SaveTemplates(ctx, s.templates); err != nil {
		return 0, err
	}
	return len(generated), nil
}

// Forecast sums active-template amounts due on or before windowEnd that
// have not materialized yet. Read-only.
func (s *Service) Forecast(windowEnd Date) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ForecastDueWithin(s.templates, s.payables.HasPending, windowEnd)
}

// Summary is the dashboard aggregate: pending totals with unmaterialized
// recurring amounts folded in exactly once per window.
type Summary struct {
	TotalDebt    decimal.Decimal
	DueThisMonth decimal.Decimal
	DueThisWeek  decimal.Decimal
	Overdue      int
	Upcoming     int
}

// Summarize computes the dashboard totals as of today.
func (s *Service) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	endOfMonth := today.EndOfMonth()
	endOfWeek := today.AddDays(7)

	sum := Summary{
		TotalDebt:    decimal.Zero,
		DueThisMonth: decimal.Zero,
		DueThisWeek:  decimal.Zero,
	}
	for _, e := range s.payables.Outstanding() {
		sum.TotalDebt = sum.TotalDebt.Add(e.Amount)
		if e.DueDate.BeforeOrEqual(endOfMonth) {
			sum.DueThisMonth = sum.DueThisMonth.Add(e.Amount)
		}
		if e.DueDate.BeforeOrEqual(endOfWeek) {
			sum.DueThisWeek = sum.DueThisWeek.Add(e.Amount)
		}
		if e.DueDate.Before(today) {
			sum.Overdue++
		} else {
			sum.Upcoming++
		}
	}

	// Unmaterialized recurring obligations count once per window. Already-
	// due templates also join the total debt.
	sum.TotalDebt = sum.TotalDebt.Add(ForecastDueWithin(s.templates, s.payables.HasPending, today))
	sum.DueThisMonth = sum.DueThisMonth.Add(ForecastDueWithin(s.templates, s.payables.HasPending, endOfMonth))
	sum.DueThisWeek = sum.DueThisWeek.Add(ForecastDueWithin(s.templates, s.payables.HasPending, endOfWeek))
	return sum
}

func (s *Service) findTemplate(id TemplateID) *RecurringTemplate {
	for _, t := range s.templates {
		if t.ID == id {
			return t
		}
	}
	return nil
}
