package worklog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/contafacil/bill-engine/billing"
)

// EventStore persists the service-ledger table. Saves replace the whole
// table; the persisted rows are the source of truth between interactions.
type EventStore interface {
	LoadEvents(ctx context.Context) ([]Event, error)
	SaveEvents(ctx context.Context, events []Event) error
}

// Service wraps the ledger with persistence and locking, mirroring the
// billing service: every mutation saves the table before returning.
type Service struct {
	mu     sync.Mutex
	store  EventStore
	ledger *Ledger
	log    zerolog.Logger
}

func NewService(store EventStore, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		ledger: NewLedger(nil),
		log:    log.With().Str("component", "worklog").Logger(),
	}
}

// Load reads the table and rebuilds the ledger, recomputing all balances.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.store.LoadEvents(ctx)
	if err != nil {
		return err
	}
	s.ledger = NewLedger(events)
	s.log.Info().Int("events", len(events)).Msg("service ledger loaded")
	return nil
}

// AppendService records a rendered service and persists the table.
func (s *Service) AppendService(ctx context.Context, date billing.Date, worker, equipment string, dailyRate decimal.Decimal) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.ledger.AppendService(date, worker, equipment, dailyRate)
	if err != nil {
		return Event{}, err
	}
	if err := s.store.SaveEvents(ctx, s.ledger.Events()); err != nil {
		return Event{}, err
	}
	s.log.Info().
		Str("worker", worker).
		Str("equipment", equipment).
		Str("balance", s.ledger.Balance().String()).
		Msg("service recorded")
	return e, nil
}

// AppendPurchaseOrder records an incoming purchase order and persists.
func (s *Service) AppendPurchaseOrder(ctx context.Context, date billing.Date, reference string, amount decimal.Decimal) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.ledger.AppendPurchaseOrder(date, reference, amount)
	if err != nil {
		return Event{}, err
	}
	if err := s.store.SaveEvents(ctx, s.ledger.Events()); err != nil {
		return Event{}, err
	}
	s.log.Info().
		Str("reference", reference).
		Str("balance", s.ledger.Balance().String()).
		Msg("purchase order recorded")
	return e, nil
}

// Delete removes the given events, recomputes and persists. Deleting an
// empty or unknown set is not an error; the count says what happened.
func (s *Service) Delete(ctx context.Context, ids []EventID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.ledger.Delete(ids)
	if removed == 0 {
		return 0, nil
	}
	if err := s.store.SaveEvents(ctx, s.ledger.Events()); err != nil {
		return 0, err
	}
	s.log.Info().Int("removed", removed).Msg("ledger events deleted")
	return removed, nil
}

// Events returns the ledger snapshot in display order.
func (s *Service) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Events()
}

// Balance returns the current running balance.
func (s *Service) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balance()
}
