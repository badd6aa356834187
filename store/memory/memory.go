// Package memory provides an in-memory implementation of the storage
// interfaces, for tests and development.
package memory

import (
	"context"
	"sync"

	"github.com/contafacil/bill-engine/billing"
	"github.com/contafacil/bill-engine/worklog"
)

// Store implements billing.Store and worklog.EventStore with copies of the
// saved slices, so callers cannot mutate persisted state by aliasing.
type Store struct {
	mu          sync.RWMutex
	outstanding []billing.PayableEntry
	historical  []billing.PayableEntry
	templates   []*billing.RecurringTemplate
	events      []worklog.Event
}

func New() *Store {
	return &Store{}
}

func (m *Store) LoadOutstanding(_ context.Context) ([]billing.PayableEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]billing.PayableEntry(nil), m.outstanding...), nil
}

func (m *Store) SaveOutstanding(_ context.Context, entries []billing.PayableEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outstanding = append([]billing.PayableEntry(nil), entries...)
	return nil
}

func (m *Store) LoadHistorical(_ context.Context) ([]billing.PayableEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]billing.PayableEntry(nil), m.historical...), nil
}

func (m *Store) SaveHistorical(_ context.Context, entries []billing.PayableEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historical = append([]billing.PayableEntry(nil), entries...)
	return nil
}

func (m *Store) LoadTemplates(_ context.Context) ([]*billing.RecurringTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*billing.RecurringTemplate, len(m.templates))
	for i, t := range m.templates {
		copied := *t
		out[i] = &copied
	}
	return out, nil
}

func (m *Store) SaveTemplates(_ context.Context, templates []*billing.RecurringTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates = make([]*billing.RecurringTemplate, len(templates))
	for i, t := range templates {
		copied := *t
		m.templates[i] = &copied
	}
	return nil
}

func (m *Store) LoadEvents(_ context.Context) ([]worklog.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]worklog.Event(nil), m.events...), nil
}

func (m *Store) SaveEvents(_ context.Context, events []worklog.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append([]worklog.Event(nil), events...)
	return nil
}
