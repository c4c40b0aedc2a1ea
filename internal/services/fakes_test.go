package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

// memStore is an in-memory stand-in for storage.SQLiteRepository.
type memStore struct {
	mu        sync.Mutex
	seq       int
	accounts  map[string]core.Account
	periods   map[string]core.Period
	spends    map[string]core.Spend
	recurring map[string]core.RecurringSpend

	listSpendCalls int
	failLastRun    bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts:  map[string]core.Account{},
		periods:   map[string]core.Period{},
		spends:    map[string]core.Spend{},
		recurring: map[string]core.RecurringSpend{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = m.nextID("acct")
	}
	m.accounts[a.ID] = a
	return a, nil
}

func (m *memStore) GetAccount(_ context.Context, id string) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return core.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (m *memStore) UpdateAccount(_ context.Context, a core.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.ID]; !ok {
		return storage.ErrNotFound
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *memStore) CreatePeriod(_ context.Context, p core.Period) (core.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = m.nextID("period")
	}
	m.periods[p.ID] = p
	return p, nil
}

func (m *memStore) GetPeriod(_ context.Context, id string) (core.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[id]
	if !ok {
		return core.Period{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *memStore) ListPeriods(_ context.Context, accountID string) ([]core.Period, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Period
	for _, p := range m.periods {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (m *memStore) DeletePeriod(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.periods[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.periods, id)
	return nil
}

func (m *memStore) CreateSpend(_ context.Context, s core.Spend) (core.Spend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = m.nextID("spend")
	}
	m.spends[s.ID] = s
	return s, nil
}

func (m *memStore) GetSpend(_ context.Context, id string) (core.Spend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.spends[id]
	if !ok {
		return core.Spend{}, storage.ErrNotFound
	}
	return s, nil
}

func (m *memStore) UpdateSpend(_ context.Context, s core.Spend) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spends[s.ID]; !ok {
		return storage.ErrNotFound
	}
	m.spends[s.ID] = s
	return nil
}

func (m *memStore) DeleteSpend(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spends[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.spends, id)
	return nil
}

func (m *memStore) ListSpendsBetween(_ context.Context, accountID string, start, end time.Time) ([]core.Spend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listSpendCalls++
	var out []core.Spend
	for _, s := range m.spends {
		if s.AccountID == accountID && !s.Date.Before(start) && !s.Date.After(end) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreateRecurringSpend(_ context.Context, rs core.RecurringSpend) (core.RecurringSpend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rs.ID == "" {
		rs.ID = m.nextID("rec")
	}
	m.recurring[rs.ID] = rs
	return rs, nil
}

func (m *memStore) GetRecurringSpend(_ context.Context, id string) (core.RecurringSpend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rs, ok := m.recurring[id]
	if !ok {
		return core.RecurringSpend{}, storage.ErrNotFound
	}
	return rs, nil
}

func (m *memStore) ListRecurringSpends(_ context.Context, accountID string) ([]core.RecurringSpend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.RecurringSpend
	for _, rs := range m.recurring {
		if accountID == "" || rs.AccountID == accountID {
			out = append(out, rs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeleteRecurringSpend(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recurring[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.recurring, id)
	return nil
}

func (m *memStore) UpdateRecurringLastRun(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLastRun {
		return errors.New("disk full")
	}
	rs, ok := m.recurring[id]
	if !ok {
		return storage.ErrNotFound
	}
	rs.LastRunAt = &at
	m.recurring[id] = rs
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (f *fakePublisher) PublishSpendSync(_ context.Context, id, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

type fakeInvalidator struct {
	prefixes []string
}

func (f *fakeInvalidator) DeletePrefix(prefix string) int {
	f.prefixes = append(f.prefixes, prefix)
	return 0
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
