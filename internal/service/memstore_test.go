package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/queue"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
)

// memStore implements TicketStore in memory under a single mutex, honoring
// the same conditional-update contract as the MySQL repository: every
// transition checks the required prior status (and claimant) and returns
// repository.ErrInvalidTransition when it no longer holds.  This lets the
// coordinator tests race real goroutines without a database.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Ticket
	byCode map[string]uint64
}

func newMemStore() *memStore {
	return &memStore{byID: map[uint64]*model.Ticket{}, byCode: map[string]uint64{}}
}

func (m *memStore) Create(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byCode[t.Code]; dup {
		return repository.ErrCodeExists
	}
	m.nextID++
	t.ID = m.nextID
	t.Status = model.StatusUnpaid
	t.CreatedAt = time.Now().UTC()
	cp := *t
	m.byID[t.ID] = &cp
	m.byCode[t.Code] = t.ID
	return nil
}

func (m *memStore) GetByCode(_ context.Context, code string) (model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byCode[code]
	if !ok {
		return model.Ticket{}, repository.ErrTicketNotFound
	}
	return *m.byID[id], nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return model.Ticket{}, repository.ErrTicketNotFound
	}
	return *t, nil
}

func (m *memStore) MarkPaid(_ context.Context, code, providerRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byCode[code]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t := m.byID[id]
	if t.Status != model.StatusUnpaid {
		return repository.ErrInvalidTransition
	}
	t.Status = model.StatusPaid
	now := time.Now().UTC()
	t.PaidAt = &now
	if providerRef != "" {
		ref := providerRef
		t.PaymentRef = &ref
	} else {
		t.PaymentRef = nil
	}
	return nil
}

func (m *memStore) SetPaymentRef(_ context.Context, code, providerRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byCode[code]
	if !ok {
		return repository.ErrTicketNotFound
	}
	t := m.byID[id]
	if t.Status != model.StatusUnpaid {
		return repository.ErrInvalidTransition
	}
	ref := providerRef
	t.PaymentRef = &ref
	return nil
}

func (m *memStore) Claim(_ context.Context, id, sharpenerID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if t.Status != model.StatusPaid {
		return repository.ErrInvalidTransition
	}
	t.Status = model.StatusInProgress
	now := time.Now().UTC()
	t.StartedAt = &now
	sid := sharpenerID
	t.ClaimedBy = &sid
	return nil
}

func (m *memStore) PromoteUnpaid(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if t.Status != model.StatusUnpaid {
		return repository.ErrInvalidTransition
	}
	t.Status = model.StatusPaid
	now := time.Now().UTC()
	t.PaidAt = &now
	return nil
}

func (m *memStore) UnclaimInProgress(_ context.Context, id, sharpenerID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if t.Status != model.StatusInProgress || t.ClaimedBy == nil || *t.ClaimedBy != sharpenerID {
		return repository.ErrInvalidTransition
	}
	t.Status = model.StatusPaid
	t.ClaimedBy = nil
	t.StartedAt = nil
	return nil
}

func (m *memStore) DemoteUnclaimedPaid(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if t.Status != model.StatusPaid || t.ClaimedBy != nil {
		return repository.ErrInvalidTransition
	}
	t.Status = model.StatusUnpaid
	t.PaidAt = nil
	return nil
}

func (m *memStore) Complete(_ context.Context, id, sharpenerID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if t.Status != model.StatusInProgress || t.ClaimedBy == nil || *t.ClaimedBy != sharpenerID {
		return repository.ErrInvalidTransition
	}
	t.Status = model.StatusCompleted
	now := time.Now().UTC()
	t.CompletedAt = &now
	t.SharpenedBy = t.ClaimedBy
	t.ClaimedBy = nil
	return nil
}

func (m *memStore) Cancel(_ context.Context, id, sharpenerID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return repository.ErrTicketNotFound
	}
	if t.Status != model.StatusUnpaid && t.Status != model.StatusPaid {
		return repository.ErrInvalidTransition
	}
	t.Status = model.StatusCancelled
	now := time.Now().UTC()
	t.CancelledAt = &now
	sid := sharpenerID
	t.CancelledBy = &sid
	return nil
}

// seed inserts a ticket directly in the given status, bypassing the
// transition guards, for tests that need a starting point.
func (m *memStore) seed(t model.Ticket) model.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := t
	m.byID[t.ID] = &cp
	m.byCode[t.Code] = t.ID
	return t
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []queue.TicketEvent
}

func (d *recordingDispatcher) Publish(_ context.Context, ev queue.TicketEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return nil
}

func (d *recordingDispatcher) count(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, ev := range d.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
