package store

import (
	"context"
	"sort"
	"sync"

	"gitlab.com/dirk.krummacker/contacts-app/internal/model"
)

// Memory keeps contacts in process memory. Ids are handed out from a
// counter that only grows, so deleted ids are not reused.
type Memory struct {
	mu       sync.RWMutex
	contacts map[int64]model.Contact
	lastId   int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{contacts: make(map[int64]model.Contact)}
}

// FindAll returns all contacts ordered by id.
func (m *Memory) FindAll(_ context.Context) ([]model.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	contacts := make([]model.Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		contacts = append(contacts, c)
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Id < contacts[j].Id })
	return contacts, nil
}

// FindByID returns the contact with the given id.
func (m *Memory) FindByID(_ context.Context, id int64) (model.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contacts[id]
	if !ok {
		return model.Contact{}, ErrNotFound
	}
	return c, nil
}

// FindByEmail returns the contacts whose email equals the given one exactly.
func (m *Memory) FindByEmail(ctx context.Context, email string) ([]model.Contact, error) {
	all, _ := m.FindAll(ctx)
	var contacts []model.Contact
	for _, c := range all {
		if c.Email == email {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil
}

// Insert stores a new contact and assigns its Id.
func (m *Memory) Insert(_ context.Context, contact *model.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastId++
	contact.Id = m.lastId
	m.contacts[contact.Id] = *contact
	return nil
}

// InsertAll stores all contacts. Contacts that carry an Id keep it.
func (m *Memory) InsertAll(_ context.Context, contacts []model.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range contacts {
		if c.Id == 0 {
			m.lastId++
			c.Id = m.lastId
		} else if c.Id > m.lastId {
			m.lastId = c.Id
		}
		m.contacts[c.Id] = c
	}
	return nil
}

// Update replaces the contact stored under contact.Id.
func (m *Memory) Update(_ context.Context, contact model.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[contact.Id]; !ok {
		return ErrNotFound
	}
	m.contacts[contact.Id] = contact
	return nil
}

// Delete removes the contact with the given id.
func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[id]; !ok {
		return ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

// Count returns the number of stored contacts.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contacts), nil
}
