// Package contacts holds the decision logic of the contacts app: it
// validates submitted contacts, saves them, filters the list and deletes
// records. Persistence is delegated to a Store.
package contacts

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/dirk.krummacker/contacts-app/internal/model"
)

// Messages shown after a successful mutation.
const (
	MsgAdded   = "Contact added successfully!"
	MsgUpdated = "Contact updated successfully!"
)

// Store is the persistence the service needs. Lookups of a missing id
// return store.ErrNotFound.
type Store interface {
	FindAll(ctx context.Context) ([]model.Contact, error)
	FindByID(ctx context.Context, id int64) (model.Contact, error)
	FindByEmail(ctx context.Context, email string) ([]model.Contact, error)
	Insert(ctx context.Context, contact *model.Contact) error
	InsertAll(ctx context.Context, contacts []model.Contact) error
	Update(ctx context.Context, contact model.Contact) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// Service validates and stores contacts.
type Service struct {
	store Store
}

// NewService returns a service working on the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// SaveResult is the outcome of Save. Either Errors is non-empty and nothing
// was stored, or Message confirms the change and Contacts holds the
// refreshed list.
type SaveResult struct {
	Contact  model.Contact
	Errors   Errors
	Message  string
	Contacts []model.Contact
}

// Invalid reports whether the submission was rejected by validation.
func (r SaveResult) Invalid() bool {
	return len(r.Errors) > 0
}

// DeleteResult is the outcome of Delete.
type DeleteResult struct {
	Name     string
	Message  string
	Contacts []model.Contact
}

// Save creates the contact when id is 0 and replaces the contact stored
// under id otherwise. Invalid submissions are returned with their errors
// and leave the store untouched. An error is only returned when the store
// fails, including store.ErrNotFound for an update of a missing id.
func (s *Service) Save(ctx context.Context, contact model.Contact, id int64) (SaveResult, error) {
	errs, err := s.Validate(ctx, contact, id)
	if err != nil {
		return SaveResult{}, err
	}
	if len(errs) > 0 {
		contact.Id = id
		return SaveResult{Contact: contact, Errors: errs}, nil
	}

	var message string
	if id != 0 {
		contact.Id = id
		if err := s.store.Update(ctx, contact); err != nil {
			return SaveResult{}, err
		}
		message = MsgUpdated
	} else {
		if err := s.store.Insert(ctx, &contact); err != nil {
			return SaveResult{}, err
		}
		message = MsgAdded
	}

	all, err := s.store.FindAll(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Contact: contact, Message: message, Contacts: all}, nil
}

// Filter returns the contacts whose first name, last name or email contains
// q, ignoring case. An empty q returns all contacts. The result is ordered
// by id.
func (s *Service) Filter(ctx context.Context, q string) ([]model.Contact, error) {
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if q == "" {
		return all, nil
	}
	q = strings.ToLower(q)
	matches := make([]model.Contact, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.First), q) ||
			strings.Contains(strings.ToLower(c.Last), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// Get returns the contact with the given id.
func (s *Service) Get(ctx context.Context, id int64) (model.Contact, error) {
	return s.store.FindByID(ctx, id)
}

// Delete removes the contact with the given id and reports its name.
func (s *Service) Delete(ctx context.Context, id int64) (DeleteResult, error) {
	contact, err := s.store.FindByID(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return DeleteResult{}, err
	}
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return DeleteResult{}, err
	}
	name := contact.FullName()
	return DeleteResult{
		Name:     name,
		Message:  fmt.Sprintf("Contact %s has been deleted", name),
		Contacts: all,
	}, nil
}
