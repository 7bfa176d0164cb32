package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gitlab.com/dirk.krummacker/contacts-app/internal/model"
)

// LoadSeed decodes a JSON array of contacts with the fields id, first,
// last, phone and email.
func LoadSeed(r io.Reader) ([]model.Contact, error) {
	var seed []model.Contact
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("could not decode seed data: %w", err)
	}
	return seed, nil
}

// LoadSeedFile reads the seed data from a file.
func LoadSeedFile(path string) ([]model.Contact, error) {
	f, err := os.Open(path) // nosemgrep
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSeed(f)
}

// ErrInvalidSeed is returned by Bootstrap when a seed contact could not be
// saved through the form.
var ErrInvalidSeed = errors.New("invalid seed contact")

// Bootstrap fills an empty store with the seed contacts and returns how many
// were inserted. A store that already holds contacts is left alone. The seed
// is stored completely or not at all: a contact without first name or email,
// or with an email used twice, rejects the whole seed.
func (s *Service) Bootstrap(ctx context.Context, seed []model.Contact) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 || len(seed) == 0 {
		return 0, nil
	}
	if err := checkSeed(seed); err != nil {
		return 0, err
	}
	if err := s.store.InsertAll(ctx, seed); err != nil {
		return 0, err
	}
	return len(seed), nil
}

// checkSeed applies the form rules to the seed contacts.
func checkSeed(seed []model.Contact) error {
	emails := make(map[string]int, len(seed))
	for i, c := range seed {
		if err := validate.Struct(c); err != nil {
			return fmt.Errorf("%w at position %d: %v", ErrInvalidSeed, i, err)
		}
		if j, ok := emails[c.Email]; ok {
			return fmt.Errorf("%w at position %d: email %q already used at position %d", ErrInvalidSeed, i, c.Email, j)
		}
		emails[c.Email] = i
	}
	return nil
}
