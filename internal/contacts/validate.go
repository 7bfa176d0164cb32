package contacts

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gitlab.com/dirk.krummacker/contacts-app/internal/model"
)

// Errors maps a form field name to the message shown next to it. An empty
// map means the contact is valid.
type Errors map[string]string

// Validation messages.
const (
	MsgFirstRequired = "First name is required"
	MsgEmailRequired = "Email is required"
	MsgEmailExists   = "Email already exists"
)

var requiredMessages = map[string]string{
	"first": MsgFirstRequired,
	"email": MsgEmailRequired,
}

// validate checks the struct tags of model.Contact. Field errors are named
// after the form fields so they can be shown next to the inputs.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a submitted contact. The email must not be used by any
// other stored contact; the contact stored under excludeID is ignored so
// that a contact can be saved with its own email. An excludeID of 0
// excludes nothing.
func (s *Service) Validate(ctx context.Context, contact model.Contact, excludeID int64) (Errors, error) {
	errs := Errors{}

	var fieldErrs validator.ValidationErrors
	if err := validate.Struct(contact); errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if msg, ok := requiredMessages[fe.Field()]; ok && fe.Tag() == "required" {
				errs[fe.Field()] = msg
			}
		}
	} else if err != nil {
		return nil, err
	}

	if contact.Email != "" {
		existing, err := s.store.FindByEmail(ctx, contact.Email)
		if err != nil {
			return nil, err
		}
		for _, other := range existing {
			if other.Email == contact.Email && other.Id != excludeID {
				errs["email"] = MsgEmailExists
				break
			}
		}
	}
	return errs, nil
}
