package model

import "strings"

// Contact is the data structure for a person that we know.
// First and Email are required before a contact can be stored; all other
// fields are optional. The Id is assigned by the store and never changes.
type Contact struct {
	Id    int64  `json:"id"    db:"id"    form:"-"`
	First string `json:"first" db:"first" form:"first" validate:"required"`
	Last  string `json:"last"  db:"last"  form:"last"`
	Phone string `json:"phone" db:"phone" form:"phone"`
	Email string `json:"email" db:"email" form:"email" validate:"required"`
}

// FullName joins first and last name and trims the result, so a contact
// without a last name does not end in a blank.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.First + " " + c.Last)
}
