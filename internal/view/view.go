// Package view renders the HTML of the contacts app. The templates are
// embedded into the binary and handed to gin's HTML renderer; the data
// types below are what the route handlers pass to them.
package view

import (
	"embed"
	"html/template"
	"strconv"

	"gitlab.com/dirk.krummacker/contacts-app/internal/model"
)

// Template names.
const (
	Page         = "page"
	Table        = "table"
	FormModal    = "form_modal"
	DetailModal  = "detail_modal"
	ConfirmModal = "confirm_modal"
	Mutation     = "mutation"
	EmptyToast   = "empty_toast"
	NotFound     = "not_found"
)

// Alert kinds of a toast.
const (
	AlertSuccess = "success"
	AlertWarning = "warning"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses all embedded templates. It panics if a template is
// malformed, which can only happen with a broken build.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "templates/*.html"))
}

// PageData is rendered by the Page template.
type PageData struct {
	Query string
	Table TableData
}

// TableData is rendered by the Table template. With OutOfBand set the table
// replaces the one on the page while the response goes elsewhere.
type TableData struct {
	Contacts  []model.Contact
	OutOfBand bool
}

// FormData is rendered by the FormModal template.
type FormData struct {
	Contact model.Contact
	Errors  map[string]string
}

// Edit reports whether the form edits a stored contact.
func (f FormData) Edit() bool {
	return f.Contact.Id != 0
}

// Action is the URL the form is posted to.
func (f FormData) Action() string {
	if f.Edit() {
		return "/contacts/" + strconv.FormatInt(f.Contact.Id, 10) + "/update"
	}
	return "/contacts/create"
}

// Error returns the validation message for a field, if any.
func (f FormData) Error(field string) string {
	return f.Errors[field]
}

// Title is the heading of the form.
func (f FormData) Title() string {
	if f.Edit() {
		return "Edit Contact"
	}
	return "Add Contact"
}

// Toast is a notification that dismisses itself after a few seconds.
type Toast struct {
	Message string
	Alert   string
	Icon    string
}

// MutationData is the answer to a successful create, update or delete: the
// refreshed table and a toast, both swapped out of band.
type MutationData struct {
	Contacts []model.Contact
	Toast    Toast
}

// Table returns the refreshed table for the out-of-band swap.
func (m MutationData) Table() TableData {
	return TableData{Contacts: m.Contacts, OutOfBand: true}
}

// SuccessToast returns a toast confirming a saved contact.
func SuccessToast(message string) Toast {
	return Toast{Message: message, Alert: AlertSuccess, Icon: "✔"}
}

// DeletedToast returns a toast confirming a deleted contact.
func DeletedToast(message string) Toast {
	return Toast{Message: message, Alert: AlertWarning, Icon: "🗑"}
}
