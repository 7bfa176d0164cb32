// Package service wires the contacts app into HTTP. Every endpoint answers
// with an HTML fragment that htmx swaps into the single page.
package service

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contacts-app/internal/contacts"
	"gitlab.com/dirk.krummacker/contacts-app/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-app/internal/model"
	"gitlab.com/dirk.krummacker/contacts-app/internal/store"
	"gitlab.com/dirk.krummacker/contacts-app/internal/view"
	"go.uber.org/zap"
)

// handler holds what the endpoints need.
type handler struct {
	contacts *contacts.Service
}

// SetupHttpRouter initializes the router and registers all endpoints. With
// requestLogging off, requests are not logged; panics still are.
func SetupHttpRouter(svc *contacts.Service, requestLogging bool) *gin.Engine {
	h := &handler{contacts: svc}

	router := gin.New()
	router.Use(requestID())
	if requestLogging {
		router.Use(logger.GinLogger())
	} else {
		zap.L().Info("turning off HTTP request logging")
	}
	router.Use(logger.GinRecovery(true), secureHeaders())
	router.SetHTMLTemplate(view.Templates())

	router.GET("/", h.redirectToContacts)
	router.GET("/contacts", h.showContacts)
	router.GET("/contacts/search", h.searchContacts)
	router.GET("/contacts/new", h.newContact)
	router.POST("/contacts/create", h.createContact)
	router.GET("/contacts/:id", h.showContact)
	router.GET("/contacts/:id/edit", h.editContact)
	router.POST("/contacts/:id/update", h.updateContact)
	router.GET("/contacts/:id/confirm", h.confirmDelete)
	router.DELETE("/contacts/:id", h.deleteContact)
	router.GET("/dismiss-toast", h.dismissToast)
	return router
}

// redirectToContacts sends the browser to the contact list.
func (h *handler) redirectToContacts(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/contacts")
}

// showContacts responds with the full page: search box, contact table and
// the empty containers for modals and notifications. The URL parameter 'q'
// filters the table.
//
// Example call:
//
//	> curl "http://localhost:8080/contacts?q=ada"
func (h *handler) showContacts(c *gin.Context) {
	q := c.Query("q")
	list, err := h.contacts.Filter(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.HTML(http.StatusOK, view.Page, view.PageData{
		Query: q,
		Table: view.TableData{Contacts: list},
	})
}

// searchContacts responds with the contact table only, filtered by the URL
// parameter 'q'. A record matches if its first name, last name or email
// contains q, ignoring case.
//
// Example call:
//
//	> curl "http://localhost:8080/contacts/search?q=lovelace"
func (h *handler) searchContacts(c *gin.Context) {
	list, err := h.contacts.Filter(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.HTML(http.StatusOK, view.Table, view.TableData{Contacts: list})
}

// newContact responds with an empty form for adding a contact.
func (h *handler) newContact(c *gin.Context) {
	c.HTML(http.StatusOK, view.FormModal, view.FormData{})
}

// createContact validates the submitted form and stores a new contact.
//
// Example call:
//
//	> curl http://localhost:8080/contacts/create --data "first=Ada&last=Lovelace&email=ada@example.com"
func (h *handler) createContact(c *gin.Context) {
	var submitted model.Contact
	if err := c.ShouldBind(&submitted); err != nil {
		c.String(http.StatusBadRequest, "invalid form data")
		return
	}
	h.save(c, submitted, 0)
}

// updateContact validates the submitted form and replaces the contact whose
// ID value matches the id parameter of the request URL.
//
// Example call:
//
//	> curl http://localhost:8080/contacts/56/update --data "first=Ada&last=King&email=ada@example.com"
func (h *handler) updateContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	if _, err := h.contacts.Get(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	var submitted model.Contact
	if err := c.ShouldBind(&submitted); err != nil {
		c.String(http.StatusBadRequest, "invalid form data")
		return
	}
	h.save(c, submitted, id)
}

// save runs the create-or-update flow shared by createContact and
// updateContact. A rejected submission comes back as the form with the
// messages next to the offending fields. A stored one closes the modal,
// refreshes the table and shows a notification.
func (h *handler) save(c *gin.Context, submitted model.Contact, id int64) {
	result, err := h.contacts.Save(c.Request.Context(), submitted, id)
	if err != nil {
		handleError(c, err)
		return
	}
	if result.Invalid() {
		c.HTML(http.StatusOK, view.FormModal, view.FormData{Contact: result.Contact, Errors: result.Errors})
		return
	}
	zap.L().Info("contact saved",
		zap.Int64("id", result.Contact.Id),
		zap.String("message", result.Message),
		zap.String("requestID", c.GetString(logger.RequestIDKey)),
	)
	c.HTML(http.StatusOK, view.Mutation, view.MutationData{
		Contacts: result.Contacts,
		Toast:    view.SuccessToast(result.Message),
	})
}

// showContact responds with the details of the contact whose ID value
// matches the id parameter of the request URL.
//
// Example call:
//
//	> curl http://localhost:8080/contacts/56
func (h *handler) showContact(c *gin.Context) {
	h.renderContact(c, view.DetailModal, func(contact model.Contact) any { return contact })
}

// editContact responds with the form pre-filled with the stored contact.
func (h *handler) editContact(c *gin.Context) {
	h.renderContact(c, view.FormModal, func(contact model.Contact) any {
		return view.FormData{Contact: contact}
	})
}

// confirmDelete asks whether the contact should really be deleted.
func (h *handler) confirmDelete(c *gin.Context) {
	h.renderContact(c, view.ConfirmModal, func(contact model.Contact) any { return contact })
}

// renderContact looks up the contact named by the URL and renders it with
// the given template.
func (h *handler) renderContact(c *gin.Context, name string, data func(model.Contact) any) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	contact, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.HTML(http.StatusOK, name, data(contact))
}

// deleteContact deletes the contact whose ID value matches the id parameter
// of the request URL, then refreshes the table and shows a notification.
//
// Example call:
//
//	> curl http://localhost:8080/contacts/56 --request "DELETE"
func (h *handler) deleteContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	result, err := h.contacts.Delete(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	zap.L().Info("contact deleted",
		zap.Int64("id", id),
		zap.String("name", result.Name),
		zap.String("requestID", c.GetString(logger.RequestIDKey)),
	)
	c.HTML(http.StatusOK, view.Mutation, view.MutationData{
		Contacts: result.Contacts,
		Toast:    view.DeletedToast(result.Message),
	})
}

// dismissToast clears the notification area.
func (h *handler) dismissToast(c *gin.Context) {
	c.HTML(http.StatusOK, view.EmptyToast, nil)
}

// contactID parses the id parameter of the request URL. Ids that cannot
// exist are answered with NOT FOUND without reaching out to the store.
func contactID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.HTML(http.StatusNotFound, view.NotFound, nil)
		return 0, false
	}
	return id, true
}

// handleError answers NOT FOUND for unknown contacts. Any other error is a
// store failure that the request cannot recover from and is answered with
// INTERNAL SERVER ERROR.
func handleError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.HTML(http.StatusNotFound, view.NotFound, nil)
		return
	}
	zap.L().Error("store failure",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("requestID", c.GetString(logger.RequestIDKey)),
	)
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}
