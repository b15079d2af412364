package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"inkwell/internal/apperr"
)

// ContactMessage is the body of a contact form submission.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (m *ContactMessage) normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
}

// Validate requires every field and a well-formed email address.
func (m ContactMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Email, validation.Required, is.EmailFormat),
		validation.Field(&m.Subject, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Message, validation.Required, validation.Length(1, 5000)),
	)
}

// Contact accepts a contact form submission. Messages are logged; there
// is no mail delivery.
func Contact(w http.ResponseWriter, r *http.Request) {
	var msg ContactMessage
	if err := decodeJSON(w, r, &msg); err != nil {
		writeError(w, r, err)
		return
	}
	msg.normalize()
	if err := msg.Validate(); err != nil {
		writeError(w, r, apperr.Validation("%s", err.Error()))
		return
	}

	slog.Info("contact message received",
		"name", msg.Name,
		"email", msg.Email,
		"subject", msg.Subject,
		"message", msg.Message,
	)
	writeMessage(w, "your message has been sent")
}
