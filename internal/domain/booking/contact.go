package booking

import (
	"errors"
	"strings"
)

var (
	ErrContactNameRequired = errors.New("contact name is required")
	ErrInvalidContactEmail = errors.New("invalid contact email")
)

// Contact is the snapshot of client contact data frozen onto a reservation at
// booking time. Later profile edits never mutate existing reservations.
type Contact struct {
	name  string
	phone string
	email string
	note  string
}

func NewContact(name, phone, email, note string) (Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Contact{}, ErrContactNameRequired
	}
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return Contact{}, ErrInvalidContactEmail
	}
	return Contact{
		name:  name,
		phone: strings.TrimSpace(phone),
		email: email,
		note:  strings.TrimSpace(note),
	}, nil
}

func ReconstructContact(name, phone, email, note string) Contact {
	return Contact{name: name, phone: phone, email: email, note: note}
}

func (c Contact) Name() string  { return c.name }
func (c Contact) Phone() string { return c.phone }
func (c Contact) Email() string { return c.email }
func (c Contact) Note() string  { return c.note }
