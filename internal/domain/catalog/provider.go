package catalog

import (
	"errors"

	"github.com/google/uuid"
)

var ErrProviderNameRequired = errors.New("provider name is required")

// Provider is the staff member who performs a service within a window.
type Provider struct {
	id   uuid.UUID
	name string
}

func NewProvider(id uuid.UUID, name string) (*Provider, error) {
	if name == "" {
		return nil, ErrProviderNameRequired
	}
	return &Provider{id: id, name: name}, nil
}

func (p *Provider) ID() uuid.UUID { return p.id }
func (p *Provider) Name() string  { return p.name }
