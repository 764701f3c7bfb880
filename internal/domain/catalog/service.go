package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration = errors.New("service duration must be positive")
	ErrNegativePrice   = errors.New("service price cannot be negative")
	ErrNameRequired    = errors.New("service name is required")
)

// Service is what gets booked: its duration drives window sizing for every
// booking attempt. Immutable from the core's point of view.
type Service struct {
	id          uuid.UUID
	name        string
	durationMin int
	priceCents  int64
	category    string
}

func NewService(id uuid.UUID, name string, durationMin int, priceCents int64, category string) (*Service, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if durationMin <= 0 {
		return nil, ErrInvalidDuration
	}
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}
	return &Service{
		id:          id,
		name:        name,
		durationMin: durationMin,
		priceCents:  priceCents,
		category:    category,
	}, nil
}

func (s *Service) ID() uuid.UUID     { return s.id }
func (s *Service) Name() string      { return s.name }
func (s *Service) DurationMin() int  { return s.durationMin }
func (s *Service) PriceCents() int64 { return s.priceCents }
func (s *Service) Category() string  { return s.category }

func (s *Service) Duration() time.Duration {
	return time.Duration(s.durationMin) * time.Minute
}
