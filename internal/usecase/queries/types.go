package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type CandidateView struct {
	ProviderID   uuid.UUID `json:"provider_id"`
	ProviderName string    `json:"provider_name"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

type BookingView struct {
	ID           uuid.UUID `json:"id"`
	ServiceID    uuid.UUID `json:"service_id"`
	ServiceName  string    `json:"service_name"`
	ProviderID   uuid.UUID `json:"provider_id"`
	ProviderName string    `json:"provider_name"`
	ClientID     uuid.UUID `json:"client_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Status       string    `json:"status"`
	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail string    `json:"contact_email"`
	ContactNote  string    `json:"contact_note"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BookingListItem struct {
	ID           uuid.UUID `json:"id"`
	ServiceName  string    `json:"service_name"`
	ProviderName string    `json:"provider_name"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProfileView struct {
	ClientID uuid.UUID `json:"client_id"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
}
