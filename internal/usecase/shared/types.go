package shared

import (
	"time"

	"github.com/google/uuid"
)

// Write-side snapshots keep commands off the read-side query types.
type ServiceSnapshot struct {
	ID          uuid.UUID
	Name        string
	DurationMin int
	PriceCents  int64
	Category    string
}

func (s ServiceSnapshot) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

type ProviderSnapshot struct {
	ID   uuid.UUID
	Name string
}

// Audience selects who a notification intent addresses.
type Audience string

const (
	AudienceClient Audience = "client"
	AudienceOwner  Audience = "owner"
)

// Notification kinds emitted by the booking commands.
const (
	KindBookingCreated     = "booking_created"
	KindBookingCancelled   = "booking_cancelled"
	KindBookingRescheduled = "booking_rescheduled"
	KindBookingConfirmed   = "booking_confirmed"
)

type OutboxJob struct {
	ReservationID uuid.UUID
	Audience      Audience
	Kind          string
	Payload       []byte
	RunAt         time.Time
}

type ClientProfile struct {
	ClientID  uuid.UUID
	FullName  string
	Phone     string
	Email     string
	UpdatedAt time.Time
}
