//go:build unit || e2e

package builder

import (
	"time"

	dombooking "slotbook/internal/domain/booking"
	"slotbook/internal/domain/schedule"
	reqdto "slotbook/internal/handler/dto/request"
	"slotbook/internal/usecase/queries"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	ID           uuid.UUID
	ServiceID    uuid.UUID
	ServiceName  string
	ProviderID   uuid.UUID
	ProviderName string
	ClientID     uuid.UUID
	EntryID      uuid.UUID
	Start        time.Time
	End          time.Time
	Status       string
	ContactName  string
	ContactPhone string
	ContactEmail string
	ContactNote  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	start := now.Add(24 * time.Hour)
	return &BookingBuilder{
		ID:           uuid.New(),
		ServiceID:    uuid.New(),
		ServiceName:  "Consultation",
		ProviderID:   uuid.New(),
		ProviderName: "Dana",
		ClientID:     uuid.New(),
		EntryID:      uuid.New(),
		Start:        start,
		End:          start.Add(time.Hour),
		Status:       "pending",
		ContactName:  "Dana Reyes",
		ContactPhone: "555-0100",
		ContactEmail: "dana@example.com",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (b *BookingBuilder) BuildDomain() (*dombooking.Reservation, error) {
	window, err := schedule.NewTimeWindow(b.Start, b.End)
	if err != nil {
		return nil, err
	}
	contact, err := dombooking.NewContact(b.ContactName, b.ContactPhone, b.ContactEmail, b.ContactNote)
	if err != nil {
		return nil, err
	}
	return dombooking.NewReservation(
		b.ServiceID, b.ProviderID, b.ClientID, b.EntryID,
		window, b.End.Sub(b.Start), contact, b.CreatedAt,
	)
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		ServiceID:    b.ServiceID,
		ProviderID:   b.ProviderID,
		Start:        b.Start,
		End:          b.End,
		ContactName:  b.ContactName,
		ContactPhone: b.ContactPhone,
		ContactEmail: b.ContactEmail,
		ContactNote:  b.ContactNote,
	}
}

func (b *BookingBuilder) BuildRescheduleRequestDTO() reqdto.RescheduleBookingRequest {
	return reqdto.RescheduleBookingRequest{
		Start: b.Start.Add(2 * time.Hour),
		End:   b.End.Add(2 * time.Hour),
	}
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	return &queries.BookingView{
		ID:           b.ID,
		ServiceID:    b.ServiceID,
		ServiceName:  b.ServiceName,
		ProviderID:   b.ProviderID,
		ProviderName: b.ProviderName,
		ClientID:     b.ClientID,
		Start:        b.Start,
		End:          b.End,
		Status:       b.Status,
		ContactName:  b.ContactName,
		ContactPhone: b.ContactPhone,
		ContactEmail: b.ContactEmail,
		ContactNote:  b.ContactNote,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func (b *BookingBuilder) BuildListItem() *queries.BookingListItem {
	return &queries.BookingListItem{
		ID:           b.ID,
		ServiceName:  b.ServiceName,
		ProviderName: b.ProviderName,
		Start:        b.Start,
		End:          b.End,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
	}
}

func (b *BookingBuilder) BuildCandidateView() queries.CandidateView {
	return queries.CandidateView{
		ProviderID:   b.ProviderID,
		ProviderName: b.ProviderName,
		Start:        b.Start,
		End:          b.End,
	}
}

// BuildCandidateViews returns a short candidate list anchored at the
// builder's window, stepped hourly.
func (b *BookingBuilder) BuildCandidateViews() []queries.CandidateView {
	views := make([]queries.CandidateView, 3)
	for i := range views {
		offset := time.Duration(i) * time.Hour
		views[i] = queries.CandidateView{
			ProviderID:   b.ProviderID,
			ProviderName: b.ProviderName,
			Start:        b.Start.Add(offset),
			End:          b.End.Add(offset),
		}
	}
	return views
}

func (b *BookingBuilder) BuildServiceSnapshot() shared.ServiceSnapshot {
	return shared.ServiceSnapshot{
		ID:          b.ServiceID,
		Name:        b.ServiceName,
		DurationMin: int(b.End.Sub(b.Start) / time.Minute),
	}
}

// Fluent builder methods
func (b *BookingBuilder) WithID(id uuid.UUID) *BookingBuilder {
	b.ID = id
	return b
}

func (b *BookingBuilder) WithServiceID(id uuid.UUID) *BookingBuilder {
	b.ServiceID = id
	return b
}

func (b *BookingBuilder) WithProviderID(id uuid.UUID) *BookingBuilder {
	b.ProviderID = id
	return b
}

func (b *BookingBuilder) WithClientID(id uuid.UUID) *BookingBuilder {
	b.ClientID = id
	return b
}

func (b *BookingBuilder) WithWindow(start, end time.Time) *BookingBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *BookingBuilder) WithStatus(status string) *BookingBuilder {
	b.Status = status
	return b
}

func (b *BookingBuilder) WithContactName(name string) *BookingBuilder {
	b.ContactName = name
	return b
}

func (b *BookingBuilder) AsCancelled() *BookingBuilder {
	b.Status = "cancelled"
	return b
}

func (b *BookingBuilder) AsConfirmed() *BookingBuilder {
	b.Status = "confirmed"
	return b
}
