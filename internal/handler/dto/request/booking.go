package request

import (
	"strings"
	"time"

	"slotbook/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ServiceID    uuid.UUID `json:"service_id" binding:"required"`
	ProviderID   uuid.UUID `json:"provider_id" binding:"required"`
	Start        time.Time `json:"start" binding:"required"`
	End          time.Time `json:"end" binding:"required"`
	ContactName  string    `json:"contact_name" binding:"required"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail string    `json:"contact_email"`
	ContactNote  string    `json:"contact_note"`
}

func (r CreateBookingRequest) ToParams() commands.CreateBookingParams {
	return commands.CreateBookingParams{
		ServiceID:  r.ServiceID,
		ProviderID: r.ProviderID,
		Start:      r.Start,
		End:        r.End,
		Contact: commands.ContactParams{
			Name:  strings.TrimSpace(r.ContactName),
			Phone: strings.TrimSpace(r.ContactPhone),
			Email: strings.TrimSpace(r.ContactEmail),
			Note:  strings.TrimSpace(r.ContactNote),
		},
	}
}

type RescheduleBookingRequest struct {
	// ProviderID switches the booking to another provider; omitted keeps the
	// current one.
	ProviderID *uuid.UUID `json:"provider_id,omitempty"`
	Start      time.Time  `json:"start" binding:"required"`
	End        time.Time  `json:"end" binding:"required"`
}

func (r RescheduleBookingRequest) ToParams() commands.RescheduleParams {
	params := commands.RescheduleParams{
		Start: r.Start,
		End:   r.End,
	}
	if r.ProviderID != nil {
		params.ProviderID = *r.ProviderID
	}
	return params
}
