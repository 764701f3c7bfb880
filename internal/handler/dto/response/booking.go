package response

import (
	"time"

	"slotbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID           uuid.UUID `json:"id"`
	ServiceID    uuid.UUID `json:"serviceId"`
	ServiceName  string    `json:"serviceName"`
	ProviderID   uuid.UUID `json:"providerId"`
	ProviderName string    `json:"providerName"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Status       string    `json:"status"`
	ContactName  string    `json:"contactName"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	ContactNote  string    `json:"contactNote,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type BookingListResponse struct {
	ID           uuid.UUID `json:"id"`
	ServiceName  string    `json:"serviceName"`
	ProviderName string    `json:"providerName"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func FromBookingView(rm *queries.BookingView) *BookingResponse {
	return &BookingResponse{
		ID:           rm.ID,
		ServiceID:    rm.ServiceID,
		ServiceName:  rm.ServiceName,
		ProviderID:   rm.ProviderID,
		ProviderName: rm.ProviderName,
		Start:        rm.Start,
		End:          rm.End,
		Status:       rm.Status,
		ContactName:  rm.ContactName,
		ContactPhone: rm.ContactPhone,
		ContactEmail: rm.ContactEmail,
		ContactNote:  rm.ContactNote,
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	}
}

func FromBookingListItem(rm *queries.BookingListItem) *BookingListResponse {
	return &BookingListResponse{
		ID:           rm.ID,
		ServiceName:  rm.ServiceName,
		ProviderName: rm.ProviderName,
		Start:        rm.Start,
		End:          rm.End,
		Status:       rm.Status,
		CreatedAt:    rm.CreatedAt,
	}
}
