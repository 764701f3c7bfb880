package response

import (
	"time"

	"slotbook/internal/usecase/queries"

	"github.com/google/uuid"
)

type CandidateResponse struct {
	ProviderID   uuid.UUID `json:"providerId"`
	ProviderName string    `json:"providerName"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

type ProfileResponse struct {
	ClientID uuid.UUID `json:"clientId"`
	FullName string    `json:"fullName"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
}

func FromCandidateViews(views []queries.CandidateView) []CandidateResponse {
	out := make([]CandidateResponse, len(views))
	for i, v := range views {
		out[i] = CandidateResponse{
			ProviderID:   v.ProviderID,
			ProviderName: v.ProviderName,
			Start:        v.Start,
			End:          v.End,
		}
	}
	return out
}

func FromProfileView(v *queries.ProfileView) *ProfileResponse {
	return &ProfileResponse{
		ClientID: v.ClientID,
		FullName: v.FullName,
		Phone:    v.Phone,
		Email:    v.Email,
	}
}
