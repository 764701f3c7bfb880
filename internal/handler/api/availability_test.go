//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"slotbook/internal/domain/identity"
	"slotbook/internal/handler/api"
	resdto "slotbook/internal/handler/dto/response"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/queries"
	"slotbook/tests/common/builder"
	"slotbook/tests/common/httptest"
	queriesmock "slotbook/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AvailabilityHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockCtrl         *gomock.Controller
	mockAvailability *queriesmock.MockAvailabilityQueries
	mockProfiles     *queriesmock.MockProfileQueries

	clientID uuid.UUID
}

func (s *AvailabilityHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockAvailability = queriesmock.NewMockAvailabilityQueries(s.mockCtrl)
	s.mockProfiles = queriesmock.NewMockProfileQueries(s.mockCtrl)
	s.clientID = uuid.New()

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("client_id", s.clientID)
		c.Set("client_email", "client@example.com")
		c.Set("client_role", identity.RoleClient)
		c.Next()
	}

	// Availability is browsable without a session; profile is not.
	s.router.GET("/availability", api.NewAvailabilityHandler(s.mockAvailability).ListCandidates)
	s.router.GET("/profile", authMiddleware, api.NewProfileHandler(s.mockProfiles).GetProfile)
}

func (s *AvailabilityHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAvailabilityHandlerSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityHandlerTestSuite))
}

func (s *AvailabilityHandlerTestSuite) TestListCandidates() {
	serviceID := uuid.New()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	url := "/availability?service_id=" + serviceID.String() + "&date=2026-03-02"

	s.Run("success: returns 200 OK with candidates", func() {
		views := builder.NewBookingBuilder().BuildCandidateViews()
		s.mockAvailability.EXPECT().Candidates(gomock.Any(), serviceID, date, false).
			Return(views, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response []resdto.CandidateResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response, len(views))
		s.Equal(views[0].ProviderID, response[0].ProviderID)
	})

	s.Run("success: no session required", func() {
		s.mockAvailability.EXPECT().Candidates(gomock.Any(), serviceID, date, false).
			Return([]queries.CandidateView{}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: fresh=true bypasses the cache", func() {
		s.mockAvailability.EXPECT().Candidates(gomock.Any(), serviceID, date, true).
			Return([]queries.CandidateView{}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"&fresh=true", nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		s.JSONEq("[]", rec.Body.String())
	})

	s.Run("error: 400 Bad Request for a malformed service id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/availability?service_id=nope&date=2026-03-02", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid service ID")
	})

	s.Run("error: 400 Bad Request for a malformed date", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/availability?service_id="+serviceID.String()+"&date=02-03-2026", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "YYYY-MM-DD")
	})

	s.Run("error: 404 Not Found for an unknown service", func() {
		s.mockAvailability.EXPECT().Candidates(gomock.Any(), serviceID, date, false).
			Return(nil, errs.ErrServiceNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Service not found")
	})

	s.Run("error: 503 when storage is unavailable", func() {
		s.mockAvailability.EXPECT().Candidates(gomock.Any(), serviceID, date, false).
			Return(nil, errs.ErrStorageUnavailable).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusServiceUnavailable, "Storage temporarily unavailable")
	})
}

func (s *AvailabilityHandlerTestSuite) TestGetProfile() {
	url := "/profile"

	s.Run("success: returns the stored profile", func() {
		s.mockProfiles.EXPECT().GetProfile(gomock.Any(), s.clientID).
			Return(&queries.ProfileView{ClientID: s.clientID, FullName: "Dana Reyes"}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.ProfileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("Dana Reyes", response.FullName)
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: 503 when storage is unavailable", func() {
		s.mockProfiles.EXPECT().GetProfile(gomock.Any(), s.clientID).
			Return(nil, errs.ErrStorageUnavailable).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusServiceUnavailable, "Storage temporarily unavailable")
	})
}
