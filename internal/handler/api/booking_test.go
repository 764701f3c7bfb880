//go:build unit

package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"
	"time"

	"slotbook/internal/domain/identity"
	"slotbook/internal/handler/api"
	resdto "slotbook/internal/handler/dto/response"
	"slotbook/internal/handler/middleware"
	"slotbook/internal/pkg/clock"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/queries"
	"slotbook/tests/common/builder"
	"slotbook/tests/common/httptest"
	"slotbook/tests/common/testutil"
	commandsmock "slotbook/tests/mock/commands"
	queriesmock "slotbook/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockCtrl         *gomock.Controller
	mockCommands     *commandsmock.MockBookingCommands
	mockQueries      *queriesmock.MockBookingQueries
	mockAvailability *queriesmock.MockAvailabilityQueries
	handler          *api.BookingHandler

	clientID uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.mockAvailability = queriesmock.NewMockAvailabilityQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(
		s.mockCommands, s.mockQueries, s.mockAvailability,
		clock.NewMockClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)),
	)
	s.clientID = uuid.New()

	// Stand-in auth middleware. The role travels in a test header so
	// individual requests can act as operator or admin.
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		role := identity.RoleClient
		if hdr := c.GetHeader("X-Test-Role"); hdr != "" {
			role = identity.Role(hdr)
		}
		c.Set("client_id", s.clientID)
		c.Set("client_email", "client@example.com")
		c.Set("client_role", role)
		c.Next()
	}

	operatorOnly := middleware.NewAuthMiddleware(nil).RequireRoleAtLeast(identity.RoleOperator)

	s.router.POST("/bookings", authMiddleware, s.handler.CreateBooking)
	s.router.GET("/bookings", authMiddleware, s.handler.ListBookings)
	s.router.GET("/bookings/:id", authMiddleware, s.handler.GetBooking)
	s.router.POST("/bookings/:id/cancel", authMiddleware, s.handler.CancelBooking)
	s.router.POST("/bookings/:id/reschedule", authMiddleware, s.handler.RescheduleBooking)
	s.router.POST("/bookings/:id/confirm", authMiddleware, operatorOnly, s.handler.ConfirmBooking)
	s.router.DELETE("/bookings/:id", authMiddleware, s.handler.DeleteBooking)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func performAsRole(s *BookingHandlerTestSuite, method, url string, body any, role identity.Role) *nethttptest.ResponseRecorder {
	s.T().Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := nethttptest.NewRequest(method, url, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer bearer-token")
	req.Header.Set("X-Test-Role", string(role))

	w := nethttptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// ================================================================================
// TestCreateBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestCreateBooking() {
	url := "/bookings"

	b := builder.NewBookingBuilder().WithClientID(s.clientID)
	reqBody := b.BuildCreateRequestDTO()
	returnView := b.BuildView()

	s.Run("success: returns 201 Created with the booking view", func() {
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(returnView.ID, response.ID)
		s.Equal("pending", response.Status)
	})

	s.Run("error: 400 Bad Request on missing required fields", func() {
		cases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing service_id", mutate: testutil.Field("service_id", nil)},
			{name: "missing provider_id", mutate: testutil.Field("provider_id", nil)},
			{name: "missing start", mutate: testutil.Field("start", nil)},
			{name: "missing end", mutate: testutil.Field("end", nil)},
			{name: "missing contact_name", mutate: testutil.Field("contact_name", nil)},
			{name: "malformed start", mutate: testutil.Field("start", "not-a-time")},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: 409 Conflict on a lost slot race carries fresh candidates", func() {
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrSlotUnavailable).Times(1)
		s.mockAvailability.EXPECT().Candidates(gomock.Any(), reqBody.ServiceID, reqBody.Start, true).
			Return(builder.NewBookingBuilder().BuildCandidateViews(), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "no longer available")

		var candidates []resdto.CandidateResponse
		httptest.AssertErrorDetail(s.T(), rec, &candidates)
		s.NotEmpty(candidates)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		cases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{name: "service not found", commandsError: errs.ErrServiceNotFound, expectedStatus: http.StatusNotFound, expectedMsg: "Not found"},
			{name: "invalid window", commandsError: errs.ErrInvalidTimeWindow, expectedStatus: http.StatusBadRequest, expectedMsg: "Invalid time window"},
			{name: "invalid contact", commandsError: errs.ErrInvalidContact, expectedStatus: http.StatusUnprocessableEntity, expectedMsg: "Invalid contact"},
			{name: "unqualified provider", commandsError: errs.ErrProviderNotQualified, expectedStatus: http.StatusUnprocessableEntity, expectedMsg: "does not offer"},
			{name: "storage unavailable", commandsError: errs.ErrStorageUnavailable, expectedStatus: http.StatusServiceUnavailable, expectedMsg: "retry with the same request"},
			{name: "consistency violation", commandsError: errs.ErrConsistencyViolation, expectedStatus: http.StatusInternalServerError, expectedMsg: "consistency"},
			{name: "unexpected error", commandsError: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedMsg: "Internal server error"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, tc.commandsError).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestGetBooking / TestListBookings
// ================================================================================

func (s *BookingHandlerTestSuite) TestGetBooking() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String()

	returnView := builder.NewBookingBuilder().WithID(bookingID).WithClientID(s.clientID).BuildView()

	s.Run("success: returns 200 OK with BookingResponse", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), bookingID, s.clientID, identity.RoleClient).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(bookingID, response.ID)
		s.Equal(returnView.ServiceName, response.ServiceName)
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/not-a-uuid", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid booking ID")
	})

	s.Run("error: 404 Not Found for foreign or missing booking", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), bookingID, s.clientID, identity.RoleClient).
			Return(nil, errs.ErrBookingNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})
}

func (s *BookingHandlerTestSuite) TestListBookings() {
	url := "/bookings"

	s.Run("success: returns 200 OK with the client's bookings", func() {
		items := []*queries.BookingListItem{
			builder.NewBookingBuilder().WithClientID(s.clientID).BuildListItem(),
			builder.NewBookingBuilder().WithClientID(s.clientID).AsCancelled().BuildListItem(),
		}
		s.mockQueries.EXPECT().ListByClient(gomock.Any(), s.clientID).
			Return(items, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response []resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response, 2)
		s.Equal("cancelled", response[1].Status)
	})

	s.Run("success: empty list stays a JSON array", func() {
		s.mockQueries.EXPECT().ListByClient(gomock.Any(), s.clientID).
			Return([]*queries.BookingListItem{}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		s.JSONEq("[]", rec.Body.String())
	})
}

// ================================================================================
// TestCancelBooking / TestConfirmBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestCancelBooking() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/cancel"

	s.Run("success: returns 200 OK with the cancelled view", func() {
		returnView := builder.NewBookingBuilder().WithID(bookingID).AsCancelled().BuildView()
		s.mockCommands.EXPECT().CancelBooking(gomock.Any(), gomock.Any(), bookingID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("cancelled", response.Status)
	})

	s.Run("error: 404 Not Found for a foreign booking", func() {
		s.mockCommands.EXPECT().CancelBooking(gomock.Any(), gomock.Any(), bookingID).
			Return(nil, errs.ErrBookingNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})
}

func (s *BookingHandlerTestSuite) TestConfirmBooking() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/confirm"

	s.Run("success: operator confirms a pending booking", func() {
		returnView := builder.NewBookingBuilder().WithID(bookingID).AsConfirmed().BuildView()
		s.mockCommands.EXPECT().ConfirmBooking(gomock.Any(), gomock.Any(), bookingID).
			Return(returnView, nil).Times(1)

		rec := performAsRole(s, http.MethodPost, url, nil, identity.RoleOperator)

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("confirmed", response.Status)
	})

	s.Run("error: 403 Forbidden for a plain client", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("error: 409 Conflict for a non-pending booking", func() {
		s.mockCommands.EXPECT().ConfirmBooking(gomock.Any(), gomock.Any(), bookingID).
			Return(nil, errs.ErrInvalidTransition).Times(1)

		rec := performAsRole(s, http.MethodPost, url, nil, identity.RoleOperator)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "state does not allow")
	})
}

// ================================================================================
// TestRescheduleBooking / TestDeleteBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestRescheduleBooking() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/reschedule"

	b := builder.NewBookingBuilder().WithID(bookingID).WithClientID(s.clientID)
	reqBody := b.BuildRescheduleRequestDTO()

	s.Run("success: returns 200 OK with the moved booking", func() {
		moved := b.BuildView()
		moved.Start = reqBody.Start
		moved.End = reqBody.End
		s.mockCommands.EXPECT().RescheduleBooking(gomock.Any(), gomock.Any(), bookingID, gomock.Any()).
			Return(moved, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.True(response.Start.Equal(reqBody.Start))
	})

	s.Run("error: 409 Conflict keeps the original booking in the detail", func() {
		current := b.BuildView()
		s.mockCommands.EXPECT().RescheduleBooking(gomock.Any(), gomock.Any(), bookingID, gomock.Any()).
			Return(nil, errs.ErrSlotUnavailable).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), bookingID, s.clientID, identity.RoleClient).
			Return(current, nil).Times(1)
		s.mockAvailability.EXPECT().Candidates(gomock.Any(), current.ServiceID, reqBody.Start, true).
			Return(builder.NewBookingBuilder().BuildCandidateViews(), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "booking unchanged")

		var detail struct {
			Booking    resdto.BookingResponse     `json:"booking"`
			Candidates []resdto.CandidateResponse `json:"candidates"`
		}
		httptest.AssertErrorDetail(s.T(), rec, &detail)
		s.Equal(bookingID, detail.Booking.ID)
		s.NotEmpty(detail.Candidates)
	})

	s.Run("error: 400 Bad Request on missing window", func() {
		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("start", nil))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

func (s *BookingHandlerTestSuite) TestDeleteBooking() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String()

	s.Run("success: returns 204 No Content", func() {
		s.mockCommands.EXPECT().DeleteBooking(gomock.Any(), gomock.Any(), bookingID).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
		s.Empty(rec.Body.String())
	})

	s.Run("error: 409 Conflict when the booking is not cancelled", func() {
		s.mockCommands.EXPECT().DeleteBooking(gomock.Any(), gomock.Any(), bookingID).
			Return(errs.ErrBookingNotDeletable).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "cancelled bookings")
	})
}
