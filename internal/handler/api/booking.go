package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"slotbook/internal/domain/identity"
	reqdto "slotbook/internal/handler/dto/request"
	resdto "slotbook/internal/handler/dto/response"
	"slotbook/internal/handler/httperr"
	"slotbook/internal/handler/middleware"
	"slotbook/internal/pkg/clock"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/commands"
	"slotbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	commands     commands.BookingCommands
	queries      queries.BookingQueries
	availability queries.AvailabilityQueries
	clock        clock.Clock
}

func NewBookingHandler(
	cmds commands.BookingCommands,
	qs queries.BookingQueries,
	availability queries.AvailabilityQueries,
	clk clock.Clock,
) *BookingHandler {
	return &BookingHandler{
		commands:     cmds,
		queries:      qs,
		availability: availability,
		clock:        clk,
	}
}

// @Summary Create booking
// @Description Book a service window with a provider
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	requestor, ok := middleware.GetRequestor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("requestor missing from context"), "Internal server error", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.commands.CreateBooking(c.Request.Context(), requestor, req.ToParams())
	if err != nil {
		if errors.Is(err, errs.ErrSlotUnavailable) {
			h.abortSlotConflict(c, err, req.ServiceID, req.Start)
			return
		}
		h.abortBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromBookingView(view))
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	requestor, ok := middleware.GetRequestor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("requestor missing from context"), "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), id, requestor.ClientID, requestor.Role)
	if err != nil {
		h.abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List own bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.BookingListResponse
// @Failure 401 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	requestor, ok := middleware.GetRequestor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("requestor missing from context"), "Internal server error", nil)
		return
	}

	items, err := h.queries.ListByClient(c.Request.Context(), requestor.ClientID)
	if err != nil {
		h.abortBookingError(c, err)
		return
	}

	out := make([]*resdto.BookingListResponse, len(items))
	for i, item := range items {
		out[i] = resdto.FromBookingListItem(item)
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Cancel booking
// @Description Cancel a booking and release its window. Idempotent.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	h.runTransition(c, h.commands.CancelBooking)
}

// @Summary Confirm booking
// @Description Transition a pending booking to confirmed. Operator only.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.runTransition(c, h.commands.ConfirmBooking)
}

// @Summary Reschedule booking
// @Description Move a booking to a new window. The new window is claimed
// before the old one is released; on conflict the booking is unchanged.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RescheduleBookingRequest true "New window"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/reschedule [post]
func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	requestor, ok := middleware.GetRequestor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("requestor missing from context"), "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	var req reqdto.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	view, err := h.commands.RescheduleBooking(c.Request.Context(), requestor, id, req.ToParams())
	if err != nil {
		if errors.Is(err, errs.ErrSlotUnavailable) {
			h.abortRescheduleConflict(c, err, id, req.Start)
			return
		}
		h.abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Delete booking
// @Description Hard-delete a cancelled booking.
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id} [delete]
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	requestor, ok := middleware.GetRequestor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("requestor missing from context"), "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	if err := h.commands.DeleteBooking(c.Request.Context(), requestor, id); err != nil {
		h.abortBookingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transitionFn func(ctx context.Context, req commands.Requestor, id uuid.UUID) (*queries.BookingView, error)

func (h *BookingHandler) runTransition(c *gin.Context, fn transitionFn) {
	requestor, ok := middleware.GetRequestor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("requestor missing from context"), "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	view, err := fn(c.Request.Context(), requestor, id)
	if err != nil {
		h.abortBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// abortSlotConflict answers a lost claim race with 409 plus a fresh
// candidate list, so the client is never re-shown the option that just lost.
func (h *BookingHandler) abortSlotConflict(c *gin.Context, err error, serviceID uuid.UUID, start time.Time) {
	detail := h.freshCandidates(c, serviceID, start)
	httperr.AbortWithError(c, http.StatusConflict, err, "Requested window is no longer available", detail)
}

func (h *BookingHandler) abortRescheduleConflict(c *gin.Context, err error, bookingID uuid.UUID, start time.Time) {
	var detail any
	if view, viewErr := h.queries.GetByID(c.Request.Context(), bookingID, mustClientID(c), mustRole(c)); viewErr == nil {
		detail = gin.H{
			"booking":    resdto.FromBookingView(view),
			"candidates": h.freshCandidates(c, view.ServiceID, start),
		}
	}
	httperr.AbortWithError(c, http.StatusConflict, err, "New window is no longer available, booking unchanged", detail)
}

func (h *BookingHandler) freshCandidates(c *gin.Context, serviceID uuid.UUID, start time.Time) any {
	views, err := h.availability.Candidates(c.Request.Context(), serviceID, start, true)
	if err != nil {
		return nil
	}
	return resdto.FromCandidateViews(views)
}

func mustClientID(c *gin.Context) uuid.UUID {
	id, _ := middleware.GetClientID(c)
	return id
}

func mustRole(c *gin.Context) identity.Role {
	role, _ := middleware.GetClientRole(c)
	return role
}

func (h *BookingHandler) abortBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrBookingNotFound),
		errors.Is(err, errs.ErrServiceNotFound),
		errors.Is(err, errs.ErrProviderNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	case errors.Is(err, errs.ErrInvalidTimeWindow):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid time window", nil)
	case errors.Is(err, errs.ErrInvalidContact):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid contact details", nil)
	case errors.Is(err, errs.ErrProviderNotQualified):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Provider does not offer this service", nil)
	case errors.Is(err, errs.ErrSlotUnavailable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Requested window is no longer available", nil)
	case errors.Is(err, errs.ErrInvalidTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking state does not allow this operation", nil)
	case errors.Is(err, errs.ErrBookingNotDeletable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Only cancelled bookings can be deleted", nil)
	case errors.Is(err, errs.ErrUnauthenticated):
		httperr.AbortWithError(c, http.StatusUnauthorized, err, "Authentication required", nil)
	case errors.Is(err, errs.ErrStorageUnavailable):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Storage temporarily unavailable, retry with the same request", nil)
	case errors.Is(err, errs.ErrConsistencyViolation):
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal consistency error", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
