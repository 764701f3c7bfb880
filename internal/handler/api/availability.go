package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	resdto "slotbook/internal/handler/dto/response"
	"slotbook/internal/handler/httperr"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	availability queries.AvailabilityQueries
}

func NewAvailabilityHandler(availability queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// @Summary List bookable candidates
// @Description Compute offerable windows for a service on a date
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param service_id query string true "Service ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param fresh query bool false "Bypass the candidate cache"
// @Success 200 {array} resdto.CandidateResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /availability [get]
func (h *AvailabilityHandler) ListCandidates(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid service ID format", nil)
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date, expected YYYY-MM-DD", nil)
		return
	}

	fresh, _ := strconv.ParseBool(c.DefaultQuery("fresh", "false"))

	views, err := h.availability.Candidates(c.Request.Context(), serviceID, date, fresh)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrServiceNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Service not found", nil)
		case errors.Is(err, errs.ErrStorageUnavailable):
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Storage temporarily unavailable", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromCandidateViews(views))
}
