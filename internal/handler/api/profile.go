package api

import (
	"errors"
	"net/http"

	resdto "slotbook/internal/handler/dto/response"
	"slotbook/internal/handler/httperr"
	"slotbook/internal/handler/middleware"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profiles queries.ProfileQueries
}

func NewProfileHandler(profiles queries.ProfileQueries) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// @Summary Get own profile
// @Description Stored contact details for pre-filling booking forms
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.ProfileResponse
// @Failure 401 {object} httperr.Response
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("client id missing from context"), "Internal server error", nil)
		return
	}

	view, err := h.profiles.GetProfile(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, errs.ErrStorageUnavailable) {
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Storage temporarily unavailable", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProfileView(view))
}
