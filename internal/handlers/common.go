package handlers

import (
	"errors"
	"net/http"

	"github.com/davmoreno/djlink/internal/helpers"
	"github.com/davmoreno/djlink/internal/models"
	"github.com/gin-gonic/gin"
)

// claimsFromContext pulls the enhanced claims stored by the auth middleware.
func claimsFromContext(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
		return nil, false
	}

	claims, ok := userClaims.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("invalid user claims"))
		return nil, false
	}

	return claims, true
}

// statusForError maps domain sentinels onto HTTP status codes; anything
// unrecognized is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidTerms):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrProposalNotFound),
		errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyResolved):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
