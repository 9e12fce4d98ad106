package handlers

import (
	"net/http"
	"strconv"

	"github.com/davmoreno/djlink/internal/helpers"
	"github.com/davmoreno/djlink/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func ListEventsHandler(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		limitInt, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limitInt <= 0 {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid limit parameter"))
			return
		}
		offsetInt, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offsetInt < 0 {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid offset parameter"))
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid user ID in token"))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		events, total, err := e.ListEventsForUser(c.Request.Context(), userID, claims.GetSafeRole(), offsetInt, limitInt, accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		page := (offsetInt / limitInt) + 1
		c.JSON(http.StatusOK, helpers.PaginatedResponse(events, page, limitInt, total))
	}
}

func GetEventByProposalHandler(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := claimsFromContext(c); !ok {
			return
		}

		proposalID, err := uuid.Parse(c.Param("proposal_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid proposal ID format"))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		event, err := e.GetEventByProposal(c.Request.Context(), proposalID, accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(event, ""))
	}
}
