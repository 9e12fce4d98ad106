package handlers

import (
	"net/http"
	"strconv"

	"github.com/davmoreno/djlink/internal/helpers"
	"github.com/davmoreno/djlink/internal/models"
	"github.com/davmoreno/djlink/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func CreateProposalHandler(p *services.ProposalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		var req struct {
			DJID  string               `json:"dj_id" binding:"required"`
			Terms models.ProposalTerms `json:"terms" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		clientID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid user ID in token"))
			return
		}

		djID, err := uuid.Parse(req.DJID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid dj ID format"))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		proposal, err := p.CreateProposal(c.Request.Context(), clientID, djID, claims.GetSafeRole(), &req.Terms, accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, helpers.SuccessResponse(proposal, "Proposal created successfully"))
	}
}

func RespondProposalHandler(p *services.ProposalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		proposalID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid proposal ID format"))
			return
		}

		var req struct {
			Decision string `json:"decision" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		proposal, err := p.Respond(c.Request.Context(), proposalID, req.Decision, claims.GetSafeRole(), accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(proposal, "Proposal "+proposal.Estado))
	}
}

func CounterProposalHandler(p *services.ProposalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		proposalID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid proposal ID format"))
			return
		}

		var req struct {
			Monto int `json:"monto" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		proposal, err := p.Counter(c.Request.Context(), proposalID, req.Monto, claims.GetSafeRole(), accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(proposal, "Counter-offer sent"))
	}
}

func GetProposalHandler(p *services.ProposalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := claimsFromContext(c); !ok {
			return
		}

		proposalID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid proposal ID format"))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		proposal, err := p.GetProposal(c.Request.Context(), proposalID, accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(proposal, ""))
	}
}

func ListProposalsHandler(p *services.ProposalService) gin.HandlerFunc {
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

		proposals, total, err := p.ListProposalsForUser(c.Request.Context(), userID, claims.GetSafeRole(), offsetInt, limitInt, accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		page := (offsetInt / limitInt) + 1
		c.JSON(http.StatusOK, helpers.PaginatedResponse(proposals, page, limitInt, total))
	}
}

func GetProposalHistoryHandler(p *services.ProposalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := claimsFromContext(c); !ok {
			return
		}

		proposalID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid proposal ID format"))
			return
		}

		history, err := p.GetHistory(c.Request.Context(), proposalID)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(history, ""))
	}
}
