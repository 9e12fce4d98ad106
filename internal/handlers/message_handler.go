package handlers

import (
	"net/http"
	"strconv"

	"github.com/davmoreno/djlink/internal/helpers"
	"github.com/davmoreno/djlink/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func SendMessageHandler(m *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		var req struct {
			ReceiverID string `json:"receiver_id" binding:"required"`
			Content    string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		senderID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid user ID in token"))
			return
		}

		receiverID, err := uuid.Parse(req.ReceiverID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid receiver ID format"))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		message, err := m.SendText(c.Request.Context(), senderID, receiverID, req.Content, accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, helpers.SuccessResponse(message, "Message sent"))
	}
}

// GetConversationHandler returns the reduced transcript: bubbles in creation
// order with per-card action affordances for the viewer.
func GetConversationHandler(m *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		peerID, err := uuid.Parse(c.Param("peer_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid peer ID format"))
			return
		}

		limitInt, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limitInt <= 0 {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid limit parameter"))
			return
		}
		offsetInt, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offsetInt < 0 {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid offset parameter"))
			return
		}

		viewerID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid user ID in token"))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		conversation, err := m.BuildConversation(c.Request.Context(), viewerID, claims.GetSafeRole(), peerID, offsetInt, limitInt, accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		type bubbleView struct {
			ID          string      `json:"id"`
			SenderID    string      `json:"sender_id,omitempty"`
			Content     string      `json:"content"`
			Kind        string      `json:"kind"`
			Proposal    interface{} `json:"proposal,omitempty"`
			IsRead      bool        `json:"is_read"`
			Affordances interface{} `json:"affordances,omitempty"`
		}

		bubbles := conversation.Bubbles()
		views := make([]bubbleView, 0, len(bubbles))
		for _, b := range bubbles {
			view := bubbleView{
				ID:      b.ID,
				Content: b.Content,
				Kind:    string(b.Kind),
				IsRead:  b.IsRead,
			}
			if b.SenderID != uuid.Nil {
				view.SenderID = b.SenderID.String()
			}
			if b.Proposal != nil {
				view.Proposal = b.Proposal
				view.Affordances = conversation.AffordancesFor(b)
			}
			views = append(views, view)
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(views, ""))
	}
}

func MarkConversationReadHandler(m *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		peerID, err := uuid.Parse(c.Param("peer_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid peer ID format"))
			return
		}

		readerID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid user ID in token"))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		count, err := m.MarkRead(c.Request.Context(), readerID, peerID, accessToken)
		if err != nil {
			c.JSON(statusForError(err), helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"marked_read": count}, ""))
	}
}
