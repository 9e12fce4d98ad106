package handlers

import (
	"net/http"

	"github.com/davmoreno/djlink/internal/helpers"
	"github.com/davmoreno/djlink/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func GetDJProfileHandler(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := claimsFromContext(c); !ok {
			return
		}

		userID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid user ID format"))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		profile, err := p.GetDJProfile(c.Request.Context(), userID, accessToken)
		if err != nil {
			c.JSON(http.StatusNotFound, helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(profile, ""))
	}
}

func GetRoleHandler(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{
			"user_id": claims.UserID,
			"role":    claims.GetSafeRole(),
		}, ""))
	}
}

func UploadDJAvatarHandler(p *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		if !claims.IsDJ() {
			c.JSON(http.StatusForbidden, helpers.ErrorResponse("only DJs can update a DJ profile"))
			return
		}

		var req struct {
			Image string `json:"image" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid user ID in token"))
			return
		}

		accessToken, _ := c.Cookie("access_token")

		profile, err := p.UploadAvatar(c.Request.Context(), userID, req.Image, accessToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(profile, "Avatar updated"))
	}
}
