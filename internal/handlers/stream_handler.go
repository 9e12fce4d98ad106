package handlers

import (
	"io"
	"net/http"

	"github.com/davmoreno/djlink/internal/helpers"
	"github.com/davmoreno/djlink/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StreamChangesHandler bridges a user's realtime channels onto an SSE stream.
// The subscription is torn down when the client goes away, mirroring the
// unmount teardown a mobile client performs.
func StreamChangesHandler(s *realtime.Subscriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromContext(c)
		if !ok {
			return
		}

		viewerID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid user ID in token"))
			return
		}

		changes := make(chan realtime.Change, 32)
		deliver := func(change realtime.Change) {
			// Drop on a full buffer rather than block the bridge; the client
			// reconciles from the store on its next load anyway.
			select {
			case changes <- change:
			default:
			}
		}

		unsubscribe, err := s.Subscribe(c.Request.Context(), viewerID, deliver, deliver)
		if err != nil {
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("failed to subscribe to changes"))
			return
		}
		defer unsubscribe()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			select {
			case change := <-changes:
				c.SSEvent("change", change)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
