package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/store"
)

// trackingPixel is a 1x1 transparent GIF.
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackerStore is the slice of the store the tracking endpoint needs.
type TrackerStore interface {
	FindRequestAnyStatus(ctx context.Context, archetypeID, token string) (*models.ReportRequest, error)
	BumpAccess(ctx context.Context, id string) error
}

// TrackAccessHandler serves the email tracking pixel and records the open
// as a best-effort access bump. The pixel is always returned, even when the
// bump fails or the token is unknown.
func TrackAccessHandler(tracker TrackerStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		archetypeID := c.Param("archetypeId")
		token := c.Param("token")

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			req, err := tracker.FindRequestAnyStatus(ctx, archetypeID, token)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					log.Printf("WARNING: track-access lookup failed: %v", err)
				}
				return
			}
			if err := tracker.BumpAccess(ctx, req.ID); err != nil {
				log.Printf("WARNING: track-access bump failed: %v", err)
			}
		}()

		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/gif", trackingPixel)
	}
}
