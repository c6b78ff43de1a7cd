package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/services"
)

// GenerateReportsHandler runs the batch report generation pipeline.
func GenerateReportsHandler(generator *services.ReportGeneratorService, payload *services.ReportPayloadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := generator.GenerateAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Regenerated content invalidates cached payloads; the batch result
		// only carries counts, so every registered archetype is flushed
		for _, arch := range models.Archetypes {
			payload.Invalidate(arch.ID)
		}

		c.JSON(http.StatusOK, result)
	}
}

// DispatchEmailsHandler runs one poll of the email dispatch worker.
func DispatchEmailsHandler(dispatch *services.EmailDispatchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := dispatch.ProcessPending(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ListRequestsHandler returns recent report requests for the admin
// dashboard.
func ListRequestsHandler(lister services.RequestLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 100
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}

		requests, err := lister.ListRequests(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"requests": requests})
	}
}
