package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/services"
)

// CreateReportRequestHandler accepts an assessment submission and creates a
// pending report request. The email worker picks it up on its next poll.
func CreateReportRequestHandler(requests *services.ReportRequestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.ReportRequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		req, err := requests.Create(c.Request.Context(), input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// The access token travels only by email; the response confirms
		// creation without exposing it
		c.JSON(http.StatusCreated, gin.H{
			"id":          req.ID,
			"archetypeId": req.ArchetypeID,
			"status":      req.Status,
			"expiresAt":   req.ExpiresAt,
		})
	}
}

// GetReportHandler validates the access token and returns the report
// payload.
func GetReportHandler(access *services.ReportAccessService, payload *services.ReportPayloadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		archetypeID := c.Param("archetypeId")
		token := c.Param("token")

		result := access.ValidateAccess(c.Request.Context(), archetypeID, token, IsAdminRequest(c))
		if result.State != models.AccessGranted {
			c.JSON(http.StatusForbidden, gin.H{
				"state":  result.State.String(),
				"reason": result.Reason,
			})
			return
		}

		bypassCache := c.Query("refresh") == "true"
		report, err := payload.GetReport(c.Request.Context(), archetypeID, bypassCache)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"state":  result.State.String(),
			"report": report,
		})
	}
}

// GetReportStatusHandler returns the validation state for a token without
// fetching the payload.
func GetReportStatusHandler(access *services.ReportAccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		archetypeID := c.Param("archetypeId")
		token := c.Param("token")

		result := access.ValidateAccess(c.Request.Context(), archetypeID, token, IsAdminRequest(c))

		status := http.StatusOK
		if result.State != models.AccessGranted {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{
			"state":  result.State.String(),
			"reason": result.Reason,
		})
	}
}
