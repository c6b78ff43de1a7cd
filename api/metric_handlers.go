package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/services"
)

// GetMetricsHandler returns percentage-difference results for a report,
// gated behind the same token validation as the payload itself. Metric keys
// default to the full mapping table; ?keys=a,b,c narrows the set.
func GetMetricsHandler(access *services.ReportAccessService, payload *services.ReportPayloadService, calculator *services.PercentageCalculatorService) gin.HandlerFunc {
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

		report, err := payload.GetReport(c.Request.Context(), archetypeID, false)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		var keys []string
		if raw := c.Query("keys"); raw != "" {
			for _, key := range strings.Split(raw, ",") {
				if key = strings.TrimSpace(key); key != "" {
					keys = append(keys, key)
				}
			}
		} else {
			for key := range models.MetricMappings {
				keys = append(keys, key)
			}
		}

		percentages := calculator.CalculateMultiplePercentages(c.Request.Context(), keys, report.Metrics)
		c.JSON(http.StatusOK, gin.H{
			"archetypeId": archetypeID,
			"metrics":     percentages,
		})
	}
}
