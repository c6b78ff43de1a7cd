package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/services"
)

// GetQuestionsHandler returns the assessment questionnaire.
func GetQuestionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": services.AssessmentQuestions})
}

// SubmitAssessmentHandler maps submitted answers to an archetype without
// persisting anything.
func SubmitAssessmentHandler(assessment *services.AssessmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Answers models.AssessmentAnswers `json:"answers" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		archetypeID, err := assessment.MapAnswers(body.Answers)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		arch, _ := models.ArchetypeByID(archetypeID)
		c.JSON(http.StatusOK, gin.H{
			"archetypeId": archetypeID,
			"archetype":   arch,
		})
	}
}

// GetArchetypesHandler returns the fixed archetype registry.
func GetArchetypesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"archetypes": models.Archetypes})
}
