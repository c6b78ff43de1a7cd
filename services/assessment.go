package services

import (
	"fmt"
	"strings"

	"github.com/gnomiproject/gnomiproject-go/models"
)

// AssessmentOption is one selectable answer with its archetype weights.
type AssessmentOption struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Weights map[string]int `json:"-"`
}

// AssessmentQuestion is one questionnaire item.
type AssessmentQuestion struct {
	ID          string             `json:"id"`
	Text        string             `json:"text"`
	MultiSelect bool               `json:"multiSelect"`
	Options     []AssessmentOption `json:"options"`
}

// AssessmentQuestions is the fixed questionnaire. Option weights steer the
// answer toward archetype ids; the mapping is deterministic.
var AssessmentQuestions = []AssessmentQuestion{
	{
		ID:   "q1",
		Text: "How would you describe your workforce's engagement with healthcare benefits?",
		Options: []AssessmentOption{
			{ID: "q1a", Text: "Highly engaged; employees actively research and use benefits", Weights: map[string]int{"a1": 3, "a3": 2}},
			{ID: "q1b", Text: "Engaged when steered by plan design", Weights: map[string]int{"b1": 2, "b3": 3}},
			{ID: "q1c", Text: "Mostly reactive; care is sought when something goes wrong", Weights: map[string]int{"c2": 3, "c3": 2}},
		},
	},
	{
		ID:   "q2",
		Text: "What best characterizes your population's health profile?",
		Options: []AssessmentOption{
			{ID: "q2a", Text: "A meaningful share of members manage complex or chronic conditions", Weights: map[string]int{"a2": 3, "c3": 1}},
			{ID: "q2b", Text: "Generally healthy with routine utilization", Weights: map[string]int{"a3": 2, "b2": 2}},
			{ID: "q2c", Text: "We lack visibility into the population's health profile", Weights: map[string]int{"c1": 2, "c3": 2}},
		},
	},
	{
		ID:   "q3",
		Text: "Where do your employees most often seek care?",
		Options: []AssessmentOption{
			{ID: "q3a", Text: "Primary care and preventive visits", Weights: map[string]int{"a1": 2, "a3": 3}},
			{ID: "q3b", Text: "Telehealth, urgent care, and retail clinics", Weights: map[string]int{"b2": 3, "b1": 1}},
			{ID: "q3c", Text: "Emergency departments", Weights: map[string]int{"c2": 3}},
		},
	},
	{
		ID:   "q4",
		Text: "How geographically distributed is your workforce?",
		Options: []AssessmentOption{
			{ID: "q4a", Text: "Concentrated near major metro areas with broad network access", Weights: map[string]int{"a1": 1, "b3": 2}},
			{ID: "q4b", Text: "Mixed urban and rural", Weights: map[string]int{"b1": 2, "c1": 1}},
			{ID: "q4c", Text: "Widely distributed, including access-constrained regions", Weights: map[string]int{"c1": 3}},
		},
	},
	{
		ID:   "q5",
		Text: "What is your primary benefits strategy objective this year?",
		Options: []AssessmentOption{
			{ID: "q5a", Text: "Managing high-cost claimants and specialty spend", Weights: map[string]int{"a2": 3}},
			{ID: "q5b", Text: "Steering utilization to high-value channels", Weights: map[string]int{"b2": 2, "b3": 2}},
			{ID: "q5c", Text: "Raising engagement from a low baseline", Weights: map[string]int{"c3": 3, "c2": 1}},
		},
	},
}

// AssessmentService maps questionnaire answers to an archetype.
type AssessmentService struct{}

// NewAssessmentService creates the assessment mapper.
func NewAssessmentService() *AssessmentService {
	return &AssessmentService{}
}

// MapAnswers tallies option weights and returns the winning archetype id.
// Answers are question id -> comma-joined option ids. Ties break by
// registry order, so the result is deterministic for a given answer set.
func (s *AssessmentService) MapAnswers(answers models.AssessmentAnswers) (string, error) {
	if len(answers) == 0 {
		return "", fmt.Errorf("no answers submitted")
	}

	scores := map[string]int{}
	matched := 0
	for _, q := range AssessmentQuestions {
		raw, ok := answers[q.ID]
		if !ok || raw == "" {
			continue
		}
		for _, optID := range strings.Split(raw, ",") {
			optID = strings.TrimSpace(optID)
			for _, opt := range q.Options {
				if opt.ID != optID {
					continue
				}
				matched++
				for archetypeID, weight := range opt.Weights {
					scores[archetypeID] += weight
				}
			}
		}
	}

	if matched == 0 {
		return "", fmt.Errorf("answers did not match any known question options")
	}

	best := ""
	bestScore := -1
	for _, arch := range models.Archetypes {
		if score := scores[arch.ID]; score > bestScore {
			best = arch.ID
			bestScore = score
		}
	}
	return best, nil
}
