package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gnomiproject/gnomiproject-go/models"
	"github.com/gnomiproject/gnomiproject-go/store"
)

// GeneratorStore is the slice of the store the batch generator needs.
type GeneratorStore interface {
	ListArchetypeIDs(ctx context.Context) ([]string, error)
	FetchArchetypeRow(ctx context.Context, table, archetypeID string) (map[string]any, error)
	UpsertFullReport(ctx context.Context, archetypeID, title, introduction, summary string, categories []models.MetricCategory) error
	UpsertSWOT(ctx context.Context, archetypeID string, swot models.SWOTAnalysis) error
	ReplaceRecommendations(ctx context.Context, archetypeID string, recs []models.Recommendation) error
}

// BatchResult aggregates per-archetype outcomes of a generation run.
type BatchResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// ReportGeneratorService rebuilds the derived report tables from the flat
// metric columns. Run administratively, never on the request path.
type ReportGeneratorService struct {
	store GeneratorStore
}

// NewReportGeneratorService creates the generator.
func NewReportGeneratorService(generatorStore GeneratorStore) *ReportGeneratorService {
	return &ReportGeneratorService{store: generatorStore}
}

// GenerateAll regenerates report content for every archetype. Each
// archetype is fail-fast internally; the batch tolerates partial failure
// and reports aggregate counts.
func (s *ReportGeneratorService) GenerateAll(ctx context.Context) (*BatchResult, error) {
	ids, err := s.store.ListArchetypeIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list archetypes: %w", err)
	}

	result := &BatchResult{}
	for _, id := range ids {
		if err := s.GenerateOne(ctx, id); err != nil {
			log.Printf("Report generation failed for archetype %s: %v", id, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		result.Succeeded++
	}

	log.Printf("Report generation finished: %d succeeded, %d failed", result.Succeeded, result.Failed)
	return result, nil
}

// GenerateOne rebuilds the report, SWOT, and recommendation rows for one
// archetype. The first write error aborts the archetype.
func (s *ReportGeneratorService) GenerateOne(ctx context.Context, archetypeID string) error {
	row, err := s.store.FetchArchetypeRow(ctx, store.TableOverview, archetypeID)
	if err != nil {
		return fmt.Errorf("no overview row: %w", err)
	}

	metricsMap := models.AverageRow{}
	for col, val := range row {
		if !strings.Contains(col, "_") || col == "archetype_id" || col == "archetype_name" || col == "family_id" || col == "created_at" || col == "updated_at" {
			continue
		}
		if f, ok := store.CoerceFloat(val); ok {
			metricsMap[col] = f
		}
	}
	categories := store.CategorizeMetrics(metricsMap)

	name := archetypeDisplayName(archetypeID, row)
	title, introduction, summary := synthesizeNarrative(archetypeID, name, categories)

	if err := s.store.UpsertFullReport(ctx, archetypeID, title, introduction, summary, categories); err != nil {
		return err
	}

	swot, recs := s.sourceAnalysis(ctx, archetypeID)
	if err := s.store.UpsertSWOT(ctx, archetypeID, swot); err != nil {
		return err
	}
	// Recommendations are replaced wholesale on every run; an empty list
	// still clears pre-existing rows
	if err := s.store.ReplaceRecommendations(ctx, archetypeID, recs); err != nil {
		return err
	}
	return nil
}

// sourceAnalysis pulls SWOT and recommendations from the deep-dive source
// row when present; both degrade to empty values.
func (s *ReportGeneratorService) sourceAnalysis(ctx context.Context, archetypeID string) (models.SWOTAnalysis, []models.Recommendation) {
	swot := models.SWOTAnalysis{
		Strengths:     []string{},
		Weaknesses:    []string{},
		Opportunities: []string{},
		Threats:       []string{},
	}
	recs := []models.Recommendation{}

	row, err := s.store.FetchArchetypeRow(ctx, store.TableDeepDive, archetypeID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("WARNING: deep-dive source read failed for %s: %v", archetypeID, err)
		}
		return swot, recs
	}

	if raw, ok := row["swot"].(string); ok && raw != "" {
		var parsed models.SWOTAnalysis
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			swot = parsed
		}
	}
	if raw, ok := row["strategic_recommendations"].(string); ok && raw != "" {
		var parsed []models.Recommendation
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			recs = parsed
		}
	}
	return swot, recs
}

func archetypeDisplayName(archetypeID string, row map[string]any) string {
	if name, ok := row["archetype_name"].(string); ok && name != "" {
		return name
	}
	if arch, ok := models.ArchetypeByID(archetypeID); ok {
		return arch.Name
	}
	return fmt.Sprintf("Archetype %s", archetypeID)
}

// synthesizeNarrative builds the boilerplate report copy by interpolation.
func synthesizeNarrative(archetypeID, name string, categories []models.MetricCategory) (title, introduction, summary string) {
	title = fmt.Sprintf("%s: Employer Healthcare Archetype Report", name)

	familyName := ""
	if arch, ok := models.ArchetypeByID(archetypeID); ok {
		familyName = arch.FamilyName
	}
	if familyName != "" {
		introduction = fmt.Sprintf(
			"Organizations in the %s archetype belong to the %s family. This report compares their healthcare cost, utilization, and risk profile against the archetype average.",
			name, familyName)
	} else {
		introduction = fmt.Sprintf(
			"This report compares the healthcare cost, utilization, and risk profile of the %s archetype against the archetype average.",
			name)
	}

	categoryNames := make([]string, 0, len(categories))
	for _, c := range categories {
		categoryNames = append(categoryNames, c.Name)
	}
	summary = fmt.Sprintf(
		"The %s profile spans %d metric categories (%s). The sections below highlight where this archetype diverges most from the population baseline.",
		name, len(categories), strings.Join(categoryNames, ", "))
	return title, introduction, summary
}
