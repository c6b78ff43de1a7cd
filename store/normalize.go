package store

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gnomiproject/gnomiproject-go/models"
)

// Identity columns that never count as metrics.
var identityColumns = map[string]bool{
	"id":             true,
	"archetype_id":   true,
	"archetype_name": true,
	"family_id":      true,
	"family_name":    true,
	"created_at":     true,
	"updated_at":     true,
}

// NormalizeReportRow converts a raw row from any of the payload source
// tables into the one canonical ArchetypeReport shape. The source tables
// disagree on field naming (title vs report_title, executive_summary vs
// summary, swot vs swot_analysis), so all alternate-spelling probing lives
// here and nowhere downstream.
func NormalizeReportRow(source, archetypeID string, row map[string]any) *models.ArchetypeReport {
	report := &models.ArchetypeReport{
		ArchetypeID:     archetypeID,
		Metrics:         models.AverageRow{},
		Recommendations: []models.Recommendation{},
		Source:          source,
	}

	if arch, ok := models.ArchetypeByID(archetypeID); ok {
		report.ArchetypeName = arch.Name
		report.FamilyID = arch.FamilyID
	}
	if name := firstString(row, "archetype_name", "name"); name != "" {
		report.ArchetypeName = name
	}
	if family := firstString(row, "family_id", "family"); family != "" {
		report.FamilyID = family
	}

	report.Title = firstString(row, "title", "report_title")
	report.Introduction = firstString(row, "introduction", "intro")
	report.ExecutiveSummary = firstString(row, "executive_summary", "summary", "overview")

	// Flat Category_Metric columns become the metrics map; everything else
	// numeric without an underscore is ignored.
	for col, val := range row {
		if identityColumns[col] {
			continue
		}
		if !strings.Contains(col, "_") {
			continue
		}
		if f, ok := CoerceFloat(val); ok {
			report.Metrics[col] = f
		}
	}
	report.Categories = CategorizeMetrics(report.Metrics)

	if raw := firstString(row, "swot", "swot_analysis"); raw != "" {
		var swot models.SWOTAnalysis
		if err := json.Unmarshal([]byte(raw), &swot); err == nil {
			report.SWOT = swot
		}
	}
	ensureSWOTSlices(&report.SWOT)

	if raw := firstString(row, "strategic_recommendations", "recommendations"); raw != "" {
		var recs []models.Recommendation
		if err := json.Unmarshal([]byte(raw), &recs); err == nil {
			report.Recommendations = recs
		}
	}

	if raw := firstString(row, "categories"); raw != "" {
		var cats []models.MetricCategory
		if err := json.Unmarshal([]byte(raw), &cats); err == nil && len(cats) > 0 {
			report.Categories = cats
		}
	}

	return report
}

// CategorizeMetrics groups flat Category_Metric keys by the substring
// before the first underscore.
func CategorizeMetrics(metrics models.AverageRow) []models.MetricCategory {
	grouped := map[string]map[string]float64{}
	for key, val := range metrics {
		idx := strings.Index(key, "_")
		if idx <= 0 {
			continue
		}
		category := key[:idx]
		if grouped[category] == nil {
			grouped[category] = map[string]float64{}
		}
		grouped[category][key] = val
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.MetricCategory, 0, len(names))
	for _, name := range names {
		out = append(out, models.MetricCategory{Name: name, Metrics: grouped[name]})
	}
	return out
}

func ensureSWOTSlices(swot *models.SWOTAnalysis) {
	if swot.Strengths == nil {
		swot.Strengths = []string{}
	}
	if swot.Weaknesses == nil {
		swot.Weaknesses = []string{}
	}
	if swot.Opportunities == nil {
		swot.Opportunities = []string{}
	}
	if swot.Threats == nil {
		swot.Threats = []string{}
	}
}

// firstString returns the first non-empty string value among the named
// columns.
func firstString(row map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := row[key]; ok {
			if s, ok := val.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// CoerceFloat converts a raw database value to a finite float64. NaN,
// infinities, and non-numeric strings report ok=false.
func CoerceFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return CoerceFloat(float64(v))
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case []byte:
		return CoerceFloat(string(v))
	default:
		return 0, false
	}
}
