package store

import (
	"math"
	"testing"

	"github.com/gnomiproject/gnomiproject-go/models"
)

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", float64(12.5), 12.5, true},
		{"float32", float32(2), 2, true},
		{"int", int(141), 141, true},
		{"int64", int64(-7), -7, true},
		{"numeric string", "11408.5", 11408.5, true},
		{"padded string", "  0.97 ", 0.97, true},
		{"numeric bytes", []byte("42"), 42, true},
		{"NaN", math.NaN(), 0, false},
		{"positive infinity", math.Inf(1), 0, false},
		{"infinity string", "Inf", 0, false},
		{"non numeric string", "n/a", 0, false},
		{"empty string", "", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CoerceFloat(tc.in)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("value = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCategorizeMetrics(t *testing.T) {
	metrics := models.AverageRow{
		"Cost_Medical_Paid_Amount_PEPY":        11408,
		"Cost_RX_Paid_Amount_PEPY":             2714,
		"Util_Emergency_Visits_per_1k_Members": 141,
		"Risk_Average_Risk_Score":              0.97,
		"nounderscore":                         5,
	}

	categories := CategorizeMetrics(metrics)
	if len(categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(categories))
	}

	// Sorted by category name
	wantOrder := []string{"Cost", "Risk", "Util"}
	for i, want := range wantOrder {
		if categories[i].Name != want {
			t.Errorf("categories[%d] = %s, want %s", i, categories[i].Name, want)
		}
	}
	if len(categories[0].Metrics) != 2 {
		t.Errorf("Cost metrics = %d, want 2", len(categories[0].Metrics))
	}
}

func TestCategorizeMetricsEmpty(t *testing.T) {
	if got := CategorizeMetrics(models.AverageRow{}); len(got) != 0 {
		t.Errorf("empty input produced %d categories", len(got))
	}
}

func TestNormalizeReportRowCanonicalColumns(t *testing.T) {
	row := map[string]any{
		"archetype_id":                  "a1",
		"archetype_name":                "Savvy Healthcare Navigators",
		"title":                         "Report Title",
		"introduction":                  "Intro text",
		"executive_summary":             "Summary text",
		"Cost_Medical_Paid_Amount_PEPY": float64(10500),
		"swot":                          `{"strengths":["s1"],"weaknesses":[],"opportunities":[],"threats":[]}`,
		"strategic_recommendations":     `[{"title":"r1","description":"d1","priority":2}]`,
	}

	report := NormalizeReportRow(TableDeepDive, "a1", row)

	if report.Source != TableDeepDive {
		t.Errorf("Source = %q", report.Source)
	}
	if report.ArchetypeName != "Savvy Healthcare Navigators" {
		t.Errorf("ArchetypeName = %q", report.ArchetypeName)
	}
	if report.Title != "Report Title" || report.Introduction != "Intro text" || report.ExecutiveSummary != "Summary text" {
		t.Errorf("narrative fields not mapped: %+v", report)
	}
	if report.Metrics["Cost_Medical_Paid_Amount_PEPY"] != 10500 {
		t.Errorf("Metrics = %v", report.Metrics)
	}
	if len(report.SWOT.Strengths) != 1 || report.SWOT.Strengths[0] != "s1" {
		t.Errorf("SWOT = %+v", report.SWOT)
	}
	if len(report.Recommendations) != 1 || report.Recommendations[0].Priority != 2 {
		t.Errorf("Recommendations = %+v", report.Recommendations)
	}
}

func TestNormalizeReportRowAlternateSpellings(t *testing.T) {
	row := map[string]any{
		"report_title":    "Alt Title",
		"summary":         "Alt Summary",
		"swot_analysis":   `{"strengths":[],"weaknesses":["w1"],"opportunities":[],"threats":[]}`,
		"recommendations": `[{"title":"alt rec"}]`,
	}

	report := NormalizeReportRow(TableLevel3, "b2", row)

	if report.Title != "Alt Title" {
		t.Errorf("Title = %q, want the report_title spelling", report.Title)
	}
	if report.ExecutiveSummary != "Alt Summary" {
		t.Errorf("ExecutiveSummary = %q, want the summary spelling", report.ExecutiveSummary)
	}
	if len(report.SWOT.Weaknesses) != 1 {
		t.Errorf("SWOT = %+v, want the swot_analysis spelling", report.SWOT)
	}
	if len(report.Recommendations) != 1 {
		t.Errorf("Recommendations = %+v, want the recommendations spelling", report.Recommendations)
	}
}

func TestNormalizeReportRowFillsIdentityFromRegistry(t *testing.T) {
	report := NormalizeReportRow(TableLevel4, "c3", map[string]any{})

	if report.ArchetypeName != "Under-Engaged Populations" {
		t.Errorf("ArchetypeName = %q, want the registry name", report.ArchetypeName)
	}
	if report.FamilyID != "c" {
		t.Errorf("FamilyID = %q, want c", report.FamilyID)
	}
}

func TestNormalizeReportRowMalformedJSONDegrades(t *testing.T) {
	row := map[string]any{
		"swot":                      `{"strengths": oops`,
		"strategic_recommendations": `[{"title": oops`,
	}

	report := NormalizeReportRow(TableDeepDive, "a1", row)

	// SWOT slices are always non-nil so the JSON shape stays stable
	if report.SWOT.Strengths == nil || report.SWOT.Weaknesses == nil ||
		report.SWOT.Opportunities == nil || report.SWOT.Threats == nil {
		t.Error("SWOT slices must be non-nil after a malformed source")
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("Recommendations = %v, want empty", report.Recommendations)
	}
}

func TestNormalizeReportRowExplicitCategoriesOverride(t *testing.T) {
	row := map[string]any{
		"Cost_Medical_Paid_Amount_PEPY": float64(10500),
		"categories":                    `[{"name":"Custom","metrics":{"Custom_Metric":1}}]`,
	}

	report := NormalizeReportRow(TableFullReports, "a1", row)

	if len(report.Categories) != 1 || report.Categories[0].Name != "Custom" {
		t.Errorf("Categories = %+v, want the stored categories column", report.Categories)
	}
}

func TestNormalizeReportRowSkipsIdentityAndNonMetricColumns(t *testing.T) {
	row := map[string]any{
		"id":                            int64(4),
		"created_at":                    "2026-01-01T00:00:00Z",
		"Cost_Medical_Paid_Amount_PEPY": float64(10500),
		"version":                       int64(3),
	}

	report := NormalizeReportRow(TableOverview, "a1", row)

	if len(report.Metrics) != 1 {
		t.Errorf("Metrics = %v, want only the Cost column", report.Metrics)
	}
}
