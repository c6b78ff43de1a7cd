package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gnomiproject/gnomiproject-go/cache"
	"github.com/gnomiproject/gnomiproject-go/models"
)

type fakeAverageSource struct {
	row   map[string]any
	err   error
	calls int
}

func (f *fakeAverageSource) FetchAverageRow(ctx context.Context) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.row, nil
}

func newTestCalculator(averages map[string]any) (*PercentageCalculatorService, *fakeAverageSource) {
	source := &fakeAverageSource{row: averages}
	averageData := NewAverageDataService(source, cache.NewManagerWithTTLs(time.Hour, time.Hour))
	return NewPercentageCalculatorService(averageData), source
}

func TestCalculatePercentageAgainstAverage(t *testing.T) {
	calc, _ := newTestCalculator(map[string]any{
		"Cost_Medical_Paid_Amount_PEPY":  float64(100),
		"Util_PCP_Visits_per_1k_Members": float64(100),
	})

	tests := []struct {
		name       string
		metricKey  string
		value      float64
		difference float64
		formatted  string
		comparison string
		color      string
		favorable  bool
	}{
		{
			name:       "higher than average on lower-is-better metric",
			metricKey:  "medicalCostPEPY",
			value:      120,
			difference: 20,
			formatted:  "+20.0%",
			comparison: "20.0% higher than archetype average",
			color:      ColorAmber,
			favorable:  false,
		},
		{
			name:       "lower than average on lower-is-better metric",
			metricKey:  "medicalCostPEPY",
			value:      80,
			difference: -20,
			formatted:  "-20.0%",
			comparison: "20.0% lower than archetype average",
			color:      ColorGreen,
			favorable:  true,
		},
		{
			name:       "higher than average on higher-is-better metric",
			metricKey:  "pcpVisits",
			value:      120,
			difference: 20,
			formatted:  "+20.0%",
			comparison: "20.0% higher than archetype average",
			color:      ColorGreen,
			favorable:  true,
		},
		{
			name:       "within same threshold",
			metricKey:  "medicalCostPEPY",
			value:      100.05,
			difference: 0.05,
			formatted:  "+0.1%",
			comparison: "Same as archetype average",
			color:      ColorGray,
			favorable:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapping := models.MetricMappings[tc.metricKey]
			row := models.AverageRow{mapping.ValueField: tc.value}

			got := calc.CalculatePercentage(context.Background(), tc.metricKey, row, nil)
			if !got.Valid {
				t.Fatalf("expected valid result, got reason %q", got.Reason)
			}
			if math.Abs(got.Difference-tc.difference) > 1e-9 {
				t.Errorf("Difference = %v, want %v", got.Difference, tc.difference)
			}
			if got.Formatted != tc.formatted {
				t.Errorf("Formatted = %q, want %q", got.Formatted, tc.formatted)
			}
			if got.Comparison != tc.comparison {
				t.Errorf("Comparison = %q, want %q", got.Comparison, tc.comparison)
			}
			if got.Color != tc.color {
				t.Errorf("Color = %q, want %q", got.Color, tc.color)
			}
			if got.Favorable != tc.favorable {
				t.Errorf("Favorable = %v, want %v", got.Favorable, tc.favorable)
			}
		})
	}
}

func TestCalculatePercentageSoftFailures(t *testing.T) {
	nan := math.NaN()
	zero := float64(0)
	inf := math.Inf(1)

	calc, _ := newTestCalculator(map[string]any{
		"Cost_Medical_Paid_Amount_PEPY": float64(100),
	})
	row := models.AverageRow{"Cost_Medical_Paid_Amount_PEPY": 120}

	tests := []struct {
		name      string
		metricKey string
		row       models.AverageRow
		opts      *PercentageOptions
		reason    string
	}{
		{
			name:      "unknown metric key",
			metricKey: "notAMetric",
			row:       row,
			reason:    "no metric mapping",
		},
		{
			name:      "missing value field",
			metricKey: "medicalCostPEPY",
			row:       models.AverageRow{},
			reason:    "report row has no value",
		},
		{
			name:      "zero average",
			metricKey: "medicalCostPEPY",
			row:       row,
			opts:      &PercentageOptions{Average: &zero},
			reason:    "average value is zero",
		},
		{
			name:      "NaN value",
			metricKey: "medicalCostPEPY",
			row:       row,
			opts:      &PercentageOptions{Value: &nan},
			reason:    "not a finite number",
		},
		{
			name:      "infinite average",
			metricKey: "medicalCostPEPY",
			row:       row,
			opts:      &PercentageOptions{Average: &inf},
			reason:    "not a finite number",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := calc.CalculatePercentage(context.Background(), tc.metricKey, tc.row, tc.opts)
			if got.Valid {
				t.Fatal("expected invalid result")
			}
			if !strings.Contains(got.Reason, tc.reason) {
				t.Errorf("Reason = %q, want substring %q", got.Reason, tc.reason)
			}
			if got.Color != ColorGray {
				t.Errorf("invalid result Color = %q, want %q", got.Color, ColorGray)
			}
		})
	}
}

func TestCalculatePercentageOptionOverrides(t *testing.T) {
	calc, _ := newTestCalculator(map[string]any{
		"Cost_Medical_Paid_Amount_PEPY": float64(100),
	})

	value := 50.0
	average := 200.0
	lowerBetter := false

	got := calc.CalculatePercentage(context.Background(), "medicalCostPEPY", nil, &PercentageOptions{
		Value:         &value,
		Average:       &average,
		IsLowerBetter: &lowerBetter,
	})
	if !got.Valid {
		t.Fatalf("expected valid result, got reason %q", got.Reason)
	}
	if got.Difference != -75 {
		t.Errorf("Difference = %v, want -75", got.Difference)
	}
	if got.Favorable {
		t.Error("lower value on higher-is-better override should be unfavorable")
	}
}

func TestCalculateMultiplePercentagesSharesOneFetch(t *testing.T) {
	calc, source := newTestCalculator(map[string]any{
		"Cost_Medical_Paid_Amount_PEPY": float64(100),
		"Cost_RX_Paid_Amount_PEPY":      float64(50),
	})
	row := models.AverageRow{
		"Cost_Medical_Paid_Amount_PEPY": 110,
		"Cost_RX_Paid_Amount_PEPY":      45,
	}

	results := calc.CalculateMultiplePercentages(context.Background(), []string{"medicalCostPEPY", "rxCostPEPY", "notAMetric"}, row)
	if source.calls != 1 {
		t.Errorf("average fetches = %d, want 1", source.calls)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if !results["medicalCostPEPY"].Valid || !results["rxCostPEPY"].Valid {
		t.Error("mapped metrics should produce valid results")
	}
	if results["notAMetric"].Valid {
		t.Error("unmapped metric should fail soft")
	}
}

func TestCalculatePercentageNegativeAverageUsesAbsoluteBase(t *testing.T) {
	calc, _ := newTestCalculator(map[string]any{
		"Cost_Medical_Paid_Amount_PEPY": float64(100),
	})

	value := -50.0
	average := -100.0
	got := calc.CalculatePercentage(context.Background(), "medicalCostPEPY", nil, &PercentageOptions{
		Value:   &value,
		Average: &average,
	})
	if !got.Valid {
		t.Fatalf("expected valid result, got reason %q", got.Reason)
	}
	// ((-50 - -100) / 100) * 100
	if got.Difference != 50 {
		t.Errorf("Difference = %v, want 50", got.Difference)
	}
}

func TestCalculatePercentageSurvivesAverageFetchFailure(t *testing.T) {
	source := &fakeAverageSource{err: errors.New("connection refused")}
	averageData := NewAverageDataService(source, cache.NewManagerWithTTLs(time.Hour, time.Hour))
	calc := NewPercentageCalculatorService(averageData)

	row := models.AverageRow{"Cost_Medical_Paid_Amount_PEPY": 12548.8}
	got := calc.CalculatePercentage(context.Background(), "medicalCostPEPY", row, nil)
	if !got.Valid {
		t.Fatalf("expected valid result against hardcoded defaults, got reason %q", got.Reason)
	}
	if got.Average != 11408 {
		t.Errorf("Average = %v, want hardcoded default 11408", got.Average)
	}
	if math.Abs(got.Difference-10) > 1e-9 {
		t.Errorf("Difference = %v, want 10", got.Difference)
	}
}
