package services

import (
	"context"
	"fmt"
	"math"

	"github.com/gnomiproject/gnomiproject-go/models"
)

// sameThreshold is the |diff| below which a metric reads as "Same as
// archetype average".
const sameThreshold = 0.1

// Color tags attached to percentage results.
const (
	ColorGreen = "green"
	ColorAmber = "amber"
	ColorGray  = "gray"
)

// PercentageOptions override the mapping-table resolution for a single
// calculation.
type PercentageOptions struct {
	Value         *float64
	Average       *float64
	IsLowerBetter *bool
}

// PercentageCalculatorService computes per-metric percentage differences
// against the lazily fetched archetype average row.
type PercentageCalculatorService struct {
	averages *AverageDataService
}

// NewPercentageCalculatorService wires the calculator to the average data
// service.
func NewPercentageCalculatorService(averages *AverageDataService) *PercentageCalculatorService {
	return &PercentageCalculatorService{averages: averages}
}

// CalculatePercentage resolves value/average/lower-is-better for a metric
// key and computes the signed percentage difference plus display text and
// color tag. Fails soft: a missing mapping, non-finite value, or zero
// average produces Valid=false with a reason, never an error.
func (s *PercentageCalculatorService) CalculatePercentage(ctx context.Context, metricKey string, reportRow models.AverageRow, opts *PercentageOptions) models.PercentageResult {
	averageRow := s.averages.GetAverageData(ctx)
	return calculateAgainst(metricKey, reportRow, averageRow, opts)
}

// CalculateMultiplePercentages batches N metric keys against one shared
// fetch of the average row.
func (s *PercentageCalculatorService) CalculateMultiplePercentages(ctx context.Context, metricKeys []string, reportRow models.AverageRow) map[string]models.PercentageResult {
	averageRow := s.averages.GetAverageData(ctx)

	out := make(map[string]models.PercentageResult, len(metricKeys))
	for _, key := range metricKeys {
		out[key] = calculateAgainst(key, reportRow, averageRow, nil)
	}
	return out
}

func calculateAgainst(metricKey string, reportRow, averageRow models.AverageRow, opts *PercentageOptions) models.PercentageResult {
	result := models.PercentageResult{MetricKey: metricKey, Color: ColorGray}

	mapping, hasMapping := models.MetricMappings[metricKey]

	var value, average float64
	var lowerBetter bool

	switch {
	case opts != nil && opts.Value != nil:
		value = *opts.Value
	case !hasMapping:
		result.Reason = fmt.Sprintf("no metric mapping for %q", metricKey)
		return result
	default:
		v, present := reportRow[mapping.ValueField]
		if !present {
			result.Reason = fmt.Sprintf("report row has no value for %q", mapping.ValueField)
			return result
		}
		value = v
	}

	switch {
	case opts != nil && opts.Average != nil:
		average = *opts.Average
	case !hasMapping:
		result.Reason = fmt.Sprintf("no metric mapping for %q", metricKey)
		return result
	default:
		v, present := averageRow[mapping.AverageField]
		if !present {
			result.Reason = fmt.Sprintf("average row has no value for %q", mapping.AverageField)
			return result
		}
		average = v
	}

	if opts != nil && opts.IsLowerBetter != nil {
		lowerBetter = *opts.IsLowerBetter
	} else if hasMapping {
		lowerBetter = mapping.IsLowerBetter
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		result.Reason = "metric value is not a finite number"
		return result
	}
	if math.IsNaN(average) || math.IsInf(average, 0) {
		result.Reason = "average value is not a finite number"
		return result
	}
	if average == 0 {
		result.Reason = "average value is zero"
		return result
	}

	diff := ((value - average) / math.Abs(average)) * 100
	favorable := (diff > 0 && !lowerBetter) || (diff < 0 && lowerBetter)

	result.Valid = true
	result.Reason = ""
	result.Value = value
	result.Average = average
	result.Difference = diff
	result.Favorable = favorable
	result.IsLowerBetter = lowerBetter
	result.Formatted = formatSigned(diff)

	switch {
	case math.Abs(diff) < sameThreshold:
		result.Comparison = "Same as archetype average"
		result.Color = ColorGray
	case diff > 0:
		result.Comparison = fmt.Sprintf("%.1f%% higher than archetype average", diff)
		result.Color = favorabilityColor(favorable)
	default:
		result.Comparison = fmt.Sprintf("%.1f%% lower than archetype average", math.Abs(diff))
		result.Color = favorabilityColor(favorable)
	}

	return result
}

func favorabilityColor(favorable bool) string {
	if favorable {
		return ColorGreen
	}
	return ColorAmber
}

func formatSigned(diff float64) string {
	if diff >= 0 {
		return fmt.Sprintf("+%.1f%%", diff)
	}
	return fmt.Sprintf("%.1f%%", diff)
}
