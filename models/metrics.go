package models

// MetricMapping associates a metric key with its report-row column, its
// average-row column, and whether a lower value is the more favorable one.
// Read-only; defined at startup and never persisted.
type MetricMapping struct {
	ValueField    string
	AverageField  string
	IsLowerBetter bool
}

// MetricMappings is the static lookup table used by the percentage
// calculator. Value and average columns share names because both the report
// rows and the All_Average row come from the same flat metric schema.
var MetricMappings = map[string]MetricMapping{
	"medicalCostPEPY": {
		ValueField:    "Cost_Medical_Paid_Amount_PEPY",
		AverageField:  "Cost_Medical_Paid_Amount_PEPY",
		IsLowerBetter: true,
	},
	"rxCostPEPY": {
		ValueField:    "Cost_RX_Paid_Amount_PEPY",
		AverageField:  "Cost_RX_Paid_Amount_PEPY",
		IsLowerBetter: true,
	},
	"totalCostPEPY": {
		ValueField:    "Cost_Total_Paid_Amount_PEPY",
		AverageField:  "Cost_Total_Paid_Amount_PEPY",
		IsLowerBetter: true,
	},
	"avoidableERSpend": {
		ValueField:    "Cost_Avoidable_ER_Potential_Savings_PMPY",
		AverageField:  "Cost_Avoidable_ER_Potential_Savings_PMPY",
		IsLowerBetter: true,
	},
	"emergencyVisits": {
		ValueField:    "Util_Emergency_Visits_per_1k_Members",
		AverageField:  "Util_Emergency_Visits_per_1k_Members",
		IsLowerBetter: true,
	},
	"inpatientAdmits": {
		ValueField:    "Util_Inpatient_Admits_per_1k_Members",
		AverageField:  "Util_Inpatient_Admits_per_1k_Members",
		IsLowerBetter: true,
	},
	"pcpVisits": {
		ValueField:    "Util_PCP_Visits_per_1k_Members",
		AverageField:  "Util_PCP_Visits_per_1k_Members",
		IsLowerBetter: false,
	},
	"preventiveVisits": {
		ValueField:    "Util_Preventive_Visits_per_1k_Members",
		AverageField:  "Util_Preventive_Visits_per_1k_Members",
		IsLowerBetter: false,
	},
	"riskScore": {
		ValueField:    "Risk_Average_Risk_Score",
		AverageField:  "Risk_Average_Risk_Score",
		IsLowerBetter: true,
	},
	"diabetesPrevalence": {
		ValueField:    "Dise_Diabetes_Prevalence",
		AverageField:  "Dise_Diabetes_Prevalence",
		IsLowerBetter: true,
	},
	"hypertensionPrevalence": {
		ValueField:    "Dise_Hypertension_Prevalence",
		AverageField:  "Dise_Hypertension_Prevalence",
		IsLowerBetter: true,
	},
	"averageAge": {
		ValueField:    "Demo_Average_Age",
		AverageField:  "Demo_Average_Age",
		IsLowerBetter: false,
	},
}

// DefaultAverages is the hardcoded baseline used when the All_Average row
// cannot be fetched and no cached copy exists.
var DefaultAverages = AverageRow{
	"Cost_Medical_Paid_Amount_PEPY":        11408,
	"Cost_RX_Paid_Amount_PEPY":             2714,
	"Util_Emergency_Visits_per_1k_Members": 141,
	"Risk_Average_Risk_Score":              0.97,
}

// CloneAverages returns a defensive copy so cached rows are never mutated
// by callers.
func CloneAverages(row AverageRow) AverageRow {
	out := make(AverageRow, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
