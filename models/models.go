// Package models defines the shared data structures for the gNomi backend.
package models

import (
	"encoding/json"
	"time"
)

// RequestStatus is the lifecycle state of a report request row.
type RequestStatus string

const (
	StatusPending RequestStatus = "pending"
	StatusActive  RequestStatus = "active"
	StatusExpired RequestStatus = "expired"
	StatusError   RequestStatus = "error"
)

// ReportRequest is a durable record keyed by (archetype_id, access_token).
// Created on assessment submission, mutated on each successful access and by
// the email dispatch worker.
type ReportRequest struct {
	ID                string          `json:"id"`
	ArchetypeID       string          `json:"archetypeId"`
	AccessToken       string          `json:"accessToken"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Organization      string          `json:"organization"`
	Status            RequestStatus   `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
	ExpiresAt         time.Time       `json:"expiresAt"`
	AccessCount       int             `json:"accessCount"`
	LastAccessed      *time.Time      `json:"lastAccessed,omitempty"`
	AssessmentAnswers json.RawMessage `json:"assessmentAnswers,omitempty"`
	AccessURL         string          `json:"accessUrl,omitempty"`
	EmailSentAt       *time.Time      `json:"emailSentAt,omitempty"`
	EmailSendAttempts int             `json:"emailSendAttempts"`
	EmailError        string          `json:"emailError,omitempty"`
	EmailErrorAt      *time.Time      `json:"emailErrorAt,omitempty"`
}

// IsExpired reports whether the request has passed its expiry timestamp.
// Expiry is enforced purely at read time; there is no background sweep.
func (r *ReportRequest) IsExpired() bool {
	return time.Now().UTC().After(r.ExpiresAt)
}

// AccessState is the validation state for an (archetypeId, token) pair.
type AccessState int

const (
	AccessUnchecked AccessState = iota
	AccessChecking
	AccessGranted
	AccessDenied
)

func (s AccessState) String() string {
	switch s {
	case AccessUnchecked:
		return "unchecked"
	case AccessChecking:
		return "checking"
	case AccessGranted:
		return "granted"
	case AccessDenied:
		return "denied"
	}
	return "unknown"
}

// AccessResult carries the outcome of a token validation, including a
// human-readable reason when access is denied.
type AccessResult struct {
	State   AccessState    `json:"state"`
	Reason  string         `json:"reason,omitempty"`
	Request *ReportRequest `json:"-"`
}

// AverageRow is the population-wide baseline row keyed by the All_Average
// sentinel. Every value is a finite number; non-numeric source fields are
// coerced to 0 during ingestion.
type AverageRow map[string]float64

// SWOTAnalysis is the strengths/weaknesses/opportunities/threats bundle
// attached to an archetype report.
type SWOTAnalysis struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// Recommendation is one strategic recommendation row for an archetype.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

// MetricCategory groups flat Category_Metric columns under the category
// prefix (the substring before the first underscore).
type MetricCategory struct {
	Name    string             `json:"name"`
	Metrics map[string]float64 `json:"metrics"`
}

// ArchetypeReport is the single canonical report payload shape. Rows from
// the various source tables are normalized into this struct once at the
// store boundary; consumers never probe alternate field names.
type ArchetypeReport struct {
	ArchetypeID      string           `json:"archetypeId"`
	ArchetypeName    string           `json:"archetypeName"`
	FamilyID         string           `json:"familyId"`
	Title            string           `json:"title"`
	Introduction     string           `json:"introduction"`
	ExecutiveSummary string           `json:"executiveSummary"`
	Metrics          AverageRow       `json:"metrics"`
	Categories       []MetricCategory `json:"categories"`
	SWOT             SWOTAnalysis     `json:"swot"`
	Recommendations  []Recommendation `json:"recommendations"`
	Source           string           `json:"source"`
}

// PercentageResult is the soft-fail output bundle of the percentage
// calculator. Invalid inputs never raise; they produce Valid=false with a
// descriptive reason.
type PercentageResult struct {
	Valid         bool    `json:"valid"`
	Reason        string  `json:"reason,omitempty"`
	MetricKey     string  `json:"metricKey"`
	Value         float64 `json:"value"`
	Average       float64 `json:"average"`
	Difference    float64 `json:"difference"`
	Formatted     string  `json:"formatted"`
	Comparison    string  `json:"comparison"`
	Color         string  `json:"color"`
	Favorable     bool    `json:"favorable"`
	IsLowerBetter bool    `json:"isLowerBetter"`
}

// AssessmentAnswers maps a question id to a comma-joined string of selected
// option ids (or a single value). Held client-side; persisted only as the
// denormalized snapshot attached to a report request.
type AssessmentAnswers map[string]string
