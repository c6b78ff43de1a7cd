// Package metrics exposes Prometheus counters for the operational surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportAccesses counts token validation outcomes.
	ReportAccesses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gnomi_report_accesses_total",
		Help: "Report access validation attempts by outcome.",
	}, []string{"outcome"})

	// EmailsSent counts dispatch attempts by result.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gnomi_emails_sent_total",
		Help: "Report email send attempts by result.",
	}, []string{"result"})

	// AverageFallbacks counts uses of the hardcoded average defaults.
	AverageFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gnomi_average_fallback_total",
		Help: "Times the hardcoded average defaults were served.",
	})

	// PayloadCache counts payload cache hits and misses.
	PayloadCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gnomi_payload_cache_total",
		Help: "Report payload cache lookups by result.",
	}, []string{"result"})
)
