// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics provides Prometheus metrics for twconfig.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	// DescriptorLoadsTotal counts descriptor loads by source format and result.
	DescriptorLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twconfig_descriptor_loads_total",
		Help: "Total number of descriptor loads, by format and result.",
	}, []string{"format", "result"})

	// DescriptorWarningsTotal counts lint warnings by rule.
	DescriptorWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twconfig_descriptor_warnings_total",
		Help: "Total number of descriptor validation warnings, by rule.",
	}, []string{"rule"})

	// DescriptorReloadsTotal counts holder reloads by result.
	DescriptorReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "twconfig_descriptor_reloads_total",
		Help: "Total number of descriptor reloads, by result.",
	}, []string{"result"})

	// ContentPatternsUnmatched tracks content patterns that matched no file in the last resolution.
	ContentPatternsUnmatched = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "twconfig_content_patterns_unmatched",
		Help: "Number of content patterns that matched no file in the last resolution.",
	})
)

// RecordLoad increments the load counter.
func RecordLoad(format string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if format == "" {
		format = "unknown"
	}
	DescriptorLoadsTotal.WithLabelValues(format, result).Inc()
}

// RecordWarning increments the warning counter for rule.
func RecordWarning(rule string) {
	DescriptorWarningsTotal.WithLabelValues(rule).Inc()
}

// RecordReload increments the reload counter.
func RecordReload(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	DescriptorReloadsTotal.WithLabelValues(result).Inc()
}
