// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors updated by an Analyzer.
type Metrics struct {
	FilesAnalyzed     *prometheus.CounterVec
	FunctionsFound    *prometheus.CounterVec
	UnclosedFunctions *prometheus.CounterVec
	ThresholdExceeded *prometheus.CounterVec
	FileErrors        prometheus.Counter
	FileDuration      *prometheus.HistogramVec
}

// NewMetrics creates the analyzer collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FilesAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ccn",
			Name:      "files_analyzed_total",
			Help:      "Source files analyzed, by language.",
		}, []string{"language"}),
		FunctionsFound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ccn",
			Name:      "functions_total",
			Help:      "Functions found, by language.",
		}, []string{"language"}),
		UnclosedFunctions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ccn",
			Name:      "unclosed_functions_total",
			Help:      "Functions still open at end of file, by language.",
		}, []string{"language"}),
		ThresholdExceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ccn",
			Name:      "threshold_exceeded_total",
			Help:      "Functions whose cyclomatic complexity exceeds the threshold, by language.",
		}, []string{"language"}),
		FileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ccn",
			Name:      "file_errors_total",
			Help:      "Files that could not be read or analyzed.",
		}),
		FileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ccn",
			Name:      "file_duration_seconds",
			Help:      "Time spent analyzing one file, by language.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"language"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.FilesAnalyzed,
			m.FunctionsFound,
			m.UnclosedFunctions,
			m.ThresholdExceeded,
			m.FileErrors,
			m.FileDuration,
		)
	}
	return m
}

func (m *Metrics) observe(r *FileResult, threshold int, seconds float64) {
	if m == nil {
		return
	}
	m.FilesAnalyzed.WithLabelValues(r.Language).Inc()
	m.FunctionsFound.WithLabelValues(r.Language).Add(float64(len(r.Functions)))
	m.UnclosedFunctions.WithLabelValues(r.Language).Add(float64(r.Unclosed))
	m.ThresholdExceeded.WithLabelValues(r.Language).Add(float64(len(r.Warnings(threshold))))
	m.FileDuration.WithLabelValues(r.Language).Observe(seconds)
}

func (m *Metrics) fileError() {
	if m == nil {
		return
	}
	m.FileErrors.Inc()
}
