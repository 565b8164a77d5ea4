// Copyright 2025 The Cognitad Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors of the core. The governor writes
// DecisionsTotal, SelfRepairTotal and SystemHealthGauge, and the
// orchestrator writes ActiveCampaigns; CycleDuration, ToolInvokeTotal and
// BeliefWriteTotal are registered but not updated by any package of this
// module. A fresh Metrics should be registered
// against a prometheus.Registerer owned by the embedding process; the core
// never starts its own HTTP exposition endpoint (that's the out-of-scope
// control plane).
type Metrics struct {
	DecisionsTotal    *prometheus.CounterVec
	SelfRepairTotal   prometheus.Counter
	CycleDuration     *prometheus.HistogramVec
	ActiveCampaigns   prometheus.Gauge
	ToolInvokeTotal   *prometheus.CounterVec
	BeliefWriteTotal  prometheus.Counter
	SystemHealthGauge *prometheus.GaugeVec
}

// NewMetrics constructs and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cognitad",
			Subsystem: "agint",
			Name:      "decisions_total",
			Help:      "P-O-D-A decisions made, by decision type.",
		}, []string{"decision"}),
		SelfRepairTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cognitad",
			Subsystem: "agint",
			Name:      "self_repair_total",
			Help:      "Total SELF_REPAIR decisions taken.",
		}),
		CycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cognitad",
			Subsystem: "agint",
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock duration of a single P-O-D-A tick.",
		}, []string{"decision"}),
		ActiveCampaigns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cognitad",
			Subsystem: "mastermind",
			Name:      "active_campaigns",
			Help:      "Campaigns currently RUNNING.",
		}),
		ToolInvokeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cognitad",
			Subsystem: "toolregistry",
			Name:      "invocations_total",
			Help:      "Tool invocations, by tool name and outcome.",
		}, []string{"tool", "ok"}),
		BeliefWriteTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cognitad",
			Subsystem: "belief",
			Name:      "writes_total",
			Help:      "Belief add/update operations.",
		}),
		SystemHealthGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cognitad",
			Subsystem: "agint",
			Name:      "system_health",
			Help:      "Latest sampled system health signal (1 = reported).",
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.DecisionsTotal,
		m.SelfRepairTotal,
		m.CycleDuration,
		m.ActiveCampaigns,
		m.ToolInvokeTotal,
		m.BeliefWriteTotal,
		m.SystemHealthGauge,
	)
	return m
}

// NewTestMetrics builds a Metrics bound to a private registry, for tests
// that need real collectors without touching the process default registry.
func NewTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
