/*
 *    Copyright 2021 chenquan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package xmetrics exposes the broker's Prometheus gauges and counters:
// active sessions, stored sessions, retained messages, queued publications,
// and per-packet-type receive/send counts. The broker updates
// ActiveSessions, RetainedMessages and PacketsReceived; PacketsSent is
// incremented for CONNACK only, and StoredSessions, QueuedMessages and
// SessionsDropped are registered but never updated.
package xmetrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tideway_active_sessions",
		Help: "Sessions currently in the active state.",
	})
	StoredSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tideway_stored_sessions",
		Help: "Non-clean sessions currently held in offline storage.",
	})
	RetainedMessages = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tideway_retained_messages",
		Help: "Entries currently held in the retained message store.",
	})
	QueuedMessages = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tideway_queued_messages",
		Help: "Publications currently queued for offline or slow sessions.",
	})
	PacketsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tideway_packets_received_total",
		Help: "Control packets received, by type.",
	}, []string{"type"})
	PacketsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tideway_packets_sent_total",
		Help: "Control packets sent, by type.",
	}, []string{"type"})
	SessionsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tideway_sessions_dropped_total",
		Help: "Sessions dropped, by reason.",
	}, []string{"reason"})
)

// Register adds every collector to the default registry. Call once at
// startup; safe to skip in tests that never start an HTTP exporter.
func Register() {
	prometheus.MustRegister(
		ActiveSessions,
		StoredSessions,
		RetainedMessages,
		QueuedMessages,
		PacketsReceived,
		PacketsSent,
		SessionsDropped,
	)
}
