// Package metrics defines the simulator's Prometheus instrumentation and an
// optional HTTP listener exposing it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MessagesPublished counts MQTT messages published, by payload kind
	// (telemetry, dtc, trip, route, job_update, job_state).
	MessagesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetsim_messages_published_total",
			Help: "Total number of MQTT messages published, by kind.",
		},
		[]string{"kind"},
	)

	// PhysicsTicks counts completed physics iterations.
	PhysicsTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetsim_physics_ticks_total",
			Help: "Total number of completed physics ticks.",
		},
	)

	// ActiveJobs tracks OTA jobs currently in flight.
	ActiveJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetsim_active_jobs",
			Help: "Number of OTA jobs currently being processed.",
		},
	)
)

func init() {
	prometheus.MustRegister(MessagesPublished)
	prometheus.MustRegister(PhysicsTicks)
	prometheus.MustRegister(ActiveJobs)
}
