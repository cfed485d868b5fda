package sched

import "github.com/prometheus/client_golang/prometheus"

// SubSystem is the prometheus metric namespace for the scheduler,
// matching the teacher's per-package Subsystem convention (see e.g.
// components/fuse/metrics.go).
const SubSystem = "nsm_scheduler"

var (
	ticksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: SubSystem,
			Name:      "ticks_total",
			Help:      "tracks the number of scheduler ticks run per device",
		},
		[]string{"device_uuid"},
	)

	emitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: SubSystem,
			Name:      "emits_total",
			Help:      "tracks sensor emissions per device and outcome",
		},
		[]string{"device_uuid", "sensor", "outcome"},
	)

	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: SubSystem,
			Name:      "events_total",
			Help:      "tracks inbound NSM events by class",
		},
		[]string{"device_uuid", "class"},
	)

	rediscoveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: SubSystem,
			Name:      "rediscoveries_total",
			Help:      "tracks capability rediscoveries triggered per device",
		},
		[]string{"device_uuid"},
	)
)

// RegisterCollectors registers the scheduler's metrics with reg, matching
// the teacher's per-component RegisterCollectors(*prometheus.Registry)
// convention.
func RegisterCollectors(reg *prometheus.Registry) error {
	for _, c := range []prometheus.Collector{ticksTotal, emitsTotal, eventsTotal, rediscoveriesTotal} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
