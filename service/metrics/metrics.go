package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SlotQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marcai",
			Name:      "slot_queries_total",
			Help:      "Count of availability computations served.",
		},
	)

	AppointmentsBooked = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "marcai",
			Name:      "appointments_booked_total",
			Help:      "Count of appointments created by clients.",
		},
	)

	AppointmentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marcai",
			Name:      "appointment_transitions_total",
			Help:      "Count of appointment status transitions.",
		},
		[]string{"status"},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marcai",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method.",
		},
		[]string{"method"},
	)
)
