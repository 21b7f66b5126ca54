package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotToggled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskbook",
			Name:      "slot_toggled_total",
			Help:      "Count of grid cell toggles by resulting action.",
		},
		[]string{"action"},
	)

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deskbook",
			Name:      "booking_created_total",
			Help:      "Count of bookings appended to the ledger.",
		},
	)

	confirmRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskbook",
			Name:      "confirm_rejected_total",
			Help:      "Count of confirm attempts rejected by reason.",
		},
		[]string{"reason"},
	)

	bookingRevenue = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deskbook",
			Name:      "booking_revenue_total",
			Help:      "Accumulated total of confirmed bookings.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotToggled, bookingCreated, confirmRejected, bookingRevenue)
	})
}

func IncSlotToggled(action string) {
	slotToggled.WithLabelValues(action).Inc()
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncConfirmRejected(reason string) {
	confirmRejected.WithLabelValues(reason).Inc()
}

func AddBookingRevenue(total int) {
	bookingRevenue.Add(float64(total))
}
