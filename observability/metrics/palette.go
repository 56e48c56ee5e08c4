package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type PaletteMetrics struct {
	swaps         prometheus.Counter
	swapsRejected *prometheus.CounterVec
	withdrawals   prometheus.Counter
	transfers     prometheus.Counter
}

var (
	paletteOnce     sync.Once
	paletteRegistry *PaletteMetrics
)

func Palette() *PaletteMetrics {
	paletteOnce.Do(func() {
		paletteRegistry = &PaletteMetrics{
			swaps: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "palette_swaps_total",
				Help: "Count of completed position swaps.",
			}),
			swapsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "palette_swaps_rejected_total",
				Help: "Count of rejected swap attempts by reason.",
			}, []string{"reason"}),
			withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "palette_withdrawals_total",
				Help: "Count of non-zero escrow withdrawals.",
			}),
			transfers: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "palette_transfers_total",
				Help: "Count of token ownership transfers.",
			}),
		}
		prometheus.MustRegister(
			paletteRegistry.swaps,
			paletteRegistry.swapsRejected,
			paletteRegistry.withdrawals,
			paletteRegistry.transfers,
		)
	})
	return paletteRegistry
}

func (m *PaletteMetrics) ObserveSwap() {
	if m == nil {
		return
	}
	m.swaps.Inc()
}

func (m *PaletteMetrics) ObserveSwapRejected(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.swapsRejected.WithLabelValues(reason).Inc()
}

func (m *PaletteMetrics) ObserveWithdrawal() {
	if m == nil {
		return
	}
	m.withdrawals.Inc()
}

func (m *PaletteMetrics) ObserveTransfer() {
	if m == nil {
		return
	}
	m.transfers.Inc()
}
