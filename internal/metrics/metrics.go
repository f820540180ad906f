// Package metrics exposes Prometheus counters and gauges updated during
// operation:
//   - bot_cycles_total{status}       – decision cycles by outcome (ok|skipped|error)
//   - bot_orders_total{result}       – order attempts by result (bought|failed|skipped)
//   - bot_spend_total{strategy}      – cumulative amount spent per strategy
//   - bot_sell_signals_total{rule}   – sell signals by triggering rule
//   - bot_candidates                 – candidate count of the last cycle (gauge)
//   - bot_cycle_duration_seconds     – wall-clock duration of the last cycle (gauge)
//
// Registered in init() and served at /metrics by the web package.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	cycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Decision cycles by outcome",
		},
		[]string{"status"},
	)

	orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Order attempts by result",
		},
		[]string{"result"},
	)

	spend = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_spend_total",
			Help: "Cumulative amount spent, per strategy",
		},
		[]string{"strategy"},
	)

	sellSignals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_sell_signals_total",
			Help: "Sell signals by triggering rule",
		},
		[]string{"rule"},
	)

	candidates = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_candidates",
			Help: "Candidate count of the last completed cycle",
		},
	)

	cycleDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_cycle_duration_seconds",
			Help: "Wall-clock duration of the last completed cycle",
		},
	)
)

func init() {
	prometheus.MustRegister(cycles, orders, spend, sellSignals)
	prometheus.MustRegister(candidates, cycleDuration)
}

func IncCycle(status string) { cycles.WithLabelValues(status).Inc() }

func AddOrders(result string, n int) { orders.WithLabelValues(result).Add(float64(n)) }

func AddSpend(strategy string, amount float64) { spend.WithLabelValues(strategy).Add(amount) }

func IncSellSignal(rule string) { sellSignals.WithLabelValues(rule).Inc() }

func SetCandidates(n int) { candidates.Set(float64(n)) }

func SetCycleDuration(seconds float64) { cycleDuration.Set(seconds) }
