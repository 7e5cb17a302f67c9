// Package metrics provides Prometheus metrics for the limit-order agent
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuoteChecks 各策略的询价次数
	QuoteChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_quote_checks_total",
		Help: "Number of price quote checks performed, by TIF policy",
	}, []string{"policy"})

	// QuoteErrors 询价失败次数
	QuoteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agent_quote_errors_total",
		Help: "Number of failed quote requests",
	})

	// OrdersAdmitted 引擎接单数量
	OrdersAdmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_orders_admitted_total",
		Help: "Number of orders admitted to the engine, by TIF policy",
	}, []string{"policy"})

	// OrdersTerminal 各终态订单数量
	OrdersTerminal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_orders_terminal_total",
		Help: "Number of orders that reached a terminal status",
	}, []string{"status"})

	// Settlements 结算提交次数
	Settlements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agent_settlements_total",
		Help: "Number of settlement submissions",
	})

	// SettlementLatency 结算提交耗时
	SettlementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agent_settlement_latency_seconds",
		Help:    "Settlement submission latency",
		Buckets: prometheus.DefBuckets,
	})

	// LastQuotedOutput 最近一次报价输出
	LastQuotedOutput = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agent_last_quoted_output",
		Help: "Most recent quoted output amount",
	})

	// ActiveOrders 活跃订单数
	ActiveOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agent_active_orders",
		Help: "Number of orders currently active in the engine",
	})
)

// IncQuoteCheck 记录一次询价。
func IncQuoteCheck(policy string, output uint64) {
	QuoteChecks.WithLabelValues(policy).Inc()
	LastQuotedOutput.Set(float64(output))
}

// IncQuoteError 记录一次询价失败。
func IncQuoteError() {
	QuoteErrors.Inc()
}

// IncAdmitted 记录一次接单。
func IncAdmitted(policy string) {
	OrdersAdmitted.WithLabelValues(policy).Inc()
}

// IncTerminal 记录一个订单到达终态。
func IncTerminal(status string) {
	OrdersTerminal.WithLabelValues(status).Inc()
}

// ObserveSettlement 记录一次结算提交及其耗时。
func ObserveSettlement(d time.Duration) {
	Settlements.Inc()
	SettlementLatency.Observe(d.Seconds())
}

// StartMetricsServer 启动Prometheus指标服务器
func StartMetricsServer(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
