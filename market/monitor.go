// Package market observes pool exchange rates over time.
// Observation only, execution decisions stay in the policy layer.
package market

import (
	"context"
	"math"
	"sync"
	"time"

	"curve-limit-agent/infrastructure/logger"
)

// maxHistory 滚动窗口大小，超出后丢弃最旧样本。
const maxHistory = 100

// QuoteFn 返回 probeAmount 输入对应的报价输出。
type QuoteFn func(ctx context.Context, amount uint64) (uint64, error)

// PricePoint 一个带时间戳的汇率样本。
type PricePoint struct {
	Rate float64
	At   time.Time
}

// Stats 窗口内的汇率统计。
type Stats struct {
	Count      int
	Min        float64
	Max        float64
	Avg        float64
	Volatility float64 // 标准差
}

// PriceMonitor 周期性采样汇率并维护滚动窗口。
type PriceMonitor struct {
	quote       QuoteFn
	probeAmount uint64
	clock       Clock
	log         *logger.Logger

	mu      sync.RWMutex
	history []PricePoint
}

func NewPriceMonitor(quote QuoteFn, probeAmount uint64, log *logger.Logger) *PriceMonitor {
	if log == nil {
		log = logger.NewNop()
	}
	if probeAmount == 0 {
		probeAmount = 1000000
	}
	return &PriceMonitor{
		quote:       quote,
		probeAmount: probeAmount,
		clock:       RealClock{},
		log:         log,
	}
}

// SetClock 替换时间来源，测试用。
func (m *PriceMonitor) SetClock(c Clock) { m.clock = c }

// Sample 采一次样并入窗。采样失败只记日志，窗口不变。
func (m *PriceMonitor) Sample(ctx context.Context) (PricePoint, bool) {
	out, err := m.quote(ctx, m.probeAmount)
	if err != nil {
		m.log.LogError(err, map[string]interface{}{"op": "price_sample"})
		return PricePoint{}, false
	}
	p := PricePoint{
		Rate: float64(out) / float64(m.probeAmount),
		At:   m.clock.Now(),
	}
	m.mu.Lock()
	m.history = append(m.history, p)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.mu.Unlock()
	return p, true
}

// Run 持续采样直到时长用完或 ctx 结束。duration <= 0 表示只受 ctx 控制。
func (m *PriceMonitor) Run(ctx context.Context, duration, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	var deadline <-chan time.Time
	if duration > 0 {
		t := time.NewTimer(duration)
		defer t.Stop()
		deadline = t.C
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Sample(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-ticker.C:
			m.Sample(ctx)
		}
	}
}

// Latest 返回最近一个样本。
func (m *PriceMonitor) Latest() (PricePoint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.history) == 0 {
		return PricePoint{}, false
	}
	return m.history[len(m.history)-1], true
}

// AboveTarget 判断最近样本是否达到目标汇率。无样本时为 false。
func (m *PriceMonitor) AboveTarget(target float64) bool {
	p, ok := m.Latest()
	return ok && p.Rate >= target
}

// Snapshot 返回窗口内统计。
func (m *PriceMonitor) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.history)
	if n == 0 {
		return Stats{}
	}
	s := Stats{Count: n, Min: m.history[0].Rate, Max: m.history[0].Rate}
	sum := 0.0
	for _, p := range m.history {
		if p.Rate < s.Min {
			s.Min = p.Rate
		}
		if p.Rate > s.Max {
			s.Max = p.Rate
		}
		sum += p.Rate
	}
	s.Avg = sum / float64(n)
	variance := 0.0
	for _, p := range m.history {
		d := p.Rate - s.Avg
		variance += d * d
	}
	s.Volatility = math.Sqrt(variance / float64(n))
	return s
}
