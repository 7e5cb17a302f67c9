// Package engine admits limit orders and drives each one to a terminal
// status with the strategy matching its TIF policy.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"curve-limit-agent/infrastructure/alert"
	"curve-limit-agent/infrastructure/logger"
	"curve-limit-agent/journal"
	"curve-limit-agent/metrics"
	"curve-limit-agent/order"
	"curve-limit-agent/policy"
)

// State 引擎状态
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Statistics 运行统计
type Statistics struct {
	Admitted        int64
	Filled          int64
	PartiallyFilled int64
	Canceled        int64
	Expired         int64
	Failed          int64
}

// Options 可选协作方，零值均可运行。
type Options struct {
	Log     *logger.Logger
	Alerts  *alert.Manager
	Journal journal.Journaler
}

// Engine 订单执行引擎。每个订单一个 goroutine，订单之间互不影响。
type Engine struct {
	cfg    policy.Config
	collab policy.Collaborators

	log     *logger.Logger
	alerts  *alert.Manager
	journal journal.Journaler

	mu     sync.RWMutex
	state  State
	orders map[string]*order.Order
	stats  Statistics

	wg sync.WaitGroup
}

func New(cfg policy.Config, collab policy.Collaborators, opts Options) *Engine {
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	if collab.Log == nil {
		collab.Log = log
	}
	j := opts.Journal
	if j == nil {
		j = journal.Nop{}
	}
	return &Engine{
		cfg:     cfg,
		collab:  collab,
		log:     log,
		alerts:  opts.Alerts,
		journal: j,
		state:   StateIdle,
		orders:  make(map[string]*order.Order),
	}
}

// Place 按条款创建订单并接单，返回订单 ID。
func (e *Engine) Place(t order.Terms) (string, error) {
	o, err := order.New(order.GenerateID("ord"), t)
	if err != nil {
		return "", err
	}
	if err := e.Admit(o); err != nil {
		return "", err
	}
	return o.ID, nil
}

// Admit 接单：复查条款，PENDING 转 ACTIVE 并登记。
func (e *Engine) Admit(o *order.Order) error {
	if o.Status != order.StatusPending {
		return fmt.Errorf("order %s is %s, only PENDING orders can be admitted", o.ID, o.Status)
	}
	if err := order.ValidateTerms(o.Terms()); err != nil {
		return fmt.Errorf("order %s rejected: %w", o.ID, err)
	}
	if err := o.UpdateStatus(order.StatusActive, ""); err != nil {
		return err
	}

	e.mu.Lock()
	if _, dup := e.orders[o.ID]; dup {
		e.mu.Unlock()
		return fmt.Errorf("duplicate order id %s", o.ID)
	}
	e.orders[o.ID] = o
	e.stats.Admitted++
	e.mu.Unlock()

	metrics.IncAdmitted(string(o.TIF))
	metrics.ActiveOrders.Inc()
	e.log.LogOrder("order_admitted", o.ID, map[string]interface{}{
		"tif":          string(o.TIF),
		"input_amount": o.InputAmount,
		"limit_price":  o.LimitPrice,
	})
	if err := e.journal.Record(context.Background(), journal.Event{
		Time:    time.Now(),
		OrderID: o.ID,
		Type:    "admitted",
		Status:  string(o.Status),
	}); err != nil {
		e.log.LogError(err, map[string]interface{}{"order_id": o.ID, "op": "journal_admit"})
	}
	return nil
}

// RunAll 并发执行所有 ACTIVE 订单，全部到达终态后返回。
// ctx 结束会让各策略走外部取消路径。
func (e *Engine) RunAll(ctx context.Context) {
	e.mu.Lock()
	e.state = StateRunning
	pending := make([]*order.Order, 0, len(e.orders))
	for _, o := range e.orders {
		if o.Status == order.StatusActive {
			pending = append(pending, o)
		}
	}
	e.mu.Unlock()

	for _, o := range pending {
		e.wg.Add(1)
		go func(o *order.Order) {
			defer e.wg.Done()
			e.runOne(ctx, o)
		}(o)
	}
	e.wg.Wait()

	e.mu.Lock()
	e.state = StateStopped
	e.mu.Unlock()
}

// runOne 执行单个订单，panic 只拖垮该订单。
func (e *Engine) runOne(ctx context.Context, o *order.Order) {
	defer func() {
		if r := recover(); r != nil {
			_ = o.UpdateStatus(order.StatusFailed, fmt.Sprintf("internal error: %v", r))
			e.log.LogError(fmt.Errorf("order goroutine panic: %v", r),
				map[string]interface{}{"order_id": o.ID})
		}
		e.finalize(o)
	}()

	s, err := policy.ForTIF(o.TIF, e.policyConfig(), e.collab)
	if err != nil {
		_ = o.UpdateStatus(order.StatusFailed, err.Error())
		return
	}
	s.Run(ctx, o)
}

// finalize 终态记账：统计、指标、日志、journal、告警。
func (e *Engine) finalize(o *order.Order) {
	e.mu.Lock()
	switch o.Status {
	case order.StatusFilled:
		e.stats.Filled++
	case order.StatusPartiallyFilled:
		e.stats.PartiallyFilled++
	case order.StatusCanceled:
		e.stats.Canceled++
	case order.StatusExpired:
		e.stats.Expired++
	case order.StatusFailed:
		e.stats.Failed++
	}
	e.mu.Unlock()

	metrics.IncTerminal(string(o.Status))
	metrics.ActiveOrders.Dec()
	e.log.LogOrder("order_terminal", o.ID, map[string]interface{}{
		"status": string(o.Status),
		"reason": o.FailureReason,
	})
	if err := e.journal.Record(context.Background(), journal.Event{
		Time:    time.Now(),
		OrderID: o.ID,
		Type:    "terminal",
		Status:  string(o.Status),
		Detail:  o.FailureReason,
	}); err != nil {
		e.log.LogError(err, map[string]interface{}{"order_id": o.ID, "op": "journal_terminal"})
	}
	if e.alerts != nil && o.Status == order.StatusFailed {
		_ = e.alerts.Error("order failed", map[string]interface{}{
			"order_id": o.ID,
			"reason":   o.FailureReason,
		})
	}
}

// UpdatePolicy 热更新策略运行参数，对尚未启动的订单生效。
// 已在执行中的订单继续使用启动时的参数。
func (e *Engine) UpdatePolicy(cfg policy.Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

func (e *Engine) policyConfig() policy.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Order 按 ID 查询订单。
func (e *Engine) Order(id string) (*order.Order, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	o, ok := e.orders[id]
	return o, ok
}

// Orders 返回所有订单的切片快照。
func (e *Engine) Orders() []*order.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*order.Order, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, o)
	}
	return out
}

// Stats 返回当前统计快照。
func (e *Engine) Stats() Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

// State 返回引擎状态。
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}
