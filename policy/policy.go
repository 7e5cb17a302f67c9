package policy

import (
	"context"
	"time"

	"curve-limit-agent/infrastructure/logger"
	"curve-limit-agent/metrics"
	"curve-limit-agent/order"
)

// QuoteSource 报价来源。必须无副作用、可重复调用，并发安全。
type QuoteSource interface {
	Quote(ctx context.Context, pool string, i, j int32, dx uint64) (uint64, error)
}

// SettlementSubmitter 结算提交方。每个成交决定至多调用一次；
// 不允许内部重试（重试可能导致重复执行）。
type SettlementSubmitter interface {
	Submit(ctx context.Context, pool string, i, j int32, dx, minDy uint64, receiver string) (string, error)
}

// Collaborators 策略执行所需的外部协作方。
type Collaborators struct {
	Quotes QuoteSource
	Settle SettlementSubmitter
	Log    *logger.Logger
}

func (c Collaborators) logger() *logger.Logger {
	if c.Log != nil {
		return c.Log
	}
	return logger.NewNop()
}

// Config 策略运行参数。这些是运维参数，不属于订单语义。
type Config struct {
	PollInterval  time.Duration // GTC/GTT 轮询间隔
	ErrorInterval time.Duration // 报价失败后的等待间隔

	// MaxChecks 限制 GTC 的询价次数；0 表示不限制，依赖外部取消。
	MaxChecks int

	// MaxConsecutiveErrors 连续报价失败达到该值时订单转 FAILED；0 表示永不。
	MaxConsecutiveErrors int

	// FOK 流动性探测
	LiquidityCheck bool
	LiquidityProbe float64 // 探测数量倍数，默认 1.01
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.ErrorInterval <= 0 {
		c.ErrorInterval = 5 * time.Second
	}
	if c.LiquidityProbe <= 1 {
		c.LiquidityProbe = 1.01
	}
	return c
}

// Strategy 按 TIF 语义把一个 ACTIVE 订单推进到终态。
// 终态与失败原因写在订单上，不通过返回值传播。
type Strategy interface {
	TIF() order.TIF
	Run(ctx context.Context, o *order.Order)
}

// cancelExternal 外部取消（ctx 结束）时的统一出口。
func cancelExternal(o *order.Order) {
	_ = o.UpdateStatus(order.StatusCanceled, "canceled externally")
}

// waitInterval 等待一个轮询周期；ctx 结束时返回 false。
func waitInterval(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// submitFill 以滑点下限提交全量结算并写入成交结果。
// 结算失败不在此处改状态，由调用方按策略语义处理。
func submitFill(ctx context.Context, collab Collaborators, o *order.Order, quotedOutput uint64) error {
	minOut := o.MinOutputWithSlippage(quotedOutput)
	start := time.Now()
	tx, err := collab.Settle.Submit(ctx, o.PoolAddress, o.InputIndex, o.OutputIndex, o.InputAmount, minOut, o.Receiver)
	if err != nil {
		return err
	}
	metrics.ObserveSettlement(time.Since(start))
	o.ApplyFill(o.InputAmount, quotedOutput, tx)
	_ = o.UpdateStatus(order.StatusFilled, "")
	collab.logger().LogSettlement("order_settled", o.ID, map[string]interface{}{
		"tx_hash":       tx,
		"filled_amount": o.FilledAmount,
		"min_output":    minOut,
	})
	return nil
}

// recordQuote 登记报价并打点。
func recordQuote(collab Collaborators, o *order.Order, out uint64) {
	o.RecordQuote(out)
	metrics.IncQuoteCheck(string(o.TIF), out)
	collab.logger().LogQuote("quote_check", o.ID, map[string]interface{}{
		"output": out,
		"checks": o.QuoteCheckCount,
	})
}

// logQuoteError 报价失败打点；是否致命由各策略决定。
func logQuoteError(collab Collaborators, o *order.Order, err error) {
	metrics.IncQuoteError()
	collab.logger().LogQuote("quote_error", o.ID, map[string]interface{}{
		"error": err.Error(),
	})
}
