package order

import (
	"time"
)

// TIF represents the time-in-force policy of an order.
type TIF string

const (
	TIFGTC TIF = "GTC" // Good-Till-Canceled
	TIFGTT TIF = "GTT" // Good-Till-Time
	TIFIOC TIF = "IOC" // Immediate-Or-Cancel
	TIFFOK TIF = "FOK" // Fill-Or-Kill
)

// ParseTIF 解析 TIF 字符串；未知策略返回 false。
func ParseTIF(s string) (TIF, bool) {
	switch TIF(s) {
	case TIFGTC, TIFGTT, TIFIOC, TIFFOK:
		return TIF(s), true
	default:
		return "", false
	}
}

// Status represents order lifecycle.
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusActive          Status = "ACTIVE"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusFilled          Status = "FILLED"
	StatusCanceled        Status = "CANCELED"
	StatusExpired         Status = "EXPIRED"
	StatusFailed          Status = "FAILED"
)

// Order 限价单：不可变的下单条款 + 可变的执行状态。
// 执行状态只由当前处理该订单的策略写入，不做内部加锁。
type Order struct {
	// 订单标识
	ID        string
	CreatedAt time.Time

	// 下单条款（创建后不再修改）
	InputToken      string
	OutputToken     string
	InputAmount     uint64 // 最小单位计
	MinOutputAmount uint64 // 由限价推出，构造时一次性计算
	PoolAddress     string
	InputIndex      int32 // 池内 token 序号
	OutputIndex     int32
	LimitPrice      float64 // 目标汇率（output/input）
	Slippage        float64 // 可接受滑点，例如 0.005 表示 0.5%
	TIF             TIF
	ExpiryTime      time.Time // 仅 GTT 使用
	Receiver        string    // 输出 token 接收地址

	// 执行状态
	Status         Status
	FilledAmount   uint64
	ReceivedAmount uint64
	TxHash         string
	FailureReason  string

	// 报价观测
	LastQuoteTime    time.Time
	LastQuotedOutput uint64
	QuoteCheckCount  int
}

// IsExpired 仅对 GTT 订单有意义，其余策略永不过期。
func (o *Order) IsExpired() bool {
	if o.TIF != TIFGTT {
		return false
	}
	return !time.Now().Before(o.ExpiryTime)
}

// IsExecutable 表示订单仍可被策略推进。
func (o *Order) IsExecutable() bool {
	return o.Status == StatusActive && !o.IsExpired()
}

// FillPercentage 返回当前成交比例（0~100）。
func (o *Order) FillPercentage() float64 {
	if o.InputAmount == 0 {
		return 0
	}
	return float64(o.FilledAmount) / float64(o.InputAmount) * 100
}

// UpdateStatus 推进订单状态；非法转换（含离开终态）返回错误。
// reason 为空时保留已有的 FailureReason。
func (o *Order) UpdateStatus(st Status, reason string) error {
	if err := Transitions.Validate(o.Status, st); err != nil {
		return err
	}
	o.Status = st
	if reason != "" {
		o.FailureReason = reason
	}
	return nil
}

// RecordQuote 登记一次报价观测：时间、数值、计数。
func (o *Order) RecordQuote(quotedOutput uint64) {
	o.LastQuoteTime = time.Now()
	o.LastQuotedOutput = quotedOutput
	o.QuoteCheckCount++
}

// ApplyFill 写入成交结果；filled 超过 InputAmount 时收敛到 InputAmount。
func (o *Order) ApplyFill(filled, received uint64, txHash string) {
	if filled > o.InputAmount {
		filled = o.InputAmount
	}
	o.FilledAmount = filled
	o.ReceivedAmount = received
	o.TxHash = txHash
}

// SetExpiry 仅对 GTT 订单生效。
func (o *Order) SetExpiry(t time.Time) {
	if o.TIF == TIFGTT {
		o.ExpiryTime = t
	}
}
