package order

// 成交判定：纯函数，只依赖订单条款与一次报价，不做任何 I/O。
// 由实数推导整数数量时一律向下取整（截断），宁可少报不多报。

// PriceMet 判断报价是否达到限价：quotedOutput/InputAmount >= LimitPrice。
// 分母始终取订单配置的完整数量，与实际询价数量无关。
func (o *Order) PriceMet(quotedOutput uint64) bool {
	if o.InputAmount == 0 {
		return false
	}
	rate := float64(quotedOutput) / float64(o.InputAmount)
	return rate >= o.LimitPrice
}

// PriceMetForAmount 同 PriceMet，但分母由调用方给出（用于部分数量询价）。
func (o *Order) PriceMetForAmount(quotedOutput, amount uint64) bool {
	if amount == 0 {
		return false
	}
	rate := float64(quotedOutput) / float64(amount)
	return rate >= o.LimitPrice
}

// MaxFillableAmount 返回当前报价下可成交的最大输入数量。
// 只要全量价格达标就返回全部剩余数量；不按报价折算部分数量。
func (o *Order) MaxFillableAmount(quotedOutput uint64) uint64 {
	if o.InputAmount == 0 {
		return 0
	}
	remaining := o.InputAmount - o.FilledAmount
	if remaining == 0 {
		return 0
	}
	if o.PriceMet(quotedOutput) {
		return remaining
	}
	return 0
}

// MinOutputWithSlippage 计算提交结算时的最低可接受输出：
// floor(quotedOutput * (1 - slippage))，用于防范报价到结算之间的价格移动。
func (o *Order) MinOutputWithSlippage(quotedOutput uint64) uint64 {
	return uint64(float64(quotedOutput) * (1 - o.Slippage))
}

// DecisionKind 标记一次报价评估的结果类别。
type DecisionKind int

const (
	NoFill DecisionKind = iota
	FullFill
	PartialFill
	Reject
)

func (k DecisionKind) String() string {
	switch k {
	case NoFill:
		return "NO_FILL"
	case FullFill:
		return "FULL_FILL"
	case PartialFill:
		return "PARTIAL_FILL"
	case Reject:
		return "REJECT"
	default:
		return "UNKNOWN"
	}
}

// Decision 是对一次报价的评估结果，每次评估新建，不复用。
type Decision struct {
	Kind       DecisionKind
	FillAmount uint64 // 建议成交的输入数量
	Output     uint64 // 对应的报价输出
	Reason     string
}

// Decide 将一次报价归入 NoFill / FullFill / PartialFill / Reject。
// 价格达标且无历史成交时为 FullFill；达标但已有部分成交时剩余部分为
// PartialFill；价格不达标为 NoFill；订单本身无效为 Reject。
func (o *Order) Decide(quotedOutput uint64) Decision {
	if o.InputAmount == 0 {
		return Decision{Kind: Reject, Reason: "zero input amount"}
	}
	if !o.PriceMet(quotedOutput) {
		return Decision{Kind: NoFill}
	}
	remaining := o.InputAmount - o.FilledAmount
	if remaining == 0 {
		return Decision{Kind: NoFill}
	}
	if remaining == o.InputAmount {
		return Decision{Kind: FullFill, FillAmount: remaining, Output: quotedOutput}
	}
	return Decision{Kind: PartialFill, FillAmount: remaining, Output: quotedOutput}
}
