package policy

import (
	"context"

	"curve-limit-agent/order"
)

// IOC 只看一次报价：能全成就全成，能部分成就部分成，否则取消。
// 当前撮合对手是单一池子，首次决策时订单必然未成交，
// 部分成交分支留作多路拆单时的扩展点。
type IOC struct {
	cfg    Config
	collab Collaborators
}

func NewIOC(cfg Config, collab Collaborators) *IOC {
	return &IOC{cfg: cfg.withDefaults(), collab: collab}
}

func (s *IOC) TIF() order.TIF { return order.TIFIOC }

func (s *IOC) Run(ctx context.Context, o *order.Order) {
	if !o.IsExecutable() {
		return
	}
	if ctx.Err() != nil {
		cancelExternal(o)
		return
	}

	out, err := s.collab.Quotes.Quote(ctx, o.PoolAddress, o.InputIndex, o.OutputIndex, o.InputAmount)
	if err != nil {
		logQuoteError(s.collab, o, err)
		_ = o.UpdateStatus(order.StatusFailed, "quote unavailable: "+err.Error())
		return
	}
	recordQuote(s.collab, o, out)

	d := o.Decide(out)
	switch d.Kind {
	case order.FullFill:
		if err := submitFill(ctx, s.collab, o, out); err != nil {
			_ = o.UpdateStatus(order.StatusFailed, "settlement failed: "+err.Error())
		}

	case order.PartialFill:
		s.fillPartial(ctx, o, d.FillAmount)

	case order.NoFill:
		_ = o.UpdateStatus(order.StatusCanceled, "Price not met for any execution")

	default:
		_ = o.UpdateStatus(order.StatusFailed, d.Reason)
	}
}

// fillPartial 对可成交部分重新询价后结算剩余部分。
func (s *IOC) fillPartial(ctx context.Context, o *order.Order, amount uint64) {
	out, err := s.collab.Quotes.Quote(ctx, o.PoolAddress, o.InputIndex, o.OutputIndex, amount)
	if err != nil {
		logQuoteError(s.collab, o, err)
		_ = o.UpdateStatus(order.StatusFailed, "quote unavailable: "+err.Error())
		return
	}
	minOut := o.MinOutputWithSlippage(out)
	tx, err := s.collab.Settle.Submit(ctx, o.PoolAddress, o.InputIndex, o.OutputIndex, amount, minOut, o.Receiver)
	if err != nil {
		_ = o.UpdateStatus(order.StatusFailed, "settlement failed: "+err.Error())
		return
	}
	o.ApplyFill(o.FilledAmount+amount, o.ReceivedAmount+out, tx)
	_ = o.UpdateStatus(order.StatusPartiallyFilled, "Partial fill executed")
	s.collab.logger().LogSettlement("order_settled", o.ID, map[string]interface{}{
		"tx_hash":       tx,
		"filled_amount": o.FilledAmount,
		"min_output":    minOut,
	})
}
