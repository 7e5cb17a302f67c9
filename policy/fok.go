package policy

import (
	"context"

	"curve-limit-agent/order"
)

// FOK 全成或全撤。在价格满足后再做一次流动性探测：
// 用略大于订单量的数量询价，探测失败（返回 0）说明池子吃不下全量。
// 探测本身出错不致命，按原报价继续执行。
type FOK struct {
	cfg    Config
	collab Collaborators
}

func NewFOK(cfg Config, collab Collaborators) *FOK {
	return &FOK{cfg: cfg.withDefaults(), collab: collab}
}

func (s *FOK) TIF() order.TIF { return order.TIFFOK }

func (s *FOK) Run(ctx context.Context, o *order.Order) {
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

	if !o.PriceMet(out) {
		_ = o.UpdateStatus(order.StatusCanceled, "FOK: price not met, order killed")
		return
	}

	if s.cfg.LiquidityCheck {
		probe := uint64(float64(o.InputAmount) * s.cfg.LiquidityProbe)
		probeOut, probeErr := s.collab.Quotes.Quote(ctx, o.PoolAddress, o.InputIndex, o.OutputIndex, probe)
		switch {
		case probeErr != nil:
			s.collab.logger().LogQuote("quote_error", o.ID, map[string]interface{}{
				"error": "liquidity probe inconclusive: " + probeErr.Error(),
			})
		case probeOut == 0:
			_ = o.UpdateStatus(order.StatusCanceled, "FOK: insufficient liquidity for full order")
			return
		}
	}

	if err := submitFill(ctx, s.collab, o, out); err != nil {
		_ = o.UpdateStatus(order.StatusFailed, "settlement failed: "+err.Error())
	}
}
