package policy

import (
	"context"

	"curve-limit-agent/order"
)

// GTT 与 GTC 的轮询相同，但带截止时间。
// 到期判断在每轮开始前做一次，成交与到期竞争时成交优先。
type GTT struct {
	cfg    Config
	collab Collaborators
}

func NewGTT(cfg Config, collab Collaborators) *GTT {
	return &GTT{cfg: cfg.withDefaults(), collab: collab}
}

func (s *GTT) TIF() order.TIF { return order.TIFGTT }

func (s *GTT) Run(ctx context.Context, o *order.Order) {
	consecutive := 0
	for o.IsExecutable() {
		if ctx.Err() != nil {
			cancelExternal(o)
			return
		}

		out, err := s.collab.Quotes.Quote(ctx, o.PoolAddress, o.InputIndex, o.OutputIndex, o.InputAmount)
		if err != nil {
			logQuoteError(s.collab, o, err)
			consecutive++
			if s.cfg.MaxConsecutiveErrors > 0 && consecutive >= s.cfg.MaxConsecutiveErrors {
				_ = o.UpdateStatus(order.StatusFailed, "quote unavailable: "+err.Error())
				return
			}
			if !waitInterval(ctx, s.cfg.ErrorInterval) {
				cancelExternal(o)
				return
			}
			continue
		}
		consecutive = 0
		recordQuote(s.collab, o, out)

		if o.PriceMet(out) {
			if err := submitFill(ctx, s.collab, o, out); err != nil {
				_ = o.UpdateStatus(order.StatusFailed, "settlement failed: "+err.Error())
			}
			return
		}

		if !waitInterval(ctx, s.cfg.PollInterval) {
			cancelExternal(o)
			return
		}
	}

	if o.Status == order.StatusActive && o.IsExpired() {
		_ = o.UpdateStatus(order.StatusExpired, "order expired")
	}
}
