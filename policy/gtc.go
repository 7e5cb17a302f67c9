package policy

import (
	"context"

	"curve-limit-agent/order"
)

// GTC 持续轮询直到成交或被取消。
// MaxChecks > 0 时询价次数达到上限即取消，避免无人值守的永久轮询。
type GTC struct {
	cfg    Config
	collab Collaborators
}

func NewGTC(cfg Config, collab Collaborators) *GTC {
	return &GTC{cfg: cfg.withDefaults(), collab: collab}
}

func (s *GTC) TIF() order.TIF { return order.TIFGTC }

func (s *GTC) Run(ctx context.Context, o *order.Order) {
	consecutive := 0
	for o.IsExecutable() {
		if ctx.Err() != nil {
			cancelExternal(o)
			return
		}
		if s.cfg.MaxChecks > 0 && o.QuoteCheckCount >= s.cfg.MaxChecks {
			_ = o.UpdateStatus(order.StatusCanceled, "iteration/monitoring limit reached")
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
}
