package policy

import (
	"fmt"

	"curve-limit-agent/order"
)

// ForTIF 按 TIF 选择策略实现。
func ForTIF(tif order.TIF, cfg Config, collab Collaborators) (Strategy, error) {
	switch tif {
	case order.TIFGTC:
		return NewGTC(cfg, collab), nil
	case order.TIFGTT:
		return NewGTT(cfg, collab), nil
	case order.TIFIOC:
		return NewIOC(cfg, collab), nil
	case order.TIFFOK:
		return NewFOK(cfg, collab), nil
	default:
		return nil, fmt.Errorf("unknown TIF policy: %s", tif)
	}
}
