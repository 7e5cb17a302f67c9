// Package journal persists order lifecycle events for audit and replay.
package journal

import (
	"context"
	"time"
)

// Event 一条订单生命周期记录。
type Event struct {
	Time    time.Time
	OrderID string
	Type    string // admitted / terminal
	Status  string
	Detail  string
}

// Journaler 顺序写入事件。写入失败不应阻断订单执行，由调用方记日志。
type Journaler interface {
	Record(ctx context.Context, ev Event) error
	Close() error
}

// Nop 丢弃所有事件。
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
func (Nop) Close() error                        { return nil }
