package journal

import (
	"context"
	"sync"
)

// Memory 内存日志，进程退出即丢失，供测试与 dry-run 使用。
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *Memory) Close() error { return nil }

// Events 返回快照。
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// ByOrder 返回某个订单的全部事件。
func (m *Memory) ByOrder(orderID string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, ev := range m.events {
		if ev.OrderID == orderID {
			out = append(out, ev)
		}
	}
	return out
}
