package alert

import (
	"fmt"
	"sync"

	"curve-limit-agent/infrastructure/logger"
)

// ZapChannel 把告警写入结构化日志。
type ZapChannel struct {
	log  *logger.Logger
	name string
}

func NewZapChannel(name string, log *logger.Logger) *ZapChannel {
	if log == nil {
		log = logger.NewNop()
	}
	return &ZapChannel{log: log, name: name}
}

func (c *ZapChannel) Send(a Alert) error {
	fields := map[string]interface{}{
		"level":   string(a.Level),
		"message": a.Message,
		"ts":      a.Timestamp,
	}
	for k, v := range a.Fields {
		fields[k] = v
	}
	switch a.Level {
	case LevelError, LevelCritical:
		c.log.WithFields(fields).Warn("alert")
	default:
		c.log.WithFields(fields).Info("alert")
	}
	return nil
}

func (c *ZapChannel) Name() string { return c.name }

// MockChannel 测试用通道，记录收到的告警。
type MockChannel struct {
	mu        sync.Mutex
	name      string
	alerts    []Alert
	shouldErr bool
}

func NewMockChannel(name string) *MockChannel {
	return &MockChannel{name: name}
}

func (c *MockChannel) Send(a Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shouldErr {
		return fmt.Errorf("mock error")
	}
	c.alerts = append(c.alerts, a)
	return nil
}

func (c *MockChannel) Name() string { return c.name }

func (c *MockChannel) Alerts() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

func (c *MockChannel) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.alerts)
}

func (c *MockChannel) SetShouldError(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shouldErr = v
}
