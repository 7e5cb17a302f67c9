package alert

import (
	"fmt"
	"sync"
	"time"
)

// Level 告警级别
type Level string

const (
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

// Alert 一条告警
type Alert struct {
	Level     Level
	Message   string
	Timestamp time.Time
	Fields    map[string]interface{}
}

// Channel 告警投递通道
type Channel interface {
	Send(alert Alert) error
	Name() string
}

// Throttler 按 key 限流，同一告警在间隔内只发一次。
type Throttler struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
	interval time.Duration
}

func NewThrottler(interval time.Duration) *Throttler {
	return &Throttler{
		lastSent: make(map[string]time.Time),
		interval: interval,
	}
}

func (t *Throttler) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if last, ok := t.lastSent[key]; ok && now.Sub(last) < t.interval {
		return false
	}
	t.lastSent[key] = now
	return true
}

func (t *Throttler) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSent = make(map[string]time.Time)
}

// Manager 把告警分发到各通道，重复告警按 级别:消息 限流。
type Manager struct {
	mu       sync.RWMutex
	channels []Channel
	throttle *Throttler
}

func NewManager(channels []Channel, throttleInterval time.Duration) *Manager {
	return &Manager{
		channels: channels,
		throttle: NewThrottler(throttleInterval),
	}
}

// Send 投递告警；被限流时静默丢弃。
// 只要有一个通道成功就算成功，全部失败才返回错误。
func (m *Manager) Send(a Alert) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	if !m.throttle.Allow(string(a.Level) + ":" + a.Message) {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var lastErr error
	delivered := 0
	for _, ch := range m.channels {
		if err := ch.Send(a); err != nil {
			lastErr = fmt.Errorf("channel %s failed: %w", ch.Name(), err)
			continue
		}
		delivered++
	}
	if delivered == 0 && lastErr != nil {
		return lastErr
	}
	return nil
}

func (m *Manager) Info(message string, fields map[string]interface{}) error {
	return m.Send(Alert{Level: LevelInfo, Message: message, Fields: fields})
}

func (m *Manager) Warning(message string, fields map[string]interface{}) error {
	return m.Send(Alert{Level: LevelWarning, Message: message, Fields: fields})
}

func (m *Manager) Error(message string, fields map[string]interface{}) error {
	return m.Send(Alert{Level: LevelError, Message: message, Fields: fields})
}

func (m *Manager) Critical(message string, fields map[string]interface{}) error {
	return m.Send(Alert{Level: LevelCritical, Message: message, Fields: fields})
}

// AddChannel 运行期追加通道。
func (m *Manager) AddChannel(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append(m.channels, ch)
}

// Channels 返回通道名列表。
func (m *Manager) Channels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.channels))
	for _, ch := range m.channels {
		names = append(names, ch.Name())
	}
	return names
}

// ResetThrottle 清空限流记录，测试用。
func (m *Manager) ResetThrottle() {
	m.throttle.Clear()
}
