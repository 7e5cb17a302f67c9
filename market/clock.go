package market

import "time"

// Clock 抽象时间来源，测试时可替换。
type Clock interface {
	Now() time.Time
}

// RealClock 使用系统时间。
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock 固定时间，可手动推进。
type FakeClock struct {
	Current time.Time
}

func (c *FakeClock) Now() time.Time { return c.Current }

func (c *FakeClock) Advance(d time.Duration) { c.Current = c.Current.Add(d) }
