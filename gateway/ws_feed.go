package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"curve-limit-agent/infrastructure/logger"
)

// QuoteUpdate 一条来自外部行情源的报价推送。
type QuoteUpdate struct {
	Pool   string `json:"pool"`
	Output uint64 `json:"output"`
	At     time.Time
}

// QuoteFeed 通过 websocket 订阅报价流，断线自动重连。
// 推送只用于观测（价格监控），执行路径始终走链上询价。
type QuoteFeed struct {
	URL     string
	Updates chan QuoteUpdate

	dialer *websocket.Dialer
	log    *logger.Logger
}

func NewQuoteFeed(url string, log *logger.Logger) *QuoteFeed {
	if log == nil {
		log = logger.NewNop()
	}
	return &QuoteFeed{
		URL:     url,
		Updates: make(chan QuoteUpdate, 64),
		dialer:  websocket.DefaultDialer,
		log:     log,
	}
}

// Run 维持订阅直到 ctx 结束。读失败退避 1s 后重连。
func (f *QuoteFeed) Run(ctx context.Context) error {
	defer close(f.Updates)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.readLoop(ctx); err != nil {
			f.log.LogError(err, map[string]interface{}{"op": "quote_feed"})
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func (f *QuoteFeed) readLoop(ctx context.Context) error {
	conn, _, err := f.dialer.DialContext(ctx, f.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var u QuoteUpdate
		if err := json.Unmarshal(msg, &u); err != nil {
			continue
		}
		u.At = time.Now()
		select {
		case f.Updates <- u:
		default:
			// 消费不过来时丢弃最旧的推送
			select {
			case <-f.Updates:
			default:
			}
			select {
			case f.Updates <- u:
			default:
			}
		}
	}
}
