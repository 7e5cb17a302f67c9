package gateway

import (
	"context"
	"fmt"
	"strings"

	"curve-limit-agent/infrastructure/logger"
)

// Curve StableSwap 函数选择器
const (
	// get_dy(int128,int128,uint256)
	selectorGetDy = "0x5e0d443f"
	// exchange(int128,int128,uint256,uint256,address)
	selectorExchange = "0x394747c5"
)

// TxBroadcaster 负责把已编码的交易发出去。签名与广播留在进程外，
// 默认实现只做 dry-run。
type TxBroadcaster interface {
	Broadcast(ctx context.Context, to, data string) (string, error)
}

// DryRunBroadcaster 不广播任何交易，返回固定的假哈希。
type DryRunBroadcaster struct{}

func (DryRunBroadcaster) Broadcast(_ context.Context, _, _ string) (string, error) {
	return "0x" + strings.Repeat("f", 64), nil
}

// PoolOptions 池客户端可选项。
type PoolOptions struct {
	Broadcaster TxBroadcaster
	Log         *logger.Logger

	// MockPricing 为真时不走链上，报价 = dx * MockRate。
	MockPricing bool
	MockRate    float64
}

// PoolClient 面向单个 Curve 池的报价与结算客户端，
// 实现策略层的 QuoteSource 与 SettlementSubmitter。
type PoolClient struct {
	rpc         *RPCClient
	broadcaster TxBroadcaster
	log         *logger.Logger
	mockPricing bool
	mockRate    float64
}

func NewPoolClient(rpc *RPCClient, opts PoolOptions) *PoolClient {
	b := opts.Broadcaster
	if b == nil {
		b = DryRunBroadcaster{}
	}
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	rate := opts.MockRate
	if rate <= 0 {
		rate = 1.0
	}
	return &PoolClient{
		rpc:         rpc,
		broadcaster: b,
		log:         log,
		mockPricing: opts.MockPricing,
		mockRate:    rate,
	}
}

// Quote 调用池子的 get_dy 询价。
func (p *PoolClient) Quote(ctx context.Context, pool string, i, j int32, dx uint64) (uint64, error) {
	if p.mockPricing {
		return uint64(float64(dx) * p.mockRate), nil
	}
	data := selectorGetDy +
		EncodeUint256(uint64(i)) +
		EncodeUint256(uint64(j)) +
		EncodeUint256(dx)
	result, err := p.rpc.EthCall(ctx, pool, data)
	if err != nil {
		return 0, fmt.Errorf("get_dy: %w", err)
	}
	return HexToUint64(result), nil
}

// Submit 编码 exchange 调用并交给 broadcaster。
func (p *PoolClient) Submit(ctx context.Context, pool string, i, j int32, dx, minDy uint64, receiver string) (string, error) {
	data := selectorExchange +
		EncodeUint256(uint64(i)) +
		EncodeUint256(uint64(j)) +
		EncodeUint256(dx) +
		EncodeUint256(minDy) +
		EncodeAddress(receiver)
	tx, err := p.broadcaster.Broadcast(ctx, pool, data)
	if err != nil {
		return "", fmt.Errorf("broadcast exchange: %w", err)
	}
	p.log.LogSettlement("exchange_broadcast", "", map[string]interface{}{
		"pool":     pool,
		"dx":       dx,
		"min_dy":   minDy,
		"receiver": receiver,
		"tx_hash":  tx,
	})
	return tx, nil
}
