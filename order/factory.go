package order

import (
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

// Terms 是创建订单所需的全部条款。
type Terms struct {
	InputToken  string
	OutputToken string
	InputAmount uint64
	LimitPrice  float64
	Slippage    float64
	TIF         TIF
	Expiry      time.Time // 仅 GTT；零值时取默认过期时间
	PoolAddress string
	InputIndex  int32
	OutputIndex int32
	Receiver    string
}

// DefaultGTTExpiry GTT 未指定过期时间时的默认有效期。
const DefaultGTTExpiry = time.Hour

var (
	ErrZeroAmount     = errors.New("input amount must be > 0")
	ErrBadLimitPrice  = errors.New("limit price must be > 0")
	ErrBadSlippage    = errors.New("slippage must be in [0,1)")
	ErrUnsupportedTIF = errors.New("unsupported TIF policy")
	ErrNoPool         = errors.New("pool address is required")
)

// ValidateTerms 检查条款是否可受理；引擎接单前也会复查。
func ValidateTerms(t Terms) error {
	if t.InputAmount == 0 {
		return ErrZeroAmount
	}
	if t.LimitPrice <= 0 {
		return ErrBadLimitPrice
	}
	if t.Slippage < 0 || t.Slippage >= 1 {
		return ErrBadSlippage
	}
	if _, ok := ParseTIF(string(t.TIF)); !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedTIF, t.TIF)
	}
	if t.PoolAddress == "" {
		return ErrNoPool
	}
	return nil
}

// New 按条款创建 PENDING 状态的订单。
// MinOutputAmount = floor(input * limitPrice)，只在此处计算一次。
func New(id string, t Terms) (*Order, error) {
	if err := ValidateTerms(t); err != nil {
		return nil, err
	}
	now := time.Now()
	o := &Order{
		ID:              id,
		CreatedAt:       now,
		InputToken:      t.InputToken,
		OutputToken:     t.OutputToken,
		InputAmount:     t.InputAmount,
		MinOutputAmount: uint64(float64(t.InputAmount) * t.LimitPrice),
		PoolAddress:     t.PoolAddress,
		InputIndex:      t.InputIndex,
		OutputIndex:     t.OutputIndex,
		LimitPrice:      t.LimitPrice,
		Slippage:        t.Slippage,
		TIF:             t.TIF,
		Receiver:        t.Receiver,
		Status:          StatusPending,
	}
	if t.TIF == TIFGTT {
		if t.Expiry.IsZero() {
			o.ExpiryTime = now.Add(DefaultGTTExpiry)
		} else {
			o.ExpiryTime = t.Expiry
		}
	}
	return o, nil
}

// Terms 还原订单的下单条款，供外部复查。
func (o *Order) Terms() Terms {
	return Terms{
		InputToken:  o.InputToken,
		OutputToken: o.OutputToken,
		InputAmount: o.InputAmount,
		LimitPrice:  o.LimitPrice,
		Slippage:    o.Slippage,
		TIF:         o.TIF,
		Expiry:      o.ExpiryTime,
		PoolAddress: o.PoolAddress,
		InputIndex:  o.InputIndex,
		OutputIndex: o.OutputIndex,
		Receiver:    o.Receiver,
	}
}

// NewGTC creates a Good-Till-Canceled order.
func NewGTC(id string, t Terms) (*Order, error) {
	t.TIF = TIFGTC
	return New(id, t)
}

// NewGTT creates a Good-Till-Time order with the given expiry.
func NewGTT(id string, t Terms, expiry time.Time) (*Order, error) {
	t.TIF = TIFGTT
	t.Expiry = expiry
	return New(id, t)
}

// NewIOC creates an Immediate-Or-Cancel order.
func NewIOC(id string, t Terms) (*Order, error) {
	t.TIF = TIFIOC
	return New(id, t)
}

// NewFOK creates a Fill-Or-Kill order.
func NewFOK(id string, t Terms) (*Order, error) {
	t.TIF = TIFFOK
	return New(id, t)
}

var idSeq atomic.Uint64

// GenerateID 简单生成唯一 ID：时间戳加进程内序号，同一纳秒内也不冲突。
// 生产环境应改为雪花/UUID。
func GenerateID(prefix string) string {
	if prefix == "" {
		prefix = "ord"
	}
	ts := time.Now().UTC().Format("20060102150405.000000000")
	return prefix + "-" + ts + "-" + strconv.FormatUint(idSeq.Add(1), 10)
}
