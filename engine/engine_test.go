package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"curve-limit-agent/journal"
	"curve-limit-agent/order"
	"curve-limit-agent/policy"
)

// poolByAddress 按池地址路由行为：报价、报错或直接 panic。
type poolByAddress struct {
	mu      sync.Mutex
	quotes  map[string]uint64
	errs    map[string]error
	panics  map[string]bool
	submits int
}

func (p *poolByAddress) Quote(_ context.Context, pool string, _, _ int32, _ uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panics[pool] {
		panic("quote source exploded")
	}
	if err := p.errs[pool]; err != nil {
		return 0, err
	}
	return p.quotes[pool], nil
}

func (p *poolByAddress) Submit(_ context.Context, _ string, _, _ int32, _, _ uint64, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submits++
	return "0xtx", nil
}

func terms(pool string, tif order.TIF, limit float64) order.Terms {
	return order.Terms{
		InputToken:  "USDC",
		OutputToken: "USDT",
		InputAmount: 1000000,
		LimitPrice:  limit,
		Slippage:    0.01,
		TIF:         tif,
		PoolAddress: pool,
		OutputIndex: 1,
		Receiver:    "0xme",
	}
}

func TestAdmitRejectsBadStatus(t *testing.T) {
	pool := &poolByAddress{quotes: map[string]uint64{"0xp": 1010000}}
	e := New(policy.Config{}, policy.Collaborators{Quotes: pool, Settle: pool}, Options{})

	o, err := order.New("dup", terms("0xp", order.TIFIOC, 1.0))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := e.Admit(o); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if o.Status != order.StatusActive {
		t.Errorf("Expected ACTIVE after admit, got %s", o.Status)
	}
	// 同一个订单不能二次接单
	if err := e.Admit(o); err == nil {
		t.Fatalf("Expected re-admit to fail")
	}
}

func TestAdmitRevalidatesTerms(t *testing.T) {
	pool := &poolByAddress{}
	e := New(policy.Config{}, policy.Collaborators{Quotes: pool, Settle: pool}, Options{})

	// 绕过工厂手工构造的坏订单也必须被拒收
	cases := []struct {
		name string
		o    *order.Order
		want error
	}{
		{"zero amount", &order.Order{
			ID: "bad-1", Status: order.StatusPending,
			TIF: order.TIFIOC, LimitPrice: 1.0, PoolAddress: "0xp",
		}, order.ErrZeroAmount},
		{"bad slippage", &order.Order{
			ID: "bad-2", Status: order.StatusPending,
			TIF: order.TIFIOC, LimitPrice: 1.0, PoolAddress: "0xp",
			InputAmount: 1000, Slippage: 1.5,
		}, order.ErrBadSlippage},
		{"unsupported tif", &order.Order{
			ID: "bad-3", Status: order.StatusPending,
			TIF: order.TIF("DAY"), LimitPrice: 1.0, PoolAddress: "0xp",
			InputAmount: 1000,
		}, order.ErrUnsupportedTIF},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := e.Admit(tc.o); !errors.Is(err, tc.want) {
				t.Fatalf("Expected %v, got %v", tc.want, err)
			}
			if tc.o.Status != order.StatusPending {
				t.Errorf("Rejected order must stay PENDING, got %s", tc.o.Status)
			}
		})
	}
	if len(e.Orders()) != 0 {
		t.Errorf("Rejected orders must not be registered")
	}
}

func TestPlaceValidatesTerms(t *testing.T) {
	pool := &poolByAddress{}
	e := New(policy.Config{}, policy.Collaborators{Quotes: pool, Settle: pool}, Options{})

	bad := terms("0xp", order.TIFIOC, 1.0)
	bad.InputAmount = 0
	if _, err := e.Place(bad); !errors.Is(err, order.ErrZeroAmount) {
		t.Fatalf("Expected ErrZeroAmount, got %v", err)
	}
	if len(e.Orders()) != 0 {
		t.Errorf("Rejected order must not be registered")
	}
}

func TestRunAllDrivesOrdersToTerminal(t *testing.T) {
	pool := &poolByAddress{quotes: map[string]uint64{
		"0xfill": 1010000,
		"0xmiss": 900000,
	}}
	j := journal.NewMemory()
	e := New(policy.Config{}, policy.Collaborators{Quotes: pool, Settle: pool}, Options{Journal: j})

	fillID, err := e.Place(terms("0xfill", order.TIFIOC, 1.0))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	missID, err := e.Place(terms("0xmiss", order.TIFFOK, 1.0))
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	e.RunAll(context.Background())

	filled, _ := e.Order(fillID)
	if filled.Status != order.StatusFilled {
		t.Errorf("Expected FILLED, got %s (%s)", filled.Status, filled.FailureReason)
	}
	missed, _ := e.Order(missID)
	if missed.Status != order.StatusCanceled {
		t.Errorf("Expected CANCELED, got %s", missed.Status)
	}

	stats := e.Stats()
	if stats.Admitted != 2 || stats.Filled != 1 || stats.Canceled != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if e.State() != StateStopped {
		t.Errorf("Expected STOPPED, got %s", e.State())
	}

	// 每个订单落两条 journal：admitted + terminal
	if got := len(j.ByOrder(fillID)); got != 2 {
		t.Errorf("Expected 2 journal events, got %d", got)
	}
}

func TestPanicIsolatedPerOrder(t *testing.T) {
	pool := &poolByAddress{
		quotes: map[string]uint64{"0xgood": 1010000},
		panics: map[string]bool{"0xbad": true},
	}
	e := New(policy.Config{}, policy.Collaborators{Quotes: pool, Settle: pool}, Options{})

	goodID, err := e.Place(terms("0xgood", order.TIFIOC, 1.0))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	badID, err := e.Place(terms("0xbad", order.TIFIOC, 1.0))
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	e.RunAll(context.Background())

	good, _ := e.Order(goodID)
	if good.Status != order.StatusFilled {
		t.Errorf("Healthy order must not be affected, got %s", good.Status)
	}
	bad, _ := e.Order(badID)
	if bad.Status != order.StatusFailed {
		t.Fatalf("Expected FAILED for panicking order, got %s", bad.Status)
	}
	if !strings.HasPrefix(bad.FailureReason, "internal error:") {
		t.Errorf("Unexpected reason: %q", bad.FailureReason)
	}
}

func TestQuoteErrorFailsImmediateOrder(t *testing.T) {
	pool := &poolByAddress{errs: map[string]error{"0xp": errors.New("rpc down")}}
	e := New(policy.Config{}, policy.Collaborators{Quotes: pool, Settle: pool}, Options{})

	id, err := e.Place(terms("0xp", order.TIFIOC, 1.0))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	e.RunAll(context.Background())

	o, _ := e.Order(id)
	if o.Status != order.StatusFailed {
		t.Fatalf("Expected FAILED, got %s", o.Status)
	}
	if e.Stats().Failed != 1 {
		t.Errorf("Expected failure counted, got %+v", e.Stats())
	}
}
