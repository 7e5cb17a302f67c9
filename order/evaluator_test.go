package order

import "testing"

func mustOrder(t *testing.T, tif TIF, amount uint64, limit, slippage float64) *Order {
	t.Helper()
	o, err := New("T-"+string(tif), Terms{
		InputToken:  "0xA",
		OutputToken: "0xB",
		InputAmount: amount,
		LimitPrice:  limit,
		Slippage:    slippage,
		TIF:         tif,
		PoolAddress: "0xPool",
		InputIndex:  1,
		OutputIndex: 0,
		Receiver:    "0xUser",
	})
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	return o
}

func TestPriceMet(t *testing.T) {
	o := mustOrder(t, TIFGTC, 1000000, 1.02, 0.01)

	if o.PriceMet(1010000) {
		t.Fatalf("rate 1.01 should not meet limit 1.02")
	}
	// 边界：恰好等于限价也算达标
	if !o.PriceMet(1020000) {
		t.Fatalf("rate exactly at limit should be met")
	}
	if !o.PriceMet(1050000) {
		t.Fatalf("rate 1.05 should meet limit 1.02")
	}
}

func TestPriceMetZeroInput(t *testing.T) {
	o := &Order{InputAmount: 0, LimitPrice: 1.0}
	if o.PriceMet(100) {
		t.Fatalf("zero input must never meet price")
	}
}

func TestPriceMetForAmount(t *testing.T) {
	o := mustOrder(t, TIFIOC, 1000000, 1.02, 0.01)

	if !o.PriceMetForAmount(1020000, 1000000) {
		t.Fatalf("full amount at limit rate should be met")
	}
	if !o.PriceMetForAmount(510000, 500000) {
		t.Fatalf("half amount at limit rate should be met")
	}
	if o.PriceMetForAmount(1000000, 1000000) {
		t.Fatalf("rate 1.0 below limit 1.02 should not be met")
	}
	if o.PriceMetForAmount(1020000, 0) {
		t.Fatalf("zero check amount should not be met")
	}
}

func TestMaxFillableAmount(t *testing.T) {
	o := mustOrder(t, TIFIOC, 1000000, 1.02, 0.01)

	if got := o.MaxFillableAmount(1020000); got != 1000000 {
		t.Fatalf("expected full remaining 1000000, got %d", got)
	}

	o.FilledAmount = 500000
	if got := o.MaxFillableAmount(1020000); got != 500000 {
		t.Fatalf("expected remaining 500000 after partial, got %d", got)
	}

	// 价格不达标时不可成交
	if got := o.MaxFillableAmount(1000000); got != 0 {
		t.Fatalf("expected 0 at bad price, got %d", got)
	}

	o.FilledAmount = o.InputAmount
	if got := o.MaxFillableAmount(1020000); got != 0 {
		t.Fatalf("expected 0 when fully filled, got %d", got)
	}
}

func TestMinOutputWithSlippage(t *testing.T) {
	o := mustOrder(t, TIFGTC, 1000000, 1.0, 0.02)

	want := uint64(float64(1000000) * 0.98)
	if got := o.MinOutputWithSlippage(1000000); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}

	// 零滑点时原样返回
	o.Slippage = 0
	if got := o.MinOutputWithSlippage(1234567); got != 1234567 {
		t.Fatalf("zero slippage should return quote unchanged, got %d", got)
	}
}

func TestMinOutputAtConstruction(t *testing.T) {
	o := mustOrder(t, TIFGTC, 1000000, 1.05, 0.01)
	if o.MinOutputAmount != uint64(float64(1000000)*1.05) {
		t.Fatalf("min output = %d, want floor(1000000*1.05)", o.MinOutputAmount)
	}
}

func TestFillPercentageIdempotent(t *testing.T) {
	o := mustOrder(t, TIFIOC, 1000000, 1.0, 0.01)

	if o.FillPercentage() != 0 {
		t.Fatalf("expected 0%% fill")
	}
	o.FilledAmount = 500000
	if o.FillPercentage() != 50 {
		t.Fatalf("expected 50%% fill, got %f", o.FillPercentage())
	}
	// 无状态变化时重复调用结果一致
	if o.FillPercentage() != o.FillPercentage() {
		t.Fatalf("fill percentage must be stable")
	}
	o.FilledAmount = 1000000
	if o.FillPercentage() != 100 {
		t.Fatalf("expected 100%% fill, got %f", o.FillPercentage())
	}
}

func TestDecide(t *testing.T) {
	o := mustOrder(t, TIFIOC, 1000000, 1.02, 0.01)

	if d := o.Decide(1000000); d.Kind != NoFill {
		t.Fatalf("below limit should be NoFill, got %s", d.Kind)
	}
	if d := o.Decide(1020000); d.Kind != FullFill || d.FillAmount != 1000000 {
		t.Fatalf("at limit should be FullFill of 1000000, got %s/%d", d.Kind, d.FillAmount)
	}

	o.FilledAmount = 400000
	if d := o.Decide(1020000); d.Kind != PartialFill || d.FillAmount != 600000 {
		t.Fatalf("expected PartialFill of remaining 600000, got %s/%d", d.Kind, d.FillAmount)
	}

	bad := &Order{InputAmount: 0}
	if d := bad.Decide(100); d.Kind != Reject {
		t.Fatalf("zero input should Reject, got %s", d.Kind)
	}
}
