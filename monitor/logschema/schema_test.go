package logschema

import "testing"

func TestValidateKnownEvent(t *testing.T) {
	fields := map[string]interface{}{
		"order_id":     "X",
		"tif":          "GTC",
		"input_amount": uint64(1000000),
		"limit_price":  1.01,
	}
	if err := Validate("order_admitted", fields); err != nil {
		t.Fatalf("complete fields rejected: %v", err)
	}

	delete(fields, "limit_price")
	if err := Validate("order_admitted", fields); err == nil {
		t.Fatalf("expected missing field error")
	}
}

func TestValidateUnknownEventPasses(t *testing.T) {
	if err := Validate("some_other_event", nil); err != nil {
		t.Fatalf("unknown events are not validated: %v", err)
	}
}

func TestKnownSorted(t *testing.T) {
	names := Known()
	if len(names) == 0 {
		t.Fatalf("expected registered events")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
