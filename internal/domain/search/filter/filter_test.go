package filter

import (
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

// --- Range tests ---

func TestNewRangeFilter_Valid(t *testing.T) {
	tests := []struct {
		name             string
		gt, gte, lt, lte *float64
	}{
		{"gt only", floatPtr(1), nil, nil, nil},
		{"gte only", nil, floatPtr(0), nil, nil},
		{"lt only", nil, nil, floatPtr(10), nil},
		{"lte only", nil, nil, nil, floatPtr(100)},
		{"gte+lt", nil, floatPtr(0), floatPtr(10), nil},
		{"gt+lte", floatPtr(0), nil, nil, floatPtr(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRangeFilter(tt.gt, tt.gte, tt.lt, tt.lte)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (r.GT() == nil) != (tt.gt == nil) {
				t.Error("GT() mismatch")
			}
			if (r.GTE() == nil) != (tt.gte == nil) {
				t.Error("GTE() mismatch")
			}
			if (r.LT() == nil) != (tt.lt == nil) {
				t.Error("LT() mismatch")
			}
			if (r.LTE() == nil) != (tt.lte == nil) {
				t.Error("LTE() mismatch")
			}
		})
	}
}

func TestNewRangeFilter_Invalid(t *testing.T) {
	tests := []struct {
		name             string
		gt, gte, lt, lte *float64
		wantErr          string
	}{
		{"no boundary", nil, nil, nil, nil, "at least one"},
		{"gt and gte", floatPtr(1), floatPtr(1), nil, nil, "gt and gte"},
		{"lt and lte", nil, nil, floatPtr(1), floatPtr(1), "lt and lte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRangeFilter(tt.gt, tt.gte, tt.lt, tt.lte)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRange_Contains(t *testing.T) {
	r, err := NewRangeFilter(nil, floatPtr(20), floatPtr(21), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := map[float64]bool{19.99: false, 20: true, 20.5: true, 21: false}
	for v, want := range cases {
		if got := r.Contains(v); got != want {
			t.Errorf("Contains(%v) = %v, want %v", v, got, want)
		}
	}
}

// --- Condition tests ---

func TestNewValues(t *testing.T) {
	vals := []int64{3, 1}
	c, err := NewValues("s", vals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vals[0] = 99
	if c.Values()[0] != 3 {
		t.Error("NewValues must copy its input")
	}
	if !c.IsValues() || c.IsRange() {
		t.Error("expected a membership condition")
	}
	if _, err := NewValues("", nil); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestNewRange(t *testing.T) {
	r, _ := NewRangeFilter(nil, nil, floatPtr(20), nil)
	c, err := NewRange("z", r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsRange() || c.IsValues() {
		t.Error("expected a range condition")
	}
	if _, err := NewRange("", r); err == nil {
		t.Error("expected error for empty key")
	}
}

// --- Expression tests ---

func TestNewExpression_TooMany(t *testing.T) {
	conds := make([]Condition, MaxConditionsPerGroup+1)
	if _, err := NewExpression(conds, nil); err == nil {
		t.Error("expected error for too many must conditions")
	}
	if _, err := NewExpression(nil, conds); err == nil {
		t.Error("expected error for too many must_not conditions")
	}
}

func TestExpression_AndFind(t *testing.T) {
	bl, _ := NewValues("bl", []int64{0})
	s, _ := NewValues("s", []int64{1, 2})

	base := Expression{}
	if !base.IsEmpty() {
		t.Fatal("zero expression must be empty")
	}

	e := base.And(bl).AndNot(s)
	if !base.IsEmpty() {
		t.Error("And must not mutate the receiver")
	}
	if len(e.Must()) != 1 || len(e.MustNot()) != 1 {
		t.Fatalf("got must=%d mustNot=%d", len(e.Must()), len(e.MustNot()))
	}

	c, negated, ok := e.Find("s")
	if !ok || !negated || len(c.Values()) != 2 {
		t.Errorf("Find(s) = %+v negated=%v ok=%v", c, negated, ok)
	}
	if _, _, ok := e.Find("z"); ok {
		t.Error("Find(z) must report no condition")
	}
}
