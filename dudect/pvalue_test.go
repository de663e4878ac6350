package dudect

import "testing"

func TestPValueFromT_Monotonic(t *testing.T) {
	prev := -1.0
	for tv := 0.0; tv <= 12.0; tv += 0.25 {
		p := pValueFromT(tv)
		if p < 0 || p > 1 {
			t.Fatalf("pValueFromT(%v) = %v out of [0,1]", tv, p)
		}
		if prev >= 0 && p > prev {
			t.Fatalf("pValueFromT not monotonically non-increasing at t=%v: prev=%v got=%v", tv, prev, p)
		}
		prev = p
	}
}

func TestPValueFromT_Endpoints(t *testing.T) {
	if p := pValueFromT(0); p != 1.0 {
		t.Fatalf("pValueFromT(0) = %v, want 1.0", p)
	}
	if p := pValueFromT(-5); p != 1.0 {
		t.Fatalf("pValueFromT(-5) = %v, want 1.0", p)
	}
	if p := pValueFromT(11); p != 0.0 {
		t.Fatalf("pValueFromT(11) = %v, want 0.0", p)
	}
}
