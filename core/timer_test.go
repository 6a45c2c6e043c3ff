package core

import (
	"testing"
	"time"
)

func TestTimeOrderingAcrossWrap(t *testing.T) {
	testCases := []struct {
		a, b   Time
		before bool
	}{
		{0, 1, true},
		{1, 0, false},
		{5, 5, false},
		{0xFFFFFFF0, 0x10, true},
		{0x10, 0xFFFFFFF0, false},
	}

	for _, tc := range testCases {
		if got := tc.a.Before(tc.b); got != tc.before {
			t.Errorf("%d.Before(%d) = %v, expected %v", tc.a, tc.b, got, tc.before)
		}
	}
}

func TestTimeArithmetic(t *testing.T) {
	start := Time(0xFFFFFF00)
	end := start.Add(0x200)
	if end != 0x100 {
		t.Errorf("Add across wrap: got %#x", uint32(end))
	}
	if d := end.Sub(start); d != 0x200 {
		t.Errorf("Sub across wrap: got %d", d)
	}
	if !end.Reached(end) || !end.Reached(start) || start.Reached(end) {
		t.Errorf("Reached gave the wrong answer around the wrap")
	}
	if u := start.Until(end); u != 0x200*time.Millisecond {
		t.Errorf("Until: got %v", u)
	}
	if u := end.Until(start); u != 0 {
		t.Errorf("Until of a past deadline should be 0, got %v", u)
	}
}

func TestSystemAndManualClock(t *testing.T) {
	SetTime(1234)
	if now := (SystemClock{}).Now(); now != 1234 {
		t.Errorf("SystemClock: expected 1234, got %d", now)
	}

	c := NewManualClock(10)
	c.Advance(5)
	if c.Now() != 15 {
		t.Errorf("ManualClock: expected 15, got %d", c.Now())
	}
	c.Set(3)
	if c.Now() != 3 {
		t.Errorf("ManualClock: expected 3, got %d", c.Now())
	}

	if ms := TimerFromMS(1500 * time.Microsecond); ms != 1 {
		t.Errorf("TimerFromMS rounds down: got %d", ms)
	}
}
