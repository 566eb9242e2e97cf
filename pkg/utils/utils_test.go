package utils

import "testing"

func TestCoalesceString(t *testing.T) {
	if got := CoalesceString("", "a", "b"); got != "a" {
		t.Errorf("CoalesceString = %q, want a", got)
	}
	if got := CoalesceString("", ""); got != "" {
		t.Errorf("CoalesceString = %q, want empty", got)
	}
}

func TestDefaultInt(t *testing.T) {
	if got := DefaultInt(0, 3); got != 3 {
		t.Errorf("DefaultInt(0, 3) = %d", got)
	}
	if got := DefaultInt(5, 3); got != 5 {
		t.Errorf("DefaultInt(5, 3) = %d", got)
	}
}

func TestClampInt(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{1, 3, 5, 3},
		{4, 3, 5, 4},
		{9, 3, 5, 5},
	}
	for _, c := range cases {
		if got := ClampInt(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("ClampInt(%d, %d, %d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny("Quiz Me on binary search", []string{"quiz", "test"}) {
		t.Error("expected match for quiz")
	}
	if ContainsAny("explain recursion", []string{"quiz", "test"}) {
		t.Error("unexpected match")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("hello world", 8); got != "hello..." {
		t.Errorf("Truncate = %q", got)
	}
}
