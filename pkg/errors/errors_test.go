package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	if Wrap(nil, "msg") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	err := Wrap(ErrProvider, "call groq")
	if !errors.Is(err, ErrProvider) {
		t.Errorf("wrapped error lost sentinel: %v", err)
	}
	if err.Error() != "call groq: provider error" {
		t.Errorf("message: %q", err.Error())
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrRetrieval, "index %q", "default")
	if !errors.Is(err, ErrRetrieval) {
		t.Errorf("wrapped error lost sentinel: %v", err)
	}
}

func TestIsRecoverable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{ErrProvider, true},
		{ErrRateLimit, true},
		{ErrRetrieval, true},
		{ErrConfiguration, false},
		{ErrPlanning, false},
		{Wrap(ErrRateLimit, "429"), true},
		{errors.New("other"), false},
	}
	for _, c := range cases {
		if got := IsRecoverable(c.err); got != c.want {
			t.Errorf("IsRecoverable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
