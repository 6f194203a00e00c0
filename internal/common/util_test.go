package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestNewToken_Distinct(t *testing.T) {
	a, err := NewToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 2*TokenBytes {
		t.Fatalf("expected token length %d, got %d", 2*TokenBytes, len(a))
	}
	if a == b {
		t.Logf("warning: two tokens are identical; extremely unlikely")
	}
}

func TestIsCallerError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("put: %w", ErrorValidation), true},
		{ErrDuplicateBidder, true},
		{fmt.Errorf("rename: %w", ErrNameConflict), true},
		{ErrorNotFound, true},
		{ErrPreconditionFailed, true},
		{fmt.Errorf("%w: db down", ErrorStorage), false},
		{ErrNotification, false},
		{errors.New("other"), false},
	}
	for _, tt := range tests {
		if got := IsCallerError(tt.err); got != tt.want {
			t.Errorf("IsCallerError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
