package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindFromCode(t *testing.T) {
	tests := []struct {
		code Code
		want Kind
	}{
		{CodeAlreadyFishing, KindUser},
		{CodeGuildNameTaken, KindUser},
		{CodeNegativeQuantity, KindConsistency},
		{CodeOrphanedMembership, KindConsistency},
		{CodeStorageUnavailable, KindStorage},
	}
	for _, tt := range tests {
		if got := New(tt.code, "x").Kind; got != tt.want {
			t.Fatalf("%s: expected kind %s, got %s", tt.code, tt.want, got)
		}
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("buy rod: %w", New(CodeInsufficientFunds, "need 10"))
	if !stderrors.Is(err, New(CodeInsufficientFunds, "")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeUnknownItem, "")) {
		t.Fatal("expected different codes not to match")
	}
	if CodeOf(err) != CodeInsufficientFunds {
		t.Fatalf("expected code %s, got %s", CodeInsufficientFunds, CodeOf(err))
	}
}

func TestRetryable(t *testing.T) {
	cause := stderrors.New("disk I/O error")
	if !Retryable(Storage("put player", cause)) {
		t.Fatal("expected storage error to be retryable")
	}
	if !Retryable(cause) {
		t.Fatal("expected foreign error to be treated as storage")
	}
	if Retryable(New(CodeNoSession, "idle")) {
		t.Fatal("expected user error not to be retryable")
	}
	if Retryable(nil) || IsUser(nil) {
		t.Fatal("expected nil to be neither retryable nor user")
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("locked")
	err := Wrap(CodeStorageUnavailable, "begin tx", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if err.Error() != "begin tx: locked" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
