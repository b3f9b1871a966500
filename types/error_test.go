package types

import (
	"errors"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrScrapeFailed, "live element scrape failed").
		WithCause(root).
		WithRetryable(true)

	if !IsCode(err, ErrScrapeFailed) {
		t.Fatalf("expected code %s", ErrScrapeFailed)
	}
	if IsCode(err, ErrNoPageHandle) {
		t.Fatalf("unexpected code match")
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestError_WithoutCause(t *testing.T) {
	t.Parallel()

	err := NewError(ErrNoPageHandle, "no page handle attached")
	if errors.Unwrap(err) != nil {
		t.Fatalf("expected no cause")
	}
	if IsRetryable(err) {
		t.Fatalf("expected non-retryable by default")
	}
	if IsCode(errors.New("plain"), ErrNoPageHandle) {
		t.Fatalf("plain error must not match any code")
	}
}
