package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestUsage_KeepsMessageAndMatches(t *testing.T) {
	err := Usage("arm: --mode must be partial or total, got %q", "loud")
	if got, want := err.Error(), `arm: --mode must be partial or total, got "loud"`; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !IsUsage(err) {
		t.Fatalf("IsUsage(%v) = false", err)
	}
	if !IsUsage(fmt.Errorf("wrapped: %w", err)) {
		t.Fatalf("IsUsage should see through wrapping")
	}
	if IsUsage(errors.New("portal down")) {
		t.Fatalf("plain error reported as usage error")
	}
}
