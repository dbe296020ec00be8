package utils

import (
	"testing"
	"time"
)

func TestFixedWindowScriptCompiles(t *testing.T) {
	// Compile-time smoke test: script should be initialized.
	if fixedWindowScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestNewFixedWindowLimiter_Validation(t *testing.T) {
	if _, err := NewFixedWindowLimiter(nil, "login", 10, time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
