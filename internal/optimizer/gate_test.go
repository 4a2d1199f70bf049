package optimizer

import (
	"strings"
	"testing"
	"time"
)

func TestEvaluateGate_DuplicateWithinLockout(t *testing.T) {
	now := time.Now()
	out := evaluateGate(21.0, 21.0, 0.3, now.Add(-2*time.Minute), now, DefaultLockout)
	if out.Apply {
		t.Fatal("expected duplicate target blocked")
	}
	if !strings.Contains(out.Reason, "Duplicate target") {
		t.Errorf("reason = %q, want duplicate explanation", out.Reason)
	}
}

func TestEvaluateGate_BelowDeadband(t *testing.T) {
	now := time.Now()
	out := evaluateGate(21.2, 21.0, 0.3, now.Add(-30*time.Minute), now, DefaultLockout)
	if out.Apply {
		t.Fatal("expected sub-deadband change blocked")
	}
	if !strings.Contains(out.Reason, "below deadband") {
		t.Errorf("reason = %q, want deadband explanation", out.Reason)
	}
}

func TestEvaluateGate_SameTargetOutsideLockoutIsDeadband(t *testing.T) {
	now := time.Now()
	out := evaluateGate(21.0, 21.0, 0.3, now.Add(-time.Hour), now, DefaultLockout)
	if out.Apply {
		t.Fatal("expected zero-diff change blocked")
	}
	if !strings.Contains(out.Reason, "below deadband") {
		t.Errorf("reason = %q, want deadband explanation once lockout passed", out.Reason)
	}
}

func TestEvaluateGate_LockoutBlocksRealChange(t *testing.T) {
	now := time.Now()
	out := evaluateGate(22.0, 21.0, 0.3, now.Add(-3*time.Minute), now, DefaultLockout)
	if out.Apply {
		t.Fatal("expected change inside lockout blocked")
	}
	if !strings.Contains(out.Reason, "lockout") {
		t.Errorf("reason = %q, want lockout explanation", out.Reason)
	}
}

func TestEvaluateGate_Applies(t *testing.T) {
	now := time.Now()
	out := evaluateGate(22.0, 21.0, 0.3, now.Add(-30*time.Minute), now, DefaultLockout)
	if !out.Apply {
		t.Fatalf("expected change applied, blocked with %q", out.Reason)
	}
	// First ever change: no lastChange recorded.
	out = evaluateGate(22.0, 21.0, 0.3, time.Time{}, now, DefaultLockout)
	if !out.Apply {
		t.Fatalf("expected first change applied, blocked with %q", out.Reason)
	}
}

func TestRoundStep_TiesFollowAdjustmentSign(t *testing.T) {
	if got := RoundStep(21.25, 0.5, 1); got != 21.5 {
		t.Errorf("upward tie = %.2f, want 21.50", got)
	}
	if got := RoundStep(21.25, 0.5, -1); got != 21.0 {
		t.Errorf("downward tie = %.2f, want 21.00", got)
	}
}

func TestRoundStep_OnGridValueUnchanged(t *testing.T) {
	for _, v := range []float64{20.0, 20.5, 21.0, 48.0} {
		if got := RoundStep(v, 0.5, 1); got != v {
			t.Errorf("RoundStep(%.1f) = %.2f, want unchanged", v, got)
		}
	}
}

func TestRoundStep_Idempotent(t *testing.T) {
	once := RoundStep(21.37, 0.5, -1)
	twice := RoundStep(once, 0.5, -1)
	if once != twice {
		t.Errorf("rounding not idempotent: %.2f then %.2f", once, twice)
	}
}

func TestRoundStep_ZeroStepPassesThrough(t *testing.T) {
	if got := RoundStep(21.37, 0, 1); got != 21.37 {
		t.Errorf("zero step = %.2f, want pass-through", got)
	}
}
