package policy

import (
	"context"
	"testing"
)

func TestDefaultPolicyOwnership(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, _, err := engine.Evaluate(ctx, map[string]interface{}{
		"action":        "read_session",
		"user_id":       "u1",
		"owner_id":      "u1",
		"session_state": "awaiting_candidate",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "allow" {
		t.Fatalf("expected allow for the owner, got %q", decision)
	}

	decision, _, err = engine.Evaluate(ctx, map[string]interface{}{
		"action":        "read_session",
		"user_id":       "u2",
		"owner_id":      "u1",
		"session_state": "awaiting_candidate",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "block" {
		t.Fatalf("expected block for a non-owner, got %q", decision)
	}
}

func TestDefaultPolicyConcludedSessions(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	decision, _, err := engine.Evaluate(ctx, map[string]interface{}{
		"action":        "append_turn",
		"user_id":       "u1",
		"owner_id":      "u1",
		"session_state": "concluded",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "block" {
		t.Fatalf("expected block for appends to a concluded session, got %q", decision)
	}

	// Reading a concluded session stays allowed.
	decision, _, err = engine.Evaluate(ctx, map[string]interface{}{
		"action":        "read_session",
		"user_id":       "u1",
		"owner_id":      "u1",
		"session_state": "concluded",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != "allow" {
		t.Fatalf("expected allow for reads of a concluded session, got %q", decision)
	}
}
