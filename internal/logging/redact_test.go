package logging

import "testing"

func TestRedactArgs(t *testing.T) {
	args := []any{"email", "a@example.com", "Password", "hunter2", 7, "x"}
	out := RedactArgs(args)
	if out[3] != Redacted || out[1] != "a@example.com" || out[5] != "x" {
		t.Fatalf("unexpected redaction %v", out)
	}
	if args[3] != "hunter2" {
		t.Fatal("expected input to stay untouched")
	}

	clean := []any{"slug", "hello"}
	if got := RedactArgs(clean); &got[0] != &clean[0] {
		t.Fatal("expected args without secrets to be returned as-is")
	}
}

func TestRedactFields(t *testing.T) {
	out := RedactFields(map[string]any{"token": "abc", "user_id": 1})
	if out["token"] != Redacted || out["user_id"] != 1 {
		t.Fatalf("unexpected fields %v", out)
	}
}
