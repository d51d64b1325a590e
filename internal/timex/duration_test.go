package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnmarshal_String(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"30m"`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Duration != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", d.Duration)
	}
}

func TestUnmarshal_Nanoseconds(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`1000000000`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Duration != time.Second {
		t.Fatalf("expected 1s, got %v", d.Duration)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Fatal("expected error for malformed duration string")
	}
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Fatal("expected error for non-duration JSON value")
	}
}
