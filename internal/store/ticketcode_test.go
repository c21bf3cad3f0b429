package store

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestGenerateTicketCodeFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.Local)
	code, err := GenerateTicketCode(context.Background(), now, func(context.Context, string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != 13 {
		t.Fatalf("expected 13 chars, got %q", code)
	}
	if !strings.HasPrefix(code, "20260314-") {
		t.Fatalf("expected date prefix, got %q", code)
	}
	for _, r := range code[9:] {
		if !strings.ContainsRune(codeSuffixAlphabet, r) {
			t.Fatalf("suffix char %q outside alphabet in %q", r, code)
		}
	}
}

// The date prefix follows the wall clock of the given time, so tickets
// created just before local midnight keep that day's prefix even when
// the UTC instant has already rolled over.
func TestGenerateTicketCodeUsesWallClockDate(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 3, 14, 22, 30, 0, 0, zone)
	code, err := GenerateTicketCode(context.Background(), now, func(context.Context, string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(code, "20260314-") {
		t.Fatalf("expected wall-clock date prefix, got %q", code)
	}
}

func TestGenerateTicketCodeRetriesOnCollision(t *testing.T) {
	now := time.Now()
	calls := 0
	code, err := GenerateTicketCode(context.Background(), now, func(_ context.Context, candidate string) (bool, error) {
		calls++
		return calls <= 3, nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 uniqueness checks, got %d", calls)
	}
	if code == "" {
		t.Fatal("expected a code after retries")
	}
}

func TestGenerateTicketCodeUniqueAgainstExistingSet(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		code, err := GenerateTicketCode(context.Background(), now, func(_ context.Context, candidate string) (bool, error) {
			return seen[candidate], nil
		})
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code issued: %s", code)
		}
		seen[code] = true
	}
	if len(seen) != 500 {
		t.Fatalf("expected 500 distinct codes, got %d", len(seen))
	}
}

func TestGenerateTicketCodePropagatesLookupError(t *testing.T) {
	now := time.Now()
	wantErr := context.DeadlineExceeded
	_, err := GenerateTicketCode(context.Background(), now, func(context.Context, string) (bool, error) {
		return false, wantErr
	})
	if err != wantErr {
		t.Fatalf("expected lookup error, got %v", err)
	}
}
