package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
)

var userIDPattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{6}$`)

func TestGenerateUserID_Format(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
	}{
		{"Ramesh Kumar", "RAM"},
		{"al", "ALX"},
		{"", "XXX"},
		{"  b  ", "BXX"},
		{"José", "JOS"},
	}

	for _, tc := range cases {
		id := GenerateUserID(tc.name)
		if !userIDPattern.MatchString(id) {
			t.Fatalf("GenerateUserID(%q) = %q, want 3 letters + 6 digits", tc.name, id)
		}
		if id[:3] != tc.prefix {
			t.Fatalf("GenerateUserID(%q) prefix = %q, want %q", tc.name, id[:3], tc.prefix)
		}
	}
}

func TestUniqueUserID_RetriesOnCollision(t *testing.T) {
	ctx := context.Background()

	calls := 0
	exists := func(_ context.Context, _ string) (bool, error) {
		calls++
		return calls <= 3, nil
	}

	id, err := UniqueUserID(ctx, "Ramesh", exists)
	if err != nil {
		t.Fatalf("UniqueUserID: %v", err)
	}
	if calls != 4 {
		t.Fatalf("exists called %d times, want 4", calls)
	}
	if !userIDPattern.MatchString(id) {
		t.Fatalf("UniqueUserID = %q, want 3 letters + 6 digits", id)
	}
}

func TestUniqueUserID_Exhausted(t *testing.T) {
	ctx := context.Background()

	exists := func(_ context.Context, _ string) (bool, error) {
		return true, nil
	}

	if _, err := UniqueUserID(ctx, "Ramesh", exists); !errors.Is(err, ErrUserIDExhausted) {
		t.Fatalf("UniqueUserID error = %v, want ErrUserIDExhausted", err)
	}
}

func TestUniqueUserID_PropagatesLookupError(t *testing.T) {
	ctx := context.Background()
	lookupErr := errors.New("db down")

	exists := func(_ context.Context, _ string) (bool, error) {
		return false, lookupErr
	}

	if _, err := UniqueUserID(ctx, "Ramesh", exists); !errors.Is(err, lookupErr) {
		t.Fatalf("UniqueUserID error = %v, want wrapped lookup error", err)
	}
}

func TestNormalizeUserID(t *testing.T) {
	if got := NormalizeUserID("  ram123456 "); got != "RAM123456" {
		t.Fatalf("NormalizeUserID = %q, want RAM123456", got)
	}
}
