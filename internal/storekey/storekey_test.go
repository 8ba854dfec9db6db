package storekey

import (
	"errors"
	"strings"
	"testing"
)

func TestKeyConstructors(t *testing.T) {
	k, err := Session("2f4c1a9e-jti")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if k != "gl:session:2f4c1a9e-jti" {
		t.Errorf("Session = %q", k)
	}

	k, err = AccountIndex("acct-1")
	if err != nil {
		t.Fatalf("AccountIndex: %v", err)
	}
	if k != "gl:session:acct:acct-1" {
		t.Errorf("AccountIndex = %q", k)
	}

	k, err = Revocation("jti-1")
	if err != nil {
		t.Fatalf("Revocation: %v", err)
	}
	if k != "gl:revoked:jti-1" {
		t.Errorf("Revocation = %q", k)
	}

	if got := AccountIndexPattern(); got != "gl:session:acct:*" {
		t.Errorf("AccountIndexPattern = %q", got)
	}
}

func TestValidation(t *testing.T) {
	bad := []string{
		"",
		"has space",
		"has:colon",
		"wild*card",
		"new\nline",
		strings.Repeat("a", 129),
	}
	for _, component := range bad {
		if _, err := Session(component); !errors.Is(err, ErrInvalidComponent) {
			t.Errorf("Session(%q): want ErrInvalidComponent, got %v", component, err)
		}
		if _, err := AccountIndex(component); !errors.Is(err, ErrInvalidComponent) {
			t.Errorf("AccountIndex(%q): want ErrInvalidComponent, got %v", component, err)
		}
		if _, err := Revocation(component); !errors.Is(err, ErrInvalidComponent) {
			t.Errorf("Revocation(%q): want ErrInvalidComponent, got %v", component, err)
		}
	}

	// The full allowed character set, at the length limit.
	ok := strings.Repeat("aZ9-_.", 21) // 126 chars
	if _, err := Session(ok); err != nil {
		t.Errorf("Session(%q): %v", ok, err)
	}
}
