package policy

import (
	"errors"
	"testing"
)

func TestAllowed(t *testing.T) {
	p, err := NewGroupPolicy([]string{"alt.*", "!alt.binaries.*", "misc.test"})
	if err != nil {
		t.Fatalf("NewGroupPolicy: %v", err)
	}

	tests := []struct {
		group string
		want  bool
	}{
		{"alt.test", true},
		{"alt.sources.d", true},
		{"alt.binaries.pictures", false},
		{"misc.test", true},
		{"misc.test.moderated", false},
		{"comp.lang.go", false},
	}
	for _, tc := range tests {
		if got := p.Allowed(tc.group); got != tc.want {
			t.Fatalf("Allowed(%q) = %v, want %v", tc.group, got, tc.want)
		}
	}
}

func TestEmptyPolicyAllowsAll(t *testing.T) {
	p, err := NewGroupPolicy(nil)
	if err != nil {
		t.Fatalf("NewGroupPolicy: %v", err)
	}
	if err := p.Check([]string{"any.group", "other"}); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCheck(t *testing.T) {
	p, _ := NewGroupPolicy([]string{"alt.test"})
	err := p.Check([]string{"alt.test", "comp.lang.go"})
	if !errors.Is(err, ErrGroupNotAllowed) {
		t.Fatalf("Check err = %v, want ErrGroupNotAllowed", err)
	}
}

func TestBadPattern(t *testing.T) {
	if _, err := NewGroupPolicy([]string{"alt.[test"}); err == nil {
		t.Fatalf("expected compile error")
	}
}
