package id_test

import (
	"testing"

	"github.com/voxelforge/tick/id"
)

func TestNewHasPrefix(t *testing.T) {
	j := id.NewJobID()
	if j.Prefix() != id.PrefixJob {
		t.Fatalf("prefix = %q, want %q", j.Prefix(), id.PrefixJob)
	}
	if j.IsNil() {
		t.Fatal("new ID reported nil")
	}
}

func TestParseRoundTrip(t *testing.T) {
	c := id.NewCronID()
	parsed, err := id.Parse(c.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.String() != c.String() {
		t.Fatalf("round trip mismatch: %q != %q", parsed.String(), c.String())
	}
}

func TestParseWithPrefixRejectsMismatch(t *testing.T) {
	j := id.NewJobID()
	if _, err := id.ParseWithPrefix(j.String(), id.PrefixCron); err == nil {
		t.Fatal("expected prefix mismatch error")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Fatal("expected error for empty string")
	}
}

func TestNilString(t *testing.T) {
	if id.Nil.String() != "" {
		t.Fatalf("Nil.String() = %q, want empty", id.Nil.String())
	}
	if !id.Nil.IsNil() {
		t.Fatal("Nil.IsNil() = false")
	}
}

func TestTextMarshalling(t *testing.T) {
	s := id.NewStepID()
	data, err := s.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var back id.ID
	if err := back.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back.String() != s.String() {
		t.Fatalf("round trip mismatch: %q != %q", back.String(), s.String())
	}
}
