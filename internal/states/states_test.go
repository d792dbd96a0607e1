package states

import (
	"testing"

	"github.com/poltracker/poltracker/internal/congress"
)

func members(parties ...string) []congress.Member {
	out := make([]congress.Member, len(parties))
	for i, p := range parties {
		out[i] = congress.Member{Party: p}
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		parties []string
		want    Color
	}{
		{"two democrats", []string{"Democratic", "Democratic"}, ColorBlue},
		{"split delegation", []string{"Democratic", "Republican"}, ColorPurple},
		{"no senators", nil, ColorGray},
		{"republican majority", []string{"Republican", "Republican", "Republican", "Democratic"}, ColorRed},
		{"independents only", []string{"Independent", "Independent"}, ColorGray},
		{"independent ignored in count", []string{"Democratic", "Independent"}, ColorBlue},
		{"single letter codes", []string{"D", "R"}, ColorPurple},
		{"lowercase variants", []string{"democrat", "democrat"}, ColorBlue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(members(tt.parties...)); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.parties, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	if name, ok := Name("ca"); !ok || name != "California" {
		t.Errorf("Name(ca) = %q, %v", name, ok)
	}
	if name, ok := Name("DC"); !ok || name != "District of Columbia" {
		t.Errorf("Name(DC) = %q, %v", name, ok)
	}
	if _, ok := Name("XX"); ok {
		t.Error("Name(XX) should not resolve")
	}
}

func TestCodes(t *testing.T) {
	codes := Codes()
	if len(codes) != 51 {
		t.Errorf("len(Codes()) = %d, want 51", len(codes))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted at %d: %s >= %s", i, codes[i-1], codes[i])
		}
	}
}
