package main

import (
	"testing"

	"bridge/internal/api"
)

func TestParseMemberSpecs(t *testing.T) {
	specs, err := parseMemberSpecs([]string{"Ben:Product", " Asha : Design "})
	if err != nil {
		t.Fatalf("parseMemberSpecs: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[0].Name != "Ben" || specs[0].Role != "Product" {
		t.Fatalf("spec 0 = %+v", specs[0])
	}
	if specs[1].Name != "Asha" || specs[1].Role != "Design" {
		t.Fatalf("spec 1 = %+v", specs[1])
	}
}

func TestParseMemberSpecsRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"Ben", "Ben:", ":Product", "  :  "} {
		if _, err := parseMemberSpecs([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel("in-progress"); got != "In-Progress" {
		t.Fatalf("statusLabel = %q", got)
	}
	if got := statusLabel(""); got != "-" {
		t.Fatalf("statusLabel empty = %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID = %q", got)
	}
}

func TestActiveLabelsOutOfRange(t *testing.T) {
	p := api.Pod{Status: "completed", CurrentStageIndex: 2, Members: []api.Member{{}, {}}}
	if activeStageLabel(p) != "-" || activeMemberLabel(p) != "-" || activeDaysLabel(p) != "-" {
		t.Fatal("completed pod should render placeholder labels")
	}
}
