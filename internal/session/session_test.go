package session

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	state := New()
	if state.Authenticated {
		t.Fatal("expected logged-out default")
	}
	if state.Student != nil {
		t.Fatal("expected nil student")
	}
	if state.Role != RoleOther {
		t.Fatalf("expected default role %q, got %q", RoleOther, state.Role)
	}
	if len(state.Committees) != 0 {
		t.Fatalf("expected no committees, got %d", len(state.Committees))
	}
	if state.Err != nil || state.Loading || state.Stale {
		t.Fatal("expected clean flags")
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{input: "ADMIN", want: RoleAdmin},
		{input: "admin", want: RoleAdmin},
		{input: " committee_member ", want: RoleCommitteeMember},
		{input: "OTHER", want: RoleOther},
		{input: "", want: RoleOther},
		{input: "SOMETHING_NEW", want: RoleOther},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.input); got != tt.want {
			t.Fatalf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDedupeCommitteesKeepsFirstOccurrence(t *testing.T) {
	committees := []Committee{
		{CommitteeID: "c-1", Name: "Events"},
		{CommitteeID: "c-2", Name: "Finance"},
		{CommitteeID: "c-1", Name: "Events (duplicate)"},
	}

	deduped := DedupeCommittees(committees)
	if len(deduped) != 2 {
		t.Fatalf("expected 2 committees, got %d", len(deduped))
	}
	if deduped[0].Name != "Events" {
		t.Fatalf("expected first occurrence kept, got %q", deduped[0].Name)
	}
	if deduped[1].CommitteeID != "c-2" {
		t.Fatalf("expected second committee c-2, got %q", deduped[1].CommitteeID)
	}
}

func TestDedupeCommitteesEmpty(t *testing.T) {
	if got := DedupeCommittees(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
}

func TestCommitteePositionActiveAt(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	held := CommitteePosition{StartDate: start}
	if !held.ActiveAt(start.Add(time.Hour)) {
		t.Fatal("open-ended position should be active after start")
	}
	if held.ActiveAt(start.Add(-time.Hour)) {
		t.Fatal("position should not be active before start")
	}

	ended := CommitteePosition{StartDate: start, EndDate: &end}
	if ended.ActiveAt(end) {
		t.Fatal("position should not be active at its end date")
	}
	if !ended.ActiveAt(end.Add(-time.Minute)) {
		t.Fatal("position should be active just before its end date")
	}
}
