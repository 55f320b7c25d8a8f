package reconcile

import (
	"testing"

	"github.com/neurostuff/curate/internal/study"
)

func TestSyncStubsWithStudyset(t *testing.T) {
	stubs := []study.CurationStub{
		{ID: "new"},
		{ID: "locked", NeurostoreID: "keep-me"},
		{ID: "stale", NeurostoreID: "gone"},
		{ID: "untouched"},
	}
	payload := []study.StudysetEntry{
		{ID: "v-new", CurationStubUUID: "new"},
		{ID: "v-other", CurationStubUUID: "locked"},
		{ID: "v-fresh", CurationStubUUID: "stale"},
	}
	inStudyset := map[string]bool{"v-new": true, "keep-me": true, "v-fresh": true}

	out, changes := SyncStubsWithStudyset(stubs, payload, inStudyset)

	if out[0].NeurostoreID != "v-new" {
		t.Errorf("new stub = %q, want v-new", out[0].NeurostoreID)
	}
	if out[1].NeurostoreID != "keep-me" {
		t.Errorf("locked stub = %q, want keep-me", out[1].NeurostoreID)
	}
	if out[2].NeurostoreID != "v-fresh" {
		t.Errorf("stale stub = %q, want v-fresh", out[2].NeurostoreID)
	}
	if out[3].NeurostoreID != "" {
		t.Errorf("untouched stub = %q, want empty", out[3].NeurostoreID)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[1].Previous != "gone" {
		t.Errorf("expected replaced lock to be reported, got %+v", changes[1])
	}
	if stubs[0].NeurostoreID != "" {
		t.Error("input stubs were modified")
	}
}
