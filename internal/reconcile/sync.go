package reconcile

import "github.com/neurostuff/curate/internal/study"

// SyncChange records a stub whose NeurostoreID was set or replaced.
type SyncChange struct {
	StubID   string `json:"stub_id"`
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current"`
}

// SyncStubsWithStudyset applies a studyset payload to curation stubs.
// Unlocked stubs take the payload's version id. A locked stub keeps its id
// unless that id is missing from studysetIDs (the versions actually in the
// studyset), in which case it is replaced and reported. The input slice is
// not modified.
func SyncStubsWithStudyset(stubs []study.CurationStub, payload []study.StudysetEntry, studysetIDs map[string]bool) ([]study.CurationStub, []SyncChange) {
	byStub := make(map[string]string, len(payload))
	for _, entry := range payload {
		byStub[entry.CurationStubUUID] = entry.ID
	}

	out := make([]study.CurationStub, len(stubs))
	copy(out, stubs)

	var changes []SyncChange
	for i := range out {
		id, ok := byStub[out[i].ID]
		if !ok || id == "" || out[i].NeurostoreID == id {
			continue
		}
		prev := out[i].NeurostoreID
		if prev != "" && studysetIDs[prev] {
			continue
		}
		out[i].NeurostoreID = id
		changes = append(changes, SyncChange{StubID: out[i].ID, Previous: prev, Current: id})
	}
	return out, changes
}
