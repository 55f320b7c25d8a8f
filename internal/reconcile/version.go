package reconcile

import (
	"sort"

	"github.com/neurostuff/curate/internal/study"
)

// SelectBestVersion returns the most recently updated version of a base
// study. Versions are ordered ascending by LastUpdated and the last one
// wins, so ties go to the later entry. ok is false when there are no
// versions.
func SelectBestVersion(bs study.BaseStudy) (study.StudyVersion, bool) {
	if len(bs.Versions) == 0 {
		return study.StudyVersion{}, false
	}
	versions := make([]study.StudyVersion, len(bs.Versions))
	copy(versions, bs.Versions)
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].LastUpdated().Before(versions[j].LastUpdated())
	})
	return versions[len(versions)-1], true
}

// selectVersionID picks a version for a base study, preferring one already
// in the studyset over the most recent.
func selectVersionID(bs study.BaseStudy, existing map[string]bool) (string, bool) {
	for _, v := range bs.Versions {
		if v.ID != "" && existing[v.ID] {
			return v.ID, true
		}
	}
	best, ok := SelectBestVersion(bs)
	if !ok || best.ID == "" {
		return "", false
	}
	return best.ID, true
}

// SelectBestVersionsForStudyset returns one version id per base study, in
// order. A version already in the studyset (existing) is kept; otherwise the
// most recent is chosen. Base studies without versions are skipped.
func SelectBestVersionsForStudyset(baseStudies []study.BaseStudy, existing map[string]bool) []string {
	ids := make([]string, 0, len(baseStudies))
	for _, bs := range baseStudies {
		if id, ok := selectVersionID(bs, existing); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// PayloadOptions controls version choice in MapStubsToStudysetPayload.
type PayloadOptions struct {
	// Locked maps stub id to a previously chosen version id. It always wins,
	// even when the ingested base study no longer lists that version.
	Locked map[string]string
	// Preferred maps stub id to an explicitly requested version id.
	Preferred map[string]string
	// Existing is the set of version ids already in the studyset.
	Existing map[string]bool
}

// MapStubsToStudysetPayload pairs each stub with a version of its ingested
// base study. Correspondence comes from MatchStubsToBaseStudies. Version
// priority: locked, preferred, already in the studyset, most recent. Stubs
// without a base study or without any selectable version are skipped.
func MapStubsToStudysetPayload(stubs []study.CurationStub, baseStudies []study.BaseStudy, opts PayloadOptions) []study.StudysetEntry {
	matches := MatchStubsToBaseStudies(stubs, baseStudies)

	payload := make([]study.StudysetEntry, 0, len(stubs))
	for _, stub := range stubs {
		m, ok := matches[stub.ID]
		if !ok {
			continue
		}
		bs := baseStudies[m.Index]

		id := ""
		switch {
		case opts.Locked[stub.ID] != "":
			id = opts.Locked[stub.ID]
		case opts.Preferred[stub.ID] != "":
			id = opts.Preferred[stub.ID]
		default:
			id, ok = selectVersionID(bs, opts.Existing)
			if !ok {
				continue
			}
		}

		payload = append(payload, study.StudysetEntry{ID: id, CurationStubUUID: stub.ID})
	}
	return payload
}

// LockedMap returns the stub id to version id map for stubs that already
// have a NeurostoreID.
func LockedMap(stubs []study.CurationStub) map[string]string {
	locked := make(map[string]string)
	for _, s := range stubs {
		if s.NeurostoreID != "" {
			locked[s.ID] = s.NeurostoreID
		}
	}
	return locked
}
