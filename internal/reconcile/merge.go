package reconcile

import (
	"github.com/neurostuff/curate/internal/study"
)

// ApplyDetailsAndDedupe fills empty bibliographic fields of each base study
// from a matching entry in details (matched by PMID first, then DOI), then
// drops records whose PMID or DOI repeats one already accumulated.
// Fields that are already populated are never overwritten.
func ApplyDetailsAndDedupe(stubs, details []study.BaseStudy) []study.BaseStudy {
	byPMID := make(map[string]study.BaseStudy)
	byDOI := make(map[string]study.BaseStudy)
	for _, d := range details {
		if d.PMID != "" {
			if _, ok := byPMID[d.PMID]; !ok {
				byPMID[d.PMID] = d
			}
		}
		if doi := study.NormalizeDOI(d.DOI); doi != "" {
			if _, ok := byDOI[doi]; !ok {
				byDOI[doi] = d
			}
		}
	}

	result := make([]study.BaseStudy, 0, len(stubs))
	seen := NewSeenIDs()
	for _, stub := range stubs {
		merged := stub
		if d, ok := lookupDetails(stub, byPMID, byDOI); ok {
			merged = FillEmptyFields(stub, d)
		}

		if seen.Has(merged.PMID, merged.DOI) {
			continue
		}
		seen.add(merged.PMID, merged.DOI)
		result = append(result, merged)
	}
	return result
}

func lookupDetails(stub study.BaseStudy, byPMID, byDOI map[string]study.BaseStudy) (study.BaseStudy, bool) {
	if stub.PMID != "" {
		if d, ok := byPMID[stub.PMID]; ok {
			return d, true
		}
	}
	if doi := study.NormalizeDOI(stub.DOI); doi != "" {
		if d, ok := byDOI[doi]; ok {
			return d, true
		}
	}
	return study.BaseStudy{}, false
}

// FillEmptyFields copies bibliographic fields from src into the empty fields
// of dst. Versions and identity fields other than DOI/PMID/PMCID are kept.
func FillEmptyFields(dst, src study.BaseStudy) study.BaseStudy {
	out := dst
	out.Name = nonEmpty(dst.Name, src.Name)
	out.Authors = nonEmpty(dst.Authors, src.Authors)
	out.Description = nonEmpty(dst.Description, src.Description)
	out.DOI = nonEmpty(dst.DOI, src.DOI)
	out.PMCID = nonEmpty(dst.PMCID, src.PMCID)
	out.PMID = nonEmpty(dst.PMID, src.PMID)
	out.Publication = nonEmpty(dst.Publication, src.Publication)
	if out.Year == 0 {
		out.Year = src.Year
	}
	return out
}

// nonEmpty returns the first non-empty string.
func nonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
