package rcs

import (
	"sort"
	"time"
)

// FileRevision is the unit of work handed from parsing to patchset
// reconstruction: one revision of one file, with its metadata and fully
// reconstructed text.
type FileRevision struct {
	Path     string
	Revision Revision
	Branch   string // resolved via File.BranchName
	Author   string
	Date     time.Time
	Meta     Delta // full delta record, for the reconstructor's ancestry lookups
	Log      string
	Lines    []string
	Deleted  bool // state == "dead"
}

// FileRevisions reconstructs and returns every revision of f, ordered by
// Revision.Less (component-wise, so "1.2.1.1" falls between "1.2" and
// "1.3"), so a caller streaming these into the patchset reconstructor
// observes each branch's own commits in creation order.
func (f *File) FileRevisions(defaultBranch string) ([]FileRevision, error) {
	cache := NewCache(len(f.Deltas) + 1)

	revs := f.Revisions()
	sort.Slice(revs, func(i, j int) bool { return revs[i].Less(revs[j]) })

	out := make([]FileRevision, 0, len(revs))
	for _, r := range revs {
		d, ok := f.delta(r)
		if !ok {
			continue
		}
		lines, err := f.Reconstruct(r, cache)
		if err != nil {
			return nil, err
		}
		dt, _ := f.deltaText(r)
		out = append(out, FileRevision{
			Path:     f.Path,
			Revision: r,
			Branch:   f.BranchName(r, defaultBranch),
			Author:   d.Author,
			Date:     d.Date,
			Meta:     d,
			Log:      dt.Log,
			Lines:    lines,
			Deleted:  d.State == "dead",
		})
	}
	return out, nil
}
