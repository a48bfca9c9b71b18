// Package patchset groups individual RCS file revisions into the
// CVS-style commit sets ("patchsets") that become git commits: CVS has no
// atomic multi-file commit, so the file-by-file history has to be
// reconstructed into the grouped commits a developer actually made.
package patchset

import (
	"sort"

	"github.com/cvsgitimport/cvsgitimport/rcs"
)

// Patchset is a reconstructed CVS commit: one or more FileRevisions that
// were checked in together, inferred from matching author, log message,
// and branch within a sliding time window.
type Patchset struct {
	ID      int
	Branch  string
	Author  string
	Log     string
	Time    int64 // Unix seconds, max over Members
	Members []rcs.FileRevision
}

// memberKey sorts a patchset's members into the deterministic order used
// for tie-breaking between patchsets with identical Time.
type memberKey struct {
	path     string
	revision string
}

func (p *Patchset) sortedKeys() []memberKey {
	keys := make([]memberKey, len(p.Members))
	for i, m := range p.Members {
		keys[i] = memberKey{path: m.Path, revision: m.Revision.String()}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].path != keys[j].path {
			return keys[i].path < keys[j].path
		}
		return keys[i].revision < keys[j].revision
	})
	return keys
}

// Less orders patchsets for commit sequencing: primarily by time, and for
// ties (common when an entire directory is committed in one `cvs commit`,
// which CVS timestamps identically across files) by the lexicographic
// order of each patchset's sorted (path, revision) member list, giving a
// total order independent of map/slice iteration order upstream.
func (p *Patchset) Less(other *Patchset) bool {
	if p.Time != other.Time {
		return p.Time < other.Time
	}
	a, b := p.sortedKeys(), other.sortedKeys()
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].path != b[i].path {
			return a[i].path < b[i].path
		}
		if a[i].revision != b[i].revision {
			return a[i].revision < b[i].revision
		}
	}
	return len(a) < len(b)
}
