package patchset

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/cvsgitimport/cvsgitimport/rcs"
)

// DefaultWindow is the maximum gap, in seconds, between the running
// latest timestamp of an open group and a candidate revision's own
// timestamp before the group is closed and a new one started. CVS commits
// a multi-file change with a separate RCS checkin per file, each stamped
// a little after the last as the client works through the file list, so
// some slack is required to keep them together.
const DefaultWindow = 5 * 60

// Reconstructor buffers FileRevisions from every parsed file and, once all
// have been added, groups them into Patchsets.
type Reconstructor struct {
	window int64
	revs   []rcs.FileRevision
}

// NewReconstructor returns a Reconstructor grouping revisions whose gap is
// at most window seconds. A window of 0 uses DefaultWindow.
func NewReconstructor(window int64) *Reconstructor {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Reconstructor{window: window}
}

// Add buffers one revision for later grouping.
func (r *Reconstructor) Add(fr rcs.FileRevision) {
	r.revs = append(r.revs, fr)
}

type groupKey struct {
	branch  string
	author  string
	logHash string
}

func keyOf(fr rcs.FileRevision) groupKey {
	sum := sha256.Sum256([]byte(fr.Log))
	return groupKey{branch: fr.Branch, author: fr.Author, logHash: hex.EncodeToString(sum[:])}
}

// Finish groups every buffered revision into Patchsets and returns them
// ordered for commit sequencing (see Patchset.Less), with sequential IDs
// assigned in that order.
func (r *Reconstructor) Finish() []*Patchset {
	sorted := make([]rcs.FileRevision, len(r.revs))
	copy(sorted, r.revs)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := keyOf(sorted[i]), keyOf(sorted[j])
		if ki != kj {
			if ki.branch != kj.branch {
				return ki.branch < kj.branch
			}
			if ki.author != kj.author {
				return ki.author < kj.author
			}
			return ki.logHash < kj.logHash
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var out []*Patchset
	var cur *Patchset
	var curKey groupKey
	var runningMax int64

	flush := func() {
		if cur != nil {
			cur.Time = runningMax
			out = append(out, cur)
		}
	}

	for _, fr := range sorted {
		k := keyOf(fr)
		t := fr.Date.Unix()
		if cur == nil || k != curKey || t-runningMax > r.window {
			flush()
			cur = &Patchset{Branch: fr.Branch, Author: fr.Author, Log: fr.Log}
			curKey = k
			runningMax = t
		}
		if t > runningMax {
			runningMax = t
		}
		cur.Members = append(cur.Members, fr)
	}
	flush()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	for i, p := range out {
		p.ID = i + 1
	}
	return out
}
