package rcs

import (
	"sync"
	"time"
)

// Admin is the decoded admin block of a ,v file: everything before the
// first `revision` delta block.
type Admin struct {
	Head    Revision
	Branch  Revision // zero value if unset
	Access  []string
	Symbols map[string]Revision // tag name -> revision (or branch id)
	Locks   map[string]Revision
	Strict  bool
	Comment string
	Expand  string
}

// Delta is one `revision` block: the metadata RCS stores about a single
// revision, exclusive of its log message and text payload (those live in
// the trailing delta-text section, see DeltaText).
type Delta struct {
	Revision Revision
	Date     time.Time
	Author   string
	State    string
	Branches []Revision
	Next     Revision // zero value if this is the last revision in its chain
}

// DeltaText holds the log message and text payload associated with one
// revision, read from the description/text section that follows the
// delta blocks.
type DeltaText struct {
	Log  string
	Text []byte
}

// File is the fully decoded content of a ,v file: the admin header plus
// every revision's metadata and delta text, indexed by revision id.
type File struct {
	Path      string
	Admin     Admin
	Deltas    map[string]Delta
	DeltaText map[string]DeltaText
	Desc      string

	predOnce sync.Once
	pred     map[string]Revision
}

// predecessorOf returns the revision whose reconstructed content is the
// base text for target's delta script: the revision whose `next` points at
// target (covers both the trunk, walked forward from head, and later
// commits along a branch), or, for a branch's first commit, the branch
// point that lists target in its `branches` set.
func (f *File) predecessorOf(target Revision) (Revision, bool) {
	f.predOnce.Do(func() {
		f.pred = make(map[string]Revision, len(f.Deltas))
		for _, d := range f.Deltas {
			if !d.Next.IsZero() {
				f.pred[d.Next.String()] = d.Revision
			}
			for _, b := range d.Branches {
				f.pred[b.String()] = d.Revision
			}
		}
	})
	p, ok := f.pred[target.String()]
	return p, ok
}

func (f *File) delta(r Revision) (Delta, bool) {
	d, ok := f.Deltas[r.String()]
	return d, ok
}

func (f *File) deltaText(r Revision) (DeltaText, bool) {
	d, ok := f.DeltaText[r.String()]
	return d, ok
}

// Revisions returns every revision id known to the delta index, in no
// particular order.
func (f *File) Revisions() []Revision {
	out := make([]Revision, 0, len(f.Deltas))
	for _, d := range f.Deltas {
		out = append(out, d.Revision)
	}
	return out
}

// BranchName resolves the symbolic branch name a commit revision is live
// on, per the simplified branch-membership rule this importer uses:
// trunk commits are "live" only on defaultBranch; branch
// commits are live only on the branch named by the tag matching their
// immediate Branch() id.
func (f *File) BranchName(r Revision, defaultBranch string) string {
	if r.IsTrunk() {
		return defaultBranch
	}
	branchID := r.Branch()
	for name, rev := range f.Admin.Symbols {
		if rev.Equal(branchID) {
			return name
		}
	}
	// No symbolic tag for this branch number (common for vendor branches
	// created without a tag, or branches whose tag was later removed);
	// fall back to the numeric id so the import is still deterministic.
	return branchID.String()
}
