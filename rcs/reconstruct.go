package rcs

import (
	"bytes"
	"fmt"

	"github.com/cvsgitimport/cvsgitimport/ed"
)

// Reconstruct materializes the full text of one revision's content.
//
// RCS stores the head revision's text literally and every other revision
// as an ed script relative to a neighbor: trunk revisions store reverse
// deltas (each revision's script, applied to the revision above it in the
// `next` chain, produces its own text), while a branch's revisions store
// forward deltas rooted at the branch point. Reconstructing a revision
// therefore means walking back to an ancestor whose text is already known
// (ultimately, head) and applying each intervening script in turn.
//
// cache memoizes reconstructed text across calls; the caller owns its
// lifetime, must not share it with another File, and should size it to the
// degree of branch fan-out expected in this file.
func (f *File) Reconstruct(target Revision, cache *Cache) ([]string, error) {
	if lines, ok := cache.get(target); ok {
		return lines, nil
	}

	if target.Equal(f.Admin.Head) {
		dt, ok := f.deltaText(target)
		if !ok {
			return nil, &ReconstructionError{Path: f.Path, Revision: target.String(), Cause: fmt.Errorf("missing delta text for head revision")}
		}
		lines := splitLines(dt.Text)
		cache.put(target, lines)
		return lines, nil
	}

	if _, ok := f.delta(target); !ok {
		return nil, &ReconstructionError{Path: f.Path, Revision: target.String(), Cause: fmt.Errorf("unknown revision")}
	}

	pred, ok := f.predecessorOf(target)
	if !ok {
		return nil, &ReconstructionError{Path: f.Path, Revision: target.String(), Cause: fmt.Errorf("no path from head to this revision")}
	}
	base, err := f.Reconstruct(pred, cache)
	if err != nil {
		return nil, err
	}

	dt, ok := f.deltaText(target)
	if !ok {
		return nil, &ReconstructionError{Path: f.Path, Revision: target.String(), Cause: fmt.Errorf("missing delta text")}
	}
	out, err := ed.Apply(base, dt.Text)
	if err != nil {
		return nil, &ReconstructionError{Path: f.Path, Revision: target.String(), Cause: err}
	}
	cache.put(target, out)
	return out, nil
}

// splitLines mirrors ed.splitLines; duplicated here (rather than exported
// from ed) because it is a property of RCS text storage, not of ed scripts.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var out []string
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			out = append(out, string(data))
			break
		}
		out = append(out, string(data[:idx+1]))
		data = data[idx+1:]
	}
	return out
}
