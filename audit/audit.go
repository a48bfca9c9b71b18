// Package audit writes a human-readable record of every patchset the
// importer commits, for cross-checking an import against the original
// CVS history after the fact.
package audit

import (
	"fmt"
	"io"
	"time"

	"github.com/cvsgitimport/cvsgitimport/patchset"
)

// Log writes one line per patchset and, within it, one line per member
// file revision, as each patchset is committed.
type Log struct {
	w io.Writer
}

// NewLog wraps w as an audit log destination.
func NewLog(w io.Writer) *Log {
	return &Log{w: w}
}

// WriteHeader writes the column header line once, before any patchsets.
func (l *Log) WriteHeader() error {
	_, err := fmt.Fprintln(l.w, "# patchset\tmark\tbranch\tauthor\ttime\tmessage")
	return err
}

// WritePatchset records one committed patchset and its member revisions.
func (l *Log) WritePatchset(p *patchset.Patchset, mark uint64) error {
	when := time.Unix(p.Time, 0).UTC().Format(time.RFC3339)
	firstLine := p.Log
	if idx := indexNewline(firstLine); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	if _, err := fmt.Fprintf(l.w, "%d\t:%d\t%s\t%s\t%s\t%s\n", p.ID, mark, p.Branch, p.Author, when, firstLine); err != nil {
		return err
	}
	for _, m := range p.Members {
		action := "M"
		if m.Deleted {
			action = "D"
		}
		if _, err := fmt.Fprintf(l.w, "\t%s %s@%s\n", action, m.Path, m.Revision.String()); err != nil {
			return err
		}
	}
	return nil
}

func indexNewline(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return i
		}
	}
	return -1
}
