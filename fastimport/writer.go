package fastimport

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// Mode is a git tree entry mode, written literally as a 6-digit decimal
// field in M commands.
type Mode int

const (
	ModeFile    Mode = 100644
	ModeExec    Mode = 100755
	ModeSymlink Mode = 120000
)

// Mark formats a mark number as a fast-import mark reference, usable
// anywhere a commit-ish (from, merge, a blob reference in M) is expected.
func Mark(n uint64) string {
	return fmt.Sprintf(":%d", n)
}

// Ident is a person identity plus timestamp, as required by the author
// and committer lines of a commit command.
type Ident struct {
	Name  string
	Email string
	When  time.Time
}

func (id Ident) format() string {
	return fmt.Sprintf("%s <%s> %d %s", id.Name, id.Email, id.When.Unix(), id.When.Format("-0700"))
}

// Op is one file-change line within a commit command.
type Op interface {
	writeTo(w *Writer) error
}

// Modify records an M command: the path now has the given mode and its
// content is the blob referenced by mark, which may be a mark reference
// (":N") or a 40-character sha1.
type Modify struct {
	Mode Mode
	Mark string
	Path string
}

func (o Modify) writeTo(w *Writer) error {
	return w.printf("M %d %s %s\n", o.Mode, o.Mark, QuotePath(o.Path))
}

// Delete records a D command.
type Delete struct{ Path string }

func (o Delete) writeTo(w *Writer) error {
	return w.printf("D %s\n", QuotePath(o.Path))
}

// Copy records a C command.
type Copy struct{ Src, Dst string }

func (o Copy) writeTo(w *Writer) error {
	return w.printf("C %s %s\n", QuotePath(o.Src), QuotePath(o.Dst))
}

// Rename records an R command.
type Rename struct{ Src, Dst string }

func (o Rename) writeTo(w *Writer) error {
	return w.printf("R %s %s\n", QuotePath(o.Src), QuotePath(o.Dst))
}

// DeleteAll records a deleteall command, clearing every path from the
// commit's tree before any subsequent M/C lines are applied. The importer
// itself does not emit it; the Reader parses it back from a stream.
type DeleteAll struct{}

func (o DeleteAll) writeTo(w *Writer) error {
	return w.printf("deleteall\n")
}

// Commit is a fully described commit command.
type Commit struct {
	Ref       string
	Mark      uint64
	Author    Ident
	Committer Ident
	Message   string
	From      string // ref or mark string; "" omits the from line
	Merges    []string
	Ops       []Op
}

// Tag is a fully described lightweight-annotated tag command.
type Tag struct {
	Name    string
	From    string
	Tagger  Ident
	Message string
}

// Writer serializes commands to the wire format read by `git fast-import`.
// It buffers output and does not flush automatically; callers writing to a
// subprocess pipe should Flush before waiting on the subprocess, and
// periodically during a long run to bound memory.
type Writer struct {
	w   *bufio.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 64*1024)}
}

func (w *Writer) printf(format string, args ...interface{}) error {
	if w.err != nil {
		return w.err
	}
	_, err := fmt.Fprintf(w.w, format, args...)
	if err != nil {
		w.err = &StreamError{Op: "write", Cause: err}
	}
	return w.err
}

func (w *Writer) writeData(data []byte) error {
	if err := w.printf("data %d\n", len(data)); err != nil {
		return err
	}
	if w.err != nil {
		return w.err
	}
	if _, err := w.w.Write(data); err != nil {
		w.err = &StreamError{Op: "write", Cause: err}
		return w.err
	}
	return w.printf("\n")
}

// Blob emits a blob command, marking it for later reference from M lines.
func (w *Writer) Blob(mark uint64, data []byte) error {
	if err := w.printf("blob\nmark %s\n", Mark(mark)); err != nil {
		return err
	}
	return w.writeData(data)
}

// Commit emits a full commit command, including its file-change lines.
func (w *Writer) Commit(c Commit) error {
	if err := w.printf("commit %s\n", c.Ref); err != nil {
		return err
	}
	if err := w.printf("mark %s\n", Mark(c.Mark)); err != nil {
		return err
	}
	if err := w.printf("author %s\n", c.Author.format()); err != nil {
		return err
	}
	if err := w.printf("committer %s\n", c.Committer.format()); err != nil {
		return err
	}
	if err := w.writeData([]byte(c.Message)); err != nil {
		return err
	}
	if c.From != "" {
		if err := w.printf("from %s\n", c.From); err != nil {
			return err
		}
	}
	for _, m := range c.Merges {
		if err := w.printf("merge %s\n", m); err != nil {
			return err
		}
	}
	for _, op := range c.Ops {
		if err := op.writeTo(w); err != nil {
			return err
		}
	}
	return w.printf("\n")
}

// Reset points ref at from (a mark reference, sha1, or "" to delete the
// ref), without creating a commit. The importer does not call it; CVS
// branch tags that never received a commit get no git ref.
func (w *Writer) Reset(ref, from string) error {
	if err := w.printf("reset %s\n", ref); err != nil {
		return err
	}
	if from == "" {
		return nil
	}
	return w.printf("from %s\n", from)
}

// TagCommand emits an annotated tag command.
func (w *Writer) TagCommand(t Tag) error {
	if err := w.printf("tag %s\n", t.Name); err != nil {
		return err
	}
	if err := w.printf("from %s\n", t.From); err != nil {
		return err
	}
	if err := w.printf("tagger %s\n", t.Tagger.format()); err != nil {
		return err
	}
	return w.writeData([]byte(t.Message))
}

// Progress emits a progress command; git fast-import echoes the whole
// "progress <msg>" line back on its stdout so a caller parsing the
// subprocess's own progress stream can checkpoint against it.
func (w *Writer) Progress(msg string) error {
	return w.printf("progress %s\n", msg)
}

// Checkpoint forces git fast-import to close the current packfile and
// start a new one, establishing a point the importer can safely resume
// from without replaying already-durable commits.
func (w *Writer) Checkpoint() error {
	return w.printf("checkpoint\n")
}

// Done terminates the stream explicitly, letting git fast-import detect a
// truncated stream (e.g. a crashed producer) as an error rather than a
// clean end of input.
func (w *Writer) Done() error {
	return w.printf("done\n")
}

// Flush writes any buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = &StreamError{Op: "flush", Cause: err}
	}
	return w.err
}
