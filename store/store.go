// Package store persists import progress in a SQLite database, so a
// crashed or interrupted run can resume from the last patchset that was
// durably handed to `git fast-import` instead of reimporting from scratch.
package store

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cvsgitimport/cvsgitimport/rcs"
)

// Store wraps the state database. All methods are safe for concurrent
// use; database/sql pools connections internally, and SQLite itself
// serializes writers.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the state database at path and brings
// its schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, &Error{Op: "open", Cause: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &Error{Op: "open", Cause: err}
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return &Error{Op: "close", Cause: err}
	}
	return nil
}

// UpsertFileRevision records fr's metadata and returns its row id. It is
// idempotent: re-running the importer over a file already recorded
// returns the existing row rather than erroring on the (path, revision)
// uniqueness constraint, since resuming after a crash means re-parsing
// files whose earlier revisions are already durable.
func (s *Store) UpsertFileRevision(ctx context.Context, fr rcs.FileRevision) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO file_revisions (path, revision, author, date, state, log_message, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (path, revision) DO UPDATE SET
			author = excluded.author,
			date = excluded.date,
			state = excluded.state,
			log_message = excluded.log_message,
			deleted = excluded.deleted
	`, fr.Path, fr.Revision.String(), fr.Author, fr.Date.Unix(), fr.Meta.State, fr.Log, boolToInt(fr.Deleted))
	if err != nil {
		return 0, &Error{Op: "upsert file_revision", Cause: err}
	}

	// LastInsertId's behavior on the ON CONFLICT DO UPDATE path varies by
	// SQLite version; look the row up explicitly instead of relying on it.
	var id int64
	row := s.db.QueryRowContext(ctx, `SELECT id FROM file_revisions WHERE path = ? AND revision = ?`, fr.Path, fr.Revision.String())
	if err := row.Scan(&id); err != nil {
		return 0, &Error{Op: "lookup file_revision id", Cause: err}
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM file_revision_branches WHERE file_revision_id = ?`, id); err != nil {
		return 0, &Error{Op: "clear file_revision_branches", Cause: err}
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO file_revision_branches (file_revision_id, branch) VALUES (?, ?)`, id, fr.Branch); err != nil {
		return 0, &Error{Op: "insert file_revision_branches", Cause: err}
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// UpsertTag records that the CVS tag name includes path at revision. A tag
// is a set of (path, revision) tuples, not a single pointer, so this is
// called once per file the tag covers; re-running over an unchanged tag
// tuple is a no-op.
func (s *Store) UpsertTag(ctx context.Context, name, path, revision string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (name, path, revision) VALUES (?, ?, ?)
		ON CONFLICT (name, path, revision) DO NOTHING
	`, name, path, revision)
	if err != nil {
		return &Error{Op: "upsert tag", Cause: err}
	}
	return nil
}

// SetFileRevisionMark records the fast-import mark under which (path,
// revision)'s blob was emitted. Called once the blob has actually been
// written to the stream. Each call overwrites any mark already recorded for
// the row, so a blob re-emitted on a resumed run replaces the earlier mark.
func (s *Store) SetFileRevisionMark(ctx context.Context, path, revision string, mark uint64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE file_revisions SET mark = ? WHERE path = ? AND revision = ?`, mark, path, revision)
	if err != nil {
		return &Error{Op: "set file_revision mark", Cause: err}
	}
	return nil
}

// FileRevisionMark returns the blob mark previously recorded for (path,
// revision), if any. Used to recover a resumed run's blob-mark bookkeeping
// for tag re-materialization without re-emitting blobs already durable.
func (s *Store) FileRevisionMark(ctx context.Context, path, revision string) (uint64, bool, error) {
	var mark sql.NullInt64
	row := s.db.QueryRowContext(ctx, `SELECT mark FROM file_revisions WHERE path = ? AND revision = ?`, path, revision)
	switch err := row.Scan(&mark); err {
	case nil:
		return uint64(mark.Int64), mark.Valid, nil
	case sql.ErrNoRows:
		return 0, false, nil
	default:
		return 0, false, &Error{Op: "lookup file_revision mark", Cause: err}
	}
}

// InsertPatchset records a reconstructed patchset and its ordered member
// file revisions, returning its row id.
func (s *Store) InsertPatchset(ctx context.Context, branch string, unixTime int64, memberIDs []int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &Error{Op: "begin insert patchset", Cause: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO patchsets (branch, time) VALUES (?, ?)`, branch, unixTime)
	if err != nil {
		return 0, &Error{Op: "insert patchset", Cause: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &Error{Op: "insert patchset", Cause: err}
	}
	for i, memberID := range memberIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO patchset_file_revisions (patchset_id, file_revision_id, ordinal) VALUES (?, ?, ?)`, id, memberID, i); err != nil {
			return 0, &Error{Op: "insert patchset member", Cause: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, &Error{Op: "commit insert patchset", Cause: err}
	}
	return id, nil
}

// SetPatchsetMark records the fast-import mark a patchset was committed
// under, marking it done for the purposes of resume.
func (s *Store) SetPatchsetMark(ctx context.Context, patchsetID int64, mark uint64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE patchsets SET mark = ? WHERE id = ?`, mark, patchsetID)
	if err != nil {
		return &Error{Op: "set patchset mark", Cause: err}
	}
	return nil
}

// PendingPatchsetIDs returns the ids of patchsets recorded but not yet
// assigned a mark, in id order, for resuming an interrupted run.
func (s *Store) PendingPatchsetIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM patchsets WHERE mark IS NULL ORDER BY id`)
	if err != nil {
		return nil, &Error{Op: "query pending patchsets", Cause: err}
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, &Error{Op: "scan pending patchset", Cause: err}
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PatchsetRecord is one row of the patchsets table, as needed to resume an
// interrupted run: whether a patchset at a given ordinal position was
// already durably committed to the fast-import stream.
type PatchsetRecord struct {
	ID        int64
	Mark      uint64
	Committed bool
}

// Patchsets returns every recorded patchset in id order, which is also
// the order they were originally committed in: a resumed run re-derives
// the same patchset sequence from the CVS tree and matches it positionally
// against this list to skip work already durable.
func (s *Store) Patchsets(ctx context.Context) ([]PatchsetRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, mark FROM patchsets ORDER BY id`)
	if err != nil {
		return nil, &Error{Op: "query patchsets", Cause: err}
	}
	defer rows.Close()
	var out []PatchsetRecord
	for rows.Next() {
		var id int64
		var mark sql.NullInt64
		if err := rows.Scan(&id, &mark); err != nil {
			return nil, &Error{Op: "scan patchset", Cause: err}
		}
		rec := PatchsetRecord{ID: id}
		if mark.Valid {
			rec.Mark = uint64(mark.Int64)
			rec.Committed = true
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AuthorOf returns the author and log message recorded for one member of
// a patchset, used to derive a patchset's commit metadata without storing
// it redundantly on the patchsets table itself.
func (s *Store) AuthorOf(ctx context.Context, patchsetID int64) (author, logMessage string, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fr.author, fr.log_message
		FROM patchset_file_revisions pfr
		JOIN file_revisions fr ON fr.id = pfr.file_revision_id
		WHERE pfr.patchset_id = ?
		ORDER BY pfr.ordinal
		LIMIT 1
	`, patchsetID)
	if err := row.Scan(&author, &logMessage); err != nil {
		return "", "", &Error{Op: "lookup patchset author", Cause: err}
	}
	return author, logMessage, nil
}

// BranchHead returns the mark the named branch currently points at, and
// whether it has been recorded at all (false for a branch not yet seen).
func (s *Store) BranchHead(ctx context.Context, branch string) (uint64, bool, error) {
	var mark uint64
	row := s.db.QueryRowContext(ctx, `SELECT mark FROM branch_heads WHERE branch = ?`, branch)
	switch err := row.Scan(&mark); err {
	case nil:
		return mark, true, nil
	case sql.ErrNoRows:
		return 0, false, nil
	default:
		return 0, false, &Error{Op: "lookup branch head", Cause: err}
	}
}

// SetBranchHead records the mark the named branch now points at.
func (s *Store) SetBranchHead(ctx context.Context, branch string, mark uint64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO branch_heads (branch, mark) VALUES (?, ?)
		ON CONFLICT (branch) DO UPDATE SET mark = excluded.mark
	`, branch, mark)
	if err != nil {
		return &Error{Op: "set branch head", Cause: err}
	}
	return nil
}
