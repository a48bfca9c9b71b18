package store

import (
	"database/sql"
	"fmt"
)

// migrations is the forward-only list of schema changes. Each entry is
// applied exactly once, in order, tracked by PRAGMA user_version; there is
// no down-migration path, matching the append-only nature of the state
// this store is tracking.
var migrations = []string{
	`
	CREATE TABLE file_revisions (
		id          INTEGER PRIMARY KEY,
		path        TEXT NOT NULL,
		revision    TEXT NOT NULL,
		author      TEXT NOT NULL,
		date        INTEGER NOT NULL,
		state       TEXT NOT NULL,
		log_message TEXT NOT NULL,
		deleted     INTEGER NOT NULL DEFAULT 0,
		mark        INTEGER,
		UNIQUE (path, revision)
	);
	CREATE INDEX idx_file_revisions_mark ON file_revisions(mark);
	CREATE INDEX idx_file_revisions_date ON file_revisions(date);

	CREATE TABLE file_revision_branches (
		file_revision_id INTEGER NOT NULL REFERENCES file_revisions(id),
		branch           TEXT NOT NULL,
		PRIMARY KEY (file_revision_id, branch)
	);

	CREATE TABLE tags (
		id       INTEGER PRIMARY KEY,
		name     TEXT NOT NULL,
		path     TEXT NOT NULL,
		revision TEXT NOT NULL,
		UNIQUE (name, path, revision)
	);
	CREATE INDEX idx_tags_path_revision ON tags(path, revision);
	CREATE INDEX idx_tags_name ON tags(name);

	CREATE TABLE patchsets (
		id     INTEGER PRIMARY KEY,
		branch TEXT NOT NULL,
		time   INTEGER NOT NULL,
		mark   INTEGER
	);

	CREATE TABLE patchset_file_revisions (
		patchset_id      INTEGER NOT NULL REFERENCES patchsets(id),
		file_revision_id INTEGER NOT NULL REFERENCES file_revisions(id),
		ordinal          INTEGER NOT NULL,
		PRIMARY KEY (patchset_id, file_revision_id)
	);

	CREATE TABLE branch_heads (
		branch TEXT PRIMARY KEY,
		mark   INTEGER NOT NULL
	);

	CREATE TABLE marks (
		raw BLOB NOT NULL
	);
	INSERT INTO marks(raw) VALUES (x'');
	`,
}

func errNewerSchema(got, max int) error {
	return fmt.Errorf("database schema version %d is newer than this binary supports (max %d)", got, max)
}

// applySchema brings db up to the latest known schema version. It refuses
// to run against a database stamped with a user_version newer than this
// binary knows about, rather than risk operating on a schema it can't
// fully interpret.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return &Error{Op: "read schema version", Cause: err}
	}
	if version > len(migrations) {
		return &Error{Op: "schema version check", Cause: errNewerSchema(version, len(migrations))}
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return &Error{Op: "begin migration", Cause: err}
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return &Error{Op: "apply migration", Cause: err}
		}
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			tx.Rollback()
			return &Error{Op: "stamp schema version", Cause: err}
		}
		if err := tx.Commit(); err != nil {
			return &Error{Op: "commit migration", Cause: err}
		}
	}
	return nil
}
