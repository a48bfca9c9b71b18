package store

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/cvsgitimport/cvsgitimport/fastimport"
)

// MarksRaw returns the raw bytes of the marks file as last known to
// git fast-import (empty on a fresh database).
func (s *Store) MarksRaw(ctx context.Context) ([]byte, error) {
	var raw []byte
	row := s.db.QueryRowContext(ctx, `SELECT raw FROM marks`)
	if err := row.Scan(&raw); err != nil {
		return nil, &Error{Op: "load marks", Cause: err}
	}
	return raw, nil
}

// SaveMarksRaw persists the exact bytes git fast-import last exported via
// --export-marks, so a subsequent run can hand them back via
// --import-marks and keep mark references made in this run resolvable.
func (s *Store) SaveMarksRaw(ctx context.Context, raw []byte) error {
	_, err := s.db.ExecContext(ctx, `UPDATE marks SET raw = ?`, raw)
	if err != nil {
		return &Error{Op: "save marks", Cause: err}
	}
	return nil
}

// LoadMarkAllocator returns a MarkAllocator resuming from the high-water
// mark found in the marks file persisted by the previous run (0 on a
// fresh database).
func (s *Store) LoadMarkAllocator(ctx context.Context) (*fastimport.MarkAllocator, error) {
	raw, err := s.MarksRaw(ctx)
	if err != nil {
		return nil, err
	}
	return fastimport.NewMarkAllocator(ParseMarksHighWater(raw)), nil
}

// ParseMarksHighWater scans the contents of a git fast-import
// --export-marks file (lines of the form ":<mark> <sha1>") and returns the
// largest mark number present, or 0 if raw is empty or contains none.
func ParseMarksHighWater(raw []byte) uint64 {
	var highWater uint64
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ":") {
			continue
		}
		fields := strings.SplitN(line[1:], " ", 2)
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		if n > highWater {
			highWater = n
		}
	}
	return highWater
}
