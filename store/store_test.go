package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvsgitimport/cvsgitimport/rcs"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testFileRevision(t *testing.T, path, revision string) rcs.FileRevision {
	r, err := rcs.ParseRevision(revision)
	require.NoError(t, err)
	return rcs.FileRevision{
		Path:     path,
		Revision: r,
		Branch:   "main",
		Author:   "alice",
		Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Log:      "initial commit",
	}
}

func TestUpsertFileRevisionIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fr := testFileRevision(t, "a.txt", "1.1")
	id1, err := s.UpsertFileRevision(ctx, fr)
	require.NoError(t, err)

	id2, err := s.UpsertFileRevision(ctx, fr)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestInsertPatchsetAndAuthorOf(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fr := testFileRevision(t, "a.txt", "1.1")
	id, err := s.UpsertFileRevision(ctx, fr)
	require.NoError(t, err)

	psID, err := s.InsertPatchset(ctx, "master", fr.Date.Unix(), []int64{id})
	require.NoError(t, err)

	author, log, err := s.AuthorOf(ctx, psID)
	require.NoError(t, err)
	assert.Equal(t, "alice", author)
	assert.Equal(t, "initial commit", log)

	pending, err := s.PendingPatchsetIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{psID}, pending)

	require.NoError(t, s.SetPatchsetMark(ctx, psID, 7))
	pending, err = s.PendingPatchsetIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestBranchHeadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.BranchHead(ctx, "master")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetBranchHead(ctx, "master", 3))
	mark, ok, err := s.BranchHead(ctx, "master")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(3), mark)

	require.NoError(t, s.SetBranchHead(ctx, "master", 9))
	mark, _, err = s.BranchHead(ctx, "master")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), mark)
}

func TestMarkAllocatorPersistence(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.LoadMarkAllocator(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), a.Peek())

	// Simulate what a real git fast-import --export-marks file looks like
	// once two marks have been used.
	raw := []byte(":1 aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n:2 bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb\n")
	require.NoError(t, s.SaveMarksRaw(ctx, raw))

	resumed, err := s.LoadMarkAllocator(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), resumed.Peek())
	assert.Equal(t, uint64(3), resumed.Next())

	gotRaw, err := s.MarksRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, raw, gotRaw)
}

func TestParseMarksHighWater(t *testing.T) {
	assert.Equal(t, uint64(0), ParseMarksHighWater(nil))
	assert.Equal(t, uint64(0), ParseMarksHighWater([]byte("")))
	raw := ":3 aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n" +
		":11 bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb\n" +
		":7 cccccccccccccccccccccccccccccccccccccccc\n"
	assert.Equal(t, uint64(11), ParseMarksHighWater([]byte(raw)))
}

func TestUpsertTagAllowsMultipleFilesPerTagName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertTag(ctx, "RELEASE_1_0", "a.txt", "1.1"))
	require.NoError(t, s.UpsertTag(ctx, "RELEASE_1_0", "b.txt", "1.2"))
	// Re-running over the same tuple is idempotent, not an error.
	require.NoError(t, s.UpsertTag(ctx, "RELEASE_1_0", "a.txt", "1.1"))
}

func TestFileRevisionMarkRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fr := testFileRevision(t, "a.txt", "1.1")
	_, err := s.UpsertFileRevision(ctx, fr)
	require.NoError(t, err)

	_, ok, err := s.FileRevisionMark(ctx, "a.txt", "1.1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetFileRevisionMark(ctx, "a.txt", "1.1", 42))
	mark, ok, err := s.FileRevisionMark(ctx, "a.txt", "1.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(42), mark)

	// Re-upserting the revision (as a reparse of an unchanged ,v file
	// would) must not clobber the mark already recorded for it.
	_, err = s.UpsertFileRevision(ctx, fr)
	require.NoError(t, err)
	mark, ok, err = s.FileRevisionMark(ctx, "a.txt", "1.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(42), mark)
}
