package patchset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvsgitimport/cvsgitimport/rcs"
)

func rev(t *testing.T, s string) rcs.Revision {
	r, err := rcs.ParseRevision(s)
	require.NoError(t, err)
	return r
}

func fr(t *testing.T, path, revision, branch, author, log string, at time.Time) rcs.FileRevision {
	return rcs.FileRevision{
		Path:     path,
		Revision: rev(t, revision),
		Branch:   branch,
		Author:   author,
		Date:     at,
		Log:      log,
	}
}

func TestReconstructorGroupsWithinWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconstructor(300)
	r.Add(fr(t, "a.txt", "1.1", "master", "alice", "fix bug", base))
	r.Add(fr(t, "b.txt", "1.1", "master", "alice", "fix bug", base.Add(30*time.Second)))

	sets := r.Finish()
	require.Len(t, sets, 1)
	assert.Len(t, sets[0].Members, 2)
	assert.Equal(t, base.Add(30*time.Second).Unix(), sets[0].Time)
}

func TestReconstructorSplitsOnWindowGap(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconstructor(60)
	r.Add(fr(t, "a.txt", "1.1", "master", "alice", "fix bug", base))
	r.Add(fr(t, "b.txt", "1.1", "master", "alice", "fix bug", base.Add(10*time.Minute)))

	sets := r.Finish()
	require.Len(t, sets, 2)
}

func TestReconstructorSplitsOnDifferentAuthor(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconstructor(300)
	r.Add(fr(t, "a.txt", "1.1", "master", "alice", "same message", base))
	r.Add(fr(t, "b.txt", "1.1", "master", "bob", "same message", base))

	sets := r.Finish()
	require.Len(t, sets, 2)
}

func TestReconstructorAssignsSequentialIDsInTimeOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewReconstructor(300)
	r.Add(fr(t, "b.txt", "1.2", "master", "bob", "second", base.Add(time.Hour)))
	r.Add(fr(t, "a.txt", "1.1", "master", "alice", "first", base))

	sets := r.Finish()
	require.Len(t, sets, 2)
	assert.Equal(t, 1, sets[0].ID)
	assert.Equal(t, "alice", sets[0].Author)
	assert.Equal(t, 2, sets[1].ID)
	assert.Equal(t, "bob", sets[1].Author)
}

func TestReconstructorDeterministicTieBreak(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r1 := NewReconstructor(300)
	r1.Add(fr(t, "z.txt", "1.1", "master", "alice", "m1", base))
	r1.Add(fr(t, "a.txt", "1.1", "master", "bob", "m2", base))
	sets1 := r1.Finish()

	r2 := NewReconstructor(300)
	r2.Add(fr(t, "a.txt", "1.1", "master", "bob", "m2", base))
	r2.Add(fr(t, "z.txt", "1.1", "master", "alice", "m1", base))
	sets2 := r2.Finish()

	require.Len(t, sets1, 2)
	require.Len(t, sets2, 2)
	assert.Equal(t, sets1[0].Author, sets2[0].Author)
	assert.Equal(t, sets1[1].Author, sets2[1].Author)
}
