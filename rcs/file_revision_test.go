package rcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRevisionsOrderAndContent(t *testing.T) {
	f, err := Parse("branch.txt,v", []byte(branchFixture))
	require.NoError(t, err)

	revs, err := f.FileRevisions("master")
	require.NoError(t, err)
	require.Len(t, revs, 3)
	assert.Equal(t, "1.1", revs[0].Revision.String())
	assert.Equal(t, "1.2", revs[1].Revision.String())
	assert.Equal(t, "1.2.1.1", revs[2].Revision.String())

	byRev := make(map[string]FileRevision, len(revs))
	for _, r := range revs {
		byRev[r.Revision.String()] = r
	}

	assert.Equal(t, "master", byRev["1.1"].Branch)
	assert.Equal(t, "master", byRev["1.2"].Branch)
	assert.Equal(t, "BUGFIX", byRev["1.2.1.1"].Branch)
	assert.Equal(t, "bob", byRev["1.2.1.1"].Author)
	assert.False(t, byRev["1.1"].Deleted)
	assert.Equal(t, []string{"line one\n", "line two\n"}, byRev["1.1"].Lines)
	assert.Equal(t, []string{"line one\n", "line two\n", "line three\n", "branch line\n"}, byRev["1.2.1.1"].Lines)
}
