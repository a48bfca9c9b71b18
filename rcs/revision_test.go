package rcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRevisionBasic(t *testing.T) {
	r, err := ParseRevision("1.4")
	require.NoError(t, err)
	assert.Equal(t, "1.4", r.String())
	assert.True(t, r.IsTrunk())
	assert.False(t, r.IsBranch())
}

func TestParseRevisionBranch(t *testing.T) {
	r, err := ParseRevision("1.2.1.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.1.3", r.String())
	assert.False(t, r.IsBranch())
	assert.False(t, r.IsTrunk())
}

func TestParseRevisionStripsMagicZero(t *testing.T) {
	r, err := ParseRevision("1.2.0.1")
	require.NoError(t, err)
	assert.Equal(t, "1.2.1", r.String())
	assert.True(t, r.IsBranch())
}

func TestParseRevisionInvalid(t *testing.T) {
	_, err := ParseRevision("1.x")
	assert.Error(t, err)

	_, err = ParseRevision("0.0")
	assert.Error(t, err)
}

func TestRevisionBranch(t *testing.T) {
	r, err := ParseRevision("1.2.1.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.1", r.Branch().String())

	trunk, err := ParseRevision("1.4")
	require.NoError(t, err)
	assert.Equal(t, "1", trunk.Branch().String())
}

func TestRevisionBranchPoint(t *testing.T) {
	r, err := ParseRevision("1.2.1.3")
	require.NoError(t, err)
	bp, ok := r.BranchPoint()
	require.True(t, ok)
	assert.Equal(t, "1.2", bp.String())

	trunk, err := ParseRevision("1.4")
	require.NoError(t, err)
	_, ok = trunk.BranchPoint()
	assert.False(t, ok)
}

func TestRevisionContains(t *testing.T) {
	branch, err := ParseRevision("1.2.1")
	require.NoError(t, err)
	member, err := ParseRevision("1.2.1.3")
	require.NoError(t, err)
	other, err := ParseRevision("1.2.2.1")
	require.NoError(t, err)

	ok, err := branch.Contains(member)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = branch.Contains(other)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = member.Contains(branch)
	assert.Error(t, err, "Contains requires the receiver to be a branch id")
}

func TestRevisionLess(t *testing.T) {
	a, _ := ParseRevision("1.2")
	b, _ := ParseRevision("1.10")
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestRevisionEqual(t *testing.T) {
	a, _ := ParseRevision("1.2.0.1")
	b, _ := ParseRevision("1.2.1")
	assert.True(t, a.Equal(b))
}
