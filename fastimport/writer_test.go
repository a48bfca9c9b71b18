package fastimport

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterBlobRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Blob(1, []byte("hello world")))
	require.NoError(t, w.Flush())

	ev, err := NewReader(&buf).Next()
	require.NoError(t, err)
	require.NotNil(t, ev.Blob)
	assert.Equal(t, uint64(1), ev.Blob.Mark)
	assert.Equal(t, []byte("hello world"), ev.Blob.Data)
}

func TestWriterCommitRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	when := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	c := Commit{
		Ref:       "refs/heads/master",
		Mark:      2,
		Author:    Ident{Name: "Alice", Email: "alice@example.com", When: when},
		Committer: Ident{Name: "Alice", Email: "alice@example.com", When: when},
		Message:   "fix the bug\n",
		From:      Mark(0),
		Ops: []Op{
			Modify{Mode: ModeFile, Mark: Mark(1), Path: "src/main.go"},
			Delete{Path: "old.txt"},
		},
	}
	require.NoError(t, w.Commit(c))
	require.NoError(t, w.Flush())

	ev, err := NewReader(&buf).Next()
	require.NoError(t, err)
	require.NotNil(t, ev.Commit)
	got := ev.Commit
	assert.Equal(t, "refs/heads/master", got.Ref)
	assert.Equal(t, uint64(2), got.Mark)
	assert.Equal(t, "Alice", got.Author.Name)
	assert.Equal(t, "alice@example.com", got.Author.Email)
	assert.Equal(t, "fix the bug\n", got.Message)
	assert.Equal(t, ":0", got.From)
	require.Len(t, got.Ops, 2)
	assert.Equal(t, Modify{Mode: ModeFile, Mark: ":1", Path: "src/main.go"}, got.Ops[0])
	assert.Equal(t, Delete{Path: "old.txt"}, got.Ops[1])
}

func TestWriterResetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Reset("refs/heads/BUGFIX", Mark(5)))
	require.NoError(t, w.Flush())

	ev, err := NewReader(&buf).Next()
	require.NoError(t, err)
	require.NotNil(t, ev.Reset)
	assert.Equal(t, "refs/heads/BUGFIX", ev.Reset.Ref)
	assert.Equal(t, ":5", ev.Reset.From)
}

func TestWriterTagRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	when := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, w.TagCommand(Tag{
		Name:    "RELEASE_1_0",
		From:    Mark(9),
		Tagger:  Ident{Name: "Alice", Email: "alice@example.com", When: when},
		Message: "tagged\n",
	}))
	require.NoError(t, w.Flush())

	ev, err := NewReader(&buf).Next()
	require.NoError(t, err)
	require.NotNil(t, ev.Tag)
	assert.Equal(t, "RELEASE_1_0", ev.Tag.Name)
	assert.Equal(t, ":9", ev.Tag.From)
	assert.Equal(t, "tagged\n", ev.Tag.Message)
}

func TestWriterProgressCheckpointDone(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Progress("42 commits"))
	require.NoError(t, w.Checkpoint())
	require.NoError(t, w.Done())
	require.NoError(t, w.Flush())

	r := NewReader(&buf)

	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "42 commits", ev.Progress)

	ev, err = r.Next()
	require.NoError(t, err)
	assert.True(t, ev.Checkpoint)

	ev, err = r.Next()
	require.NoError(t, err)
	assert.True(t, ev.Done)
}

func TestMarkAllocatorNeverReuses(t *testing.T) {
	a := NewMarkAllocator(10)
	assert.Equal(t, uint64(11), a.Next())
	assert.Equal(t, uint64(12), a.Next())
	assert.Equal(t, uint64(12), a.Peek())
}
