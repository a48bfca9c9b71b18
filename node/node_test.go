package node

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddAndHasFile(t *testing.T) {
	root := &Node{}
	root.AddFile("src/main.go")
	root.AddFile("README.md")

	assert.True(t, root.HasFile("src/main.go"))
	assert.True(t, root.HasFile("README.md"))
	assert.False(t, root.HasFile("src/missing.go"))
}

func TestAddFileIsIdempotent(t *testing.T) {
	root := &Node{}
	root.AddFile("src/main.go")
	root.AddFile("src/main.go")

	files := root.Files()
	assert.Len(t, files, 1)
}

func TestDeleteFile(t *testing.T) {
	root := &Node{}
	root.AddFile("src/main.go")
	root.AddFile("src/helper.go")
	root.DeleteFile("src/main.go")

	assert.False(t, root.HasFile("src/main.go"))
	assert.True(t, root.HasFile("src/helper.go"))
}

func TestFiles(t *testing.T) {
	root := &Node{}
	root.AddFile("a/b/c.txt")
	root.AddFile("a/d.txt")
	root.AddFile("e.txt")

	files := root.Files()
	sort.Strings(files)
	assert.Equal(t, []string{"a/b/c.txt", "a/d.txt", "e.txt"}, files)
}

func TestDiff(t *testing.T) {
	from := &Node{}
	from.AddFile("keep.txt")
	from.AddFile("remove.txt")

	to := &Node{}
	to.AddFile("keep.txt")
	to.AddFile("added.txt")

	removed, added := Diff(from, to)
	assert.Equal(t, []string{"remove.txt"}, removed)
	assert.Equal(t, []string{"added.txt"}, added)
}
