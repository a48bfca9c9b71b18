// Package node tracks the file tree live on one git branch as commits are
// emitted, so the importer can tell which paths currently exist on a
// branch without re-deriving it from git itself.
package node

import "strings"

// Node is one entry in a branch's file tree: a directory (Children
// populated, IsFile false) or a file (IsFile true, Path set to its full
// repository-relative path). The root Node of a branch has an empty Name.
type Node struct {
	Name     string
	Path     string
	IsFile   bool
	Children []*Node
}

// AddFile records that fullPath now exists on this branch.
func (n *Node) AddFile(path string) {
	n.addSubFile(path, path)
}

func (n *Node) addSubFile(fullPath string, subPath string) {
	parts := strings.Split(subPath, "/")
	if len(parts) == 1 {
		for _, c := range n.Children {
			if c.Name == parts[0] {
				return // already registered
			}
		}
		n.Children = append(n.Children, &Node{Name: parts[0], IsFile: true, Path: fullPath})
		return
	}
	for _, c := range n.Children {
		if c.Name == parts[0] {
			c.addSubFile(fullPath, strings.Join(parts[1:], "/"))
			return
		}
	}
	dir := &Node{Name: parts[0]}
	n.Children = append(n.Children, dir)
	dir.addSubFile(fullPath, strings.Join(parts[1:], "/"))
}

// DeleteFile records that path no longer exists on this branch, pruning
// now-empty parent directories is deliberately skipped: an empty Node
// with no children is harmless and Files never returns it as a path.
func (n *Node) DeleteFile(path string) {
	n.deleteSubFile(path)
}

func (n *Node) deleteSubFile(subPath string) {
	parts := strings.Split(subPath, "/")
	if len(parts) == 1 {
		for i, c := range n.Children {
			if c.Name == parts[0] {
				n.Children[i] = n.Children[len(n.Children)-1]
				n.Children = n.Children[:len(n.Children)-1]
				return
			}
		}
		return
	}
	for _, c := range n.Children {
		if c.Name == parts[0] {
			c.deleteSubFile(strings.Join(parts[1:], "/"))
			return
		}
	}
}

func (n *Node) allFiles() []string {
	var files []string
	for _, c := range n.Children {
		if c.IsFile {
			files = append(files, c.Path)
		} else {
			files = append(files, c.allFiles()...)
		}
	}
	return files
}

// Files returns every file path currently live anywhere under this node,
// in no particular order.
func (n *Node) Files() []string {
	return n.allFiles()
}

// HasFile reports whether fileName exists anywhere under this node.
func (n *Node) HasFile(fileName string) bool {
	parts := strings.Split(fileName, "/")
	cur := n
	for _, part := range parts {
		found := false
		for _, c := range cur.Children {
			if c.Name == part {
				cur = c
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return cur.IsFile
}

// Diff returns the files present in from but not in to (removed), and the
// files present in to but not in from (added). The importer uses removed
// to emit D lines in a synthetic tag commit for paths the default branch
// carries that the tag does not.
func Diff(from, to *Node) (removed, added []string) {
	fromSet := make(map[string]bool)
	for _, f := range from.Files() {
		fromSet[f] = true
	}
	toSet := make(map[string]bool)
	for _, f := range to.Files() {
		toSet[f] = true
		if !fromSet[f] {
			added = append(added, f)
		}
	}
	for f := range fromSet {
		if !toSet[f] {
			removed = append(removed, f)
		}
	}
	return removed, added
}
