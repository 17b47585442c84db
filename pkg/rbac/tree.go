package rbac

import (
	"errors"
	"fmt"
)

// ErrNoRootFound is returned when a non-empty node list contains no node
// with a nil parent. It signals corrupt authority data, not bad user input.
var ErrNoRootFound = errors.New("no root authority found")

// ErrTreeCycle is returned when the parent relation is cyclic or contains
// duplicate ids, either of which would attach a node twice.
var ErrTreeCycle = errors.New("authority tree contains a cycle")

// BuildTree reconstructs a forest from a flat list of authorities.
//
// Children keep the input order; callers wanting display order must pre-sort
// the input by Sort before calling. A node whose parent id is absent from the
// input is silently dropped, matching the flat-list semantics of the data it
// mirrors. An empty input yields an empty forest.
//
// The build is two passes over an id index: one to group children by parent,
// one to attach. A visited check trips on duplicate ids and on self-parented
// nodes rather than recursing forever.
func BuildTree(nodes []Authority) ([]*TreeNode, error) {
	forest := []*TreeNode{}
	if len(nodes) == 0 {
		return forest, nil
	}

	byParent := make(map[int64][]*TreeNode, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.ParentID == nil {
			continue
		}
		if *n.ParentID == n.ID {
			return nil, fmt.Errorf("authority %d is its own parent: %w", n.ID, ErrTreeCycle)
		}
		byParent[*n.ParentID] = append(byParent[*n.ParentID], newTreeNode(n))
	}

	visited := make(map[int64]bool, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.ParentID != nil {
			continue
		}
		root := newTreeNode(n)
		if err := attach(root, byParent, visited); err != nil {
			return nil, err
		}
		forest = append(forest, root)
	}

	if len(forest) == 0 {
		return nil, ErrNoRootFound
	}
	return forest, nil
}

func newTreeNode(a *Authority) *TreeNode {
	return &TreeNode{
		ID:       a.ID,
		Name:     a.Name,
		ParentID: a.ParentID,
		Children: []*TreeNode{},
	}
}

func attach(node *TreeNode, byParent map[int64][]*TreeNode, visited map[int64]bool) error {
	if visited[node.ID] {
		return fmt.Errorf("authority %d reached twice: %w", node.ID, ErrTreeCycle)
	}
	visited[node.ID] = true

	for _, child := range byParent[node.ID] {
		if err := attach(child, byParent, visited); err != nil {
			return err
		}
		node.Children = append(node.Children, child)
	}
	return nil
}

// Flatten walks the forest depth first and returns every node it contains.
// It is the inverse view of BuildTree, used by tests and by callers that
// need the reachable set.
func Flatten(forest []*TreeNode) []*TreeNode {
	var out []*TreeNode
	for _, root := range forest {
		out = append(out, root)
		out = append(out, Flatten(root.Children)...)
	}
	return out
}
