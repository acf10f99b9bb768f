// Package depttree turns flat department rows into the nested tree and the
// flattened select list used by the console.
//
// Neither operation fails on malformed hierarchies. Dangling parent references
// are promoted to the top level, reference cycles are broken at the first
// revisit, and any rows that could not be placed show up as a difference
// between len(records) and TreeSize(forest).
package depttree

import "github.com/yuanzac/submarine/internal/domain"

// Node is a department with its attached children.
type Node struct {
	domain.Department
	Depth    int     `json:"depth"`
	Children []*Node `json:"children,omitempty"`
}

// SelectEntry is the flat projection of a department for select widgets.
// Key, Value and Title mirror ID, DeptCode and DeptName for tree-select components.
type SelectEntry struct {
	ID       string `json:"id"`
	DeptCode string `json:"deptCode"`
	DeptName string `json:"deptName"`
	Depth    int    `json:"depth"`
	Disabled bool   `json:"disabled"`
	Key      string `json:"key"`
	Value    string `json:"value"`
	Title    string `json:"title"`
}

type builder struct {
	records  []domain.Department
	index    map[string]int   // id -> position of its first occurrence
	children map[string][]int // parent id -> child positions, input order
	visited  map[string]struct{}
	selects  []SelectEntry
}

// BuildTree builds the department forest and its depth-first select list in a
// single traversal. Siblings keep their relative input order.
func BuildTree(records []domain.Department) ([]*Node, []SelectEntry) {
	b := &builder{
		records:  records,
		index:    make(map[string]int, len(records)),
		children: make(map[string][]int, len(records)),
		visited:  make(map[string]struct{}, len(records)),
		selects:  make([]SelectEntry, 0, len(records)),
	}
	for i, r := range records {
		if _, dup := b.index[r.ID]; !dup {
			b.index[r.ID] = i
		}
	}
	for i, r := range records {
		if !b.primary(i) || domain.IsRootParent(r.ParentID) {
			continue
		}
		b.children[r.ParentID] = append(b.children[r.ParentID], i)
	}

	forest := make([]*Node, 0)
	for i, r := range records {
		if !b.primary(i) || !b.isRoot(r) {
			continue
		}
		forest = append(forest, b.walk(i, 0))
	}

	// Whatever is left hangs off a parent-reference cycle.
	for i, r := range records {
		if !b.primary(i) || b.seen(r.ID) {
			continue
		}
		forest = append(forest, b.walk(b.cycleEntry(i), 0))
	}

	return forest, b.selects
}

// primary reports whether position i holds the first occurrence of its id.
func (b *builder) primary(i int) bool {
	return b.index[b.records[i].ID] == i
}

func (b *builder) isRoot(r domain.Department) bool {
	if domain.IsRootParent(r.ParentID) {
		return true
	}
	_, ok := b.index[r.ParentID]
	return !ok
}

func (b *builder) seen(id string) bool {
	_, ok := b.visited[id]
	return ok
}

// cycleEntry follows parent references from position i until an id repeats
// and returns the position where the cycle closes.
func (b *builder) cycleEntry(i int) int {
	onPath := make(map[string]struct{})
	cur := i
	for {
		id := b.records[cur].ID
		if _, ok := onPath[id]; ok {
			return cur
		}
		onPath[id] = struct{}{}
		next, ok := b.index[b.records[cur].ParentID]
		if !ok {
			return cur
		}
		cur = next
	}
}

func (b *builder) walk(i int, depth int) *Node {
	r := b.records[i]
	b.visited[r.ID] = struct{}{}

	node := &Node{Department: r, Depth: depth}
	b.selects = append(b.selects, SelectEntry{
		ID:       r.ID,
		DeptCode: r.DeptCode,
		DeptName: r.DeptName,
		Depth:    depth,
		Key:      r.ID,
		Value:    r.DeptCode,
		Title:    r.DeptName,
	})

	for _, c := range b.children[r.ID] {
		if b.seen(b.records[c].ID) {
			continue
		}
		node.Children = append(node.Children, b.walk(c, depth+1))
	}
	return node
}

// TreeSize counts the nodes of a forest.
func TreeSize(forest []*Node) int {
	n := 0
	stack := append([]*Node(nil), forest...)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		stack = append(stack, top.Children...)
	}
	return n
}

// MarkSubtreeDisabled disables the first entry whose DeptCode equals deptCode
// together with every entry below it. Descendants are the run of entries that
// follow it with a greater depth. The list is modified in place and returned;
// an unknown or empty code leaves it untouched.
func MarkSubtreeDisabled(list []SelectEntry, deptCode string) []SelectEntry {
	if deptCode == "" {
		return list
	}
	start := -1
	for i := range list {
		if list[i].DeptCode == deptCode {
			start = i
			break
		}
	}
	if start < 0 {
		return list
	}

	list[start].Disabled = true
	for i := start + 1; i < len(list) && list[i].Depth > list[start].Depth; i++ {
		list[i].Disabled = true
	}
	return list
}

// SubtreeIDs returns the ids of the department with the given id and all of
// its descendants, following the same depth-run rule as MarkSubtreeDisabled.
func SubtreeIDs(list []SelectEntry, id string) map[string]struct{} {
	out := make(map[string]struct{})
	for i := range list {
		if list[i].ID != id {
			continue
		}
		out[list[i].ID] = struct{}{}
		for j := i + 1; j < len(list) && list[j].Depth > list[i].Depth; j++ {
			out[list[j].ID] = struct{}{}
		}
		break
	}
	return out
}

// Walk visits the forest depth-first, parents before children.
func Walk(forest []*Node, fn func(n *Node)) {
	for _, n := range forest {
		fn(n)
		Walk(n.Children, fn)
	}
}
