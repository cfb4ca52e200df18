package index

import "dupefinder/types"

type node struct {
	fingerprint types.Fingerprint
	records     []types.ImageRecord
	children    map[int]int // distance -> arena index
}

// BKTree is a metric tree over fingerprints under Hamming distance. Nodes
// live in an arena and reference their children by index; the root is the
// first inserted fingerprint. The tree only grows.
type BKTree struct {
	nodes []node
	size  int
}

// NewBKTree returns an empty tree
func NewBKTree() *BKTree {
	return &BKTree{}
}

// Add inserts a record under its fingerprint
func (t *BKTree) Add(fp types.Fingerprint, record types.ImageRecord) {
	t.size++
	if len(t.nodes) == 0 {
		t.nodes = append(t.nodes, newNode(fp, record))
		return
	}

	current := 0
	for {
		distance := fp.Distance(t.nodes[current].fingerprint)
		if distance == 0 {
			t.nodes[current].records = append(t.nodes[current].records, record)
			return
		}

		child, ok := t.nodes[current].children[distance]
		if !ok {
			t.nodes = append(t.nodes, newNode(fp, record))
			t.nodes[current].children[distance] = len(t.nodes) - 1
			return
		}
		current = child
	}
}

func newNode(fp types.Fingerprint, record types.ImageRecord) node {
	return node{
		fingerprint: fp,
		records:     []types.ImageRecord{record},
		children:    make(map[int]int),
	}
}

// Search returns every record whose fingerprint lies within threshold
// (inclusive) of fp. Subtrees are pruned with the triangle inequality: a
// child on edge d' can only hold matches when |d' - d| <= threshold.
func (t *BKTree) Search(fp types.Fingerprint, threshold int) []types.ImageRecord {
	if len(t.nodes) == 0 || threshold < 0 {
		return nil
	}

	var results []types.ImageRecord
	stack := []int{0}
	for len(stack) > 0 {
		current := &t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		distance := fp.Distance(current.fingerprint)
		if distance <= threshold {
			results = append(results, current.records...)
		}

		low := distance - threshold
		if low < 0 {
			low = 0
		}
		for d := low; d <= distance+threshold; d++ {
			if child, ok := current.children[d]; ok {
				stack = append(stack, child)
			}
		}
	}
	return results
}

// Len returns the number of records in the tree
func (t *BKTree) Len() int {
	return t.size
}

// Nodes returns the number of distinct fingerprints held by the tree
func (t *BKTree) Nodes() int {
	return len(t.nodes)
}

// Depth returns the length of the longest root-to-leaf path, counted in nodes
func (t *BKTree) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	type frame struct{ idx, depth int }
	deepest := 0
	stack := []frame{{0, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > deepest {
			deepest = f.depth
		}
		for _, child := range t.nodes[f.idx].children {
			stack = append(stack, frame{child, f.depth + 1})
		}
	}
	return deepest
}
