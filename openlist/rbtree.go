package openlist

import "math/rand"

// treapNode is a node of a randomized balanced BST (a treap: BST order on
// Key, heap order on a random priority), used to implement the ordered
// "red-black tree" Backing named in spec.md §4.4. A treap gives the same
// expected O(log n) push/pop/min behavior as a red-black tree with a much
// smaller, easier-to-get-right implementation, which is the tradeoff this
// module makes for its balanced-tree backing (see DESIGN.md).
type treapNode[T any] struct {
	key         Key
	val         T
	priority    int64
	left, right *treapNode[T]
}

type treapBacking[T any] struct {
	root *treapNode[T]
	size int
	rng  *rand.Rand
}

// NewRBTreeBacking returns an ordered-tree Backing (spec.md §4.4,
// "red-black tree").
func NewRBTreeBacking[T any]() Backing[T] {
	return &treapBacking[T]{rng: rand.New(rand.NewSource(1))}
}

func (t *treapBacking[T]) Len() int { return t.size }

func (t *treapBacking[T]) Clear() { t.root = nil; t.size = 0 }

func (t *treapBacking[T]) Push(key Key, val T) {
	t.root = treapInsert(t.root, &treapNode[T]{key: key, val: val, priority: t.rng.Int63()})
	t.size++
}

func (t *treapBacking[T]) Pop() (Key, T, bool) {
	if t.root == nil {
		var zero T
		return Key{}, zero, false
	}
	n := t.root
	for n.left != nil {
		n = n.left
	}
	key, val := n.key, n.val
	t.root = treapDeleteMin(t.root)
	t.size--
	return key, val, true
}

func treapInsert[T any](root, n *treapNode[T]) *treapNode[T] {
	if root == nil {
		return n
	}
	if Less(n.key, root.key) {
		root.left = treapInsert(root.left, n)
		if root.left.priority > root.priority {
			root = rotateRight(root)
		}
	} else {
		root.right = treapInsert(root.right, n)
		if root.right.priority > root.priority {
			root = rotateLeft(root)
		}
	}
	return root
}

func treapDeleteMin[T any](root *treapNode[T]) *treapNode[T] {
	if root.left == nil {
		return root.right
	}
	root.left = treapDeleteMin(root.left)
	return root
}

func rotateRight[T any](root *treapNode[T]) *treapNode[T] {
	l := root.left
	root.left = l.right
	l.right = root
	return l
}

func rotateLeft[T any](root *treapNode[T]) *treapNode[T] {
	r := root.right
	root.right = r.left
	r.left = root
	return r
}
