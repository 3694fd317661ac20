// Package rbtree provides a self-balancing Red-Black Binary Search Tree
// holding an opaque, caller-defined payload type.
//
// This package builds on bst.Tree, adding automatic balancing by ensuring
// that:
//   - The tree remains approximately balanced, maintaining O(log n) insertions, deletions, and lookups.
//   - No two consecutive red nodes appear in a path.
//   - All paths from the root to leaves contain the same number of black nodes.
//
// # Ordering model
//
// The tree never interprets the bytes of a payload. It is told how to order
// and locate payloads through five callbacks supplied to New:
//
//   - Compare orders two payloads, used while descending to find an
//     insertion point.
//   - KeyOf projects a key out of a payload. Insert uses it to check that
//     FindCompare matches a payload against its own key, and IsTreeValid
//     uses it to name nodes in its errors; Find and Insert do not order by it.
//   - FindCompare orders a bare key against a stored payload, used by Find.
//   - Terminate is invoked once per payload, when Delete removes it or
//     during Teardown, to release any resources the caller's payload holds.
//   - Traverse is invoked once per payload, in key order, during Walk. It
//     must not mutate the tree.
//
// # Usage Example
//
//	type item struct {
//		id   int
//		name string
//	}
//
//	tree, err := rbtree.New(
//		func(id int, p item) int { return id - p.id },
//		func(p item) int { return p.id },
//		func(a, b item) int { return a.id - b.id },
//		func(p item) {},
//		func(p item) {},
//	)
//	node, err := tree.Insert(item{id: 10, name: "ten"})
//	node, found := tree.Find(10)
//
// # Safe Inherited Methods from bst.Tree
//
// The following methods are inherited from bst.Tree and can be used safely:
//   - [bst.Tree.Root]: Returns the root node.
//   - [bst.Tree.Successor]: Returns the next in-order node.
//   - [bst.Tree.Predecessor]: Returns the previous in-order node.
//   - [bst.Tree.TraverseInOrder]: In-order traversal.
//   - [bst.Tree.Min]: Returns the node with the smallest payload.
//   - [bst.Tree.Max]: Returns the node with the largest payload.
//   - [bst.Tree.IsNil]: Checks if a node is the sentinel nil node.
//   - [bst.Tree.Parent]: Returns the parent of a node.
//   - [bst.Tree.Left] / [bst.Tree.Right]: Returns a node's children.
//   - [bst.Tree.Payload]: Returns a node's payload.
//
// # Unsafe Inherited Methods from bst.Tree
//
// The following methods from bst.Tree should not be used in rbtree, as they
// can violate Red-Black properties. They have been shadowed in rbtree, and
// modified to panic if used:
//
//   - [bst.Tree.MustSetMetadata]: ❌ Do not use
//   - [bst.Tree.SetLeft]: ❌ Do not use
//   - [bst.Tree.SetMetadata]: ❌ Do not use
//   - [bst.Tree.SetParent]: ❌ Do not use
//   - [bst.Tree.SetPayload]: ❌ Do not use
//   - [bst.Tree.SetRight]: ❌ Do not use
//   - [bst.Tree.SetRoot]: ❌ Do not use
//   - [bst.Tree.RotateLeft]: ❌ Do not use
//   - [bst.Tree.RotateRight]: ❌ Do not use
//
// ⚠️ Warning: Using any of these methods will likely break the Red-Black
// properties and cause undefined behavior.
//
// # Limitations
//
//   - Not Thread-Safe by default – see WithLock for the optional host-managed lock hook.
//   - No Duplicate Keys – Insert fails with ErrDuplicateKey rather than overwriting.
package rbtree

import (
	"fmt"
	"sync"

	"github.com/cranktree/rbtree/bst"
	"github.com/cranktree/rbtree/internal/assertx"
)

// Color represents the color of a node in a Red-Black Tree.
//
// Nodes are either:
//   - Red (🟥), indicating a temporary imbalance during insertion/deletion.
//   - Black (⬛), maintaining tree balancing properties.
type Color bool

const (
	Red   Color = false // Red-colored node
	Black Color = true  // Black-colored node
)

// String returns a Unicode representation of the node color.
func (c Color) String() string {
	if c == Black {
		return "⬛"
	}
	return "🟥"
}

// FindCompareFunc orders a bare key against a stored payload. It must
// return a negative number if key sorts before payload, zero if they
// match, and a positive number if key sorts after payload.
type FindCompareFunc[K, P any] func(key K, payload P) int

// KeyOfFunc projects the key out of a payload. Insert uses it to check that
// FindCompare(KeyOf(p), p) is zero for the payload being inserted.
type KeyOfFunc[K, P any] func(payload P) K

// CompareFunc orders two payloads. It must return a negative number if a
// sorts before b, zero if they are equivalent, and a positive number if a
// sorts after b.
type CompareFunc[P any] func(a, b P) int

// TerminateFunc releases any resources a payload holds. It is invoked
// exactly once per payload: by Delete for the payload it removes, or
// during Teardown.
type TerminateFunc[P any] func(payload P)

// TraverseFunc consumes a payload during Walk, in ascending key order. It
// must not mutate the tree it was called from; doing so is undefined
// behavior.
type TraverseFunc[P any] func(payload P)

// Tree represents a Red-Black Tree: a self-balancing extension of
// bst.Tree with O(log n) insertions, deletions, and lookups, keyed through
// caller-supplied comparator callbacks rather than a built-in key type.
type Tree[K, P any] struct {
	*bst.Tree[P, Color] // Underlying BST structure

	findCompare FindCompareFunc[K, P]
	keyOf       KeyOfFunc[K, P]
	compare     CompareFunc[P]
	terminate   TerminateFunc[P]
	traverse    TraverseFunc[P]

	size int
	lock *sync.RWMutex // nil unless WithLock is passed to New
}

// config holds New's optional settings, built up by Option functions.
type config struct {
	withLock bool
}

// Option configures optional behavior of a Tree constructed by New.
type Option func(*config)

// WithLock arranges for New to allocate a sync.RWMutex that the host can
// acquire around its own call sequences via Lock/Unlock/RLock/RUnlock.
// The algorithmic core never acquires this lock itself.
func WithLock() Option {
	return func(c *config) {
		c.withLock = true
	}
}

// New creates a new, empty Red-Black Tree.
//
// All five callbacks are required; New returns ErrInvalidArgument if any
// is nil.
func New[K, P any](
	findCompare FindCompareFunc[K, P],
	keyOf KeyOfFunc[K, P],
	compare CompareFunc[P],
	terminate TerminateFunc[P],
	traverse TraverseFunc[P],
	opts ...Option,
) (*Tree[K, P], error) {
	if findCompare == nil || keyOf == nil || compare == nil || terminate == nil || traverse == nil {
		return nil, fmt.Errorf("rbtree.New: %w: findCompare, keyOf, compare, terminate and traverse are all required", ErrInvalidArgument)
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	less := func(a, b P) bool { return compare(a, b) < 0 }

	t := &Tree[K, P]{
		Tree:        bst.New[P, Color](less),
		findCompare: findCompare,
		keyOf:       keyOf,
		compare:     compare,
		terminate:   terminate,
		traverse:    traverse,
	}
	t.Tree.MustSetMetadata(t.Root(), Black) // sentinel nil is always black

	if cfg.withLock {
		t.lock = &sync.RWMutex{}
	}

	return t, nil
}

// Lock acquires the tree's optional host-managed write lock, if WithLock
// was passed to New. It is a no-op otherwise.
func (t *Tree[K, P]) Lock() {
	if t.lock != nil {
		t.lock.Lock()
	}
}

// Unlock releases the tree's optional host-managed write lock. It is a
// no-op if WithLock was not used.
func (t *Tree[K, P]) Unlock() {
	if t.lock != nil {
		t.lock.Unlock()
	}
}

// RLock acquires the tree's optional host-managed read lock. It is a no-op
// if WithLock was not used.
func (t *Tree[K, P]) RLock() {
	if t.lock != nil {
		t.lock.RLock()
	}
}

// RUnlock releases the tree's optional host-managed read lock. It is a
// no-op if WithLock was not used.
func (t *Tree[K, P]) RUnlock() {
	if t.lock != nil {
		t.lock.RUnlock()
	}
}

// isBlack returns true if the passed node is black or nil (nil leaves are considered black)
func (t *Tree[K, P]) isBlack(n *bst.Node[P, Color]) bool {
	if t.IsNil(n) || t.Metadata(n) != Red {
		return true
	}
	return false
}

// isRed returns true if the passed node is not nil and red
func (t *Tree[K, P]) isRed(n *bst.Node[P, Color]) bool {
	if !t.IsNil(n) && t.Metadata(n) == Red {
		return true
	}
	return false
}

// setColor sets the color of node n, if node n is not the sentinel nil node
func (t *Tree[K, P]) setColor(n *bst.Node[P, Color], c Color) {
	if !t.IsNil(n) {
		t.Tree.SetMetadata(n, c)
	}
}

// Find looks up the node whose payload's key matches key.
//
// The search follows standard BST lookup rules using FindCompare, and
// returns (node, false) if no matching payload is stored — callers must
// not dereference the returned node in that case; it is the tree's
// sentinel nil node.
func (t *Tree[K, P]) Find(key K) (*bst.Node[P, Color], bool) {
	curr := t.Root()
	for !t.IsNil(curr) {
		c := t.findCompare(key, t.Payload(curr))
		if c == 0 {
			return curr, true
		} else if c < 0 {
			curr = t.Left(curr)
		} else {
			curr = t.Right(curr)
		}
	}
	return curr, false // curr is the sentinel here
}

// Insert adds payload to the Red-Black Tree while maintaining
// self-balancing properties.
//
// If a payload with an equivalent key already exists, the tree is left
// unchanged and Insert returns ErrDuplicateKey; the rejected payload is
// never adopted by the tree.
func (t *Tree[K, P]) Insert(payload P) (*bst.Node[P, Color], error) {
	assertx.True(t.compare(payload, payload) == 0, "rbtree: Compare is not reflexive for %v", payload)
	assertx.True(t.findCompare(t.keyOf(payload), payload) == 0,
		"rbtree: FindCompare and KeyOf disagree for %v", payload)

	n, exists := t.Tree.Insert(payload)
	if exists {
		return nil, fmt.Errorf("rbtree.Insert: %w", ErrDuplicateKey)
	}

	t.setColor(n, Red)
	t.insertFixup(n)
	t.size++

	return n, nil
}

// insertFixup performs recoloring/rotation of the red-black tree after an insertion takes place
//
// Red-Black Fixup Cases
// After inserting a red node, the tree may violate the Red-Black properties. The following cases
// are applied iteratively until balance is restored:
//
//  1. Parent and uncle are red: Recolor and move up the tree.
//  2. Parent is red, uncle is black, and inserted node is a right child: Rotate left.
//  3. Parent is red, uncle is black, and inserted node is a left child: Rotate right.
//
// The function also ensures that the root always remains black after insertion.
func (t *Tree[K, P]) insertFixup(z *bst.Node[P, Color]) {
	for t.isRed(t.Parent(z)) {
		if t.Parent(z) == t.Left(t.Parent(t.Parent(z))) { // If z's parent is a left child
			y := t.Right(t.Parent(t.Parent(z))) // y is z's uncle
			if t.isRed(y) {                     // Case A: Parent & Uncle are Red
				t.setColor(t.Parent(z), Black)
				t.setColor(y, Black)
				t.setColor(t.Parent(t.Parent(z)), Red)
				z = t.Parent(t.Parent(z))
			} else {
				if z == t.Right(t.Parent(z)) { // Case B: z is a right (inner) child
					z = t.Parent(z)
					t.Tree.RotateLeft(z)
				}
				// Case C: z is a left (outer) child
				t.setColor(t.Parent(z), Black)
				t.setColor(t.Parent(t.Parent(z)), Red)
				t.Tree.RotateRight(t.Parent(t.Parent(z)))
			}
		} else {
			// Mirror the logic with left/right swapped
			y := t.Left(t.Parent(t.Parent(z)))
			if t.isRed(y) {
				t.setColor(t.Parent(z), Black)
				t.setColor(y, Black)
				t.setColor(t.Parent(t.Parent(z)), Red)
				z = t.Parent(t.Parent(z))
			} else {
				if z == t.Left(t.Parent(z)) {
					z = t.Parent(z)
					t.Tree.RotateRight(z)
				}
				t.setColor(t.Parent(z), Black)
				t.setColor(t.Parent(t.Parent(z)), Red)
				t.Tree.RotateLeft(t.Parent(t.Parent(z)))
			}
		}
	}
	t.setColor(t.Root(), Black)
}

// Delete removes the payload whose key matches key from the Red-Black
// Tree, rebalancing as needed.
//
// If no payload with that key is stored, Delete is a silent no-op and
// returns false; this is deliberate, not an error (errors.go defines no
// not-found error).
// On a successful delete, Terminate is invoked once with the removed
// payload before Delete returns.
func (t *Tree[K, P]) Delete(key K) bool {
	z, found := t.Find(key)
	if !found {
		return false
	}

	var x, y *bst.Node[P, Color]

	if t.IsNil(t.Left(z)) || t.IsNil(t.Right(z)) {
		y = z // deletion case 1: fewer than two children
	} else {
		y = t.Successor(z) // deletion case 2: two children, splice in successor
	}

	if !t.IsNil(t.Left(y)) {
		x = t.Left(y)
	} else {
		x = t.Right(y)
	}

	// update replacement node's parent
	t.Tree.SetParent(x, t.Parent(y))
	if t.IsNil(t.Parent(y)) {
		t.Tree.SetRoot(x)
	} else if y == t.Left(t.Parent(y)) {
		t.Tree.SetLeft(t.Parent(y), x)
	} else {
		t.Tree.SetRight(t.Parent(y), x)
	}

	removedPayload := t.Payload(z)
	if y != z {
		// z's structural slot survives (at most its right link was
		// rewired above, when y was z's right child); move y's payload
		// onto it and let y's own node, now
		// spliced out, be discarded. z keeps its own color: y is the
		// node physically removed, and isBlack(y)/deleteFixup already
		// account for y's color.
		t.Tree.SetPayload(z, t.Payload(y))
	}

	if t.isBlack(y) {
		t.deleteFixup(x)
	}
	t.resetSentinel()
	t.size--

	t.terminate(removedPayload)

	return true
}

// deleteFixup restores Red-Black Tree properties after a node deletion.
//
// After deletion, the Red-Black Tree may violate one or more of the following properties:
// - The root is always black.
// - Red nodes cannot have red children.
// - Every path from the root to a leaf must have the same number of black nodes.
//
// This function fixes violations by applying four fixup cases:
//
//  1. Sibling is red: Perform rotation and recoloring.
//  2. Sibling and its children are black: Recolor sibling and move problem up the tree.
//  3. Sibling has one red child (far side is black): Rotate sibling and recolor.
//  4. Sibling's far-side child is red: Rotate parent, recolor, and fix final issues.
//
// The function proceeds iteratively, moving up the tree until balance is restored.
func (t *Tree[K, P]) deleteFixup(x *bst.Node[P, Color]) {
	for x != t.Root() && t.isBlack(x) {
		if x == t.Left(t.Parent(x)) { // is x a left child?
			w := t.Right(t.Parent(x))
			if t.isRed(w) {
				// case 1
				t.setColor(w, Black)
				t.setColor(t.Parent(x), Red)
				t.Tree.RotateLeft(t.Parent(x))
				w = t.Right(t.Parent(x))
			}
			if t.isBlack(t.Left(w)) && t.isBlack(t.Right(w)) {
				// case 2
				t.setColor(w, Red)
				x = t.Parent(x)
			} else {
				if t.isBlack(t.Right(w)) {
					// case 3
					t.setColor(t.Left(w), Black)
					t.setColor(w, Red)
					t.Tree.RotateRight(w)
					w = t.Right(t.Parent(x))
				}
				// case 4
				t.setColor(w, t.Metadata(t.Parent(x)))
				t.setColor(t.Parent(x), Black)
				t.setColor(t.Right(w), Black)
				t.Tree.RotateLeft(t.Parent(x))
				x = t.Root()
			}
		} else {
			// same as above but with right and left exchanged
			w := t.Left(t.Parent(x))
			if t.isRed(w) {
				// case 1
				t.setColor(w, Black)
				t.setColor(t.Parent(x), Red)
				t.Tree.RotateRight(t.Parent(x))
				w = t.Left(t.Parent(x))
			}
			if t.isBlack(t.Right(w)) && t.isBlack(t.Left(w)) {
				// case 2
				t.setColor(w, Red)
				x = t.Parent(x)
			} else {
				if t.isBlack(t.Left(w)) {
					// case 3
					t.setColor(t.Right(w), Black)
					t.setColor(w, Red)
					t.Tree.RotateLeft(w)
					w = t.Left(t.Parent(x))
				}
				// case 4
				t.setColor(w, t.Metadata(t.Parent(x)))
				t.setColor(t.Parent(x), Black)
				t.setColor(t.Left(w), Black)
				t.Tree.RotateRight(t.Parent(x))
				x = t.Root()
			}
		}
	}
	t.setColor(x, Black)
}

// resetSentinel re-initializes the sentinel nil node to maintain
// Red-Black Tree invariants.
//
// deleteFixup may write to the sentinel's parent link when x itself is the
// sentinel (reading x.parent is how the loop ascends); this restores the
// sentinel to a clean state after every Delete.
func (t *Tree[K, P]) resetSentinel() {
	sentinel := t.Sentinel()
	t.Tree.SetLeft(sentinel, sentinel)
	t.Tree.SetRight(sentinel, sentinel)
	t.Tree.SetParent(sentinel, sentinel)
	t.setColor(sentinel, Black)
}

// Walk performs an in-order traversal of the tree, invoking Traverse once
// per payload in ascending key order. Traverse must not mutate the tree.
func (t *Tree[K, P]) Walk() {
	if t.IsNil(t.Root()) {
		return
	}
	t.TraverseInOrder(t.Root(), func(n *bst.Node[P, Color]) bool {
		t.traverse(t.Payload(n))
		return true
	})
}

// Teardown visits every node in post-order (left, right, self), invoking
// Terminate once per payload, then drains the tree back to empty. After
// Teardown returns, the tree is reusable exactly as a freshly constructed
// one (Size is 0, Root is the sentinel).
//
// Teardown is the only operation that invokes Terminate in bulk; Walk's
// Traverse callback is strictly read-only.
func (t *Tree[K, P]) Teardown() {
	var sweep func(n *bst.Node[P, Color])
	sweep = func(n *bst.Node[P, Color]) {
		if t.IsNil(n) {
			return
		}
		sweep(t.Left(n))
		sweep(t.Right(n))
		t.terminate(t.Payload(n))
	}
	sweep(t.Root())

	t.Tree.SetRoot(t.Sentinel())
	t.resetSentinel()
	t.size = 0
}

// IsTreeValid verifies whether the Red-Black Tree maintains all BST and
// Red-Black properties.
//
// This function first validates the underlying BST structure, then
// applies the Red-Black Tree checks:
//  1. Every node is either red or black: enforced by Color's two-valued type.
//  2. The root is always black.
//  3. Every leaf (sentinel nil node) is black.
//  4. Red nodes cannot have red children.
//  5. All paths from a node to its descendant leaves have the same number of black nodes.
func (t *Tree[K, P]) IsTreeValid() error {
	if err := t.Tree.IsTreeValid(); err != nil {
		return fmt.Errorf("underlying BST is invalid: %w", err)
	}

	if !t.isBlack(t.Root()) {
		return fmt.Errorf("root node is not black")
	}

	if t.Metadata(t.Sentinel()) != Black {
		return fmt.Errorf("sentinel nil node is not black")
	}

	var err error
	firstLeaf := true
	blackCount := 0

	if !t.IsNil(t.Root()) {
		t.TraverseInOrder(t.Root(), func(n *bst.Node[P, Color]) bool {
			if t.isRed(n) && t.isRed(t.Left(n)) {
				err = fmt.Errorf("node %v is red and has red left child", t.keyOf(t.Payload(n)))
				return false
			}
			if t.isRed(n) && t.isRed(t.Right(n)) {
				err = fmt.Errorf("node %v is red and has red right child", t.keyOf(t.Payload(n)))
				return false
			}

			if !(t.IsLeaf(n) || t.IsUnary(n)) {
				return true
			}
			bc := 0
			for cur := n; !t.IsNil(cur); cur = t.Parent(cur) {
				if t.isBlack(cur) {
					bc++
				}
			}
			if firstLeaf {
				blackCount = bc
				firstLeaf = false
				return true
			}
			if bc != blackCount {
				err = fmt.Errorf("node %v has black count mismatch", t.keyOf(t.Payload(n)))
				return false
			}
			return true
		})
	}
	return err
}

// Size returns the total number of payloads currently stored in the tree.
func (t *Tree[K, P]) Size() int {
	return t.size
}

// Deprecated: should not be called on an rbtree.Tree, doing so may corrupt the tree.
func (t *Tree[K, P]) MustSetMetadata() {
	panic(fmt.Errorf("MustSetMetadata should not be called on an rbtree.Tree, doing so may corrupt the tree"))
}

// Deprecated: should not be called on an rbtree.Tree, doing so may corrupt the tree.
func (t *Tree[K, P]) RotateLeft() {
	panic(fmt.Errorf("RotateLeft should not be called on an rbtree.Tree, doing so may corrupt the tree"))
}

// Deprecated: should not be called on an rbtree.Tree, doing so may corrupt the tree.
func (t *Tree[K, P]) RotateRight() {
	panic(fmt.Errorf("RotateRight should not be called on an rbtree.Tree, doing so may corrupt the tree"))
}

// Deprecated: should not be called on an rbtree.Tree, doing so may corrupt the tree.
func (t *Tree[K, P]) SetLeft() {
	panic(fmt.Errorf("SetLeft should not be called on an rbtree.Tree, doing so may corrupt the tree"))
}

// Deprecated: should not be called on an rbtree.Tree, doing so may corrupt the tree.
func (t *Tree[K, P]) SetMetadata() {
	panic(fmt.Errorf("SetMetadata should not be called on an rbtree.Tree, doing so may corrupt the tree"))
}

// Deprecated: should not be called on an rbtree.Tree, doing so may corrupt the tree.
func (t *Tree[K, P]) SetParent() {
	panic(fmt.Errorf("SetParent should not be called on an rbtree.Tree, doing so may corrupt the tree"))
}

// Deprecated: should not be called on an rbtree.Tree, doing so may corrupt the tree.
func (t *Tree[K, P]) SetPayload() {
	panic(fmt.Errorf("SetPayload should not be called on an rbtree.Tree, doing so may corrupt the tree"))
}

// Deprecated: should not be called on an rbtree.Tree, doing so may corrupt the tree.
func (t *Tree[K, P]) SetRight() {
	panic(fmt.Errorf("SetRight should not be called on an rbtree.Tree, doing so may corrupt the tree"))
}

// Deprecated: should not be called on an rbtree.Tree, doing so may corrupt the tree.
func (t *Tree[K, P]) SetRoot() {
	panic(fmt.Errorf("SetRoot should not be called on an rbtree.Tree, doing so may corrupt the tree"))
}
