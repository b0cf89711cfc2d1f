package openlist

import (
	"math/rand"
	"testing"

	"github.com/coregx/planit"
	"github.com/coregx/planit/pool"
)

func TestPriorityQueuePopsInKeyOrder(t *testing.T) {
	q := NewPriorityQueue[int]()
	keys := []int64{5, 1, 4, 2, 3, 0}
	for _, k := range keys {
		q.Push(SimpleKey(k), int(k))
	}
	var got []int64
	for q.Len() > 0 {
		k, _, ok := q.Pop()
		if !ok {
			t.Fatal("Pop returned !ok with nonzero Len")
		}
		got = append(got, k.Primary)
	}
	want := []int64{0, 1, 2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestPriorityQueuePromotesAboveThreshold(t *testing.T) {
	q := NewPriorityQueue[int]()
	q.Push(SimpleKey(10), 10)
	q.Push(SimpleKey(bucketPromoteThreshold+5), 999)
	if !q.promoted {
		t.Fatal("expected promotion to heap mode")
	}
	k, v, ok := q.Pop()
	if !ok || k.Primary != 10 || v != 10 {
		t.Fatalf("Pop() = %v,%v,%v, want 10,10,true", k, v, ok)
	}
}

func fuzzBacking(t *testing.T, b Backing[int]) {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	n := 500
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = rng.Int63n(1000) - 500
		b.Push(SimpleKey(keys[i]), i)
	}
	if b.Len() != n {
		t.Fatalf("Len() = %d, want %d", b.Len(), n)
	}
	last := int64(-1 << 62)
	count := 0
	for {
		k, _, ok := b.Pop()
		if !ok {
			break
		}
		if k.Primary < last {
			t.Fatalf("pop out of order: %d after %d", k.Primary, last)
		}
		last = k.Primary
		count++
	}
	if count != n {
		t.Fatalf("popped %d entries, want %d", count, n)
	}
}

func TestBackingsPopInAscendingOrder(t *testing.T) {
	t.Run("bucket", func(t *testing.T) { fuzzBacking(t, NewBucketBacking[int]()) })
	t.Run("heap", func(t *testing.T) { fuzzBacking(t, NewHeapBacking[int]()) })
	t.Run("rbtree", func(t *testing.T) { fuzzBacking(t, NewRBTreeBacking[int]()) })
	t.Run("splay", func(t *testing.T) { fuzzBacking(t, NewSplayBacking[int]()) })
}

func TestFIFOBackingIgnoresKey(t *testing.T) {
	b := NewFIFOBacking[int]()
	b.Push(SimpleKey(100), 1)
	b.Push(SimpleKey(0), 2)
	b.Push(SimpleKey(50), 3)
	for _, want := range []int{1, 2, 3} {
		_, v, ok := b.Pop()
		if !ok || v != want {
			t.Fatalf("Pop() = %v,%v, want %v,true", v, ok, want)
		}
	}
}

func TestLazyListRoundTrip(t *testing.T) {
	l := NewLazyList(HeapBackingKind)
	l.Push(SimpleKey(3), pool.StateID(1), planit.OpID(10))
	l.Push(SimpleKey(1), pool.StateID(2), planit.OpID(20))
	k, e, ok := l.Pop()
	if !ok || k.Primary != 1 || e.Parent != 2 || e.Op != 20 {
		t.Fatalf("Pop() = %v,%+v,%v", k, e, ok)
	}
}

func TestTieBreakLexicographic(t *testing.T) {
	q := NewPriorityQueue[string]()
	q.Push(Key{Primary: 1, Tie: []int64{5}}, "b")
	q.Push(Key{Primary: 1, Tie: []int64{2}}, "a")
	_, v, _ := q.Pop()
	if v != "a" {
		t.Fatalf("got %q, want tie-break to favor smaller Tie (%q)", v, "a")
	}
}
