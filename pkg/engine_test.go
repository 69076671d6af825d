package hashengine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func mustNew(t *testing.T, capacity int, opts ...Option) *Engine {
	t.Helper()
	e, err := New(capacity, opts...)
	if err != nil {
		t.Fatalf("New(%d): %v", capacity, err)
	}
	return e
}

/* -------------------------------------------------------------------------
   Construction & validation
   ------------------------------------------------------------------------- */

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for capacity=0, got %v", err)
	}
	if _, err := New(-5); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for capacity=-5, got %v", err)
	}
}

func TestNewClampsCapacityIntoRange(t *testing.T) {
	e := mustNew(t, 1)
	if got := e.Stats().Capacity; got != 16 {
		t.Fatalf("expected clamp up to MinCapacity(16), got %d", got)
	}
	e2 := mustNew(t, 10_000_000)
	if got := e2.Stats().Capacity; got != 1_048_576 {
		t.Fatalf("expected clamp down to MaxCapacity, got %d", got)
	}
}

func TestPutGetDeleteRejectEmptyArguments(t *testing.T) {
	e := mustNew(t, 16)
	if err := e.Put(nil, []byte("v")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for nil key, got %v", err)
	}
	if err := e.Put([]byte("k"), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for nil value, got %v", err)
	}
	if _, err := e.Get(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for nil key on Get, got %v", err)
	}
	if err := e.Delete([]byte{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero-length key on Delete, got %v", err)
	}
}

/* -------------------------------------------------------------------------
   Scenarios from spec.md §8 (literal values)
   ------------------------------------------------------------------------- */

func TestScenarioRoundTrip(t *testing.T) {
	e := mustNew(t, 16)
	if err := e.Put([]byte("alpha"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, err := e.Get([]byte("alpha"))
	if err != nil || string(v) != "1" {
		t.Fatalf("get: %q, %v", v, err)
	}
	if got := e.Stats().ItemCount; got != 1 {
		t.Fatalf("expected item count 1, got %d", got)
	}
}

func TestScenarioUpdate(t *testing.T) {
	e := mustNew(t, 16)
	must(t, e.Put([]byte("k"), []byte("v1")))
	must(t, e.Put([]byte("k"), []byte("v2")))
	if got := e.Stats().ItemCount; got != 1 {
		t.Fatalf("update must not change item count, got %d", got)
	}
	v, err := e.Get([]byte("k"))
	if err != nil || string(v) != "v2" {
		t.Fatalf("expected v2, got %q, %v", v, err)
	}
}

func TestScenarioDeleteSemantics(t *testing.T) {
	e := mustNew(t, 16)
	must(t, e.Put([]byte("k"), []byte("v")))
	if err := e.Delete([]byte("k")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.Get([]byte("k")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	if err := e.Delete([]byte("k")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFound on second delete, got %v", err)
	}
}

func TestScenarioGrow(t *testing.T) {
	e := mustNew(t, 16)
	keys := make([][]byte, 13)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("key_%d", i))
		must(t, e.Put(keys[i], []byte(fmt.Sprintf("val_%d", i))))
	}
	if got := e.Stats().Capacity; got <= 16 {
		t.Fatalf("expected capacity to grow past 16 after 13th insert, got %d", got)
	}
	for i, k := range keys {
		v, err := e.Get(k)
		want := fmt.Sprintf("val_%d", i)
		if err != nil || string(v) != want {
			t.Fatalf("key %q: got %q, %v; want %q", k, v, err, want)
		}
	}
}

func TestScenarioCollisionChainSurvivesMiddleDelete(t *testing.T) {
	e := mustNew(t, 16)
	keys := make([][]byte, 10)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("ckey%d", i))
		must(t, e.Put(keys[i], []byte(fmt.Sprintf("cval%d", i))))
	}
	mid := 5
	must(t, e.Delete(keys[mid]))
	for i, k := range keys {
		v, err := e.Get(k)
		if i == mid {
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("deleted key %q still found", k)
			}
			continue
		}
		want := fmt.Sprintf("cval%d", i)
		if err != nil || string(v) != want {
			t.Fatalf("key %q: got %q, %v; want %q (tombstone-skip broken)", k, v, err, want)
		}
	}
}

func TestScenarioCommutativity(t *testing.T) {
	a := mustNew(t, 16)
	b := mustNew(t, 16)

	must(t, a.Put([]byte("k1"), []byte("v1")))
	must(t, a.Put([]byte("k2"), []byte("v2")))

	must(t, b.Put([]byte("k2"), []byte("v2")))
	must(t, b.Put([]byte("k1"), []byte("v1")))

	for _, k := range [][]byte{[]byte("k1"), []byte("k2")} {
		va, erra := a.Get(k)
		vb, errb := b.Get(k)
		if erra != nil || errb != nil || string(va) != string(vb) {
			t.Fatalf("engines diverged on key %q: (%q,%v) vs (%q,%v)", k, va, erra, vb, errb)
		}
	}
}

/* -------------------------------------------------------------------------
   Boundary cases
   ------------------------------------------------------------------------- */

func TestEmptyTableGetDeleteNotFound(t *testing.T) {
	e := mustNew(t, 16)
	if _, err := e.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err := e.Delete([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSingleEntryLifecycleRestoresEmpty(t *testing.T) {
	e := mustNew(t, 16)
	must(t, e.Put([]byte("only"), []byte("v")))
	if got := e.Stats().ItemCount; got != 1 {
		t.Fatalf("expected 1 item, got %d", got)
	}
	must(t, e.Delete([]byte("only")))
	if got := e.Stats().ItemCount; got != 0 {
		t.Fatalf("expected 0 items after delete, got %d", got)
	}
}

func TestKeysDifferingInLastByteShareChainBothRetrievable(t *testing.T) {
	e := mustNew(t, 16)
	must(t, e.Put([]byte("keyA"), []byte("va")))
	must(t, e.Put([]byte("keyB"), []byte("vb")))
	va, err := e.Get([]byte("keyA"))
	if err != nil || string(va) != "va" {
		t.Fatalf("keyA: %q, %v", va, err)
	}
	vb, err := e.Get([]byte("keyB"))
	if err != nil || string(vb) != "vb" {
		t.Fatalf("keyB: %q, %v", vb, err)
	}
}

func TestBinaryKeysWithZeroBytes(t *testing.T) {
	e := mustNew(t, 16)
	k1 := []byte{0, 0, 0, 1}
	k2 := []byte{0, 0, 0, 2}
	must(t, e.Put(k1, []byte("one")))
	must(t, e.Put(k2, []byte("two")))
	v1, err := e.Get(k1)
	if err != nil || string(v1) != "one" {
		t.Fatalf("k1: %q, %v", v1, err)
	}
	v2, err := e.Get(k2)
	if err != nil || string(v2) != "two" {
		t.Fatalf("k2: %q, %v", v2, err)
	}
}

func TestMaxSizeKeyAndValue(t *testing.T) {
	e := mustNew(t, 16)
	key := make([]byte, 16*1024)
	val := make([]byte, 128*1024)
	for i := range key {
		key[i] = byte(i)
	}
	for i := range val {
		val[i] = byte(i * 3)
	}
	must(t, e.Put(key, val))
	got, err := e.Get(key)
	if err != nil || len(got) != len(val) {
		t.Fatalf("large value round trip failed: len=%d err=%v", len(got), err)
	}
	for i := range val {
		if got[i] != val[i] {
			t.Fatalf("large value corrupted at byte %d", i)
		}
	}
}

func TestLoadFactorBoundaryDoesNotResizeEarly(t *testing.T) {
	e := mustNew(t, 16)
	// floor(16*0.75) = 12: the 12th insert must not grow the table.
	for i := 0; i < 12; i++ {
		must(t, e.Put([]byte(fmt.Sprintf("b%d", i)), []byte("v")))
	}
	if got := e.Stats().Capacity; got != 16 {
		t.Fatalf("expected capacity still 16 at 12/16 load, got %d", got)
	}
	must(t, e.Put([]byte("b12"), []byte("v")))
	if got := e.Stats().Capacity; got <= 16 {
		t.Fatalf("expected the 13th insert to trigger a grow, got capacity %d", got)
	}
}

func TestShrinkBoundaryNeverBelowMinCapacity(t *testing.T) {
	e := mustNew(t, 1024)
	keys := make([][]byte, 50)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("s%d", i))
		must(t, e.Put(keys[i], []byte("v")))
	}
	for _, k := range keys {
		must(t, e.Delete(k))
	}
	if got := e.Stats().Capacity; got < 16 {
		t.Fatalf("capacity fell below MinCapacity(16): %d", got)
	}
}

func TestShrinkCooldownBlocksShrinkRightAfterResize(t *testing.T) {
	e := mustNew(t, 1024, WithShrinkCooldown(time.Hour))
	keys := make([][]byte, 50)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("sc%d", i))
		must(t, e.Put(keys[i], []byte("v")))
	}
	for _, k := range keys {
		must(t, e.Delete(k))
	}
	// The table's current generation is at most a few microseconds old, far
	// short of the configured one-hour cooldown: no shrink should occur.
	if got := e.Stats().Capacity; got != 1024 {
		t.Fatalf("expected cooldown to block shrink, capacity changed to %d", got)
	}
}

func TestTombstoneReuseDoesNotMonotonicallyGrow(t *testing.T) {
	e := mustNew(t, 16)
	key := []byte("churn")
	for i := 0; i < 500; i++ {
		must(t, e.Put(key, []byte("v")))
		must(t, e.Delete(key))
	}
	if got := e.Stats().Capacity; got > 64 {
		t.Fatalf("repeated put/delete of a single key grew capacity unreasonably: %d", got)
	}
}

/* -------------------------------------------------------------------------
   Properties P1-P9 (spec.md §8); P10 via concurrent harness below.
   ------------------------------------------------------------------------- */

func TestP1CountConsistency(t *testing.T) {
	e := mustNew(t, 16)
	for i := 0; i < 40; i++ {
		must(t, e.Put([]byte(fmt.Sprintf("p%d", i)), []byte("v")))
	}
	for i := 0; i < 40; i += 3 {
		must(t, e.Delete([]byte(fmt.Sprintf("p%d", i))))
	}
	vs := e.StatsVerbose()
	occupied := 0
	for i := 0; i < 40; i++ {
		if _, err := e.Get([]byte(fmt.Sprintf("p%d", i))); err == nil {
			occupied++
		}
	}
	if vs.ItemCount != occupied {
		t.Fatalf("item count %d does not match occupied count %d", vs.ItemCount, occupied)
	}
}

func TestP6UpdatePreservesCount(t *testing.T) {
	e := mustNew(t, 16)
	must(t, e.Put([]byte("k"), []byte("v1")))
	before := e.Stats().ItemCount
	must(t, e.Put([]byte("k"), []byte("v2")))
	after := e.Stats().ItemCount
	if before != after {
		t.Fatalf("update changed item count: %d -> %d", before, after)
	}
	v, _ := e.Get([]byte("k"))
	if string(v) != "v2" {
		t.Fatalf("expected v2, got %q", v)
	}
}

func TestP7CapacityBounds(t *testing.T) {
	e := mustNew(t, 16)
	for i := 0; i < 2000; i++ {
		must(t, e.Put([]byte(fmt.Sprintf("cap%d", i)), []byte("v")))
		cap := e.Stats().Capacity
		if cap < 16 || cap > 1_048_576 {
			t.Fatalf("capacity out of bounds: %d", cap)
		}
	}
}

func TestP8LoadFactorDisciplineAfterPut(t *testing.T) {
	e := mustNew(t, 16)
	for i := 0; i < 300; i++ {
		must(t, e.Put([]byte(fmt.Sprintf("lf%d", i)), []byte("v")))
		s := e.Stats()
		load := float64(s.ItemCount) / float64(s.Capacity)
		if load > 0.75 && s.Capacity != 1_048_576 {
			t.Fatalf("load factor %.3f exceeds 0.75 at capacity %d", load, s.Capacity)
		}
	}
}

func TestP9PostResizePurityNoTombstonesCrossed(t *testing.T) {
	e := mustNew(t, 16)
	for i := 0; i < 30; i++ {
		must(t, e.Put([]byte(fmt.Sprintf("r%d", i)), []byte("v")))
	}
	// 30 items sit in a 64-bucket table. Deleting 15 leaves tombstones
	// (15/64 stays above MinLoadFactor, so no shrink); the 34th insert then
	// finds 48 items and grows to 128. Confirm the fresh table holds no
	// tombstones and every live key is still reachable.
	for i := 0; i < 30; i += 2 {
		must(t, e.Delete([]byte(fmt.Sprintf("r%d", i))))
	}
	for i := 0; i < 34; i++ {
		must(t, e.Put([]byte(fmt.Sprintf("r%d", 1000+i)), []byte("v")))
	}
	vs := e.StatsVerbose()
	if vs.Capacity != 128 {
		t.Fatalf("expected the inserts to grow the table to 128, got %d", vs.Capacity)
	}
	if vs.TombstoneCount != 0 {
		t.Fatalf("expected no tombstones right after the resize, got %d", vs.TombstoneCount)
	}
	for i := 1; i < 30; i += 2 {
		if _, err := e.Get([]byte(fmt.Sprintf("r%d", i))); err != nil {
			t.Fatalf("surviving key r%d not found after churn: %v", i, err)
		}
	}
}

/* -------------------------------------------------------------------------
   P10: concurrent linearizability smoke test.
   ------------------------------------------------------------------------- */

func TestConcurrentPutGetInvariants(t *testing.T) {
	e := mustNew(t, 16)
	const workers = 8
	const perWorker = 200

	var g errgroup.Group
	var mu sync.Mutex
	seen := make(map[string]string)

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("w%d-%d", w, i%20)
				val := fmt.Sprintf("v%d-%d", w, i)
				if err := e.Put([]byte(key), []byte(val)); err != nil {
					return err
				}
				mu.Lock()
				seen[key] = val
				mu.Unlock()

				if _, err := e.Get([]byte(key)); err != nil {
					return fmt.Errorf("read-your-write failed for %q: %w", key, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent workload failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for k, want := range seen {
		got, err := e.Get([]byte(k))
		if err != nil {
			t.Fatalf("final read of %q failed: %v", k, err)
		}
		// Workers never share a key prefix, so each key has exactly one
		// writer and its final value is that worker's last write.
		if string(got) != want {
			t.Fatalf("final value of %q is %q, want %q", k, got, want)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
