package index_test

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"dupefinder/index"
	"dupefinder/types"
)

func record(i int, fp types.Fingerprint) types.ImageRecord {
	return types.ImageRecord{Path: fmt.Sprintf("img-%03d.png", i), Fingerprint: fp}
}

// flipBits returns a copy of base with n random distinct bits flipped.
func flipBits(rng *rand.Rand, base types.Fingerprint, n int) types.Fingerprint {
	words := base.Words()
	for _, bit := range rng.Perm(base.Bits())[:n] {
		words[bit/64] ^= 1 << uint(63-bit%64)
	}
	return types.NewFingerprint(words, base.Bits())
}

func sortedPaths(records []types.ImageRecord) []string {
	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.Path
	}
	sort.Strings(paths)
	return paths
}

func TestHashTableInsertGetExists(t *testing.T) {
	table := index.NewHashTable(8)
	a := types.NewFingerprint([]uint64{1, 2}, 128)
	b := types.NewFingerprint([]uint64{1, 10}, 128) // same bucket as a: 10 mod 8 == 2
	c := types.NewFingerprint([]uint64{3, 3}, 128)

	table.Insert(a, record(0, a))
	table.Insert(b, record(1, b))
	table.Insert(a, record(2, a))

	got := table.Get(a)
	if len(got) != 2 || got[0].Path != "img-000.png" || got[1].Path != "img-002.png" {
		t.Fatalf("Get(a) = %+v", got)
	}
	if got := table.Get(b); len(got) != 1 || got[0].Path != "img-001.png" {
		t.Fatalf("Get(b) = %+v", got)
	}
	if table.Get(c) != nil {
		t.Fatal("expected nil for missing fingerprint")
	}
	if !table.Exists(a) || table.Exists(c) {
		t.Fatal("Exists returned unexpected result")
	}
	if table.Len() != 3 {
		t.Fatalf("Len = %d, want 3", table.Len())
	}
}

func TestHashTableDefaultBuckets(t *testing.T) {
	if got := index.NewHashTable(0).Buckets(); got != index.DefaultBuckets {
		t.Fatalf("Buckets = %d, want %d", got, index.DefaultBuckets)
	}
}

func TestHashTableEveryRecordInOneBucket(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	table := index.NewHashTable(16)
	seen := map[string]int{}
	var fps []types.Fingerprint
	for i := 0; i < 300; i++ {
		fp := types.NewFingerprint([]uint64{uint64(rng.Intn(40))}, 64)
		fps = append(fps, fp)
		table.Insert(fp, record(i, fp))
	}

	for _, fp := range fps {
		if _, done := seen[fp.Key()]; done {
			continue
		}
		for _, r := range table.Get(fp) {
			seen[r.Path]++
		}
		seen[fp.Key()] = 0
	}
	for i := 0; i < 300; i++ {
		if n := seen[fmt.Sprintf("img-%03d.png", i)]; n != 1 {
			t.Fatalf("record %d found %d times", i, n)
		}
	}
}

func TestBKTreeEmpty(t *testing.T) {
	tree := index.NewBKTree()
	fp := types.NewFingerprint([]uint64{0}, 64)
	if got := tree.Search(fp, 64); got != nil {
		t.Fatalf("Search on empty tree = %+v", got)
	}
	if tree.Depth() != 0 || tree.Len() != 0 {
		t.Fatal("empty tree should have no depth or records")
	}
}

func TestBKTreeExactDuplicatesShareNode(t *testing.T) {
	tree := index.NewBKTree()
	fp := types.NewFingerprint([]uint64{42, 7}, 128)
	tree.Add(fp, record(0, fp))
	tree.Add(fp, record(1, fp))

	if tree.Nodes() != 1 {
		t.Fatalf("Nodes = %d, want 1", tree.Nodes())
	}
	got := sortedPaths(tree.Search(fp, 0))
	if len(got) != 2 || got[0] != "img-000.png" || got[1] != "img-001.png" {
		t.Fatalf("Search = %v", got)
	}
}

func TestBKTreeNegativeThreshold(t *testing.T) {
	tree := index.NewBKTree()
	fp := types.NewFingerprint([]uint64{1}, 64)
	tree.Add(fp, record(0, fp))
	if got := tree.Search(fp, -1); len(got) != 0 {
		t.Fatalf("Search with negative threshold = %+v", got)
	}
}

func TestBKTreeSearchMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tree := index.NewBKTree()

	// Clustered fingerprints so that small thresholds actually hit.
	var records []types.ImageRecord
	centers := make([]types.Fingerprint, 12)
	for i := range centers {
		centers[i] = types.NewFingerprint([]uint64{rng.Uint64(), rng.Uint64(), rng.Uint64(), rng.Uint64()}, 256)
	}
	for i := 0; i < 600; i++ {
		fp := flipBits(rng, centers[rng.Intn(len(centers))], rng.Intn(12))
		r := record(i, fp)
		records = append(records, r)
		tree.Add(fp, r)
	}

	if tree.Len() != len(records) {
		t.Fatalf("Len = %d, want %d", tree.Len(), len(records))
	}

	for q := 0; q < 60; q++ {
		query := flipBits(rng, centers[rng.Intn(len(centers))], rng.Intn(8))
		for _, threshold := range []int{0, 1, 3, 5, 10, 20, 64, 256} {
			var want []types.ImageRecord
			for _, r := range records {
				if query.Distance(r.Fingerprint) <= threshold {
					want = append(want, r)
				}
			}

			got := sortedPaths(tree.Search(query, threshold))
			wantPaths := sortedPaths(want)
			if len(got) != len(wantPaths) {
				t.Fatalf("threshold %d: got %d results, want %d", threshold, len(got), len(wantPaths))
			}
			for i := range got {
				if got[i] != wantPaths[i] {
					t.Fatalf("threshold %d: result %d = %s, want %s", threshold, i, got[i], wantPaths[i])
				}
			}
		}
	}
}

func TestBKTreeIncludesQueryRecord(t *testing.T) {
	tree := index.NewBKTree()
	a := types.NewFingerprint([]uint64{0}, 64)
	b := types.NewFingerprint([]uint64{0xf}, 64)
	tree.Add(a, record(0, a))
	tree.Add(b, record(1, b))

	got := sortedPaths(tree.Search(a, 4))
	if len(got) != 2 {
		t.Fatalf("Search = %v, want both records", got)
	}
	if got := tree.Search(a, 3); len(got) != 1 || got[0].Path != "img-000.png" {
		t.Fatalf("Search threshold 3 = %+v", got)
	}
	if tree.Depth() != 2 {
		t.Fatalf("Depth = %d, want 2", tree.Depth())
	}
}

func TestHashTableGetReturnsCopy(t *testing.T) {
	table := index.NewHashTable(4)
	fp := types.NewFingerprint([]uint64{9}, 64)
	table.Insert(fp, record(0, fp))
	table.Insert(fp, record(1, fp))

	got := table.Get(fp)
	got[0].Path = "changed.png"
	_ = append(got[:1], record(7, fp))

	again := table.Get(fp)
	if len(again) != 2 || again[0].Path != "img-000.png" || again[1].Path != "img-001.png" {
		t.Fatalf("Get after caller mutation = %+v", again)
	}
	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2", table.Len())
	}
}
