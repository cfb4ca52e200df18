package types_test

import (
	"encoding/json"
	"math/big"
	"math/rand"
	"testing"

	"dupefinder/types"
)

func randomFingerprint(rng *rand.Rand, words int) types.Fingerprint {
	w := make([]uint64, words)
	for i := range w {
		w[i] = rng.Uint64()
	}
	return types.NewFingerprint(w, 0)
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a    []uint64
		b    []uint64
		want int
	}{
		{name: "identical", a: []uint64{0xff, 0x1}, b: []uint64{0xff, 0x1}, want: 0},
		{name: "one bit", a: []uint64{0, 0}, b: []uint64{0, 1}, want: 1},
		{name: "all bits", a: []uint64{0, 0}, b: []uint64{^uint64(0), ^uint64(0)}, want: 128},
		{name: "mixed width", a: []uint64{1}, b: []uint64{1, 3}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := types.NewFingerprint(tt.a, 0)
			b := types.NewFingerprint(tt.b, 0)
			if got := a.Distance(b); got != tt.want {
				t.Fatalf("Distance = %d, want %d", got, tt.want)
			}
			if got := b.Distance(a); got != tt.want {
				t.Fatalf("reverse Distance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDistanceIsMetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		a := randomFingerprint(rng, 4)
		b := randomFingerprint(rng, 4)
		c := randomFingerprint(rng, 4)

		ab, bc, ac := a.Distance(b), b.Distance(c), a.Distance(c)
		if ab < 0 || bc < 0 || ac < 0 {
			t.Fatalf("negative distance: %d %d %d", ab, bc, ac)
		}
		if ab != b.Distance(a) {
			t.Fatalf("distance not symmetric: %d vs %d", ab, b.Distance(a))
		}
		if ac > ab+bc {
			t.Fatalf("triangle inequality violated: d(a,c)=%d > d(a,b)+d(b,c)=%d", ac, ab+bc)
		}
		if a.Distance(a) != 0 {
			t.Fatalf("self distance = %d", a.Distance(a))
		}
	}
}

func TestModMatchesBigInt(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	moduli := []uint64{1, 2, 7, 1024, 2048, 4093, 1 << 40}

	for i := 0; i < 200; i++ {
		fp := randomFingerprint(rng, 4)
		value := new(big.Int)
		value.SetString(fp.String(), 16)

		for _, m := range moduli {
			want := new(big.Int).Mod(value, new(big.Int).SetUint64(m)).Uint64()
			if got := fp.Mod(m); got != want {
				t.Fatalf("Mod(%d) of %s = %d, want %d", m, fp, got, want)
			}
		}
	}
}

func TestParseFingerprintRoundTrip(t *testing.T) {
	fp := types.NewFingerprint([]uint64{0x0123456789abcdef, 0xfedcba9876543210}, 128)

	parsed, err := types.ParseFingerprint(fp.String())
	if err != nil {
		t.Fatalf("ParseFingerprint returned error: %v", err)
	}
	if !parsed.Equal(fp) {
		t.Fatalf("parsed %s, want %s", parsed, fp)
	}

	if _, err := types.ParseFingerprint("abc"); err == nil {
		t.Fatal("expected error for short input")
	}
	if _, err := types.ParseFingerprint("zzzzzzzzzzzzzzzz"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
}

func TestRecordJSONUsesHexFingerprint(t *testing.T) {
	record := types.ImageRecord{
		Path:        "a.png",
		Fingerprint: types.NewFingerprint([]uint64{1}, 64),
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"path":"a.png","fingerprint":"0000000000000001"}`
	if string(data) != want {
		t.Fatalf("json = %s, want %s", data, want)
	}

	var decoded types.ImageRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Fingerprint.Equal(record.Fingerprint) {
		t.Fatalf("decoded fingerprint %s, want %s", decoded.Fingerprint, record.Fingerprint)
	}
}

func TestDuplicateGroupReference(t *testing.T) {
	var empty types.DuplicateGroup
	if ref := empty.Reference(); ref.Path != "" {
		t.Fatalf("empty group reference = %+v", ref)
	}

	group := types.DuplicateGroup{{Path: "a", Similarity: 100}, {Path: "b", Similarity: 97.5}}
	if ref := group.Reference(); ref.Path != "a" || ref.Similarity != 100 {
		t.Fatalf("reference = %+v", ref)
	}
	paths := group.Paths()
	if len(paths) != 2 || paths[0] != "a" || paths[1] != "b" {
		t.Fatalf("paths = %v", paths)
	}
}
