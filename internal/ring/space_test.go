package ring

import "testing"

func TestInOpenTruthTable(t *testing.T) {
	cases := []struct {
		a, k, b ID
		want    bool
	}{
		{a: 100, k: 200, b: 400, want: true},
		{a: 100, k: 50, b: 400, want: false},
		{a: 100, k: 100, b: 400, want: false},
		{a: 100, k: 400, b: 400, want: false},
		{a: 800, k: 900, b: 100, want: true}, // wraparound
		{a: 800, k: 50, b: 100, want: true},  // wraparound
		{a: 800, k: 200, b: 100, want: false},
		{a: 100, k: 100, b: 100, want: false}, // a==b excludes a itself
		{a: 100, k: 200, b: 100, want: true},  // a==b includes everyone else
	}
	for _, c := range cases {
		got := InOpen(c.a, c.k, c.b)
		if got != c.want {
			t.Errorf("InOpen(%d,%d,%d) = %v, want %v", c.a, c.k, c.b, got, c.want)
		}
	}
}

func TestInHalfOpenIncludesUpperBound(t *testing.T) {
	if !InHalfOpen(100, 400, 400) {
		t.Error("InHalfOpen should include k == b")
	}
	if InHalfOpen(100, 100, 400) {
		t.Error("InHalfOpen should exclude k == a")
	}
}

func TestBetweennessExactlyOneOfTwoOrientations(t *testing.T) {
	// property 1 from spec.md §8: for a != b and any k, exactly one of
	// InOpen(a,k,b) and (InOpen(b,k,a) or k==a or k==b) holds.
	space, err := NewSpace(6) // R=64, small enough to brute force
	if err != nil {
		t.Fatal(err)
	}
	for a := ID(0); a < ID(space.R); a++ {
		for b := ID(0); b < ID(space.R); b++ {
			if a == b {
				continue
			}
			for k := ID(0); k < ID(space.R); k++ {
				left := InOpen(a, k, b)
				right := InOpen(b, k, a) || k == a || k == b
				if left == right {
					t.Fatalf("a=%d b=%d k=%d: left=%v right=%v, want exactly one true", a, b, k, left, right)
				}
			}
		}
	}
}

func TestHashDeterministic(t *testing.T) {
	space, err := NewSpace(10)
	if err != nil {
		t.Fatal(err)
	}
	a := space.HashString("node-1:4000")
	b := space.HashString("node-1:4000")
	if a != b {
		t.Errorf("hash not deterministic: %d != %d", a, b)
	}
	if uint64(a) >= space.R {
		t.Errorf("hash %d out of range [0,%d)", a, space.R)
	}
}

func TestFingerStartWraps(t *testing.T) {
	space, err := NewSpace(10)
	if err != nil {
		t.Fatal(err)
	}
	// self=1000, i=1 -> +1 = 1001 mod 1024
	got := space.FingerStart(1000, 1)
	if got != 1001 {
		t.Errorf("FingerStart(1000,1) = %d, want 1001", got)
	}
	// i=6 -> +32 = 1032 mod 1024 = 8
	got = space.FingerStart(1000, 6)
	if got != 8 {
		t.Errorf("FingerStart(1000,6) = %d, want 8", got)
	}
}
