package ring

import "testing"

func mustSpace(t *testing.T, bits int) Space {
	t.Helper()
	sp, err := NewSpace(bits)
	if err != nil {
		t.Fatal(err)
	}
	return sp
}

func TestNewTableBootStateClaimsWholeRing(t *testing.T) {
	sp := mustSpace(t, 10)
	self := Node{ID: 100, Address: "a"}
	tbl := New(self, sp)

	if !tbl.Successor().Equal(self) {
		t.Error("fresh table should have self as successor")
	}
	if _, ok := tbl.Predecessor(); ok {
		t.Error("fresh table should have no predecessor")
	}
	if !tbl.IsResponsibleFor(500) {
		t.Error("alone node with successor==self should claim the whole ring")
	}
}

func TestNotifyAcceptsFirstCandidate(t *testing.T) {
	sp := mustSpace(t, 10)
	self := Node{ID: 100, Address: "a"}
	tbl := New(self, sp)

	candidate := Node{ID: 50, Address: "b"}
	if !tbl.Notify(candidate) {
		t.Fatal("first notify should be accepted")
	}
	pred, ok := tbl.Predecessor()
	if !ok || !pred.Equal(candidate) {
		t.Fatalf("predecessor not set to candidate: %+v", pred)
	}

	// idempotent: notifying the same predecessor again changes nothing.
	if tbl.Notify(candidate) {
		t.Error("re-notifying the same predecessor should report no change")
	}
}

func TestNotifyRejectsWorseCandidate(t *testing.T) {
	sp := mustSpace(t, 10)
	self := Node{ID: 100, Address: "a"}
	tbl := New(self, sp)
	tbl.SetPredecessor(Node{ID: 80, Address: "b"})

	// 10 is not between 80 and 100 on the open interval walking clockwise
	// from 80 (80 -> 81..99 -> 100), so it's a worse (closer to us already
	// covered) candidate than the existing predecessor.
	worse := Node{ID: 10, Address: "c"}
	if tbl.Notify(worse) {
		t.Error("should not replace a closer predecessor with a farther one")
	}
}

func TestShouldUpdateSuccessor(t *testing.T) {
	sp := mustSpace(t, 10)
	self := Node{ID: 100, Address: "a"}
	tbl := New(self, sp)
	tbl.SetSuccessor(Node{ID: 400, Address: "b"})

	better := Node{ID: 200, Address: "c"}
	if !tbl.ShouldUpdateSuccessor(better) {
		t.Error("candidate strictly between self and successor should replace it")
	}

	worse := Node{ID: 700, Address: "d"}
	if tbl.ShouldUpdateSuccessor(worse) {
		t.Error("candidate outside (self,successor) should not replace it")
	}

	if tbl.ShouldUpdateSuccessor(self) {
		t.Error("self should never replace the successor")
	}
}

func TestClosestPrecedingFallsBackToSelf(t *testing.T) {
	sp := mustSpace(t, 10)
	self := Node{ID: 100, Address: "a"}
	tbl := New(self, sp) // all fingers point to self

	got := tbl.ClosestPreceding(500)
	if !got.Equal(self) {
		t.Errorf("with no better fingers, ClosestPreceding should return self, got %+v", got)
	}
}

func TestClosestPrecedingPicksHighestQualifyingSlot(t *testing.T) {
	sp := mustSpace(t, 10)
	self := Node{ID: 0, Address: "a"}
	tbl := New(self, sp)
	// finger 1 -> start 1, finger 10 -> start 512
	tbl.Update(1, Node{ID: 10, Address: "low"})
	tbl.Update(9, Node{ID: 300, Address: "mid"})
	tbl.Update(10, Node{ID: 600, Address: "high"})

	got := tbl.ClosestPreceding(900)
	if got.ID != 600 {
		t.Errorf("expected highest qualifying finger (600), got %d", got.ID)
	}
}

func TestRefreshTargetsCount(t *testing.T) {
	sp := mustSpace(t, 10)
	tbl := New(Node{ID: 1, Address: "a"}, sp)
	targets := tbl.RefreshTargets()
	if len(targets) != 10 {
		t.Fatalf("expected 10 refresh targets for M=10, got %d", len(targets))
	}
	if targets[0].I != 1 || targets[9].I != 10 {
		t.Errorf("refresh targets not 1-indexed correctly: %+v", targets)
	}
}
