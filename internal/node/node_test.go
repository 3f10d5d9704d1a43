package node

import (
	"context"
	"testing"
	"time"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/logger"
	"chorddfs/internal/ring"
	"chorddfs/internal/storage"
)

func mustSpace(t *testing.T) ring.Space {
	t.Helper()
	s, err := ring.NewSpace(10)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	return s
}

func newTestNode(t *testing.T, net *fakeNetwork, space ring.Space, addr string) *Node {
	t.Helper()
	id := space.HashString(addr)
	rt := ring.New(ring.Node{ID: id, Address: addr}, space)
	store := storage.NewMemoryBackend(&logger.NopLogger{})
	n := New(rt, store, net, WithRPCTimeout(time.Second), WithLogger(&logger.NopLogger{}))
	net.register(addr, n)
	return n
}

func converge(ctx context.Context, nodes []*Node, rounds int) {
	for i := 0; i < rounds; i++ {
		for _, n := range nodes {
			n.stabilizeOnce(ctx)
		}
	}
}

func TestJoinConverges(t *testing.T) {
	ctx := context.Background()
	space := mustSpace(t)
	net := newFakeNetwork()

	a := newTestNode(t, net, space, "nodeA:8080")
	a.Bootstrap()

	b := newTestNode(t, net, space, "nodeB:8080")
	if err := b.Join(ctx, "nodeA:8080"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	converge(ctx, []*Node{a, b}, 5)

	if a.rt.Successor().ID != b.Self().ID {
		t.Errorf("A.successor = %d, want B (%d)", a.rt.Successor().ID, b.Self().ID)
	}
	if b.rt.Successor().ID != a.Self().ID {
		t.Errorf("B.successor = %d, want A (%d)", b.rt.Successor().ID, a.Self().ID)
	}
	pred, ok := a.rt.Predecessor()
	if !ok || pred.ID != b.Self().ID {
		t.Errorf("A.predecessor = %v (ok=%v), want B", pred, ok)
	}
	pred, ok = b.rt.Predecessor()
	if !ok || pred.ID != a.Self().ID {
		t.Errorf("B.predecessor = %v (ok=%v), want A", pred, ok)
	}
}

func TestJoinMigratesOwnedFile(t *testing.T) {
	ctx := context.Background()
	space := mustSpace(t)
	net := newFakeNetwork()

	a := newTestNode(t, net, space, "nodeA:8080")
	a.Bootstrap()
	if err := a.store.Save("report.txt", []byte("payload")); err != nil {
		t.Fatalf("preload: %v", err)
	}

	b := newTestNode(t, net, space, "nodeB:8080")
	if err := b.Join(ctx, "nodeA:8080"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	converge(ctx, []*Node{a, b}, 5)

	key := space.HashString("report.txt")
	owner, err := a.FindSuccessor(ctx, key)
	if err != nil {
		t.Fatalf("FindSuccessor: %v", err)
	}
	ownerNode, otherNode := a, b
	if owner.ID == b.Self().ID {
		ownerNode, otherNode = b, a
	}

	data, err := ownerNode.store.Get("report.txt")
	if err != nil {
		t.Fatalf("owner missing file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("owner has %q, want %q", data, "payload")
	}
	if _, err := otherNode.store.Get("report.txt"); !chorderr.Is(err, chorderr.ErrNotFound) {
		t.Errorf("non-owner still has file: err=%v", err)
	}
}

func TestTransparentUploadViaNonOwner(t *testing.T) {
	ctx := context.Background()
	space := mustSpace(t)
	net := newFakeNetwork()

	addrs := []string{"nodeA:8080", "nodeB:8080", "nodeC:8080"}
	var nodes []*Node
	for _, addr := range addrs {
		nodes = append(nodes, newTestNode(t, net, space, addr))
	}
	nodes[0].Bootstrap()
	for _, n := range nodes[1:] {
		if err := n.Join(ctx, addrs[0]); err != nil {
			t.Fatalf("Join: %v", err)
		}
		converge(ctx, nodes, 3)
	}
	converge(ctx, nodes, 8)

	if err := nodes[0].Save(ctx, "upload.bin", []byte("hello world")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, n := range nodes {
		data, err := n.Get(ctx, "upload.bin")
		if err != nil {
			t.Errorf("Get from %s: %v", n.Self().Address, err)
			continue
		}
		if string(data) != "hello world" {
			t.Errorf("Get from %s = %q, want %q", n.Self().Address, data, "hello world")
		}
	}
}

func TestDeleteRemovesFileFromOwner(t *testing.T) {
	ctx := context.Background()
	space := mustSpace(t)
	net := newFakeNetwork()

	a := newTestNode(t, net, space, "nodeA:8080")
	a.Bootstrap()
	b := newTestNode(t, net, space, "nodeB:8080")
	if err := b.Join(ctx, "nodeA:8080"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	converge(ctx, []*Node{a, b}, 5)

	if err := a.Save(ctx, "doomed.txt", []byte("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := b.Delete(ctx, "doomed.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := a.Get(ctx, "doomed.txt"); !chorderr.Is(err, chorderr.ErrNotFound) {
		t.Errorf("Get after delete: err=%v, want ErrNotFound", err)
	}
}

func TestListIsLocalOnly(t *testing.T) {
	ctx := context.Background()
	space := mustSpace(t)
	net := newFakeNetwork()

	a := newTestNode(t, net, space, "nodeA:8080")
	a.Bootstrap()
	_ = a.store.Save("local-only.txt", []byte("x"))

	names, err := a.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "local-only.txt" {
		t.Errorf("List = %v, want [local-only.txt]", names)
	}
}

func TestHandleJoinAlone(t *testing.T) {
	ctx := context.Background()
	space := mustSpace(t)
	net := newFakeNetwork()

	a := newTestNode(t, net, space, "nodeA:8080")
	a.Bootstrap()

	joiner := ring.Node{ID: space.HashString("nodeB:8080"), Address: "nodeB:8080"}
	result, err := a.HandleJoin(ctx, joiner)
	if err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	if result.ID != a.Self().ID {
		t.Errorf("handle_join alone should return self, got %v", result)
	}
	if a.rt.Successor().ID != joiner.ID {
		t.Errorf("successor not set to joiner: %v", a.rt.Successor())
	}
}

func TestNotifyHandlerNeverTriggersMigration(t *testing.T) {
	ctx := context.Background()
	space := mustSpace(t)
	net := newFakeNetwork()

	a := newTestNode(t, net, space, "nodeA:8080")
	a.Bootstrap()
	_ = a.store.Save("keep.txt", []byte("x"))

	candidate := ring.Node{ID: space.HashString("nodeB:8080"), Address: "nodeB:8080"}
	if err := a.HandleNotify(ctx, candidate); err != nil {
		t.Fatalf("HandleNotify: %v", err)
	}
	names, _ := a.store.List()
	if len(names) != 1 {
		t.Errorf("HandleNotify must not move files on its own, store = %v", names)
	}
}
