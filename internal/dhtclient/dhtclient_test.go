package dhtclient

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/httpapi"
	"chorddfs/internal/logger"
	"chorddfs/internal/node"
	"chorddfs/internal/ring"
	"chorddfs/internal/storage"
)

// stubTransport panics on any call: these tests run a single solo node
// responsible for the whole ring, so no outbound RPC is ever needed.
type stubTransport struct{}

func (stubTransport) FindSuccessor(context.Context, string, ring.ID, ring.Node) (ring.Node, error) {
	panic("unexpected outbound RPC")
}
func (stubTransport) GetPredecessor(context.Context, string) (ring.Node, bool, error) {
	panic("unexpected outbound RPC")
}
func (stubTransport) Notify(context.Context, string, ring.Node) error {
	panic("unexpected outbound RPC")
}
func (stubTransport) Join(context.Context, string, ring.Node) (ring.Node, error) {
	panic("unexpected outbound RPC")
}
func (stubTransport) Ping(context.Context, string) error { panic("unexpected outbound RPC") }
func (stubTransport) TransferRange(context.Context, string, ring.ID, ring.ID, func(string, []byte) error) error {
	panic("unexpected outbound RPC")
}
func (stubTransport) ConfirmTransfer(context.Context, string, ring.ID, ring.ID) error {
	panic("unexpected outbound RPC")
}
func (stubTransport) ForwardFile(context.Context, string, string, []byte) error {
	panic("unexpected outbound RPC")
}
func (stubTransport) GetFile(context.Context, string, string) (io.ReadCloser, error) {
	panic("unexpected outbound RPC")
}
func (stubTransport) DeleteFile(context.Context, string, string) error {
	panic("unexpected outbound RPC")
}

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	space, err := ring.NewSpace(10)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	self := ring.Node{ID: space.HashString("solo"), Address: "solo:9000"}
	rt := ring.New(self, space)
	store := storage.NewMemoryBackend(&logger.NopLogger{})
	n := node.New(rt, store, stubTransport{}, node.WithLogger(&logger.NopLogger{}))
	srv := httpapi.New(n, &logger.NopLogger{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, ts.Listener.Addr().String()
}

func TestSaveGetDeleteRoundTrip(t *testing.T) {
	_, addr := newTestServer(t)
	c := New(2 * time.Second)
	ctx := context.Background()

	if _, err := c.Save(ctx, addr, "note.txt", []byte("hello")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, _, err := c.Get(ctx, addr, "note.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Get returned %q, want %q", data, "hello")
	}

	names, _, err := c.List(ctx, addr)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "note.txt" {
		t.Errorf("List = %v, want [note.txt]", names)
	}

	if _, err := c.Delete(ctx, addr, "note.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, _, err = c.Get(ctx, addr, "note.txt")
	if !errors.Is(err, chorderr.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestInfoReflectsSoloNode(t *testing.T) {
	_, addr := newTestServer(t)
	c := New(2 * time.Second)

	info, _, err := c.Info(context.Background(), addr)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Successor != info.Self {
		t.Errorf("successor = %+v, want self %+v", info.Successor, info.Self)
	}
	if info.Predecessor != nil {
		t.Errorf("predecessor = %+v, want nil", info.Predecessor)
	}
	if info.MBits != 10 {
		t.Errorf("m_bits = %d, want 10", info.MBits)
	}
}

func TestGetMissingFileReturnsNotFound(t *testing.T) {
	_, addr := newTestServer(t)
	c := New(2 * time.Second)

	_, _, err := c.Get(context.Background(), addr, "nope.txt")
	if !errors.Is(err, chorderr.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}
