package node

import (
	"bytes"
	"context"
	"io"
	"sync"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/ring"
)

// fakeNetwork wires a set of in-process Nodes together behind the
// transport.Transport interface, so multi-node scenarios run without any
// socket. Grounded on the teacher's layered package structure, where node
// depends only on interfaces and can therefore be driven entirely
// in-process for tests.
type fakeNetwork struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{nodes: make(map[string]*Node)}
}

func (f *fakeNetwork) register(addr string, n *Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[addr] = n
}

func (f *fakeNetwork) node(addr string) (*Node, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n, ok := f.nodes[addr]
	return n, ok
}

func (f *fakeNetwork) FindSuccessor(ctx context.Context, addr string, key ring.ID, origin ring.Node) (ring.Node, error) {
	n, ok := f.node(addr)
	if !ok {
		return ring.Node{}, chorderr.ErrTransport
	}
	return n.HandleFindSuccessor(ctx, key, origin)
}

func (f *fakeNetwork) GetPredecessor(ctx context.Context, addr string) (ring.Node, bool, error) {
	n, ok := f.node(addr)
	if !ok {
		return ring.Node{}, false, chorderr.ErrTransport
	}
	pred, has := n.HandlePredecessor()
	return pred, has, nil
}

func (f *fakeNetwork) Notify(ctx context.Context, addr string, candidate ring.Node) error {
	n, ok := f.node(addr)
	if !ok {
		return chorderr.ErrTransport
	}
	return n.HandleNotify(ctx, candidate)
}

func (f *fakeNetwork) Join(ctx context.Context, addr string, joiner ring.Node) (ring.Node, error) {
	n, ok := f.node(addr)
	if !ok {
		return ring.Node{}, chorderr.ErrTransport
	}
	return n.HandleJoin(ctx, joiner)
}

func (f *fakeNetwork) Ping(ctx context.Context, addr string) error {
	n, ok := f.node(addr)
	if !ok {
		return chorderr.ErrTransport
	}
	n.HandlePing()
	return nil
}

func (f *fakeNetwork) TransferRange(ctx context.Context, addr string, lo, hi ring.ID, recv func(name string, data []byte) error) error {
	n, ok := f.node(addr)
	if !ok {
		return chorderr.ErrTransport
	}
	return n.HandleTransferRange(ctx, lo, hi, recv)
}

func (f *fakeNetwork) ConfirmTransfer(ctx context.Context, addr string, lo, hi ring.ID) error {
	n, ok := f.node(addr)
	if !ok {
		return chorderr.ErrTransport
	}
	return n.HandleConfirmTransfer(ctx, lo, hi)
}

func (f *fakeNetwork) ForwardFile(ctx context.Context, addr string, name string, data []byte) error {
	n, ok := f.node(addr)
	if !ok {
		return chorderr.ErrTransport
	}
	return n.HandleForwardFile(ctx, name, data)
}

func (f *fakeNetwork) GetFile(ctx context.Context, addr string, name string) (io.ReadCloser, error) {
	n, ok := f.node(addr)
	if !ok {
		return nil, chorderr.ErrTransport
	}
	data, err := n.HandleGetFile(ctx, name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeNetwork) DeleteFile(ctx context.Context, addr string, name string) error {
	n, ok := f.node(addr)
	if !ok {
		return chorderr.ErrTransport
	}
	return n.store.Delete(name)
}
