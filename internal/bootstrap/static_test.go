package bootstrap

import (
	"context"
	"testing"

	"chorddfs/internal/config"
	"chorddfs/internal/ring"
)

func TestStaticDiscoverReturnsConfiguredPeers(t *testing.T) {
	peers := []string{"nodeA:8080", "nodeB:8080"}
	s := NewStatic(peers)

	got, err := s.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != len(peers) {
		t.Fatalf("Discover returned %d peers, want %d", len(got), len(peers))
	}
	for i, p := range peers {
		if got[i] != p {
			t.Errorf("Discover[%d] = %q, want %q", i, got[i], p)
		}
	}
}

func TestStaticRegisterIsNoop(t *testing.T) {
	s := NewStatic(nil)
	self := ring.Node{ID: 1, Address: "nodeA:8080"}
	if err := s.Register(context.Background(), self); err != nil {
		t.Errorf("Register: %v", err)
	}
	if err := s.Deregister(context.Background(), self); err != nil {
		t.Errorf("Deregister: %v", err)
	}
}

func TestFactoryRejectsUnknownMode(t *testing.T) {
	_, err := New(config.BootstrapConfig{Mode: "bogus"}, nil)
	if err == nil {
		t.Fatal("New with unknown mode: want error, got nil")
	}
}

func TestFactoryDefaultsToStatic(t *testing.T) {
	b, err := New(config.BootstrapConfig{Peers: []string{"nodeA:8080"}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := b.(*Static); !ok {
		t.Errorf("New with empty mode = %T, want *Static", b)
	}
}
