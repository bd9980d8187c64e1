package router

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/trellis-web/trellis/pkg/chain"
	"github.com/trellis-web/trellis/pkg/routepath"
)

type none = struct{}

func noop(context.Context, *chain.Exchange[none, chain.NoState]) error { return nil }

func TestRegisterRejectsBadDeclarations(t *testing.T) {
	table := NewTable[none, chain.NoState]()

	err := table.Register(http.MethodGet, "/abc/*/:p", chain.New(noop))
	if !errors.Is(err, routepath.ErrParamAfterWildcard) {
		t.Fatalf("Register error = %v, want ErrParamAfterWildcard", err)
	}
	if table.Len() != 0 {
		t.Errorf("table mutated by failed registration: %d routes", table.Len())
	}
}

func TestResolveByMethodAndPath(t *testing.T) {
	table := NewTable[none, chain.NoState]()
	getChain := chain.New(noop)
	postChain := chain.New(noop, noop)

	if err := table.Register(http.MethodGet, "/items/:id", getChain); err != nil {
		t.Fatal(err)
	}
	if err := table.Register(http.MethodPost, "/items/:id", postChain); err != nil {
		t.Fatal(err)
	}

	c, params, err := table.Resolve(http.MethodGet, "/items/42")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c != getChain {
		t.Error("Resolve returned the wrong chain for GET")
	}
	if params["id"] != "42" {
		t.Errorf("params = %v, want id=42", params)
	}

	c, _, err = table.Resolve(http.MethodPost, "/items/42")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c != postChain {
		t.Error("Resolve returned the wrong chain for POST")
	}

	if _, _, err := table.Resolve(http.MethodDelete, "/items/42"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve error = %v, want ErrNotFound", err)
	}
	if _, _, err := table.Resolve(http.MethodGet, "/nothing/here"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve error = %v, want ErrNotFound", err)
	}
}

func TestResolveRegistrationOrderWins(t *testing.T) {
	table := NewTable[none, chain.NoState]()
	first := chain.New(noop)
	second := chain.New(noop)

	// Both patterns match /files/a/b; the earlier registration wins.
	if err := table.Register(http.MethodGet, "/files/*", first); err != nil {
		t.Fatal(err)
	}
	if err := table.Register(http.MethodGet, "/files/:dir/:name", second); err != nil {
		t.Fatal(err)
	}

	c, params, err := table.Resolve(http.MethodGet, "/files/a/b")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c != first {
		t.Error("overlapping patterns: want the first registration")
	}
	if params["*"] != "a/b" {
		t.Errorf("params = %v, want *=a/b", params)
	}
}

func TestResolveRoot(t *testing.T) {
	table := NewTable[none, chain.NoState]()
	if err := table.Register(http.MethodGet, "/", chain.New(noop)); err != nil {
		t.Fatal(err)
	}

	_, params, err := table.Resolve(http.MethodGet, "/")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(params) != 0 {
		t.Errorf("params = %v, want empty", params)
	}

	if _, _, err := table.Resolve(http.MethodGet, "/deeper"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve error = %v, want ErrNotFound", err)
	}
}

func TestRouteOf(t *testing.T) {
	table := NewTable[none, chain.NoState]()
	if err := table.Register(http.MethodGet, "/items/:id", chain.New(noop)); err != nil {
		t.Fatal(err)
	}

	if got := table.RouteOf(http.MethodGet, "/items/42"); got != "/items/:id" {
		t.Errorf("RouteOf = %q, want /items/:id", got)
	}
	if got := table.RouteOf(http.MethodGet, "/other"); got != "" {
		t.Errorf("RouteOf = %q, want empty", got)
	}
}
