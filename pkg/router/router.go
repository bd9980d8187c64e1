// Package router maps method+path to a registered handler chain.
//
// Routes are scanned in registration order and the first pattern that
// matches wins. When two registered patterns can match the same concrete
// path (overlapping wildcard and literal patterns, say), the result is
// whichever was registered first. That overlap is deterministic but
// intentionally unspecified; do not lean on it surviving a reordering of
// registrations.
package router

import (
	"errors"
	"fmt"
	"sort"

	"github.com/trellis-web/trellis/pkg/chain"
	"github.com/trellis-web/trellis/pkg/routepath"
)

// ErrNotFound is returned by Resolve when no registered route matches.
// The dispatcher maps it to a 404.
var ErrNotFound = errors.New("router: no route matches")

// Route is one registration: an HTTP method, a parsed pattern, and the
// chain to run. Immutable once registered.
type Route[G any, T chain.State[T]] struct {
	Method  string
	Pattern routepath.Pattern
	Chain   *chain.Chain[G, T]
}

// Table holds the per-method ordered route registrations.
type Table[G any, T chain.State[T]] struct {
	byMethod map[string][]Route[G, T]
}

// NewTable returns an empty route table.
func NewTable[G any, T chain.State[T]]() *Table[G, T] {
	return &Table[G, T]{
		byMethod: make(map[string][]Route[G, T]),
	}
}

// Register parses the declaration and appends the route for the method.
// A malformed declaration fails the whole registration; the table is left
// untouched.
func (t *Table[G, T]) Register(method, declaration string, c *chain.Chain[G, T]) error {
	if c == nil {
		return fmt.Errorf("router: registering %s %s: nil chain", method, declaration)
	}

	pattern, err := routepath.Parse(declaration)
	if err != nil {
		return err
	}

	t.byMethod[method] = append(t.byMethod[method], Route[G, T]{
		Method:  method,
		Pattern: pattern,
		Chain:   c,
	})
	return nil
}

// Resolve scans the method's routes in registration order and returns the
// first whose pattern matches the path, with its extracted params.
// Returns ErrNotFound when nothing matches.
func (t *Table[G, T]) Resolve(method, path string) (*chain.Chain[G, T], routepath.Params, error) {
	route, params, err := t.ResolveRoute(method, path)
	if err != nil {
		return nil, nil, err
	}
	return route.Chain, params, nil
}

// ResolveRoute is Resolve but also returns the matched registration, for
// callers that need the canonical pattern (telemetry labels, logging).
func (t *Table[G, T]) ResolveRoute(method, path string) (Route[G, T], routepath.Params, error) {
	for _, route := range t.byMethod[method] {
		params, err := route.Pattern.Extract(path)
		if err != nil {
			continue
		}
		return route, params, nil
	}
	return Route[G, T]{}, nil, ErrNotFound
}

// RouteOf returns the canonical pattern string of the route that would
// serve method+path, or "" when none matches. Used for low-cardinality
// telemetry labels.
func (t *Table[G, T]) RouteOf(method, path string) string {
	for _, route := range t.byMethod[method] {
		if route.Pattern.Matches(path) {
			return route.Pattern.String()
		}
	}
	return ""
}

// Routes lists the registrations for a method in registration order.
func (t *Table[G, T]) Routes(method string) []Route[G, T] {
	routes := make([]Route[G, T], len(t.byMethod[method]))
	copy(routes, t.byMethod[method])
	return routes
}

// All lists every registration, grouped by method in sorted order and by
// registration order within a method.
func (t *Table[G, T]) All() []Route[G, T] {
	methods := make([]string, 0, len(t.byMethod))
	for method := range t.byMethod {
		methods = append(methods, method)
	}
	sort.Strings(methods)

	var all []Route[G, T]
	for _, method := range methods {
		all = append(all, t.byMethod[method]...)
	}
	return all
}

// Len returns the total number of registrations across all methods.
func (t *Table[G, T]) Len() int {
	n := 0
	for _, routes := range t.byMethod {
		n += len(routes)
	}
	return n
}
