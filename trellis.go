// Package trellis provides the public API for the trellis router.
//
// This is the recommended import for most applications:
//
//	import "github.com/trellis-web/trellis"
//
// Usage:
//
//	app := trellis.New[chain.NoState](nil)
//	app.Get("/hello/:name", func(ctx context.Context, ex *chain.Exchange[trellis.NoGlobal, chain.NoState]) error {
//	    ex.Resp = trellis.Text(http.StatusOK, "hello, "+ex.Params["name"])
//	    return nil
//	})
//	log.Fatal(app.Serve())
//
// The heavy lifting lives in the subpackages: pkg/routepath parses and
// matches path patterns, pkg/chain runs handler chains, pkg/router keeps
// the route table, and pkg/server dispatches requests. This package
// re-exports their common surface so simple applications need one import.
package trellis

import (
	"github.com/trellis-web/trellis/pkg/chain"
	"github.com/trellis-web/trellis/pkg/routepath"
	"github.com/trellis-web/trellis/pkg/server"
)

// Params holds path parameters extracted during matching. The reserved
// key "*" carries a wildcard capture.
type Params = routepath.Params

// Pattern is a parsed route declaration.
type Pattern = routepath.Pattern

// Parse parses a route declaration.
var Parse = routepath.Parse

// MustParse is Parse for declarations known good at compile time; it
// panics on error.
var MustParse = routepath.MustParse

// Response is the reply a handler chain builds up.
type Response = chain.Response

// NewResponse constructs an empty Response with the given status.
var NewResponse = chain.NewResponse

// Text builds a plain-text Response.
var Text = chain.Text

// StatusError is an error that maps to a verbatim HTTP status.
type StatusError = chain.StatusError

// Status builds a StatusError.
var Status = chain.Status

// Statusf builds a StatusError with a formatted message.
var Statusf = chain.Statusf

// NoState is the transient state for chains that do not thread any.
type NoState = chain.NoState

// NoGlobal is the global state type for apps without shared state.
type NoGlobal = server.NoGlobal

// Config configures the dispatcher and its serve loops.
type Config = server.Config

// DefaultConfig returns a Config with documented defaults.
var DefaultConfig = server.DefaultConfig

// Record describes one completed dispatch; Recorder consumes them.
type Record = server.Record

// Recorder is an injectable per-dispatch observability sink.
type Recorder = server.Recorder

// Middleware wraps the dispatcher at the net/http level.
type Middleware = server.Middleware

// SourceAddr returns the client address the dispatcher resolved for a
// request.
var SourceAddr = server.SourceAddr

// New constructs an App without global state.
func New[T chain.State[T]](config *Config) *server.App[NoGlobal, T] {
	return server.New[T](config)
}

// NewWithState constructs an App whose handlers share state of type G
// behind an exclusive-acquisition guard.
func NewWithState[G any, T chain.State[T]](state G, config *Config) *server.App[G, T] {
	return server.NewWithState[G, T](state, config)
}
