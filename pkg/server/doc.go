// Package server provides the trellis dispatcher: the component that owns
// the route table and global state, resolves each request to a handler
// chain, runs the chain, and guarantees an HTTP response.
//
// # Dispatch
//
// App implements http.Handler. Every request follows the same path:
//
//  1. the method+path is resolved against the route table; no match is a
//     404 and no handler step ever runs
//  2. the matched chain runs with a fresh transient state and the params
//     extracted by the router
//  3. the outcome becomes a response: a *chain.StatusError renders its own
//     status and message, any other error renders a 500 with the error
//     text, and a chain that finished without setting a response renders a
//     500 with a generic body
//
// Dispatch never fails: parse errors stay at registration time, handler
// panics are recovered, and every request receives a response. Request and
// outcome are logged to an injectable slog logger, and optional Recorder
// sinks receive one record per dispatch; both are best-effort and never
// affect routing.
//
// # Concurrency
//
// The route table is immutable after the serve loop starts and is shared
// without locking; pattern matching is pure and reentrant. net/http runs
// one goroutine per connection, serving requests on a connection
// sequentially and connections in parallel. The only lock in the system
// guards the optional global state; see chain.Shared for the holding
// hazard.
package server
