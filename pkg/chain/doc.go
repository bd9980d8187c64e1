// Package chain implements the chain-of-responsibility handler model used
// by the trellis dispatcher.
//
// A Chain is an ordered list of steps. Each step receives the same route
// Params and an Exchange carrying the evolving request/response pair and
// the per-dispatch transient state. Steps run strictly in registration
// order:
//
//   - a step may mutate the request, attach a response, or replace an
//     existing response; setting a response does NOT stop the chain, so a
//     later step can inspect or validate an earlier step's work
//   - a step returning an error stops the chain immediately; later steps
//     never run and the error surfaces at the dispatcher boundary
//   - a chain that completes without ever setting a response is mapped to
//     an internal server error at the boundary, not here
//
// Global application state is exposed to steps through Shared, an
// exclusive-acquisition guard. Handlers that block while holding the guard
// block every other request that touches it; keep slow work (I/O, long
// computation) outside the critical section.
package chain
