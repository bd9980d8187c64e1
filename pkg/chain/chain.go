package chain

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/trellis-web/trellis/pkg/routepath"
)

// Exchange threads one dispatch through a chain: the request, the response
// being built (nil until a step sets one), the route parameters extracted
// once by the router, the transient state, and the dispatcher-owned
// collaborators (global state guard and logger).
//
// Steps mutate the Exchange directly: replace Req to hand a derived request
// to later steps, set or replace Resp, and reassign State.
type Exchange[G any, T State[T]] struct {
	// Req is the request. A step may replace it (for example with
	// req.WithContext) to pass data downstream.
	Req *http.Request

	// Resp is the response built so far, nil if no step has set one.
	Resp *Response

	// Params are the route captures. Every step sees the same map.
	Params routepath.Params

	// State is the per-dispatch transient state.
	State T

	// Global guards the process-wide shared state. Nil when the
	// application was built without one.
	Global *Shared[G]

	// Log is the dispatcher's logger.
	Log *slog.Logger

	rw       http.ResponseWriter
	hijacked bool
}

// NewExchange builds an Exchange for one dispatch. rw is the underlying
// ResponseWriter, retained only for protocol upgrades via Hijack.
func NewExchange[G any, T State[T]](req *http.Request, params routepath.Params, state T, global *Shared[G], log *slog.Logger, rw http.ResponseWriter) *Exchange[G, T] {
	if log == nil {
		log = slog.Default()
	}
	return &Exchange[G, T]{
		Req:    req,
		Params: params,
		State:  state,
		Global: global,
		Log:    log,
		rw:     rw,
	}
}

// Hijack marks the exchange as taken over and returns the underlying
// ResponseWriter. After a step hijacks, the dispatcher neither renders a
// response nor treats the missing one as a failure; the step owns the
// connection (WebSocket upgrades, streaming).
func (ex *Exchange[G, T]) Hijack() http.ResponseWriter {
	ex.hijacked = true
	return ex.rw
}

// Hijacked reports whether a step has taken over the connection.
func (ex *Exchange[G, T]) Hijacked() bool {
	return ex.hijacked
}

// Func is one step of a chain. It may mutate the exchange and return nil
// to let the chain continue, or return an error to stop it. A *StatusError
// reaches the client verbatim; any other error becomes a 500.
type Func[G any, T State[T]] func(ctx context.Context, ex *Exchange[G, T]) error

// Chain is an immutable ordered list of steps for one route.
type Chain[G any, T State[T]] struct {
	steps []Func[G, T]
}

// New builds a chain from steps. Panics on a nil step; a nil step is a
// programming error caught at registration, not dispatch.
func New[G any, T State[T]](steps ...Func[G, T]) *Chain[G, T] {
	for _, step := range steps {
		if step == nil {
			panic("chain: nil step")
		}
	}
	return &Chain[G, T]{steps: steps}
}

// Append returns a new chain with the given steps after the existing ones.
// The receiver is unchanged.
func (c *Chain[G, T]) Append(steps ...Func[G, T]) *Chain[G, T] {
	for _, step := range steps {
		if step == nil {
			panic("chain: nil step")
		}
	}
	combined := make([]Func[G, T], 0, len(c.steps)+len(steps))
	combined = append(combined, c.steps...)
	combined = append(combined, steps...)
	return &Chain[G, T]{steps: combined}
}

// Len returns the number of steps.
func (c *Chain[G, T]) Len() int {
	return len(c.steps)
}

// Run executes the steps in order. The first step error stops the chain
// and is returned; a set response does not stop it. A nil ex.Resp after a
// clean run is not an error here.
func (c *Chain[G, T]) Run(ctx context.Context, ex *Exchange[G, T]) error {
	for _, step := range c.steps {
		if err := step(ctx, ex); err != nil {
			return err
		}
	}
	return nil
}
