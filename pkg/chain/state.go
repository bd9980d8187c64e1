package chain

// State is the contract for per-dispatch transient state. The dispatcher
// calls Initial on the type's zero value to construct a fresh instance for
// every request, so Initial must be callable on a zero (for pointer types,
// nil) receiver.
type State[T any] interface {
	// Initial returns the state a dispatch starts with.
	Initial() T
}

// NoState is the empty transient state, for applications that do not carry
// per-request state between steps.
type NoState struct{}

// Initial implements State.
func (NoState) Initial() NoState { return NoState{} }
