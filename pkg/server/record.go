package server

import "time"

// Record describes one completed dispatch. Recorders receive it after the
// response has been written.
type Record struct {
	// Method and Path are taken from the request.
	Method string
	Path   string

	// Route is the canonical pattern of the matched route, or "" for a
	// 404. Safe as a low-cardinality telemetry label.
	Route string

	// Status is the HTTP status that was sent. Zero when a step hijacked
	// the connection and wrote its own protocol.
	Status int

	// Err is the chain failure, if any. Nil for clean dispatches,
	// including 404s.
	Err error

	// SourceAddr is the resolved client address.
	SourceAddr string

	// Start and Duration time the dispatch end to end.
	Start    time.Time
	Duration time.Duration

	// Hijacked reports that a step took over the connection.
	Hijacked bool
}

// Recorder is an injectable sink fed one Record per dispatch. Recorders
// run synchronously after the response is written but are best-effort: a
// panic is contained and logged, and can never affect routing.
type Recorder func(Record)
