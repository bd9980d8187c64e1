package chain

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trellis-web/trellis/pkg/routepath"
)

func newTestExchange(t *testing.T) *Exchange[struct{}, NoState] {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return NewExchange[struct{}](req, routepath.Params{}, NoState{}, nil, nil, httptest.NewRecorder())
}

// addHeader attaches a marker header to the request; it never sets a
// response.
func addHeader(_ context.Context, ex *Exchange[struct{}, NoState]) error {
	ex.Req.Header.Set("wakka", "wakka wakka")
	return nil
}

// requireHeader responds 200 when the marker header is present, and fails
// otherwise.
func requireHeader(_ context.Context, ex *Exchange[struct{}, NoState]) error {
	if ex.Req.Header.Get("wakka") != "wakka wakka" {
		return errors.New("missing wakka header")
	}
	if ex.Resp == nil {
		ex.Resp = NewResponse(http.StatusOK)
	}
	return nil
}

func TestRunOrderAndRequestHandoff(t *testing.T) {
	ex := newTestExchange(t)

	if err := New(addHeader).Run(context.Background(), ex); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.Req.Header.Get("wakka") == "" {
		t.Error("request mutation did not survive the chain")
	}
	if ex.Resp != nil {
		t.Error("response should be unset after a chain that never responds")
	}

	ex = newTestExchange(t)
	if err := New(addHeader, requireHeader).Run(context.Background(), ex); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.Resp == nil || ex.Resp.StatusCode != http.StatusOK {
		t.Errorf("Resp = %+v, want 200", ex.Resp)
	}
}

func TestRunShortCircuitsOnError(t *testing.T) {
	var ran []int
	step := func(n int, err error) Func[struct{}, NoState] {
		return func(context.Context, *Exchange[struct{}, NoState]) error {
			ran = append(ran, n)
			return err
		}
	}

	boom := errors.New("boom")
	err := New(
		step(1, nil),
		step(2, boom),
		step(3, nil),
	).Run(context.Background(), newTestExchange(t))

	if !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want boom", err)
	}
	if len(ran) != 2 || ran[0] != 1 || ran[1] != 2 {
		t.Errorf("ran = %v, want [1 2]", ran)
	}
}

func TestRunDoesNotStopOnResponse(t *testing.T) {
	var ran []int
	respond := func(n, status int) Func[struct{}, NoState] {
		return func(_ context.Context, ex *Exchange[struct{}, NoState]) error {
			ran = append(ran, n)
			ex.Resp = NewResponse(status)
			return nil
		}
	}
	observe := func(n int) Func[struct{}, NoState] {
		return func(context.Context, *Exchange[struct{}, NoState]) error {
			ran = append(ran, n)
			return nil
		}
	}

	ex := newTestExchange(t)
	err := New(
		respond(1, http.StatusTeapot),
		observe(2),
		respond(3, http.StatusOK),
	).Run(context.Background(), ex)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(ran) != 3 {
		t.Errorf("ran = %v, want all three steps", ran)
	}
	// The last writer wins.
	if ex.Resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", ex.Resp.StatusCode)
	}
}

func TestRunSharesParamsAcrossSteps(t *testing.T) {
	params := routepath.Params{"item": "widget"}
	var seen []string

	step := func(context.Context, *Exchange[struct{}, NoState]) error {
		return nil
	}
	record := func(_ context.Context, ex *Exchange[struct{}, NoState]) error {
		seen = append(seen, ex.Params["item"])
		return nil
	}

	req := httptest.NewRequest(http.MethodGet, "/widget", nil)
	ex := NewExchange[struct{}](req, params, NoState{}, nil, nil, httptest.NewRecorder())
	if err := New(record, step, record).Run(context.Background(), ex); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 2 || seen[0] != "widget" || seen[1] != "widget" {
		t.Errorf("seen = %v, want [widget widget]", seen)
	}
}

type counterState struct {
	n int
}

func (counterState) Initial() counterState { return counterState{} }

func TestTransientStateThreadsThroughChain(t *testing.T) {
	bump := func(_ context.Context, ex *Exchange[struct{}, counterState]) error {
		ex.State = counterState{n: ex.State.n + 1}
		return nil
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var zero counterState
	ex := NewExchange[struct{}](req, routepath.Params{}, zero.Initial(), nil, nil, httptest.NewRecorder())

	if err := New(bump, bump, bump).Run(context.Background(), ex); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ex.State.n != 3 {
		t.Errorf("State.n = %d, want 3", ex.State.n)
	}
}

func TestAppendLeavesReceiverUnchanged(t *testing.T) {
	noop := func(context.Context, *Exchange[struct{}, NoState]) error { return nil }

	base := New(noop)
	longer := base.Append(noop, noop)

	if base.Len() != 1 {
		t.Errorf("base.Len() = %d, want 1", base.Len())
	}
	if longer.Len() != 3 {
		t.Errorf("longer.Len() = %d, want 3", longer.Len())
	}
}

func TestNewPanicsOnNilStep(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New[struct{}, NoState](nil)
}

func TestStatusErrorText(t *testing.T) {
	err := Status(http.StatusUnauthorized, "bad token")
	if got := err.Error(); got != "401 Unauthorized: bad token" {
		t.Errorf("Error() = %q", got)
	}

	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusUnauthorized {
		t.Errorf("errors.As failed for %v", err)
	}

	if got := Status(http.StatusTeapot, "").Error(); got != "418 I'm a teapot" {
		t.Errorf("Error() = %q", got)
	}
}
