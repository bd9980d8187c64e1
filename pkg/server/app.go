package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/trellis-web/trellis/pkg/chain"
	"github.com/trellis-web/trellis/pkg/router"
)

// NoGlobal is the global-state type for applications without shared state.
type NoGlobal struct{}

// Middleware wraps the dispatcher at the net/http level. Middleware added
// with Use runs outside the route table, before resolution; use it for
// cross-cutting concerns that belong to the transport boundary rather than
// to a route's chain.
type Middleware func(http.Handler) http.Handler

// App is the dispatcher. It owns the route table, the optional global
// state, and the serve loops, and it implements http.Handler.
//
// The route table must be fully registered before the App starts serving;
// registration is not synchronized with dispatch.
type App[G any, T chain.State[T]] struct {
	table      *router.Table[G, T]
	global     *chain.Shared[G]
	config     *Config
	logger     *slog.Logger
	proxies    *proxyMatcher
	middleware []Middleware
	httpServer *http.Server
}

// New constructs an App without global state.
func New[T chain.State[T]](config *Config) *App[NoGlobal, T] {
	return newApp[NoGlobal, T](nil, config)
}

// NewWithState constructs an App whose handlers share state behind an
// exclusive-acquisition guard. The state lives until shutdown.
func NewWithState[G any, T chain.State[T]](state G, config *Config) *App[G, T] {
	return newApp[G, T](chain.NewShared(state), config)
}

func newApp[G any, T chain.State[T]](global *chain.Shared[G], config *Config) *App[G, T] {
	config = config.withDefaults()

	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "dispatcher")
	}

	for _, warning := range config.Warnings() {
		logger.Warn("config warning", "warning", warning)
	}

	return &App[G, T]{
		table:   router.NewTable[G, T](),
		global:  global,
		config:  config,
		logger:  logger,
		proxies: newProxyMatcher(config.TrustedProxies, logger),
	}
}

// Global returns the guard around the shared state, or nil when the App
// was built without one.
func (a *App[G, T]) Global() *chain.Shared[G] {
	return a.global
}

// Logger returns the dispatcher's logger.
func (a *App[G, T]) Logger() *slog.Logger {
	return a.logger
}

// Use appends net/http middleware. First added runs outermost.
func (a *App[G, T]) Use(mw ...Middleware) {
	a.middleware = append(a.middleware, mw...)
}

// Handle registers a prebuilt chain for a method and pattern declaration.
// A malformed declaration fails the registration and leaves the table
// unchanged.
func (a *App[G, T]) Handle(method, declaration string, c *chain.Chain[G, T]) error {
	return a.table.Register(method, declaration, c)
}

// Route registers the steps, in order, as the chain for method+pattern.
func (a *App[G, T]) Route(method, declaration string, steps ...chain.Func[G, T]) error {
	return a.table.Register(method, declaration, chain.New(steps...))
}

// Get registers a chain for GET requests.
func (a *App[G, T]) Get(declaration string, steps ...chain.Func[G, T]) error {
	return a.Route(http.MethodGet, declaration, steps...)
}

// Post registers a chain for POST requests.
func (a *App[G, T]) Post(declaration string, steps ...chain.Func[G, T]) error {
	return a.Route(http.MethodPost, declaration, steps...)
}

// Put registers a chain for PUT requests.
func (a *App[G, T]) Put(declaration string, steps ...chain.Func[G, T]) error {
	return a.Route(http.MethodPut, declaration, steps...)
}

// Delete registers a chain for DELETE requests.
func (a *App[G, T]) Delete(declaration string, steps ...chain.Func[G, T]) error {
	return a.Route(http.MethodDelete, declaration, steps...)
}

// Patch registers a chain for PATCH requests.
func (a *App[G, T]) Patch(declaration string, steps ...chain.Func[G, T]) error {
	return a.Route(http.MethodPatch, declaration, steps...)
}

// Head registers a chain for HEAD requests.
func (a *App[G, T]) Head(declaration string, steps ...chain.Func[G, T]) error {
	return a.Route(http.MethodHead, declaration, steps...)
}

// Options registers a chain for OPTIONS requests.
func (a *App[G, T]) Options(declaration string, steps ...chain.Func[G, T]) error {
	return a.Route(http.MethodOptions, declaration, steps...)
}

// Connect registers a chain for CONNECT requests.
func (a *App[G, T]) Connect(declaration string, steps ...chain.Func[G, T]) error {
	return a.Route(http.MethodConnect, declaration, steps...)
}

// Trace registers a chain for TRACE requests.
func (a *App[G, T]) Trace(declaration string, steps ...chain.Func[G, T]) error {
	return a.Route(http.MethodTrace, declaration, steps...)
}

// Table exposes the route table, for inspection and documentation tooling.
func (a *App[G, T]) Table() *router.Table[G, T] {
	return a.table
}

// ServeHTTP implements http.Handler. It applies Use middleware, then
// dispatches. This is the integration point for mounting the App in an
// external router (chi, stdlib mux) or test server.
func (a *App[G, T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var h http.Handler = http.HandlerFunc(a.dispatch)
	for i := len(a.middleware) - 1; i >= 0; i-- {
		h = a.middleware[i](h)
	}
	h.ServeHTTP(w, r)
}

// dispatch resolves and runs one request. It never fails: every internal
// error becomes a response.
func (a *App[G, T]) dispatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	source := resolveSourceAddr(r, a.proxies)
	r = withSourceAddr(r, source)

	rec := Record{
		Method:     r.Method,
		Path:       r.URL.Path,
		SourceAddr: source,
		Start:      start,
	}

	a.logger.Info("request", "method", rec.Method, "path", rec.Path, "source", source)

	route, params, err := a.table.ResolveRoute(r.Method, r.URL.Path)
	if errors.Is(err, router.ErrNotFound) {
		rec.Status = http.StatusNotFound
		writeText(w, http.StatusNotFound, a.config.NotFoundBody)
		a.finish(rec)
		return
	}
	rec.Route = route.Pattern.String()

	var zero T
	ex := chain.NewExchange(r, params, zero.Initial(), a.global, a.logger, w)

	switch runErr := a.run(r.Context(), route.Chain, ex); {
	case ex.Hijacked():
		// The step owns the connection; nothing left to write even if a
		// later step failed.
		rec.Hijacked = true
		rec.Err = runErr

	case runErr != nil:
		rec.Err = runErr
		var serr *chain.StatusError
		if errors.As(runErr, &serr) {
			rec.Status = serr.Code
			writeText(w, serr.Code, serr.Message+"\n")
		} else {
			rec.Status = http.StatusInternalServerError
			writeText(w, http.StatusInternalServerError, runErr.Error()+"\n")
		}

	case ex.Resp == nil:
		// A clean chain that never produced a response is a server bug,
		// not a client error.
		rec.Status = http.StatusInternalServerError
		writeText(w, http.StatusInternalServerError, a.config.InternalBody)

	default:
		rec.Status = ex.Resp.StatusCode
		if rec.Status == 0 {
			rec.Status = http.StatusOK
		}
		if err := ex.Resp.Render(w); err != nil {
			a.logger.Warn("response write failed", "method", rec.Method, "path", rec.Path, "error", err)
		}
	}

	a.finish(rec)
}

// run executes the chain, converting a step panic into an error so the
// boundary can answer with a 500 instead of killing the connection.
func (a *App[G, T]) run(ctx context.Context, c *chain.Chain[G, T], ex *chain.Exchange[G, T]) (err error) {
	defer func() {
		if p := recover(); p != nil {
			a.logger.Error("handler panic",
				"method", ex.Req.Method,
				"path", ex.Req.URL.Path,
				"panic", p,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return c.Run(ctx, ex)
}

// finish logs the outcome and feeds the recorders. Best-effort by
// contract: a recorder panic is contained here.
func (a *App[G, T]) finish(rec Record) {
	rec.Duration = time.Since(rec.Start)

	if rec.Err != nil {
		a.logger.Info("response",
			"method", rec.Method, "path", rec.Path,
			"status", rec.Status, "duration", rec.Duration, "error", rec.Err)
	} else {
		a.logger.Info("response",
			"method", rec.Method, "path", rec.Path,
			"status", rec.Status, "duration", rec.Duration)
	}

	for _, recorder := range a.config.Recorders {
		func() {
			defer func() {
				if p := recover(); p != nil {
					a.logger.Warn("recorder panic", "panic", p)
				}
			}()
			recorder(rec)
		}()
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
