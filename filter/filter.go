// Package filter adapts the limiter to a proxy's plugin lifecycle.
//
// A host calls Configure once when the plugin configuration arrives, then
// NewHTTPContext for every request and OnHTTPRequestHeaders when the request
// headers are available. Middleware wires the same flow into net/http.
package filter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/strategies"
	"github.com/ajiwo/askailimiter/strategies/fixedwindow"
)

// Action tells the host what to do with the request after the headers phase
type Action int

const (
	// ActionContinue lets the request through to the upstream
	ActionContinue Action = iota
	// ActionPause stops processing; the deny response has been sent
	ActionPause
)

func (a Action) String() string {
	if a == ActionPause {
		return "pause"
	}
	return "continue"
}

var (
	ErrNilBackend     = errors.New("filter: backend cannot be nil")
	ErrInvalidOptions = errors.New("filter: invalid options")
)

const (
	DefaultDenyMessage = "API limit reached"
	DailyLimitMessage  = "Daily API limit reached"
)

// ResponseSender emits a local response in place of the upstream one.
type ResponseSender interface {
	SendHTTPResponse(status int, headers [][2]string, body []byte) error
}

// RootContext is the per-plugin state: the quota and the shared store.
type RootContext struct {
	config   atomic.Pointer[fixedwindow.Config]
	strategy *fixedwindow.Strategy

	logger      *zap.Logger
	denyBody    []byte
	withHeaders bool
	clock       func() time.Time
}

// Configure is the plugin configuration entry point. raw is parsed onto
// fixedwindow.DefaultConfig. Malformed quota text never fails; a nil backend
// or invalid strategy options (key prefix, retry bound) do.
func Configure(raw []byte, backend backends.Backend, opts ...Option) (*RootContext, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	o := options{
		logger:      zap.NewNop(),
		denyMessage: DefaultDenyMessage,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	strategy := fixedwindow.New(backend, o.strategyOpts...)
	if err := strategy.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	r := &RootContext{
		strategy:    strategy,
		logger:      o.logger,
		denyBody:    denyBody(o.denyMessage),
		withHeaders: o.rateLimitHeaders,
		clock:       o.clock,
	}
	cfg := fixedwindow.ParseConfigBytes(raw, fixedwindow.DefaultConfig())
	r.config.Store(&cfg)

	r.logger.Info("askai limiter configured", zap.Stringer("config", cfg))
	return r, nil
}

// OnConfigure applies a new plugin configuration on top of the current one.
// Request contexts already created keep the configuration they started with.
func (r *RootContext) OnConfigure(raw []byte) bool {
	cfg := fixedwindow.ParseConfigBytes(raw, r.Config())
	r.config.Store(&cfg)
	r.logger.Info("askai limiter reconfigured", zap.Stringer("config", cfg))
	return true
}

// Config returns the configuration new request contexts will use
func (r *RootContext) Config() fixedwindow.Config {
	return *r.config.Load()
}

// NewHTTPContext is the per-request entry point. It captures the current
// configuration.
func (r *RootContext) NewHTTPContext() *HTTPContext {
	return &HTTPContext{root: r, config: r.Config()}
}

// HTTPContext carries one request through the filter
type HTTPContext struct {
	root   *RootContext
	config fixedwindow.Config
	result strategies.Result
	now    time.Time
}

// OnHTTPRequestHeaders admits or rejects the request. On denial it sends the
// 429 response through sender and returns ActionPause. Store failures are
// logged and the request continues.
func (h *HTTPContext) OnHTTPRequestHeaders(ctx context.Context, sender ResponseSender) Action {
	h.now = h.root.clock()
	res, err := h.root.strategy.Admit(ctx, h.now, h.config)
	h.result = res

	log := h.root.logger
	switch {
	case err != nil:
		log.Warn("admission failed open", zap.String("key", res.Key), zap.Error(err))
	case res.FailOpen:
		log.Warn("admission failed open after contention", zap.String("key", res.Key))
	}

	if res.Allowed() {
		return ActionContinue
	}

	headers := [][2]string{{"Content-Type", "application/json"}}
	if h.root.withHeaders {
		headers = append(headers, rateLimitHeaders(res, h.now)...)
	}
	if err := sender.SendHTTPResponse(429, headers, h.root.denyBody); err != nil {
		log.Error("failed to send deny response", zap.String("key", res.Key), zap.Error(err))
	}
	log.Debug("request denied", zap.String("key", res.Key), zap.Uint32("count", res.Count))
	return ActionPause
}

// Result returns the decision made by OnHTTPRequestHeaders
func (h *HTTPContext) Result() strategies.Result {
	return h.result
}

func denyBody(message string) []byte {
	body, err := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: message})
	if err != nil {
		return []byte(`{"error":"API limit reached"}`)
	}
	return body
}
