// Package trace follows one visitor request through the directory API calls
// made while serving it.
//
// A request id is reused from the caller's X-Request-Id when present. Every
// upstream call of the request is numbered from 1 and sent as its span id, so
// a dashboard render that checks the admin session, reads stats and loads a
// list shows up upstream as spans 1, 2 and 3 of one request.
package trace

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Request is the trace state of one inbound request.
type Request struct {
	ID    string
	calls atomic.Int64
}

// NewID returns a fresh request id.
func NewID() string {
	return uuid.NewString()
}

// Begin starts tracing an inbound request. An empty id gets a fresh one.
func Begin(ctx context.Context, id string) (context.Context, *Request) {
	if id == "" {
		id = NewID()
	}
	r := &Request{ID: id}
	return context.WithValue(ctx, ctxKey{}, r), r
}

func fromContext(ctx context.Context) *Request {
	if ctx == nil {
		return nil
	}
	r, _ := ctx.Value(ctxKey{}).(*Request)
	return r
}

// UpstreamCalls is how many directory calls the request has made so far.
func (r *Request) UpstreamCalls() int64 {
	return r.calls.Load()
}

func RequestIDFromContext(ctx context.Context) string {
	if r := fromContext(ctx); r != nil {
		return r.ID
	}
	return ""
}

// UpstreamCall numbers the next directory call of the request in ctx and
// returns its request and span ids. A call made outside any traced request is
// a request of its own with span 1.
func UpstreamCall(ctx context.Context) (requestID, spanID string) {
	r := fromContext(ctx)
	if r == nil {
		return NewID(), "1"
	}
	return r.ID, strconv.FormatInt(r.calls.Add(1), 10)
}
