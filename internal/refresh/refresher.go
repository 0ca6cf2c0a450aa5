// Package refresh runs decision retrievals off the caller's goroutine.
//
// A Refresher owns one worker goroutine (Run), so at most one retrieve is in
// flight at a time. Every Request is stamped from a Clock; a request made
// while another is pending replaces it, and a finished retrieve is delivered
// only if no newer request was made while it ran. A retrieve that has
// started always runs to completion; stopping only discards its result.
package refresh

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/decisionlog/internal/decision"
)

// Retriever is the part of the store a Refresher reads from.
type Retriever interface {
	Retrieve(ctx context.Context, f decision.Filter) ([]decision.Record, error)
}

// Result is the outcome of one delivered retrieve.
type Result struct {
	Seq     int64
	Filter  decision.Filter
	Records []decision.Record
	Err     error
}

type request struct {
	seq    int64
	filter decision.Filter
}

// Refresher serializes background retrieves and drops superseded results.
type Refresher struct {
	source Retriever
	clock  *Clock

	mu      sync.Mutex
	pending *request
	latest  int64
	closed  bool

	signal  chan struct{} // buffered, size 1
	results chan Result   // buffered, size 1; written only by Run
}

// New creates a Refresher reading from source. Call Run to start it.
func New(source Retriever) *Refresher {
	return &Refresher{
		source:  source,
		clock:   NewClock(),
		signal:  make(chan struct{}, 1),
		results: make(chan Result, 1),
	}
}

// Request asks for a retrieve with filter f and returns its sequence number.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the refresher has been stopped.
func (r *Refresher) Request(f decision.Filter) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, false
	}

	seq := r.clock.Next()
	if r.pending != nil {
		slog.Debug("refresh request coalesced", "replaced", r.pending.seq, "seq", seq)
	}
	r.pending = &request{seq: seq, filter: f}
	r.latest = seq

	select {
	case r.signal <- struct{}{}:
	default:
	}

	return seq, true
}

// Results delivers the outcome of each retrieve that was still the latest
// request when it finished. It is closed when Run returns.
func (r *Refresher) Results() <-chan Result {
	return r.results
}

// Run processes requests until ctx is cancelled or Stop is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (r *Refresher) Run(ctx context.Context) error {
	defer close(r.results)

	for {
		if req, ok := r.take(); ok {
			r.process(ctx, req)
			continue
		}

		select {
		case <-ctx.Done():
			r.Stop()
			return ctx.Err()

		case _, ok := <-r.signal:
			if !ok {
				return nil
			}
		}
	}
}

// Stop makes Run return and rejects later requests. Safe to call more than once.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.pending = nil
	close(r.signal)
}

func (r *Refresher) take() (request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return request{}, false
	}
	req := *r.pending
	r.pending = nil
	return req, true
}

// process runs req to completion even if ctx is cancelled meanwhile; the
// result is then dropped instead of delivered.
func (r *Refresher) process(ctx context.Context, req request) {
	records, err := r.source.Retrieve(context.WithoutCancel(ctx), req.filter)

	if ctx.Err() != nil {
		slog.Debug("refresh result dropped after stop", "seq", req.seq)
		return
	}

	r.mu.Lock()
	latest := r.latest
	r.mu.Unlock()

	if req.seq != latest {
		slog.Debug("refresh result superseded", "seq", req.seq, "latest", latest)
		return
	}

	result := Result{Seq: req.seq, Filter: req.filter, Records: records, Err: err}

	// Replace an undelivered older result rather than queue behind it.
	select {
	case <-r.results:
	default:
	}
	select {
	case r.results <- result:
	case <-ctx.Done():
	}
}
