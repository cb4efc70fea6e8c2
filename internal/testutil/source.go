package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandboxops/console/internal/listview"
)

// PendingFetch is one FetchPage call held by a GatedSource until the test
// resolves it.
type PendingFetch[T any] struct {
	Params listview.QueryParams
	ctx    context.Context
	reply  chan fetchReply[T]
}

type fetchReply[T any] struct {
	res listview.ListResult[T]
	err error
}

// Resolve completes the call successfully.
func (p *PendingFetch[T]) Resolve(res listview.ListResult[T]) {
	p.reply <- fetchReply[T]{res: res}
}

// Fail completes the call with err.
func (p *PendingFetch[T]) Fail(err error) {
	p.reply <- fetchReply[T]{err: err}
}

// Canceled reports whether the caller has abandoned the call.
func (p *PendingFetch[T]) Canceled() bool {
	return p.ctx.Err() != nil
}

// GatedSource is a listview.Source whose calls block until the test answers
// them, so responses can be delivered in any order. Cancellation of the
// request context is recorded but does not release the call.
type GatedSource[T any] struct {
	calls chan *PendingFetch[T]
	count atomic.Int64
}

var _ listview.Source[struct{}] = (*GatedSource[struct{}])(nil)

// NewGatedSource returns an empty GatedSource.
func NewGatedSource[T any]() *GatedSource[T] {
	return &GatedSource[T]{calls: make(chan *PendingFetch[T], 64)}
}

// FetchPage implements listview.Source.
func (g *GatedSource[T]) FetchPage(ctx context.Context, params listview.QueryParams) (listview.ListResult[T], error) {
	g.count.Add(1)
	p := &PendingFetch[T]{Params: params, ctx: ctx, reply: make(chan fetchReply[T], 1)}
	g.calls <- p
	r := <-p.reply
	return r.res, r.err
}

// Calls returns the number of FetchPage calls so far.
func (g *GatedSource[T]) Calls() int {
	return int(g.count.Load())
}

// Next waits for the next FetchPage call.
func (g *GatedSource[T]) Next(t testing.TB) *PendingFetch[T] {
	t.Helper()
	select {
	case p := <-g.calls:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return nil
	}
}

// ExpectIdle fails the test if a FetchPage call arrives within d.
func (g *GatedSource[T]) ExpectIdle(t testing.TB, d time.Duration) {
	t.Helper()
	select {
	case p := <-g.calls:
		t.Fatalf("unexpected fetch with query %q", p.Params.Encode())
	case <-time.After(d):
	}
}
