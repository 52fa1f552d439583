// Package pager follows continuation tokens of list endpoints and exposes the
// concatenated pages as one forward-only sequence.
package pager

import (
	"context"
	"errors"
	"iter"
)

// Done is returned by Next when every page has been consumed.
var Done = errors.New("no more items")

// PageFunc fetches the page identified by pageToken. The first page is
// requested with an empty token. An empty next token ends the sequence.
type PageFunc[T any] func(ctx context.Context, pageToken string) (items []T, next string, err error)

// Pager yields the items of successive pages in server order.
// A Pager is not restartable: once it returns Done or an error, it keeps
// returning that result.
type Pager[T any] struct {
	fetch   PageFunc[T]
	buf     []T
	token   string
	started bool
	pages   int
	err     error
}

// New creates a pager that starts at the first page.
func New[T any](fetch PageFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch}
}

// Fail returns a pager whose first Next reports err. It lets constructors
// surface request validation errors through the usual iteration path.
func Fail[T any](err error) *Pager[T] {
	return &Pager[T]{err: err}
}

// Next returns the next item, fetching another page when the current one is drained.
func (p *Pager[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for len(p.buf) == 0 {
		if p.err != nil {
			return zero, p.err
		}
		if p.started && p.token == "" {
			p.err = Done
			return zero, Done
		}
		items, next, err := p.fetch(ctx, p.token)
		if err != nil {
			p.err = err
			return zero, err
		}
		p.started = true
		p.pages++
		p.buf = items
		p.token = next
	}
	// The page belongs to the fetch function; only the view advances.
	item := p.buf[0]
	p.buf = p.buf[1:]
	return item, nil
}

// All ranges over the remaining items. Iteration stops after the first error,
// which is yielded together with the zero value.
func (p *Pager[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := p.Next(ctx)
			if errors.Is(err, Done) {
				return
			}
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains the pager into a slice.
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for item, err := range p.All(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Pages reports how many pages have been fetched so far.
func (p *Pager[T]) Pages() int { return p.pages }
