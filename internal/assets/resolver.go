// Package assets locates the playable binary for a video id across
// candidate extensions and backends.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Asset is a playable binary resolved for a video id.
type Asset interface {
	// Name is a human-readable identifier of the located candidate
	// (a file path or an object key).
	Name() string
	// Size is the total byte length of the asset.
	Size() int64
	// Open returns a seekable reader over the asset bytes. The caller
	// must close it, including on early termination.
	Open(ctx context.Context) (io.ReadSeekCloser, error)
}

// SignedURLSource is implemented by assets whose backend can hand out a
// short-lived client-fetchable URL.
type SignedURLSource interface {
	SignedURL(ctx context.Context, ttl time.Duration) (string, error)
}

// Resolver probes one backend for a playable asset. Resolving is a
// read-only operation with no side effects.
type Resolver interface {
	Resolve(ctx context.Context, id string) (Asset, error)
}

// NotFoundError reports that no candidate location held an asset for the id.
// Candidates lists every location that was probed.
type NotFoundError struct {
	ID         string
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no playable asset for %q: tried %s", e.ID, strings.Join(e.Candidates, ", "))
}

// UpstreamError reports a backend failure that is not a simple miss.
type UpstreamError struct {
	Backend string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Backend, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Chain tries resolvers in order and returns the first hit. Misses
// accumulate into a single NotFoundError listing every probed candidate;
// any other failure aborts the chain.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(ctx context.Context, id string) (Asset, error) {
	var candidates []string
	for _, r := range c {
		asset, err := r.Resolve(ctx, id)
		if err == nil {
			return asset, nil
		}
		var nf *NotFoundError
		if errors.As(err, &nf) {
			candidates = append(candidates, nf.Candidates...)
			continue
		}
		return nil, err
	}
	return nil, &NotFoundError{ID: id, Candidates: candidates}
}
