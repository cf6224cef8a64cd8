package assets

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ObjectStore is the remote object-store collaborator used by the blob
// resolver. Implementations live outside this package.
type ObjectStore interface {
	// Size reports the byte length of an object, or found=false when the
	// key does not exist.
	Size(ctx context.Context, key string) (size int64, found bool, err error)
	// ReadRange returns a reader over the inclusive byte range [start, end].
	ReadRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, error)
	// SignedReadURL returns a pre-signed read URL valid for ttl.
	SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Blob resolves assets stored in a remote object store under the key
// "<id>.mp4". Reads go through ranged requests so large objects are never
// buffered whole.
type Blob struct {
	store ObjectStore
}

// NewBlob creates a blob resolver over store.
func NewBlob(store ObjectStore) *Blob {
	return &Blob{store: store}
}

// Resolve implements Resolver.
func (b *Blob) Resolve(ctx context.Context, id string) (Asset, error) {
	key := id + ".mp4"
	size, found, err := b.store.Size(ctx, key)
	if err != nil {
		return nil, &UpstreamError{Backend: "blob", Err: fmt.Errorf("size of %s: %w", key, err)}
	}
	if !found {
		return nil, &NotFoundError{ID: id, Candidates: []string{"blob:" + key}}
	}
	return &blobAsset{store: b.store, key: key, size: size}, nil
}

type blobAsset struct {
	store ObjectStore
	key   string
	size  int64
}

func (a *blobAsset) Name() string { return "blob:" + a.key }
func (a *blobAsset) Size() int64  { return a.size }

func (a *blobAsset) Open(ctx context.Context) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newRangeReader(ctx, a.store, a.key, a.size), nil
}

// SignedURL implements SignedURLSource.
func (a *blobAsset) SignedURL(ctx context.Context, ttl time.Duration) (string, error) {
	return a.store.SignedReadURL(ctx, a.key, ttl)
}
