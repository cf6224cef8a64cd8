package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectStore serves objects from memory and counts range requests.
type fakeObjectStore struct {
	objects    map[string][]byte
	rangeCalls int
	failRange  bool
	failSize   bool
}

func (f *fakeObjectStore) Size(_ context.Context, key string) (int64, bool, error) {
	if f.failSize {
		return 0, false, errors.New("store unreachable")
	}
	data, ok := f.objects[key]
	if !ok {
		return 0, false, nil
	}
	return int64(len(data)), true, nil
}

func (f *fakeObjectStore) ReadRange(_ context.Context, key string, start, end int64) (io.ReadCloser, error) {
	f.rangeCalls++
	if f.failRange {
		return nil, errors.New("store unreachable")
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	if start < 0 || end >= int64(len(data)) || start > end {
		return nil, fmt.Errorf("bad range %d-%d", start, end)
	}
	return io.NopCloser(bytes.NewReader(data[start : end+1])), nil
}

func (f *fakeObjectStore) SignedReadURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://blob.example/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func TestBlobResolveHit(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{"video_1.mp4": []byte("payload")}}
	b := NewBlob(store)

	a, err := b.Resolve(context.Background(), "video_1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), a.Size())
	assert.Equal(t, "blob:video_1.mp4", a.Name())
}

func TestBlobResolveMiss(t *testing.T) {
	b := NewBlob(&fakeObjectStore{objects: map[string][]byte{}})
	_, err := b.Resolve(context.Background(), "ghost")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, nf.Candidates, "blob:ghost.mp4")
}

func TestBlobResolveUpstreamFailure(t *testing.T) {
	b := NewBlob(&fakeObjectStore{failSize: true})
	_, err := b.Resolve(context.Background(), "video_1")

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "blob", ue.Backend)
}

func TestBlobAssetSignedURL(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{"video_1.mp4": []byte("payload")}}
	a, err := NewBlob(store).Resolve(context.Background(), "video_1")
	require.NoError(t, err)

	src, ok := a.(SignedURLSource)
	require.True(t, ok)
	url, err := src.SignedURL(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://blob.example/video_1.mp4?ttl=3600", url)
}

func TestRangeReaderSequentialRead(t *testing.T) {
	data := strings.Repeat("abcdefghij", 100)
	store := &fakeObjectStore{objects: map[string][]byte{"v.mp4": []byte(data)}}

	r := newRangeReader(context.Background(), store, "v.mp4", int64(len(data)))
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, string(got))
	// well under one window, so a single upstream fetch suffices
	assert.Equal(t, 1, store.rangeCalls)
}

func TestRangeReaderSeekAndRead(t *testing.T) {
	data := []byte("0123456789")
	store := &fakeObjectStore{objects: map[string][]byte{"v.mp4": data}}

	r := newRangeReader(context.Background(), store, "v.mp4", int64(len(data)))
	defer r.Close()

	pos, err := r.Seek(4, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(got))

	pos, err = r.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "789", string(got))
}

func TestRangeReaderReuseBufferAcrossSeeks(t *testing.T) {
	data := []byte("0123456789")
	store := &fakeObjectStore{objects: map[string][]byte{"v.mp4": data}}

	r := newRangeReader(context.Background(), store, "v.mp4", int64(len(data)))
	defer r.Close()

	buf := make([]byte, 2)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)

	// seeking back inside the fetched window must not hit the store again
	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "01", string(buf))
	assert.Equal(t, 1, store.rangeCalls)
}

func TestRangeReaderEOFAndErrors(t *testing.T) {
	data := []byte("xy")
	store := &fakeObjectStore{objects: map[string][]byte{"v.mp4": data}}

	r := newRangeReader(context.Background(), store, "v.mp4", int64(len(data)))
	_, err := r.Seek(2, io.SeekStart)
	require.NoError(t, err)
	_, err = r.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	_, err = r.Seek(-1, io.SeekStart)
	assert.Error(t, err)

	require.NoError(t, r.Close())
	_, err = r.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestRangeReaderUpstreamFailure(t *testing.T) {
	store := &fakeObjectStore{failRange: true}
	r := newRangeReader(context.Background(), store, "v.mp4", 10)
	defer r.Close()

	_, err := r.Read(make([]byte, 4))
	var ue *UpstreamError
	assert.True(t, errors.As(err, &ue))
}
