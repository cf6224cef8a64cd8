package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// rangeWindow is how many bytes a single upstream range request fetches.
// Large enough to keep request overhead negligible for sequential copies,
// small enough that an early client disconnect wastes little transfer.
const rangeWindow = 512 * 1024

// rangeReader adapts an ObjectStore key into an io.ReadSeekCloser by
// issuing windowed range requests on demand. Seeks only reposition the
// offset; the next Read fetches from the new position.
type rangeReader struct {
	ctx   context.Context
	store ObjectStore
	key   string
	size  int64

	off    int64
	buf    []byte
	bufOff int64 // object offset of buf[0]
	closed bool
}

func newRangeReader(ctx context.Context, store ObjectStore, key string, size int64) *rangeReader {
	return &rangeReader{ctx: ctx, store: store, key: key, size: size, bufOff: -1}
}

func (r *rangeReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errors.New("rangereader: read after close")
	}
	if r.off >= r.size {
		return 0, io.EOF
	}
	if !r.buffered() {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.buf[r.off-r.bufOff:])
	r.off += int64(n)
	return n, nil
}

// buffered reports whether the current offset falls inside the window
// held in buf.
func (r *rangeReader) buffered() bool {
	return r.bufOff >= 0 && r.off >= r.bufOff && r.off < r.bufOff+int64(len(r.buf))
}

func (r *rangeReader) fill() error {
	end := r.off + rangeWindow - 1
	if end > r.size-1 {
		end = r.size - 1
	}
	rc, err := r.store.ReadRange(r.ctx, r.key, r.off, end)
	if err != nil {
		return &UpstreamError{Backend: "blob", Err: fmt.Errorf("range %d-%d of %s: %w", r.off, end, r.key, err)}
	}
	defer rc.Close()

	want := end - r.off + 1
	buf := make([]byte, want)
	if _, err := io.ReadFull(rc, buf); err != nil {
		return &UpstreamError{Backend: "blob", Err: fmt.Errorf("short range read of %s: %w", r.key, err)}
	}
	r.buf = buf
	r.bufOff = r.off
	return nil
}

func (r *rangeReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.off + offset
	case io.SeekEnd:
		abs = r.size + offset
	default:
		return 0, fmt.Errorf("rangereader: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("rangereader: negative position")
	}
	r.off = abs
	return abs, nil
}

func (r *rangeReader) Close() error {
	r.closed = true
	r.buf = nil
	return nil
}
