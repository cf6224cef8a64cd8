package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions is the probe order for local assets.
var DefaultExtensions = []string{".mp4", ".webm", ".mov"}

// Local resolves assets from a flat directory by probing a fixed list of
// extensions in order. The first existing regular file wins.
type Local struct {
	dir  string
	exts []string
}

// NewLocal creates a local resolver over dir. With no extensions given,
// DefaultExtensions is used.
func NewLocal(dir string, exts ...string) *Local {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &Local{dir: dir, exts: exts}
}

// Resolve implements Resolver.
func (l *Local) Resolve(ctx context.Context, id string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// ids map directly onto file names; anything that could escape the
	// media directory is treated as a miss.
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, &NotFoundError{ID: id, Candidates: []string{l.dir}}
	}

	candidates := make([]string, 0, len(l.exts))
	for _, ext := range l.exts {
		path := filepath.Join(l.dir, id+ext)
		candidates = append(candidates, path)

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, &UpstreamError{Backend: "local", Err: fmt.Errorf("stat %s: %w", path, err)}
		}
		if info.IsDir() {
			continue
		}
		return &localAsset{path: path, size: info.Size()}, nil
	}
	return nil, &NotFoundError{ID: id, Candidates: candidates}
}

type localAsset struct {
	path string
	size int64
}

func (a *localAsset) Name() string { return a.path }
func (a *localAsset) Size() int64  { return a.size }

func (a *localAsset) Open(ctx context.Context) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("open asset %s: %w", a.path, err)
	}
	return f, nil
}
