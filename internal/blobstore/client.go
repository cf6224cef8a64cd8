// Package blobstore is an HTTP client for the remote object store that
// holds uploaded video binaries.
package blobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the object-store HTTP API. All methods are safe for
// concurrent use.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New creates a client for the store at base. token, when non-empty, is
// sent as a bearer credential on every request.
func New(base, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) objectURL(key string) string {
	return c.base + "/objects/" + url.PathEscape(key)
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// Put uploads an object, replacing any existing one under the same key.
func (c *Client) Put(ctx context.Context, key string, body io.Reader, size int64) error {
	req, err := c.newRequest(ctx, http.MethodPut, c.objectURL(key), body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/octet-stream")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated && res.StatusCode != http.StatusNoContent {
		return fmt.Errorf("put %s: unexpected status %d", key, res.StatusCode)
	}
	return nil
}

// Size reports the byte length of an object via a HEAD request.
// A missing key is not an error; found is false.
func (c *Client) Size(ctx context.Context, key string) (int64, bool, error) {
	req, err := c.newRequest(ctx, http.MethodHead, c.objectURL(key), nil)
	if err != nil {
		return 0, false, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("head %s: %w", key, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("head %s: unexpected status %d", key, res.StatusCode)
	}
	size, err := strconv.ParseInt(res.Header.Get("Content-Length"), 10, 64)
	if err != nil || size < 0 {
		return 0, false, fmt.Errorf("head %s: bad content length %q", key, res.Header.Get("Content-Length"))
	}
	return size, true, nil
}

// ReadRange fetches the inclusive byte range [start, end] of an object.
// The caller owns the returned body.
func (c *Client) ReadRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.objectURL(key), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if res.StatusCode != http.StatusPartialContent {
		res.Body.Close()
		return nil, fmt.Errorf("get %s: expected 206, got %d", key, res.StatusCode)
	}
	return res.Body, nil
}

// SignedReadURL asks the store to mint a client-fetchable URL for the
// object, valid for ttl.
func (c *Client) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	payload, err := json.Marshal(struct {
		Key        string `json:"key"`
		TTLSeconds int64  `json:"ttl_seconds"`
	}{Key: key, TTLSeconds: int64(ttl.Seconds())})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.base+"/sign", strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign %s: unexpected status %d", key, res.StatusCode)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("sign %s: decode response: %w", key, err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("sign %s: empty url in response", key)
	}
	return out.URL, nil
}
