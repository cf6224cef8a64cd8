package blobstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newObjectServer(t *testing.T, objects map[string][]byte, wantToken string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/objects/", func(w http.ResponseWriter, r *http.Request) {
		if wantToken != "" && r.Header.Get("Authorization") != "Bearer "+wantToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/objects/")
		switch r.Method {
		case http.MethodPut:
			data, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			objects[key] = data
			w.WriteHeader(http.StatusCreated)
		case http.MethodHead, http.MethodGet:
			data, ok := objects[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			http.ServeContent(w, r, key, time.Time{}, strings.NewReader(string(data)))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/sign", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Key        string `json:"key"`
			TTLSeconds int64  `json:"ttl_seconds"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"url": "https://signed.example/" + in.Key,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientPutThenSize(t *testing.T) {
	objects := map[string][]byte{}
	srv := newObjectServer(t, objects, "")
	c := New(srv.URL, "", 5*time.Second)

	body := strings.NewReader("video bytes")
	require.NoError(t, c.Put(context.Background(), "video_9.mp4", body, 11))

	size, found, err := c.Size(context.Background(), "video_9.mp4")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(11), size)
}

func TestClientSizeMissingKey(t *testing.T) {
	srv := newObjectServer(t, map[string][]byte{}, "")
	c := New(srv.URL, "", 5*time.Second)

	_, found, err := c.Size(context.Background(), "ghost.mp4")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClientReadRange(t *testing.T) {
	objects := map[string][]byte{"v.mp4": []byte("0123456789")}
	srv := newObjectServer(t, objects, "")
	c := New(srv.URL, "", 5*time.Second)

	rc, err := c.ReadRange(context.Background(), "v.mp4", 2, 5)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(got))
}

func TestClientBearerToken(t *testing.T) {
	objects := map[string][]byte{"v.mp4": []byte("x")}
	srv := newObjectServer(t, objects, "sekrit")

	authed := New(srv.URL, "sekrit", 5*time.Second)
	_, found, err := authed.Size(context.Background(), "v.mp4")
	require.NoError(t, err)
	assert.True(t, found)

	anon := New(srv.URL, "", 5*time.Second)
	_, _, err = anon.Size(context.Background(), "v.mp4")
	assert.Error(t, err)
}

func TestClientSignedReadURL(t *testing.T) {
	srv := newObjectServer(t, map[string][]byte{}, "")
	c := New(srv.URL, "", 5*time.Second)

	u, err := c.SignedReadURL(context.Background(), "v.mp4", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/v.mp4", u)
}

func TestClientUnreachableStore(t *testing.T) {
	srv := newObjectServer(t, map[string][]byte{}, "")
	srv.Close()
	c := New(srv.URL, "", time.Second)

	_, _, err := c.Size(context.Background(), "v.mp4")
	assert.Error(t, err)
	_, err = c.ReadRange(context.Background(), "v.mp4", 0, 1)
	assert.Error(t, err)
}
