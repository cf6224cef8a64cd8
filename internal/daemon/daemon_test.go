package daemon

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tubelet/tubelet/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			ListenAddr:      "127.0.0.1:0",
			ReadTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	d := New(testConfig(), http.NewServeMux(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// give the listener a moment to come up before tearing it down
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop after cancellation")
	}
}

func TestRunFailsOnBadAddr(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ListenAddr = "256.256.256.256:99999"
	d := New(cfg, http.NewServeMux(), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.Error(t, d.Run(ctx))
}
