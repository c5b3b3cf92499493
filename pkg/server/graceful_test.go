package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
}

func startServer(t *testing.T, gs *GracefulServer) (context.CancelFunc, <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	select {
	case <-gs.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server never became ready")
	}
	return cancel, done
}

func TestGracefulServer_ServeAndCancel(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler(), Options{ShutdownTimeout: time.Second})

	var hookCalls atomic.Int32
	gs.OnShutdown(func(ctx context.Context) error {
		hookCalls.Add(1)
		return nil
	})

	cancel, done := startServer(t, gs)

	resp, err := http.Get("http://" + gs.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if !gs.IsShuttingDown() {
		t.Error("IsShuttingDown() = false after shutdown")
	}
	if hookCalls.Load() != 1 {
		t.Errorf("shutdown hook ran %d times, want 1", hookCalls.Load())
	}

	// A second Shutdown is a no-op.
	if err := gs.Shutdown(); err != nil {
		t.Errorf("second Shutdown() = %v", err)
	}
	if hookCalls.Load() != 1 {
		t.Errorf("hook re-ran on second Shutdown")
	}
}

func TestGracefulServer_HookErrorsReported(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler(), Options{ShutdownTimeout: time.Second})
	sentinel := errors.New("nng close failed")
	gs.OnShutdown(func(context.Context) error { return sentinel })

	cancel, done := startServer(t, gs)
	defer cancel()

	if err := gs.Shutdown(); !errors.Is(err, sentinel) {
		t.Errorf("Shutdown() = %v, want hook error", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Serve returned %v after external Shutdown", err)
	}
}

func TestGracefulServer_SIGHUPReloads(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler(), Options{ShutdownTimeout: time.Second})

	reloaded := make(chan struct{}, 1)
	gs.SetConfigReloadFunc(func() error {
		reloaded <- struct{}{}
		return nil
	})

	cancel, done := startServer(t, gs)
	defer func() {
		cancel()
		<-done
	}()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("Failed to send SIGHUP: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("SIGHUP did not trigger a reload")
	}
	if gs.IsShuttingDown() {
		t.Error("Server should not be shutting down after SIGHUP")
	}
}

func TestGracefulServer_ReloadConfig(t *testing.T) {
	gs := NewGracefulServer(":0", okHandler(), Options{})

	if err := gs.ReloadConfig(); err != nil {
		t.Errorf("ReloadConfig() without func = %v, want nil", err)
	}

	called := false
	gs.SetConfigReloadFunc(func() error {
		called = true
		return nil
	})
	if err := gs.ReloadConfig(); err != nil {
		t.Errorf("ReloadConfig() error = %v", err)
	}
	if !called {
		t.Error("Config reload function was not called")
	}

	sentinel := errors.New("bad yaml")
	gs.SetConfigReloadFunc(func() error { return sentinel })
	if err := gs.ReloadConfig(); !errors.Is(err, sentinel) {
		t.Errorf("ReloadConfig() error = %v, want %v", err, sentinel)
	}
}

func TestNewGracefulServerDefaults(t *testing.T) {
	gs := NewGracefulServer(":0", okHandler(), Options{ReadTimeout: time.Second})
	if gs.server.ReadTimeout != time.Second {
		t.Errorf("ReadTimeout = %v, want 1s", gs.server.ReadTimeout)
	}
	if gs.server.WriteTimeout != DefaultOptions().WriteTimeout {
		t.Errorf("WriteTimeout = %v, want default", gs.server.WriteTimeout)
	}
	if gs.shutdownTimeout != DefaultOptions().ShutdownTimeout {
		t.Errorf("shutdownTimeout = %v, want default", gs.shutdownTimeout)
	}
}
