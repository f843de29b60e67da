package upresume_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrymomot/upresume"
)

type testHandler struct {
	message string
}

func (h *testHandler) Routes(r upresume.Router) {
	r.GET("/", h.index)
	r.GET("/user/{id}", h.getUser)
	r.POST("/echo", h.echo)
	r.Route("/api", func(r upresume.Router) {
		r.GET("/ping", func(c upresume.Context) error {
			return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
		})
	})
	r.Group(func(r upresume.Router) {
		r.Use(func(next upresume.HandlerFunc) upresume.HandlerFunc {
			return func(c upresume.Context) error {
				c.SetHeader("X-Group", "admin")
				return next(c)
			}
		})
		r.GET("/admin", func(c upresume.Context) error {
			return upresume.ErrForbidden("admin only")
		})
	})
}

func (h *testHandler) index(c upresume.Context) error {
	return c.String(http.StatusOK, h.message)
}

func (h *testHandler) getUser(c upresume.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
}

func (h *testHandler) echo(c upresume.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, string(body))
}

func TestIntegration(t *testing.T) {
	var mwCalls int
	var mu sync.Mutex
	counter := func(next upresume.HandlerFunc) upresume.HandlerFunc {
		return func(c upresume.Context) error {
			mu.Lock()
			mwCalls++
			mu.Unlock()
			return next(c)
		}
	}

	app := upresume.New(
		upresume.WithMiddleware(counter),
		upresume.WithHandlers(&testHandler{message: "Welcome to Our Platform"}),
		upresume.WithHealthChecks(
			upresume.WithReadinessCheck("db", func(context.Context) error { return nil }),
		),
		upresume.WithNotFoundHandler(func(c upresume.Context) error {
			return c.String(http.StatusNotFound, "Page Not Found")
		}),
	)

	ts := httptest.NewServer(app)
	defer ts.Close()

	get := func(t *testing.T, path string) (*http.Response, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp, string(body)
	}

	t.Run("GET /", func(t *testing.T) {
		resp, body := get(t, "/")
		if resp.StatusCode != http.StatusOK || body != "Welcome to Our Platform" {
			t.Errorf("got %d %q", resp.StatusCode, body)
		}
	})

	t.Run("GET /user/{id}", func(t *testing.T) {
		_, body := get(t, "/user/01J9ZQ")
		var data map[string]string
		if err := json.Unmarshal([]byte(body), &data); err != nil {
			t.Fatal(err)
		}
		if data["id"] != "01J9ZQ" {
			t.Errorf("id = %q", data["id"])
		}
	})

	t.Run("POST /echo", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/echo", "text/plain", bytes.NewBufferString("hello"))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if string(body) != "hello" {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("GET /api/ping", func(t *testing.T) {
		resp, _ := get(t, "/api/ping")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("group middleware and HTTPError", func(t *testing.T) {
		resp, _ := get(t, "/admin")
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
		if resp.Header.Get("X-Group") != "admin" {
			t.Error("group middleware did not run")
		}
	})

	t.Run("not found handler", func(t *testing.T) {
		resp, body := get(t, "/nowhere")
		if resp.StatusCode != http.StatusNotFound || body != "Page Not Found" {
			t.Errorf("got %d %q", resp.StatusCode, body)
		}
	})

	t.Run("health", func(t *testing.T) {
		resp, body := get(t, "/health/ready?format=json")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var data map[string]any
		if err := json.Unmarshal([]byte(body), &data); err != nil {
			t.Fatal(err)
		}
		if data["status"] != "healthy" {
			t.Errorf("status = %v", data["status"])
		}
	})

	mu.Lock()
	defer mu.Unlock()
	if mwCalls == 0 {
		t.Error("global middleware never ran")
	}
}

func TestWithCustomLoggerNil(t *testing.T) {
	app := upresume.New(upresume.WithCustomLogger(nil))
	if app.Logger() == nil {
		t.Fatal("nil logger replaced the default")
	}

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	app = upresume.New(upresume.WithCustomLogger(custom))
	if app.Logger() != custom {
		t.Error("custom logger not installed")
	}
}

func TestRunHooks(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})

	app := upresume.New()
	done := make(chan error, 1)
	go func() {
		done <- app.Run(
			upresume.Address("127.0.0.1:0"),
			upresume.WithContext(ctx),
			upresume.StartupHook(func(ctx context.Context) error {
				close(started)
				return record("jobs:start")(ctx)
			}),
			upresume.ShutdownHook(record("jobs:stop")),
			upresume.ShutdownHook(record("redis:close")),
			upresume.ShutdownHook(record("db:close")),
			upresume.ShutdownTimeout(time.Second),
		)
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"jobs:start", "jobs:stop", "redis:close", "db:close"}
	if len(order) != len(want) {
		t.Fatalf("hooks = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("hooks = %v, want %v", order, want)
		}
	}
}

func TestRunStartupHookFailure(t *testing.T) {
	errBoom := errors.New("river: migrations missing")
	app := upresume.New()

	err := app.Run(
		upresume.Address("127.0.0.1:0"),
		upresume.StartupHook(func(context.Context) error { return errBoom }),
	)
	if !errors.Is(err, errBoom) {
		t.Fatalf("Run() error = %v, want %v", err, errBoom)
	}
}
