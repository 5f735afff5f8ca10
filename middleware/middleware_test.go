package middleware_test

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/voxelforge/tick/middleware"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) middleware.Middleware {
		return func(c middleware.Call, next middleware.Handler) error {
			order = append(order, name+"-before")
			err := next()
			order = append(order, name+"-after")
			return err
		}
	}

	chain := middleware.Chain(mk("outer"), mk("inner"))
	err := chain(middleware.Call{Kind: middleware.KindStep, Name: "x"}, func() error {
		order = append(order, "handler")
		return nil
	})
	if err != nil {
		t.Fatalf("chain returned error: %v", err)
	}

	want := []string{"outer-before", "inner-before", "handler", "inner-after", "outer-after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestChainEmptyCallsHandler(t *testing.T) {
	called := false
	err := middleware.Chain()(middleware.Call{}, func() error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("called=%v err=%v", called, err)
	}
}

func TestRecoverConvertsPanic(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rec := middleware.Recover(logger)
	err := rec(middleware.Call{Kind: middleware.KindJob, Name: "job_x"}, func() error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error %q does not mention panic value", err)
	}
	if !strings.Contains(buf.String(), "callback panicked") {
		t.Fatal("panic was not logged")
	}
}

func TestRecoverPassesThrough(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	sentinel := errors.New("handler error")

	err := middleware.Recover(logger)(middleware.Call{}, func() error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
}

func TestRecoverAlwaysReturnsErrorWhenRateLimited(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	rec := middleware.Recover(logger)

	// Burst past the log limiter; the error must still come back every time.
	for i := 0; i < 50; i++ {
		err := rec(middleware.Call{Kind: middleware.KindStep, Name: "hot"}, func() error {
			panic(i)
		})
		if err == nil {
			t.Fatalf("invocation %d: panic not converted to error", i)
		}
	}
}

func TestLoggingPassesError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	sentinel := errors.New("bad")

	err := middleware.Logging(logger)(middleware.Call{Kind: middleware.KindStep, Name: "g"}, func() error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
}

func TestMetricsIsTransparent(t *testing.T) {
	// With no global MeterProvider configured the instruments are noops;
	// the middleware must still run the handler and pass results through.
	m := middleware.Metrics()

	called := false
	if err := m(middleware.Call{Kind: middleware.KindJob, Name: "j"}, func() error {
		called = true
		return nil
	}); err != nil || !called {
		t.Fatalf("called=%v err=%v", called, err)
	}

	sentinel := errors.New("x")
	if err := m(middleware.Call{}, func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
}
