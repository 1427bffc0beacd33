package pipego

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

func TestCompose(t *testing.T) {
	t.Run("Applies In Order", func(t *testing.T) {
		normalize := Compose("normalize",
			Map("trim", strings.TrimSpace),
			Map("lower", strings.ToLower),
		)

		result := Apply(context.Background(), normalize, "  HeLLo  ")
		if result.Value != "hello" {
			t.Errorf("expected hello, got %q", result.Value)
		}
	})

	t.Run("Internal Stop Skips Later Steps", func(t *testing.T) {
		var ran bool
		composite := Compose("gated",
			Filter("never", func(int) bool { return false }),
			Tap("after", func(int) { ran = true }),
		)

		result := Apply(context.Background(), composite, 5)
		if !result.Stopped {
			t.Error("expected stop")
		}
		if ran {
			t.Error("step after stop must not run")
		}
	})

	t.Run("Internal Recovery Still Runs", func(t *testing.T) {
		composite := Compose("self-healing",
			MapErr("boom", func(int) (int, error) { return 0, errors.New("boom") }),
			CatchError("fallback", func(v int, _ error) int { return v + 1 }),
		)

		result := Apply(context.Background(), composite, 5)
		if result.Err != nil {
			t.Fatalf("expected recovered state, got %v", result.Err)
		}
		if result.Value != 6 {
			t.Errorf("expected 6, got %d", result.Value)
		}
	})

	t.Run("Composite Error Carries Outer Name", func(t *testing.T) {
		composite := Compose("outer",
			MapErr("inner", func(int) (int, error) { return 0, errors.New("boom") }),
		)

		result := Apply(context.Background(), composite, 1)
		var pipeErr *Error[int]
		if !errors.As(result.Err, &pipeErr) {
			t.Fatalf("expected *Error[int], got %T", result.Err)
		}
		if len(pipeErr.Path) != 2 || pipeErr.Path[0] != "outer" || pipeErr.Path[1] != "inner" {
			t.Errorf("unexpected path: %v", pipeErr.Path)
		}
	})

	t.Run("Nested Counters Stay Independent", func(t *testing.T) {
		composite := Compose("gates",
			Take[int]("a", 1),
			Take[int]("b", 1),
		)

		p := New(5).Then(composite)
		for i := 0; i < 3; i++ {
			if p.Execute(context.Background()).Stopped {
				t.Fatalf("execution %d stopped: nested counters leaked", i)
			}
		}
	})
}

func TestJoin(t *testing.T) {
	t.Run("Cross Type Composition", func(t *testing.T) {
		itoaLen := Join(strconv.Itoa, func(s string) int { return len(s) })
		if got := itoaLen(12345); got != 5 {
			t.Errorf("expected 5, got %d", got)
		}
	})
}

func TestParallel(t *testing.T) {
	t.Run("All Functions Complete Before Continuing", func(t *testing.T) {
		var count int32
		fanout := Parallel("fanout",
			func(_ context.Context, _ int) error { atomic.AddInt32(&count, 1); return nil },
			func(_ context.Context, _ int) error { atomic.AddInt32(&count, 1); return nil },
			func(_ context.Context, _ int) error { atomic.AddInt32(&count, 1); return nil },
		)

		var after int32
		p := New(5).Then(
			fanout,
			Tap("after", func(int) { after = atomic.LoadInt32(&count) }),
		)
		result := p.Execute(context.Background())
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}
		if after != 3 {
			t.Errorf("expected all 3 functions done before next step, saw %d", after)
		}
		if result.Value != 5 {
			t.Errorf("expected value unchanged, got %d", result.Value)
		}
	})

	t.Run("First Error In Argument Order Wins", func(t *testing.T) {
		errA := errors.New("a failed")
		errB := errors.New("b failed")
		fanout := Parallel("fanout",
			func(_ context.Context, _ int) error { return errA },
			func(_ context.Context, _ int) error { return errB },
		)

		result := Apply(context.Background(), fanout, 5)
		if !errors.Is(result.Err, errA) {
			t.Errorf("expected first error, got %v", result.Err)
		}
	})

	t.Run("Panic In Batch Captured", func(t *testing.T) {
		fanout := Parallel("fanout",
			func(_ context.Context, _ int) error { return nil },
			func(_ context.Context, _ int) error { panic("batch boom") },
		)

		result := Apply(context.Background(), fanout, 5)
		if result.Err == nil {
			t.Fatal("expected captured panic")
		}
		if result.Value != 5 {
			t.Errorf("expected value frozen at 5, got %d", result.Value)
		}
	})
}
