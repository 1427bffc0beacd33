package pipego

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMap(t *testing.T) {
	t.Run("Basic Transformation", func(t *testing.T) {
		upper := Map("upper", strings.ToUpper)
		result := Apply(context.Background(), upper, "hello")
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}
		if result.Value != "HELLO" {
			t.Errorf("expected HELLO, got %s", result.Value)
		}
	})

	t.Run("Panic Captured As Error", func(t *testing.T) {
		divide := Map("divide", func(n int) int { return 100 / n })
		result := Apply(context.Background(), divide, 0)
		if result.Err == nil {
			t.Fatal("expected captured panic")
		}
		if result.Value != 0 {
			t.Errorf("expected value frozen at input, got %d", result.Value)
		}
	})
}

func TestMapErr(t *testing.T) {
	t.Run("Success Sets Value", func(t *testing.T) {
		parse := MapErr("nonzero", func(n int) (int, error) {
			if n == 0 {
				return 0, errors.New("zero input")
			}
			return n * 2, nil
		})

		result := Apply(context.Background(), parse, 4)
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}
		if result.Value != 8 {
			t.Errorf("expected 8, got %d", result.Value)
		}
	})

	t.Run("Failure Freezes Value", func(t *testing.T) {
		parse := MapErr("nonzero", func(n int) (int, error) {
			return 0, errors.New("zero input")
		})

		result := Apply(context.Background(), parse, 7)
		if result.Err == nil {
			t.Fatal("expected error")
		}
		if result.Value != 7 {
			t.Errorf("expected value frozen at 7, got %d", result.Value)
		}
	})

	t.Run("Error Wrapped With Context", func(t *testing.T) {
		sentinel := errors.New("boom")
		op := MapErr("failing", func(int) (int, error) { return 0, sentinel })

		result := Apply(context.Background(), op, 1)
		if !errors.Is(result.Err, sentinel) {
			t.Errorf("expected wrapped sentinel, got %v", result.Err)
		}
		var pipeErr *Error[int]
		if !errors.As(result.Err, &pipeErr) {
			t.Fatalf("expected *Error[int], got %T", result.Err)
		}
		if pipeErr.Path[0] != "failing" {
			t.Errorf("unexpected path: %v", pipeErr.Path)
		}
	})
}

func TestMapCtx(t *testing.T) {
	t.Run("Context Aware Transformation", func(t *testing.T) {
		inc := MapCtx("inc", func(_ context.Context, n int) (int, error) {
			return n + 1, nil
		})

		v, err := New(1).Then(inc).Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 2 {
			t.Errorf("expected 2, got %d", v)
		}
	})

	t.Run("Cancellation Surfaces As Error", func(t *testing.T) {
		blocked := MapCtx("blocked", func(ctx context.Context, n int) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result := New(1).Then(blocked).Execute(ctx)
		if result.Err == nil {
			t.Fatal("expected cancellation error")
		}
		var pipeErr *Error[int]
		if !errors.As(result.Err, &pipeErr) {
			t.Fatalf("expected *Error[int], got %T", result.Err)
		}
		if !pipeErr.IsCanceled() {
			t.Error("expected canceled flag")
		}
	})
}
