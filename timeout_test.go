package pipego

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestTimeout(t *testing.T) {
	t.Run("Fast Operator Completes", func(t *testing.T) {
		fast := Map("fast", func(n int) int { return n * 2 })
		p := New(5).Then(Timeout("bounded", fast, time.Second))

		v, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 10 {
			t.Errorf("expected 10, got %d", v)
		}
	})

	t.Run("Expiry Fails With Timeout Error", func(t *testing.T) {
		slow := MapCtx("slow", func(ctx context.Context, n int) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})

		clock := clockz.NewFakeClock()
		p := New(5, WithClock(clock)).Then(Timeout("bounded", slow, 100*time.Millisecond))

		done := make(chan State[int], 1)
		go func() {
			done <- p.Execute(context.Background())
		}()

		// Allow goroutine to start and register its timer
		time.Sleep(10 * time.Millisecond)
		clock.Advance(100 * time.Millisecond)
		clock.BlockUntilReady()

		var result State[int]
		select {
		case result = <-done:
		case <-time.After(time.Second):
			t.Fatal("test timed out")
		}

		var pipeErr *Error[int]
		if !errors.As(result.Err, &pipeErr) {
			t.Fatalf("expected *Error[int], got %T", result.Err)
		}
		if !pipeErr.IsTimeout() {
			t.Error("expected timeout flag")
		}
		if result.Value != 5 {
			t.Errorf("expected value frozen at 5, got %d", result.Value)
		}
	})

	t.Run("Wrapped Error Carries Timeout Path", func(t *testing.T) {
		boom := MapErr("boom", func(int) (int, error) {
			return 0, errors.New("inner failure")
		})
		p := New(5).Then(Timeout("bounded", boom, time.Second))

		result := p.Execute(context.Background())
		var pipeErr *Error[int]
		if !errors.As(result.Err, &pipeErr) {
			t.Fatalf("expected *Error[int], got %T", result.Err)
		}
		if len(pipeErr.Path) != 2 || pipeErr.Path[0] != "bounded" || pipeErr.Path[1] != "boom" {
			t.Errorf("unexpected path: %v", pipeErr.Path)
		}
	})
}

func TestDelay(t *testing.T) {
	t.Run("Passes Value After Pause", func(t *testing.T) {
		clock := clockz.NewFakeClock()
		p := New(5, WithClock(clock)).Then(
			Delay[int]("pause", 50*time.Millisecond),
			Map("double", func(n int) int { return n * 2 }),
		)

		done := make(chan State[int], 1)
		go func() {
			done <- p.Execute(context.Background())
		}()

		time.Sleep(10 * time.Millisecond)
		clock.Advance(50 * time.Millisecond)
		clock.BlockUntilReady()

		var result State[int]
		select {
		case result = <-done:
		case <-time.After(time.Second):
			t.Fatal("test timed out")
		}

		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}
		if result.Value != 10 {
			t.Errorf("expected 10, got %d", result.Value)
		}
	})

	t.Run("Cancellation Cuts Pause Short", func(t *testing.T) {
		clock := clockz.NewFakeClock()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := New(5, WithClock(clock)).
			Then(Delay[int]("pause", time.Hour)).
			Execute(ctx)
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
