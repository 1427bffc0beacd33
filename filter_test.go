package pipego

import (
	"context"
	"testing"
)

func TestFilter(t *testing.T) {
	t.Run("True Predicate Passes Through", func(t *testing.T) {
		positive := Filter("positive", func(n int) bool { return n > 0 })
		result := Apply(context.Background(), positive, 5)
		if result.Stopped {
			t.Error("unexpected stop")
		}
		if result.Value != 5 {
			t.Errorf("expected 5, got %d", result.Value)
		}
	})

	t.Run("False Predicate Stops Without Error", func(t *testing.T) {
		big := Filter("big", func(n int) bool { return n > 10 })
		result := Apply(context.Background(), big, 5)
		if !result.Stopped {
			t.Error("expected stop")
		}
		if result.Err != nil {
			t.Errorf("filter must not set an error: %v", result.Err)
		}
		if result.Value != 5 {
			t.Errorf("expected value frozen at 5, got %d", result.Value)
		}
	})

	t.Run("Stopped Chain Skips Later Operators", func(t *testing.T) {
		var ran bool
		p := New(5).Then(
			Filter("big", func(n int) bool { return n > 10 }),
			Tap("after", func(int) { ran = true }),
		)
		result := p.Execute(context.Background())
		if !result.Stopped {
			t.Fatal("expected stop")
		}
		if ran {
			t.Error("operator after stop must not run")
		}
	})
}
