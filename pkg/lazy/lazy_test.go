package lazy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestValueLoadsOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	v := New[[]string](func(context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"a", "b"}, nil
	})

	for i := 0; i < 3; i++ {
		got, err := v.Get(context.Background())
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Get() = %v, want 2 items", got)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("load called %d times, want 1", calls.Load())
	}
}

func TestValueFailedLoadIsRetried(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var calls atomic.Int32
	v := New[int](func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, boom
		}
		return 42, nil
	})

	if _, err := v.Get(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("first Get() error = %v, want boom", err)
	}
	if v.Loaded() {
		t.Fatal("failed load must not publish a value")
	}

	got, err := v.Get(context.Background())
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if got != 42 {
		t.Fatalf("second Get() = %d, want 42", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("load called %d times, want 2", calls.Load())
	}
}

func TestValueConcurrentFirstLoadConverges(t *testing.T) {
	t.Parallel()

	v := New[map[string]int](func(context.Context) (map[string]int, error) {
		return map[string]int{"x": 1}, nil
	})

	var wg sync.WaitGroup
	results := make([]map[string]int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := v.Get(context.Background())
			if err != nil {
				t.Errorf("Get() error = %v", err)
				return
			}
			results[i] = got
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r["x"] != 1 {
			t.Fatalf("result %d = %v, want x=1", i, r)
		}
	}
}
