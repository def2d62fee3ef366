package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverseOnce(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	record := func(name string, err error) ShutdownFunc {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}
	boom := errors.New("boom")
	m.Register("store", record("store", nil))
	m.Register("redis", record("redis", boom))
	m.Register("http", record("http", nil))
	m.Register("nil", nil)

	err := m.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected hook error to be returned, got %v", err)
	}
	if want := []string{"http", "redis", "store"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}

	m.Register("late", record("late", nil))
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown should be a no-op, got %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("hooks ran twice: %v", order)
	}
}

func TestShutdownHooksSeeDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWaitReturnsFirstFailure(t *testing.T) {
	m := New(time.Second, nil)
	boom := errors.New("listen failed")

	m.Go("ok", func() error { return nil })
	m.Go("http", func() error { return boom })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Wait(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected component failure, got %v", err)
	}
}

func TestWaitReturnsNilOnCancel(t *testing.T) {
	m := New(time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Wait(ctx); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}
