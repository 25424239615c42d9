package crawler

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"
)

func TestRandomDelayRange(t *testing.T) {
	delay, err := NewRandomDelay(10*time.Second, 30*time.Second, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("NewRandomDelay() error = %v", err)
	}

	for i := 0; i < 1000; i++ {
		d := delay.Next()
		if d < 10*time.Second || d > 30*time.Second {
			t.Fatalf("Delay %v outside [10s, 30s]", d)
		}
	}
}

func TestRandomDelayFixed(t *testing.T) {
	delay, err := NewRandomDelay(2*time.Second, 2*time.Second, nil)
	if err != nil {
		t.Fatalf("NewRandomDelay() error = %v", err)
	}
	if d := delay.Next(); d != 2*time.Second {
		t.Errorf("Expected fixed delay 2s, got %v", d)
	}
}

func TestRandomDelayInvalid(t *testing.T) {
	if _, err := NewRandomDelay(-time.Second, time.Second, nil); err == nil {
		t.Error("Expected error for negative minimum")
	}
	if _, err := NewRandomDelay(3*time.Second, time.Second, nil); err == nil {
		t.Error("Expected error for max < min")
	}
}

func TestRandomDelayWaitUsesSleep(t *testing.T) {
	delay, err := NewRandomDelay(5*time.Second, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("NewRandomDelay() error = %v", err)
	}

	var slept []time.Duration
	delay.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	for i := 0; i < 3; i++ {
		if err := delay.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}

	if len(slept) != 3 || slept[0] != 5*time.Second {
		t.Errorf("Expected three 5s sleeps, got %v", slept)
	}
}

func TestRandomDelayWaitBlocks(t *testing.T) {
	delay, err := NewRandomDelay(30*time.Millisecond, 40*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewRandomDelay() error = %v", err)
	}

	start := time.Now()
	if err := delay.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Wait returned after %v, expected at least 30ms", elapsed)
	}
}

func TestRandomDelayWaitCancelled(t *testing.T) {
	delay, err := NewRandomDelay(time.Hour, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewRandomDelay() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := delay.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestRandomDelayLiteral(t *testing.T) {
	delay := &RandomDelay{Min: time.Millisecond, Max: 2 * time.Millisecond}

	for i := 0; i < 10; i++ {
		if d := delay.Next(); d < time.Millisecond || d > 2*time.Millisecond {
			t.Fatalf("Delay %v outside [1ms, 2ms]", d)
		}
	}
	if err := delay.Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}

	var zero RandomDelay
	if err := zero.Wait(context.Background()); err != nil {
		t.Errorf("Zero value Wait() error = %v", err)
	}
}

func TestNoDelay(t *testing.T) {
	if err := (NoDelay{}).Wait(context.Background()); err != nil {
		t.Errorf("NoDelay.Wait() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (NoDelay{}).Wait(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
