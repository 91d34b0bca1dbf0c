package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLockerSerializesPerKey(t *testing.T) {
	l := NewLocalLocker(time.Second)
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, ok, err := l.Acquire(context.Background(), "batch-1")
			if err != nil || !ok {
				t.Errorf("Acquire: ok=%v err=%v", ok, err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("concurrent holders: want=1 got=%d", maxInside)
	}
}

func TestLocalLockerGivesUpAfterWait(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)
	release, ok, _ := l.Acquire(context.Background(), "k")
	if !ok {
		t.Fatalf("first Acquire should succeed")
	}
	defer release()

	_, ok, err := l.Acquire(context.Background(), "k")
	if ok || err != nil {
		t.Fatalf("second Acquire: want give-up got ok=%v err=%v", ok, err)
	}
	other, ok, _ := l.Acquire(context.Background(), "other")
	if !ok {
		t.Fatalf("independent key should not block")
	}
	other()
}
