package pagepdf

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() (*Converter, error)
	Release(*Converter)
	Size() int
	Close() error
} = (*ConverterPool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit takes priority", 4, 4},
		{"explicit=1 for sequential", 1, 1},
		{"explicit can exceed max", 16, 16},
		{"zero uses auto calculation", 0, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
		{"negative uses auto calculation", -3, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestConverterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2, WithRenderer(&fakeRenderer{}))
	defer pool.Close()

	conv1, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	conv2, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	if conv1 == conv2 {
		t.Error("expected different converter instances")
	}

	pool.Release(conv1)
	conv3, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	if conv3 != conv1 {
		t.Error("expected to get back released converter")
	}

	pool.Release(conv2)
	pool.Release(conv3)
	pool.Release(nil)
}

func TestConverterPool_BlocksAtCapacity(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1, WithRenderer(&fakeRenderer{}))
	defer pool.Close()

	conv, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}

	got := make(chan *Converter)
	go func() {
		c, _ := pool.Acquire()
		got <- c
	}()

	select {
	case <-got:
		t.Fatal("Acquire() returned while the only converter was in use")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(conv)
	select {
	case c := <-got:
		if c != conv {
			t.Error("waiting Acquire() did not receive the released converter")
		}
		pool.Release(c)
	case <-time.After(2 * time.Second):
		t.Fatal("waiting Acquire() never returned")
	}
}

func TestConverterPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := NewConverterPool(tt.size)
			defer pool.Close()
			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	pool := NewConverterPool(3, WithRenderer(r))

	for range 2 {
		conv, err := pool.Acquire()
		if err != nil {
			t.Fatalf("Acquire() unexpected error: %v", err)
		}
		pool.Release(conv)
		// Released converters are reused, so hold one to force a second.
		if _, err := pool.Acquire(); err != nil {
			t.Fatalf("Acquire() unexpected error: %v", err)
		}
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if r.closed != 2 {
		t.Errorf("renderer closed %d times, want 2", r.closed)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
	if _, err := pool.Acquire(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestConverterPool_ConstructorError(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1, WithImageFormat("tiff"), WithRenderer(&fakeRenderer{}))
	defer pool.Close()

	for range 2 {
		// A failed construction frees its slot, so the error repeats
		// rather than blocking.
		if _, err := pool.Acquire(); !errors.Is(err, ErrInvalidImageFormat) {
			t.Fatalf("Acquire() error = %v, want ErrInvalidImageFormat", err)
		}
	}
}

func TestConverterPool_Concurrent(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(3, WithRenderer(&fakeRenderer{}))
	defer pool.Close()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		inUse = map[*Converter]bool{}
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := pool.Acquire()
			if err != nil {
				t.Errorf("Acquire() unexpected error: %v", err)
				return
			}
			mu.Lock()
			if inUse[conv] {
				t.Error("converter handed out twice")
			}
			inUse[conv] = true
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inUse[conv] = false
			mu.Unlock()
			pool.Release(conv)
		}()
	}
	wg.Wait()
}
