package imagecache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jredh-dev/souk/internal/client"
)

func TestResolveFetchesOncePerListing(t *testing.T) {
	var calls int32
	c := New(func(listingID int) ([]client.Image, error) {
		atomic.AddInt32(&calls, 1)
		return []client.Image{{ImageID: listingID * 10, URL: fmt.Sprintf("img-%d.png", listingID)}}, nil
	})

	for i := 0; i < 5; i++ {
		img, ok := c.Resolve(7)
		if !ok {
			t.Fatal("expected image")
		}
		if img.URL != "img-7.png" {
			t.Fatalf("unexpected image %q", img.URL)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 fetch, got %d", got)
	}

	c.Resolve(8)
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 fetches after second id, got %d", got)
	}
}

func TestResolveConcurrentSingleFetch(t *testing.T) {
	var calls int32
	c := New(func(int) ([]client.Image, error) {
		atomic.AddInt32(&calls, 1)
		return []client.Image{{ImageID: 1, URL: "a.png"}}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Resolve(42); !ok {
				t.Error("expected image")
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 fetch under concurrency, got %d", got)
	}
}

func TestResolveErrorAndEmptyAreNoImage(t *testing.T) {
	c := New(func(listingID int) ([]client.Image, error) {
		if listingID == 1 {
			return nil, fmt.Errorf("boom")
		}
		return nil, nil
	})

	if _, ok := c.Resolve(1); ok {
		t.Error("failed lookup should resolve to no image")
	}
	if _, ok := c.Resolve(2); ok {
		t.Error("empty lookup should resolve to no image")
	}
}

func TestPeekDoesNotFetch(t *testing.T) {
	var calls int32
	c := New(func(int) ([]client.Image, error) {
		atomic.AddInt32(&calls, 1)
		return []client.Image{{URL: "x.png"}}, nil
	})

	if _, _, resolved := c.Peek(3); resolved {
		t.Error("peek before resolve should report unresolved")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("peek must not fetch")
	}

	c.Resolve(3)
	img, ok, resolved := c.Peek(3)
	if !resolved || !ok || img.URL != "x.png" {
		t.Errorf("peek after resolve: img=%+v ok=%v resolved=%v", img, ok, resolved)
	}
}

func TestClearForcesRefetch(t *testing.T) {
	var calls int32
	c := New(func(int) ([]client.Image, error) {
		atomic.AddInt32(&calls, 1)
		return []client.Image{{URL: "y.png"}}, nil
	})

	c.Resolve(5)
	c.Clear()
	c.Resolve(5)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected refetch after clear, got %d calls", got)
	}
}
