package storage

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryCart_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart()

	if n, _ := cart.AddItem(ctx, "alice", "Widget", 2); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
	if n, _ := cart.AddItem(ctx, "alice", "Widget", 3); n != 5 {
		t.Errorf("expected 5, got %d", n)
	}
	if n, _ := cart.RemoveItem(ctx, "alice", "Widget", 4); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
	if n, _ := cart.RemoveItem(ctx, "alice", "Widget", 4); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}

	items, _ := cart.Items(ctx, "alice")
	if len(items) != 0 {
		t.Errorf("expected entry removed, got %+v", items)
	}
}

func TestMemoryCart_ItemsSortedPerOwner(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart()

	cart.AddItem(ctx, "alice", "b", 1)
	cart.AddItem(ctx, "alice", "a", 2)
	cart.AddItem(ctx, "bob", "c", 3)

	items, _ := cart.Items(ctx, "alice")
	if len(items) != 2 || items[0].Product != "a" || items[1].Product != "b" {
		t.Errorf("unexpected items %+v", items)
	}

	cart.Clear(ctx, "alice")
	if items, _ := cart.Items(ctx, "alice"); len(items) != 0 {
		t.Errorf("expected alice's cart cleared, got %+v", items)
	}
	if items, _ := cart.Items(ctx, "bob"); len(items) != 1 {
		t.Errorf("expected bob's cart untouched, got %+v", items)
	}

	cart.Reset(ctx)
	if items, _ := cart.Items(ctx, "bob"); len(items) != 0 {
		t.Errorf("expected all carts reset, got %+v", items)
	}
}

func TestMemoryCart_Concurrent(t *testing.T) {
	ctx := context.Background()
	cart := NewMemoryCart()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart.AddItem(ctx, "alice", "Widget", 1)
		}()
	}
	wg.Wait()

	items, _ := cart.Items(ctx, "alice")
	if len(items) != 1 || items[0].Quantity != 100 {
		t.Errorf("expected Widget x 100, got %+v", items)
	}
}
