package http

import (
	"fmt"
	"sync"
	"testing"
)

func TestNotificationStorePutGet(t *testing.T) {
	store := NewNotificationStore(10)
	store.Put(Notification{AssemblyID: "a1", Signature: "first"})
	store.Put(Notification{AssemblyID: "a1", Signature: "second"})

	n, ok := store.Get("a1")
	if !ok {
		t.Fatal("expected notification")
	}
	if n.Signature != "second" {
		t.Errorf("expected latest notification, got %q", n.Signature)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 assembly, got %d", store.Len())
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("expected missing assembly to be absent")
	}
}

func TestNotificationStoreEvictsOldest(t *testing.T) {
	store := NewNotificationStore(2)
	store.Put(Notification{AssemblyID: "a1"})
	store.Put(Notification{AssemblyID: "a2"})
	store.Put(Notification{AssemblyID: "a2"})
	store.Put(Notification{AssemblyID: "a3"})

	if _, ok := store.Get("a1"); ok {
		t.Error("expected oldest assembly to be evicted")
	}
	for _, id := range []string{"a2", "a3"} {
		if _, ok := store.Get(id); !ok {
			t.Errorf("expected %s to be kept", id)
		}
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 assemblies, got %d", store.Len())
	}
}

func TestNotificationStoreDefaultCapacity(t *testing.T) {
	store := NewNotificationStore(0)
	if store.capacity != defaultStoreCapacity {
		t.Errorf("expected default capacity, got %d", store.capacity)
	}
}

func TestNotificationStoreConcurrentAccess(t *testing.T) {
	store := NewNotificationStore(50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("a%d", i%5)
			store.Put(Notification{AssemblyID: id})
			store.Get(id)
		}(i)
	}
	wg.Wait()

	if store.Len() != 5 {
		t.Errorf("expected 5 assemblies, got %d", store.Len())
	}
}
