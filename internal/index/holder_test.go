package index

import (
	"errors"
	"sync"
	"testing"

	apperrors "pubsearch/pkg/errors"
)

func TestHolderNotReadyBeforeFirstPublish(t *testing.T) {
	h := NewHolder()
	if h.Ready() {
		t.Error("Ready = true before first publish")
	}
	if _, err := h.Snapshot(); !errors.Is(err, apperrors.ErrIndexNotReady) {
		t.Errorf("Snapshot error = %v, want ErrIndexNotReady", err)
	}
}

func TestHolderPublishSwapsSnapshot(t *testing.T) {
	h := NewHolder()
	first := Build([]Record{{Title: "Banana"}})
	second := Build([]Record{{Title: "Banana"}, {Title: "Cherry"}})

	h.Publish(first)
	if !h.Ready() {
		t.Fatal("Ready = false after publish")
	}
	s, err := h.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if s != first {
		t.Error("Snapshot did not return the published state")
	}

	h.Publish(second)
	s, _ = h.Snapshot()
	if s != second {
		t.Error("Snapshot did not observe the replacement state")
	}
	// The old snapshot stays valid for readers that still hold it.
	if first.NumDocs() != 1 {
		t.Error("previous snapshot mutated by publish")
	}
}

// Readers racing with publishes must always observe one complete snapshot,
// either the old or the new one. Run with -race.
func TestHolderConcurrentReadersAndPublishers(t *testing.T) {
	h := NewHolder()
	h.Publish(Build([]Record{{Title: "Banana"}}))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s, err := h.Snapshot()
				if err != nil {
					t.Errorf("Snapshot failed: %v", err)
					return
				}
				if n := s.NumDocs(); n != 1 && n != 2 {
					t.Errorf("observed snapshot with %d docs", n)
					return
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		h.Publish(Build([]Record{{Title: "Banana"}, {Title: "Cherry"}}))
		h.Publish(Build([]Record{{Title: "Banana"}}))
	}
	wg.Wait()
}
