package phrases

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry()
	owner := Owner{ID: "u1", Name: "Alice", Email: "alice@example.com"}

	t.Run("add then exists", func(t *testing.T) {
		if err := r.Add("urgent", owner); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.Exists("urgent") {
			t.Error("expected phrase to exist after Add")
		}
	})

	t.Run("duplicate add fails", func(t *testing.T) {
		err := r.Add("urgent", Owner{ID: "u2"})
		if !errors.Is(err, ErrExists) {
			t.Errorf("expected ErrExists, got %v", err)
		}
	})

	t.Run("exists is case sensitive", func(t *testing.T) {
		if r.Exists("URGENT") {
			t.Error("expected key comparison to be case sensitive")
		}
	})
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	alice := Owner{ID: "u1", Email: "alice@example.com"}
	bob := Owner{ID: "u2", Email: "bob@example.com"}

	t.Run("remove absent phrase fails", func(t *testing.T) {
		err := r.Remove("ghost", alice)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("remove re-records under the caller", func(t *testing.T) {
		if err := r.Add("escalate", alice); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := r.Remove("escalate", bob); err != nil {
			t.Fatalf("remove: %v", err)
		}
		// Legacy write path: the entry survives removal, attributed to the
		// remover.
		if !r.Exists("escalate") {
			t.Fatal("expected phrase to still exist after Remove")
		}
		m := r.MatchText("please escalate this")
		if m == nil {
			t.Fatal("expected removed phrase to still match")
		}
		if m.Owner.ID != bob.ID {
			t.Errorf("expected owner %q after remove, got %q", bob.ID, m.Owner.ID)
		}
	})
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	for _, p := range []string{"charlie", "alpha", "bravo"} {
		if err := r.Add(p, Owner{ID: "u1"}); err != nil {
			t.Fatalf("add %q: %v", p, err)
		}
	}

	t.Run("insertion order", func(t *testing.T) {
		got := r.List()
		want := []string{"charlie", "alpha", "bravo"}
		if len(got) != len(want) {
			t.Fatalf("expected %d phrases, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})

	t.Run("idempotent without mutation", func(t *testing.T) {
		first := r.List()
		second := r.List()
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("position %d changed between calls: %q vs %q", i, first[i], second[i])
			}
		}
	})
}

func TestRegistryMatch(t *testing.T) {
	t.Run("case insensitive substring", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Add("urgent", Owner{ID: "u1"}); err != nil {
			t.Fatal(err)
		}
		if m := r.MatchText("This is URGENT now"); m == nil || m.Phrase != "urgent" {
			t.Errorf("expected match on %q, got %v", "urgent", m)
		}
		if m := r.MatchText("url-gent"); m != nil {
			t.Errorf("expected no match, got %v", m)
		}
	})

	t.Run("uppercase phrase matches lowercase text", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Add("Outage", Owner{ID: "u1"}); err != nil {
			t.Fatal(err)
		}
		if m := r.MatchText("total outage reported"); m == nil {
			t.Error("expected case-insensitive match on uppercase phrase")
		}
	})

	t.Run("first registered phrase wins", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Add("a", Owner{ID: "u1"}); err != nil {
			t.Fatal(err)
		}
		if err := r.Add("ab", Owner{ID: "u2"}); err != nil {
			t.Fatal(err)
		}
		m := r.MatchText("xaby")
		if m == nil || m.Phrase != "a" {
			t.Errorf("expected first-registered %q to win, got %v", "a", m)
		}
	})

	t.Run("no phrases no match", func(t *testing.T) {
		r := NewRegistry()
		if m := r.MatchText("anything"); m != nil {
			t.Errorf("expected nil match on empty registry, got %v", m)
		}
	})
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.Add(fmt.Sprintf("phrase-%d", i), Owner{ID: fmt.Sprintf("u%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			r.MatchText("some phrase-3 text")
			r.List()
		}()
	}
	wg.Wait()

	if r.Len() != 16 {
		t.Errorf("expected 16 phrases, got %d", r.Len())
	}
}
