package crawler

import (
	"testing"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

func TestFrontierPriorityOrder(t *testing.T) {
	t.Parallel()

	f := NewFrontier("example.com", 3, 50)
	f.Push(model.CandidateURL{URL: "http://example.com/privacy", Depth: 1, Priority: 98, Domain: "example.com"})
	f.Push(model.CandidateURL{URL: "http://example.com/team", Depth: 1, Priority: 93, Domain: "example.com"})
	f.Push(model.CandidateURL{URL: "http://example.com/", Depth: 0, Priority: 0, Domain: "example.com"})

	want := []string{
		"http://example.com/",
		"http://example.com/team",
		"http://example.com/privacy",
	}
	for i, wantURL := range want {
		c, ok := f.Pop()
		if !ok {
			t.Fatalf("pop %d: frontier unexpectedly empty", i)
		}
		if c.URL != wantURL {
			t.Errorf("pop %d: expected %q, got %q", i, wantURL, c.URL)
		}
	}

	if _, ok := f.Pop(); ok {
		t.Error("expected empty frontier after draining")
	}
}

func TestFrontierTieBreakInsertionOrder(t *testing.T) {
	t.Parallel()

	f := NewFrontier("example.com", 3, 50)
	f.Push(model.CandidateURL{URL: "http://example.com/a", Depth: 1, Priority: 90, Domain: "example.com"})
	f.Push(model.CandidateURL{URL: "http://example.com/b", Depth: 1, Priority: 90, Domain: "example.com"})

	first, _ := f.Pop()
	second, _ := f.Pop()
	if first.URL != "http://example.com/a" || second.URL != "http://example.com/b" {
		t.Errorf("expected insertion order on ties, got %q then %q", first.URL, second.URL)
	}
}

func TestFrontierRejectsForeignDomain(t *testing.T) {
	t.Parallel()

	f := NewFrontier("example.com", 3, 50)
	f.Push(model.CandidateURL{URL: "http://other.com/team", Depth: 1, Priority: 90, Domain: "other.com"})

	if f.Len() != 0 {
		t.Error("expected foreign-domain candidate to be dropped")
	}
}

func TestFrontierRejectsBeyondMaxDepth(t *testing.T) {
	t.Parallel()

	f := NewFrontier("example.com", 2, 50)
	f.Push(model.CandidateURL{URL: "http://example.com/deep", Depth: 3, Priority: 90, Domain: "example.com"})

	if f.Len() != 0 {
		t.Error("expected over-depth candidate to be dropped")
	}
}

func TestFrontierDeduplicatesIdentity(t *testing.T) {
	t.Parallel()

	f := NewFrontier("example.com", 3, 50)
	f.Push(model.CandidateURL{URL: "http://example.com/About", Depth: 1, Priority: 90, Domain: "example.com"})
	// Scheme and query variants of the same host+path are the same page.
	f.Push(model.CandidateURL{URL: "https://example.com/about?utm=x", Depth: 1, Priority: 80, Domain: "example.com"})

	if f.Len() != 1 {
		t.Errorf("expected 1 queued candidate, got %d", f.Len())
	}
}

func TestFrontierNeverDequeuesTwice(t *testing.T) {
	t.Parallel()

	f := NewFrontier("example.com", 3, 50)
	f.Push(model.CandidateURL{URL: "http://example.com/team", Depth: 1, Priority: 90, Domain: "example.com"})

	if _, ok := f.Pop(); !ok {
		t.Fatal("expected first pop to succeed")
	}

	// Re-pushing the same identity after dequeue must be a no-op.
	f.Push(model.CandidateURL{URL: "http://example.com/team", Depth: 1, Priority: 90, Domain: "example.com"})
	if _, ok := f.Pop(); ok {
		t.Error("expected dequeued URL to never be returned again")
	}
}

func TestFrontierPageBudget(t *testing.T) {
	t.Parallel()

	f := NewFrontier("example.com", 3, 2)
	for _, path := range []string{"/a", "/b", "/c"} {
		f.Push(model.CandidateURL{URL: "http://example.com" + path, Depth: 1, Priority: 90, Domain: "example.com"})
	}

	// Budget is charged at dequeue; only two pages may ever be charged.
	popped := 0
	for {
		if _, ok := f.Pop(); !ok {
			break
		}
		popped++
	}
	if popped != 2 {
		t.Errorf("expected 2 pages within budget, got %d", popped)
	}
	if f.PageCount("example.com") != 2 {
		t.Errorf("expected page count 2, got %d", f.PageCount("example.com"))
	}

	// Budget exhausted: further pushes are dropped at push time.
	f.Push(model.CandidateURL{URL: "http://example.com/d", Depth: 1, Priority: 90, Domain: "example.com"})
	if f.Len() != 0 {
		t.Error("expected push to be rejected once budget is exhausted")
	}
}

func TestFrontierMarkVisited(t *testing.T) {
	t.Parallel()

	f := NewFrontier("example.com", 3, 50)
	f.MarkVisited("http://example.com/seen")

	if !f.Visited("http://example.com/seen") {
		t.Error("expected URL to be marked visited")
	}

	f.Push(model.CandidateURL{URL: "https://example.com/seen", Depth: 1, Priority: 90, Domain: "example.com"})
	if f.Len() != 0 {
		t.Error("expected visited URL to be rejected")
	}
}
