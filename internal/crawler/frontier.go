package crawler

import (
	"container/heap"
	"sync"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// Frontier is the priority queue of candidate URLs for one crawl, together
// with the visited set and per-domain page counters. It owns crawl-budget
// enforcement: a candidate that would exceed the depth or page budget, leave
// the seed's domain, or revisit a known URL is silently dropped at push time.
//
// Design decision: all frontier state is guarded by a single mutex so that
// concurrent fetch completions pushing discovered links never race with the
// scheduling loop popping. Priority is fixed at enqueue time; later counter
// or visited-set mutations never reorder the heap.
type Frontier struct {
	mu sync.Mutex

	// queue is a min-heap: numerically smaller priority pops first.
	queue candidateHeap

	// seq breaks priority ties in insertion order.
	seq int

	// seen tracks URL identities that have been enqueued or visited.
	// An identity enters this set at push time, which both deduplicates
	// the queue and guarantees no identity is ever dequeued twice.
	seen map[string]bool

	// pageCount counts pages charged per domain. Charged at dequeue, so a
	// cancelled in-flight fetch still consumes budget and is never retried.
	pageCount map[string]int

	// domain is the seed's domain; candidates from other domains are dropped.
	domain string

	maxDepth          int
	maxPagesPerDomain int
}

// NewFrontier creates a Frontier for a crawl rooted at the given domain.
func NewFrontier(domain string, maxDepth, maxPagesPerDomain int) *Frontier {
	return &Frontier{
		seen:              make(map[string]bool),
		pageCount:         make(map[string]int),
		domain:            domain,
		maxDepth:          maxDepth,
		maxPagesPerDomain: maxPagesPerDomain,
	}
}

// Push inserts a candidate unless it is already known, belongs to a foreign
// domain, exceeds the depth limit, or its domain's page budget is exhausted.
// Rejection is silent; a dropped candidate is not a failure.
func (f *Frontier) Push(c model.CandidateURL) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c.Domain != f.domain {
		return
	}
	if c.Depth > f.maxDepth {
		return
	}
	if f.pageCount[c.Domain] >= f.maxPagesPerDomain {
		return
	}
	id := model.URLIdentity(c.URL)
	if f.seen[id] {
		return
	}
	f.seen[id] = true

	f.seq++
	heap.Push(&f.queue, &frontierItem{candidate: c, seq: f.seq})
}

// Pop removes and returns the candidate with the lowest priority number.
// The popped page is charged against its domain's budget immediately; if the
// budget is already exhausted, queued items for that domain are discarded
// without ever being returned. The second return value is false when the
// frontier is empty.
func (f *Frontier) Pop() (model.CandidateURL, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for f.queue.Len() > 0 {
		item := heap.Pop(&f.queue).(*frontierItem)
		c := item.candidate
		if f.pageCount[c.Domain] >= f.maxPagesPerDomain {
			continue
		}
		f.pageCount[c.Domain]++
		return c, true
	}
	return model.CandidateURL{}, false
}

// MarkVisited records a URL identity as visited. It is idempotent and safe
// to call for URLs that were never enqueued.
func (f *Frontier) MarkVisited(rawURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[model.URLIdentity(rawURL)] = true
}

// Visited reports whether a URL identity has been enqueued or visited.
func (f *Frontier) Visited(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[model.URLIdentity(rawURL)]
}

// Len returns the number of queued candidates.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// PageCount returns the number of pages charged against a domain.
func (f *Frontier) PageCount(domain string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageCount[domain]
}

// frontierItem is a heap entry.
type frontierItem struct {
	candidate model.CandidateURL
	seq       int
}

// candidateHeap implements heap.Interface as a min-heap on priority,
// breaking ties in insertion order.
type candidateHeap []*frontierItem

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].candidate.Priority != h[j].candidate.Priority {
		return h[i].candidate.Priority < h[j].candidate.Priority
	}
	return h[i].seq < h[j].seq
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(*frontierItem))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
