// Package stream provides per-(instrument,book) serialization: every
// trade for a given stream is processed by the same goroutine, in
// submission order, while different streams run fully in parallel. It
// never touches the matching algorithm itself; it only guarantees a
// stream's state is never read and folded concurrently from two
// goroutines.
package stream

import (
	"hash/fnv"
)

// job is a unit of work bound to one shard's goroutine.
type job struct {
	fn   func()
	done chan struct{}
}

// shard is a single worker goroutine draining a buffered job queue, in
// submission order.
type shard struct {
	jobs chan job
}

func newShard(queueDepth int) *shard {
	s := &shard{jobs: make(chan job, queueDepth)}
	go s.run()
	return s
}

func (s *shard) run() {
	for j := range s.jobs {
		j.fn()
		close(j.done)
	}
}

func (s *shard) submit(fn func()) {
	done := make(chan struct{})
	s.jobs <- job{fn: fn, done: done}
	<-done
}

// Router hashes a stream key (instrument+book) onto a fixed set of
// shards, so calls for the same stream always land on the same
// goroutine while unrelated streams proceed concurrently.
type Router struct {
	shards []*shard
}

// NewRouter builds a router with n shards, each with the given buffered
// queue depth. n is typically set to runtime.GOMAXPROCS or a small
// multiple of it.
func NewRouter(n, queueDepth int) *Router {
	if n < 1 {
		n = 1
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = newShard(queueDepth)
	}
	return &Router{shards: shards}
}

func (r *Router) shardFor(key string) *shard {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return r.shards[h.Sum64()%uint64(len(r.shards))]
}

// Submit runs fn on the shard owned by (instrument, book), blocking
// until fn has completed. Two calls with the same key never overlap;
// calls with different keys may run concurrently on different shards.
func (r *Router) Submit(instrument, book string, fn func()) {
	r.shardFor(instrument + "\x00" + book).submit(fn)
}
