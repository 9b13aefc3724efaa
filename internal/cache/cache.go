// Package cache provides the sharded in-memory store backing the save data
// and metadata caches. Entries are best-effort: callers must always be able
// to fall back to disk on a miss.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AndrewDonelson/savestate/internal/clock"
	"github.com/cespare/xxhash/v2"
)

const numShards = 32

// EvictionPolicy determines which entry is removed when a shard is full.
type EvictionPolicy int

const (
	LRU  EvictionPolicy = iota // Least Recently Used
	FIFO                       // First In, First Out
)

// Options configures a Store.
type Options struct {
	// TTL of 0 keeps entries until they are deleted or evicted.
	TTL time.Duration
	// MaxEntries of 0 means unbounded.
	MaxEntries    int
	Eviction      EvictionPolicy
	SweepInterval time.Duration
	Clock         clock.Clock
	OnEvict       func(key string, value any)
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
	elem      *list.Element
}

type shard struct {
	mu         sync.Mutex
	items      map[string]*entry
	order      *list.List
	maxEntries int
	policy     EvictionPolicy
	onEvict    func(key string, value any)
}

// Store is a sharded in-memory cache.
type Store struct {
	shards [numShards]*shard
	opts   Options
	hits   atomic.Int64
	misses atomic.Int64
	stopCh chan struct{}
	closed atomic.Bool
}

// New creates a Store. A sweep goroutine is started only when TTL > 0.
func New(opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.SweepInterval == 0 {
		opts.SweepInterval = 30 * time.Second
	}
	perShard := 0
	if opts.MaxEntries > 0 {
		perShard = (opts.MaxEntries + numShards - 1) / numShards
	}
	s := &Store{opts: opts, stopCh: make(chan struct{})}
	for i := range s.shards {
		s.shards[i] = &shard{
			items:      make(map[string]*entry),
			order:      list.New(),
			maxEntries: perShard,
			policy:     opts.Eviction,
			onEvict:    opts.OnEvict,
		}
	}
	if opts.TTL > 0 {
		go s.sweepLoop()
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	return s.shards[xxhash.Sum64String(key)%numShards]
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value any) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	var expiresAt time.Time
	if s.opts.TTL > 0 {
		expiresAt = s.opts.Clock.Now().Add(s.opts.TTL)
	}

	if e, ok := sh.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		if sh.policy == LRU {
			sh.order.MoveToFront(e.elem)
		}
		return
	}

	if sh.maxEntries > 0 && len(sh.items) >= sh.maxEntries {
		if back := sh.order.Back(); back != nil {
			sh.remove(back.Value.(*entry), true)
		}
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	e.elem = sh.order.PushFront(e)
	sh.items[key] = e
}

// Get retrieves the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.items[key]
	if !ok {
		s.misses.Add(1)
		return nil, false
	}
	if !e.expiresAt.IsZero() && s.opts.Clock.Now().After(e.expiresAt) {
		sh.remove(e, true)
		s.misses.Add(1)
		return nil, false
	}
	if sh.policy == LRU {
		sh.order.MoveToFront(e.elem)
	}
	s.hits.Add(1)
	return e.value, true
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.items[key]
	if ok {
		sh.remove(e, false)
	}
	return ok
}

// DeletePrefix removes every key starting with prefix and returns the count.
func (s *Store) DeletePrefix(prefix string) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for k, e := range sh.items {
			if strings.HasPrefix(k, prefix) {
				sh.remove(e, false)
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}

// Flush removes all entries.
func (s *Store) Flush() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.items = make(map[string]*entry)
		sh.order.Init()
		sh.mu.Unlock()
	}
}

// Len returns the number of live and not-yet-swept entries.
func (s *Store) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.items)
		sh.mu.Unlock()
	}
	return total
}

// Stats holds hit/miss/entry counts.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int64
}

// Stats returns current statistics.
func (s *Store) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load(), Entries: int64(s.Len())}
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *Store) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) sweep() {
	now := s.opts.Clock.Now()
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, e := range sh.items {
			if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
				sh.remove(e, true)
			}
		}
		sh.mu.Unlock()
	}
}

// remove drops e; evicted reports whether OnEvict should fire.
func (sh *shard) remove(e *entry, evicted bool) {
	delete(sh.items, e.key)
	if e.elem != nil {
		sh.order.Remove(e.elem)
	}
	if evicted && sh.onEvict != nil {
		sh.onEvict(e.key, e.value)
	}
}
