package crawl

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// shardCount is the number of independently locked shards per map.
const shardCount = 32

// shardedMap is a string-keyed map split into shards selected by xxhash,
// so goroutines touching different keys rarely contend on the same lock.
type shardedMap[V any] struct {
	shards [shardCount]mapShard[V]
}

type mapShard[V any] struct {
	mu sync.Mutex
	m  map[string]V
}

func newShardedMap[V any]() *shardedMap[V] {
	s := &shardedMap[V]{}
	for i := range s.shards {
		s.shards[i].m = make(map[string]V)
	}
	return s
}

func (s *shardedMap[V]) shard(key string) *mapShard[V] {
	return &s.shards[xxhash.Sum64String(key)%shardCount]
}

// LoadOrCreate returns the value stored under key, creating it with create
// if absent. create runs at most once per key, under the shard lock.
// loaded reports whether the value already existed.
func (s *shardedMap[V]) LoadOrCreate(key string, create func() V) (v V, loaded bool) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if v, ok := sh.m[key]; ok {
		return v, true
	}
	v = create()
	sh.m[key] = v
	return v, false
}

// Load returns the value stored under key.
func (s *shardedMap[V]) Load(key string) (V, bool) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	v, ok := sh.m[key]
	return v, ok
}

// Store sets the value for key.
func (s *shardedMap[V]) Store(key string, v V) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.m[key] = v
}

// Len returns the number of keys across all shards.
func (s *shardedMap[V]) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.m)
		sh.mu.Unlock()
	}
	return n
}

// Snapshot copies the map. Shards are locked one at a time, so the copy is
// only a consistent view when no writers are active.
func (s *shardedMap[V]) Snapshot() map[string]V {
	out := make(map[string]V)
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, v := range sh.m {
			out[k] = v
		}
		sh.mu.Unlock()
	}
	return out
}

// stringSet is a concurrent set of strings with atomic test-and-insert.
type stringSet struct {
	m *shardedMap[struct{}]
}

func newStringSet() *stringSet {
	return &stringSet{m: newShardedMap[struct{}]()}
}

// Add inserts s and reports whether this call inserted it.
// Exactly one of any number of concurrent callers adding the same string wins.
func (set *stringSet) Add(s string) bool {
	_, loaded := set.m.LoadOrCreate(s, func() struct{} { return struct{}{} })
	return !loaded
}

// Contains reports whether s is in the set.
func (set *stringSet) Contains(s string) bool {
	_, ok := set.m.Load(s)
	return ok
}

// Len returns the number of elements.
func (set *stringSet) Len() int {
	return set.m.Len()
}

// Slice returns the elements in no particular order.
func (set *stringSet) Slice() []string {
	snap := set.m.Snapshot()
	out := make([]string, 0, len(snap))
	for s := range snap {
		out = append(out, s)
	}
	return out
}
