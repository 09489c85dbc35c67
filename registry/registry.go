// Package registry implements the chained hash table Registry (spec §4.2):
// insert, lookup, remove, and iteration, each O(1) expected, resizing to
// the next prime when the load factor exceeds 0.75.
//
// The spec calls for two disjoint registries over one concept: Installed
// and In-flight (§9, "Two registries for one concept"). Both are just
// distinct *Registry values; invariant I1 (a name in at most one of the
// two at any instant) is the caller's responsibility to enforce by
// removing from one before inserting into the other.
package registry

import (
	"hash/fnv"

	"github.com/pkgforge/debpm/deb"
)

const (
	initialBucketCount = 17
	maxLoadFactor       = 0.75
)

type entry struct {
	key   string
	value *deb.Record
	next  *entry
}

// Registry is a chained hash table keyed by package name, holding borrowed
// *deb.Record references.
type Registry struct {
	buckets []*entry
	count   int
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{buckets: make([]*entry, initialBucketCount)}
}

func hashName(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

func (r *Registry) bucketIndex(name string) int {
	return int(hashName(name) % uint64(len(r.buckets)))
}

// Insert adds or overwrites the record for name (spec: "overwrites existing
// with same name").
func (r *Registry) Insert(name string, rec *deb.Record) {
	if r.loadFactor() > maxLoadFactor {
		r.resize()
	}
	idx := r.bucketIndex(name)
	for e := r.buckets[idx]; e != nil; e = e.next {
		if e.key == name {
			e.value = rec
			return
		}
	}
	r.buckets[idx] = &entry{key: name, value: rec, next: r.buckets[idx]}
	r.count++
}

// Lookup returns the record for name and whether it was found. The
// returned reference is borrowed; the Registry retains ownership.
func (r *Registry) Lookup(name string) (*deb.Record, bool) {
	idx := r.bucketIndex(name)
	for e := r.buckets[idx]; e != nil; e = e.next {
		if e.key == name {
			return e.value, true
		}
	}
	return nil, false
}

// Remove deletes name from the Registry and returns its record, if any,
// transferring ownership to the caller (spec: "removal transfers ownership
// to the caller, which is responsible for freeing staging resources").
func (r *Registry) Remove(name string) (*deb.Record, bool) {
	idx := r.bucketIndex(name)
	var prev *entry
	for e := r.buckets[idx]; e != nil; e = e.next {
		if e.key == name {
			if prev == nil {
				r.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			r.count--
			return e.value, true
		}
		prev = e
	}
	return nil, false
}

// Len returns the number of entries currently held.
func (r *Registry) Len() int { return r.count }

// Each calls fn once per entry, in unspecified (bucket) order. fn must not
// mutate the Registry.
func (r *Registry) Each(fn func(name string, rec *deb.Record)) {
	for _, head := range r.buckets {
		for e := head; e != nil; e = e.next {
			fn(e.key, e.value)
		}
	}
}

func (r *Registry) loadFactor() float64 {
	return float64(r.count+1) / float64(len(r.buckets))
}

func (r *Registry) resize() {
	newSize := nextPrime(len(r.buckets) * 2)
	newBuckets := make([]*entry, newSize)
	for _, head := range r.buckets {
		for e := head; e != nil; {
			next := e.next
			idx := int(hashName(e.key) % uint64(newSize))
			e.next = newBuckets[idx]
			newBuckets[idx] = e
			e = next
		}
	}
	r.buckets = newBuckets
}

func nextPrime(n int) int {
	if n < 2 {
		return 2
	}
	for {
		if isPrime(n) {
			return n
		}
		n++
	}
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}
