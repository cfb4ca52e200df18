// Package index holds the two candidate-retrieval structures used while
// hunting duplicates: an exact-match bucket table and a BK-tree keyed by
// Hamming distance.
package index

import (
	"slices"

	"dupefinder/types"
)

// DefaultBuckets is the bucket count used when none is configured
const DefaultBuckets = 2048

type bucketEntry struct {
	fingerprint types.Fingerprint
	records     []types.ImageRecord
}

// HashTable maps exact fingerprints to the records sharing them. Keys are
// spread over a fixed number of buckets by fingerprint modulo bucket count.
type HashTable struct {
	buckets [][]bucketEntry
	size    int
}

// NewHashTable creates a table with the given bucket count
func NewHashTable(buckets int) *HashTable {
	if buckets <= 0 {
		buckets = DefaultBuckets
	}
	return &HashTable{buckets: make([][]bucketEntry, buckets)}
}

func (h *HashTable) bucket(fp types.Fingerprint) int {
	return int(fp.Mod(uint64(len(h.buckets))))
}

// Insert appends the record to the entry for its exact fingerprint
func (h *HashTable) Insert(fp types.Fingerprint, record types.ImageRecord) {
	idx := h.bucket(fp)
	bucket := h.buckets[idx]
	for i := range bucket {
		if bucket[i].fingerprint.Equal(fp) {
			bucket[i].records = append(bucket[i].records, record)
			h.size++
			return
		}
	}
	h.buckets[idx] = append(bucket, bucketEntry{fingerprint: fp, records: []types.ImageRecord{record}})
	h.size++
}

// Get returns a copy of the records sharing the exact fingerprint, or nil
func (h *HashTable) Get(fp types.Fingerprint) []types.ImageRecord {
	for _, entry := range h.buckets[h.bucket(fp)] {
		if entry.fingerprint.Equal(fp) {
			return slices.Clone(entry.records)
		}
	}
	return nil
}

// Exists reports whether any record carries the exact fingerprint
func (h *HashTable) Exists(fp types.Fingerprint) bool {
	for _, entry := range h.buckets[h.bucket(fp)] {
		if entry.fingerprint.Equal(fp) {
			return true
		}
	}
	return false
}

// Len returns the number of indexed records
func (h *HashTable) Len() int {
	return h.size
}

// Buckets returns the configured bucket count
func (h *HashTable) Buckets() int {
	return len(h.buckets)
}
