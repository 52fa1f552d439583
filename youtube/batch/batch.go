// Package batch splits identifier lookups into chunks the service accepts and
// merges the per-chunk results into one keyed mapping.
package batch

import (
	"context"
	"fmt"
	"slices"

	"github.com/ytget/ytarchive/youtube/pager"
)

// MaxChunkSize is the largest number of identifiers one request may carry.
const MaxChunkSize = 50

// Chunk splits ids into contiguous chunks of at most size identifiers.
// A non-positive size uses MaxChunkSize.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxChunkSize
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end:end])
	}
	return chunks
}

// Fetch drains one pager per chunk of ids and merges the items keyed by key.
// When the same key is returned more than once the later item wins.
func Fetch[T any](ctx context.Context, ids []string, size int, open func(chunk []string) *pager.Pager[T], key func(T) string) (map[string]T, error) {
	out := make(map[string]T, len(ids))
	for i, chunk := range Chunk(ids, size) {
		p := open(chunk)
		for item, err := range p.All(ctx) {
			if err != nil {
				return nil, fmt.Errorf("chunk %d: %w", i+1, err)
			}
			out[key(item)] = item
		}
	}
	return out, nil
}

// Dedup reduces ids to a set, returned sorted so requests are reproducible.
func Dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Unavailable returns the requested identifiers absent from found, sorted and
// without duplicates.
func Unavailable[T any](requested []string, found map[string]T) []string {
	var missing []string
	for _, id := range Dedup(requested) {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
