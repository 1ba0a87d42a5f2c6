package ddup

import (
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Comparison selects which HashFunc a Run uses (spec §4.5, "Hash modes").
type Comparison int

const (
	// Fuzzy clusters files with a fast, non-collision-proof sample hash.
	Fuzzy Comparison = iota
	// Strict clusters files with a full-content collision-resistant hash.
	Strict
)

func (c Comparison) hashFunc() HashFunc {
	if c == Strict {
		return StrictHash
	}
	return FuzzyHash
}

// Run clusters entries first by size, then by content hash, per the
// two-stage pipeline in spec §4.5. Stage 1 is a sequential fold; stage 2
// hashes every bucket in parallel and every path within a bucket in
// parallel. Each level is limited to runtime.NumCPU() goroutines: at most
// that many buckets at once, each with at most that many paths hashing at
// once (spec §5). The returned order is unspecified.
func Run(entries []Entry, cmp Comparison) []DuplicateGroup {
	start := time.Now()

	buckets := bucketBySize(entries)
	log.Info().Int("candidates", len(entries)).Int("size_buckets", len(buckets)).
		Dur("elapsed", time.Since(start)).Msg("pipeline: stage 1 complete (size bucketing)")

	stage2Start := time.Now()
	hash := cmp.hashFunc()

	var mu sync.Mutex
	var groups []DuplicateGroup

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for size, paths := range buckets {
		size, paths := size, paths
		g.Go(func() error {
			bucketGroups := hashBucket(size, paths, hash)
			if len(bucketGroups) == 0 {
				return nil
			}
			mu.Lock()
			groups = append(groups, bucketGroups...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // hashBucket never returns an error; I/O failures are logged and dropped per-path

	log.Info().Int("groups", len(groups)).Dur("elapsed", time.Since(stage2Start)).
		Msg("pipeline: stage 2 complete (content hashing)")
	log.Info().Dur("elapsed", time.Since(start)).Msg("pipeline: finished")

	return groups
}

// bucketBySize is stage 1 (spec §4.5): a sequential fold of size -> paths,
// with singleton buckets dropped once the scan completes.
func bucketBySize(entries []Entry) map[uint64][]string {
	buckets := make(map[uint64][]string)
	for _, e := range entries {
		buckets[e.Size] = append(buckets[e.Size], e.Path)
	}
	for size, paths := range buckets {
		if len(paths) < 2 {
			delete(buckets, size)
		}
	}
	return buckets
}

// hashBucket is stage 2 for a single size bucket: hash every path in
// parallel, group by digest, drop singleton digests, and return the
// survivors as DuplicateGroups (spec §4.5).
func hashBucket(size uint64, paths []string, hash HashFunc) []DuplicateGroup {
	type result struct {
		path   string
		digest any
		ok     bool
	}
	results := make([]result, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			digest, err := hash(path, size)
			if err != nil {
				log.Debug().Err(err).Str("path", path).Msg("pipeline: hashing failed, dropping candidate")
				return nil
			}
			results[i] = result{path: path, digest: digest, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	byDigest := make(map[any][]string)
	for _, r := range results {
		if !r.ok {
			continue
		}
		byDigest[r.digest] = append(byDigest[r.digest], r.path)
	}

	var out []DuplicateGroup
	for _, grp := range byDigest {
		if len(grp) < 2 {
			continue
		}
		out = append(out, DuplicateGroup{Size: size, Paths: grp})
	}
	return out
}
