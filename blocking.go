package main

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// catchAllBucket collects records with no category. They are compared only
// against each other, not against every other bucket.
const catchAllBucket = "__uncategorized__"

// Bucket is one blocking unit: records sharing a category, compared
// pairwise within the bucket only.
type Bucket struct {
	Key     string
	Records []ProductRecord
}

// BlockByCategory partitions records by category to bound the pairwise
// comparison space. Categories connected through the overlap table share a
// bucket, so a dairy listing can still be scored against an eggs listing;
// the scorer's category gate stays responsible for the finer pair-level
// decision. Buckets and their records come back sorted, so the downstream
// scoring order is deterministic.
func BlockByCategory(records []ProductRecord, log zerolog.Logger) []Bucket {
	bucketKeys := overlapBucketKeys()
	byKey := make(map[string][]ProductRecord)
	for _, rec := range records {
		key := rec.Category
		if key == "" {
			key = catchAllBucket
		} else if merged, ok := bucketKeys[key]; ok {
			key = merged
		}
		byKey[key] = append(byKey[key], rec)
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	buckets := make([]Bucket, 0, len(keys))
	for _, key := range keys {
		recs := byKey[key]
		sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
		buckets = append(buckets, Bucket{Key: key, Records: recs})
	}

	// Systematically missing categories degrade blocking toward full
	// O(n^2). Expected failure mode of upstream classification, not fatal.
	if n := len(byKey[catchAllBucket]); len(records) > 0 && n*2 > len(records) {
		log.Warn().
			Int("uncategorized", n).
			Int("total", len(records)).
			Msg("category blocking degraded: most records are uncategorized")
	}

	return buckets
}

// overlapBucketKeys collapses categories connected through the overlap
// table into one blocking key, named after the sorted component members.
// Bucketing is deliberately coarser than the scoring gate.
func overlapBucketKeys() map[string]string {
	pairs := make([]string, 0)
	for key := range BuildCategoryOverlapMap() {
		pairs = append(pairs, key)
	}
	sort.Strings(pairs)

	uf := newUnionFind()
	for _, key := range pairs {
		parts := strings.SplitN(key, "|", 2)
		uf.union(parts[0], parts[1])
	}

	components := make(map[string][]string)
	for cat := range uf.parent {
		root := uf.find(cat)
		components[root] = append(components[root], cat)
	}

	keys := make(map[string]string)
	for _, cats := range components {
		sort.Strings(cats)
		merged := strings.Join(cats, "+")
		for _, cat := range cats {
			keys[cat] = merged
		}
	}
	return keys
}

// ScoreBuckets runs the scorer over every within-bucket pair using a bounded
// worker pool, one bucket per task. The scorer is read-only, so the only
// coordination is the per-bucket result slot. Output is merged and sorted
// into canonical order regardless of worker scheduling.
func ScoreBuckets(ctx context.Context, scorer *Scorer, buckets []Bucket, workers int) ([]ScoredPair, int, error) {
	results := make([][]ScoredPair, len(buckets))
	candidates := make([]int, len(buckets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, bucket := range buckets {
		g.Go(func() error {
			var pairs []ScoredPair
			n := 0
			recs := bucket.Records
			for j := 0; j < len(recs); j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for k := j + 1; k < len(recs); k++ {
					pair, ok := scorer.Score(recs[j], recs[k])
					if !ok {
						continue
					}
					n++
					if pair.Score > 0 {
						pairs = append(pairs, pair)
					}
				}
			}
			results[i] = pairs
			candidates[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var merged []ScoredPair
	total := 0
	for i, pairs := range results {
		merged = append(merged, pairs...)
		total += candidates[i]
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].IDA != merged[j].IDA {
			return merged[i].IDA < merged[j].IDA
		}
		return merged[i].IDB < merged[j].IDB
	})
	return merged, total, nil
}
