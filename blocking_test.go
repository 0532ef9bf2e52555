package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockByCategory(t *testing.T) {
	records := []ProductRecord{
		{ID: "r3", Store: "Billa", Name: "Бира", Category: "beverages"},
		{ID: "r1", Store: "Kaufland", Name: "Мляко", Category: "dairy"},
		{ID: "r4", Store: "Lidl", Name: "Нещо без категория"},
		{ID: "r2", Store: "Lidl", Name: "Кашкавал", Category: "dairy"},
	}

	buckets := BlockByCategory(records, zerolog.Nop())
	require.Len(t, buckets, 3)

	// Bucket keys sorted, the catch-all bucket included among them.
	// Categories from the overlap table block under their merged key.
	assert.Equal(t, catchAllBucket, buckets[0].Key)
	assert.Equal(t, "alcohol+beverages+water", buckets[1].Key)
	assert.Equal(t, "chilled+dairy+eggs", buckets[2].Key)

	// Records inside a bucket sorted by id.
	require.Len(t, buckets[2].Records, 2)
	assert.Equal(t, "r1", buckets[2].Records[0].ID)
	assert.Equal(t, "r2", buckets[2].Records[1].ID)
}

func TestBlockByCategoryMergesOverlappingCategories(t *testing.T) {
	records := []ProductRecord{
		{ID: "r1", Store: "Kaufland", Name: "Яйца M 10бр", Category: "eggs"},
		{ID: "r2", Store: "Lidl", Name: "Яйца M 10бр", Category: "dairy"},
	}

	buckets := BlockByCategory(records, zerolog.Nop())
	require.Len(t, buckets, 1)
	assert.Len(t, buckets[0].Records, 2)
}

func TestBlockByCategoryEmptyInput(t *testing.T) {
	assert.Empty(t, BlockByCategory(nil, zerolog.Nop()))
}

func TestScoreBucketsExcludesSameStorePairs(t *testing.T) {
	records := []ProductRecord{
		{ID: "a", Store: "Kaufland", Name: "Кисело мляко 400г", Category: "dairy", Price: 1.19},
		{ID: "b", Store: "Kaufland", Name: "Кисело мляко 400г", Category: "dairy", Price: 1.09},
		{ID: "c", Store: "Lidl", Name: "Кисело мляко 400г", Category: "dairy", Price: 0.99},
	}
	s := newTestScorer(t, records)
	buckets := BlockByCategory(records, zerolog.Nop())

	pairs, candidates, err := ScoreBuckets(context.Background(), s, buckets, 2)
	require.NoError(t, err)

	// a-b share a store: not a candidate, not even counted as one.
	assert.Equal(t, 2, candidates)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a", pairs[0].IDA)
	assert.Equal(t, "c", pairs[0].IDB)
	assert.Equal(t, "b", pairs[1].IDA)
	assert.Equal(t, "c", pairs[1].IDB)
}

func TestScoreBucketsNeverCrossesBuckets(t *testing.T) {
	records := []ProductRecord{
		{ID: "a", Store: "Kaufland", Name: "Минерална вода 1.5л", Category: "water", Price: 0.89},
		{ID: "b", Store: "Lidl", Name: "Минерална вода 1.5л", Category: "household", Price: 0.99},
	}
	s := newTestScorer(t, records)
	buckets := BlockByCategory(records, zerolog.Nop())

	pairs, candidates, err := ScoreBuckets(context.Background(), s, buckets, 2)
	require.NoError(t, err)
	assert.Zero(t, candidates)
	assert.Empty(t, pairs)
}

func TestScoreBucketsGateFiltersWithinMergedBucket(t *testing.T) {
	// water and alcohol share a bucket through beverages, but the overlap
	// table has no direct water-alcohol entry, so the pair gates to zero.
	records := []ProductRecord{
		{ID: "a", Store: "Kaufland", Name: "Газирана напитка 2л", Category: "water", Price: 1.99},
		{ID: "b", Store: "Lidl", Name: "Газирана напитка 2л", Category: "alcohol", Price: 2.09},
	}
	s := newTestScorer(t, records)
	buckets := BlockByCategory(records, zerolog.Nop())
	require.Len(t, buckets, 1)

	pairs, candidates, err := ScoreBuckets(context.Background(), s, buckets, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, candidates)
	assert.Empty(t, pairs)
}

func TestScoreBucketsDeterministicAcrossWorkerCounts(t *testing.T) {
	records := []ProductRecord{
		{ID: "a", Store: "Kaufland", Name: "Прясно мляко 1л", Category: "dairy", Price: 2.39},
		{ID: "b", Store: "Lidl", Name: "Прясно мляко 1л", Category: "dairy", Price: 2.49},
		{ID: "c", Store: "Billa", Name: "Прясно мляко 1л", Category: "dairy", Price: 2.29},
		{ID: "d", Store: "Kaufland", Name: "Бира светла 500мл", Category: "beverages", Price: 1.59},
		{ID: "e", Store: "Lidl", Name: "Бира светла 500мл", Category: "beverages", Price: 1.49},
	}
	s := newTestScorer(t, records)
	buckets := BlockByCategory(records, zerolog.Nop())

	single, _, err := ScoreBuckets(context.Background(), s, buckets, 1)
	require.NoError(t, err)
	for _, workers := range []int{2, 4, 8} {
		pairs, _, err := ScoreBuckets(context.Background(), s, buckets, workers)
		require.NoError(t, err)
		require.Equal(t, single, pairs)
	}
}

func TestScoreBucketsHonorsCancellation(t *testing.T) {
	records := []ProductRecord{
		{ID: "a", Store: "Kaufland", Name: "Мляко", Category: "dairy", Price: 2.39},
		{ID: "b", Store: "Lidl", Name: "Мляко", Category: "dairy", Price: 2.49},
	}
	s := newTestScorer(t, records)
	buckets := BlockByCategory(records, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ScoreBuckets(ctx, s, buckets, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
