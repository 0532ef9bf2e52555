package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matchingFixture is a small but representative snapshot: one real
// cross-store match, one same-store duplicate pair, one unrelated product.
func matchingFixture() []ProductRecord {
	return []ProductRecord{
		{
			ID:       "kfl-101",
			Store:    "Kaufland",
			Name:     "Прясно мляко Верея 3%",
			Brand:    "Верея",
			Category: "dairy",
			Quantity: &Quantity{Value: 1, Unit: "л"},
			Price:    2.39,
		},
		{
			ID:       "lid-202",
			Store:    "Lidl",
			Name:     "Верея прясно краве мляко 3% 1л",
			Brand:    "Vereia",
			Category: "dairy",
			Quantity: &Quantity{Value: 1000, Unit: "мл"},
			Price:    2.49,
		},
		{ID: "kfl-301", Store: "Kaufland", Name: "Кока Кола 2л", Category: "beverages", Price: 2.99},
		{ID: "kfl-302", Store: "Kaufland", Name: "Кока Кола 2л", Category: "beverages", Price: 2.79},
		{ID: "bil-401", Store: "Billa", Name: "Прах за пране Ариел", Category: "household", Price: 12.99},
	}
}

func newTestProcessor(t *testing.T) *MatchProcessor {
	t.Helper()
	return NewMatchProcessor(nil, testConfig(), zerolog.Nop())
}

func TestMatchRecords(t *testing.T) {
	p := newTestProcessor(t)

	groups, summary, err := p.MatchRecords(context.Background(), matchingFixture())
	require.NoError(t, err)

	// Only the milk listings match: the cola pair shares a store and the
	// detergent has nothing to pair with.
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, []string{"kfl-101", "lid-202"}, g.MemberIDs)
	assert.Equal(t, []string{"Kaufland", "Lidl"}, g.Stores)
	assert.Equal(t, PriceRange{Min: 2.39, Max: 2.49}, g.PriceRange)
	assert.GreaterOrEqual(t, g.Confidence, 0.8)
	assert.False(t, g.PriceWarning)
	assert.InDelta(t, 0.10, g.Savings, 1e-9)

	assert.Equal(t, 5, summary.InputRecords)
	assert.Equal(t, 3, summary.Buckets)
	assert.Equal(t, 1, summary.CandidatePairs)
	assert.Equal(t, 1, summary.AcceptedMatches)
	assert.Equal(t, 1, summary.GroupsAfter)
	assert.Zero(t, summary.DroppedEdges)
	assert.Equal(t, map[string]int{"Kaufland": 3, "Lidl": 1, "Billa": 1}, summary.RecordsByStore)
}

func TestMatchRecordsDeterministic(t *testing.T) {
	p := newTestProcessor(t)
	records := matchingFixture()

	reversed := make([]ProductRecord, len(records))
	for i, rec := range records {
		reversed[len(records)-1-i] = rec
	}

	first, firstSummary, err := p.MatchRecords(context.Background(), records)
	require.NoError(t, err)
	second, secondSummary, err := p.MatchRecords(context.Background(), reversed)
	require.NoError(t, err)

	// Same snapshot, any input order: identical groups, identical ids.
	require.Equal(t, first, second)
	assert.Equal(t, firstSummary, secondSummary)
}

func TestMatchRecordsEmptySnapshot(t *testing.T) {
	p := newTestProcessor(t)

	groups, summary, err := p.MatchRecords(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Zero(t, summary.InputRecords)
	assert.Zero(t, summary.GroupsAfter)
}

func TestMatchRecordsDoesNotMutateInput(t *testing.T) {
	p := newTestProcessor(t)
	records := matchingFixture()
	wantFirst := records[0].ID

	_, _, err := p.MatchRecords(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, wantFirst, records[0].ID)
}
