package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsolidator() *Consolidator {
	return NewConsolidator(testConfig().Matching, zerolog.Nop())
}

func TestThreshold(t *testing.T) {
	c := newTestConsolidator()

	pairs := []ScoredPair{
		{IDA: "a", IDB: "b", Score: 0.9, CommonTokens: 4},
		{IDA: "a", IDB: "c", Score: 0.54, CommonTokens: 4}, // below the score bar
		{IDA: "b", IDB: "c", Score: 0.9, CommonTokens: 1},  // below the token floor
		{IDA: "c", IDB: "d", Score: 0.55, CommonTokens: 2}, // exactly at both bars
	}

	accepted := c.Threshold(pairs)
	require.Len(t, accepted, 2)
	assert.Equal(t, "b", accepted[0].IDB)
	assert.Equal(t, "d", accepted[1].IDB)
}

func TestConsolidateTransitiveChain(t *testing.T) {
	c := newTestConsolidator()
	storeOf := map[string]string{
		"p5": "Kaufland",
		"p6": "Lidl",
		"p7": "Billa",
	}
	accepted := []ScoredPair{
		{IDA: "p5", IDB: "p6", Score: 0.8, CommonTokens: 3},
		{IDA: "p6", IDB: "p7", Score: 0.6, CommonTokens: 3},
	}

	groups, dropped := c.Consolidate(accepted, storeOf)
	require.Len(t, groups, 1)
	assert.Zero(t, dropped)

	// p5 and p7 never scored against each other, yet the chain through p6
	// collapses into one group. Confidence is the weakest kept edge.
	g := groups[0]
	assert.Equal(t, []string{"p5", "p6", "p7"}, g.MemberIDs)
	assert.Equal(t, []string{"Billa", "Kaufland", "Lidl"}, g.Stores)
	assert.InDelta(t, 0.6, g.Confidence, 1e-9)
}

func TestConsolidateResolvesStoreConflict(t *testing.T) {
	c := newTestConsolidator()
	storeOf := map[string]string{
		"p1": "Kaufland",
		"p2": "Lidl",
		"p3": "Kaufland",
	}
	// p1 and p3 are both Kaufland listings pulled into one component
	// through p2. The weaker edge has to go.
	accepted := []ScoredPair{
		{IDA: "p1", IDB: "p2", Score: 0.9, CommonTokens: 3},
		{IDA: "p2", IDB: "p3", Score: 0.8, CommonTokens: 3},
	}

	groups, dropped := c.Consolidate(accepted, storeOf)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"p1", "p2"}, groups[0].MemberIDs)
	assert.InDelta(t, 0.9, groups[0].Confidence, 1e-9)
}

func TestConsolidateConflictKeepsDisjointRemainder(t *testing.T) {
	c := newTestConsolidator()
	storeOf := map[string]string{
		"p1": "Kaufland",
		"p2": "Lidl",
		"p3": "Kaufland",
		"p4": "Billa",
	}
	accepted := []ScoredPair{
		{IDA: "p1", IDB: "p2", Score: 0.9, CommonTokens: 3},
		{IDA: "p2", IDB: "p3", Score: 0.7, CommonTokens: 3},
		{IDA: "p3", IDB: "p4", Score: 0.85, CommonTokens: 3},
	}

	groups, dropped := c.Consolidate(accepted, storeOf)
	require.Len(t, groups, 2)
	assert.Equal(t, 1, dropped)

	// Rebuild by descending score: {p1,p2} and {p3,p4} survive, the edge
	// that would merge two Kaufland listings does not.
	assert.Equal(t, []string{"p1", "p2"}, groups[0].MemberIDs)
	assert.Equal(t, []string{"p3", "p4"}, groups[1].MemberIDs)
}

func TestConsolidateSeparateComponents(t *testing.T) {
	c := newTestConsolidator()
	storeOf := map[string]string{
		"a1": "Kaufland", "a2": "Lidl",
		"b1": "Billa", "b2": "Kaufland",
	}
	accepted := []ScoredPair{
		{IDA: "a1", IDB: "a2", Score: 0.7, CommonTokens: 2},
		{IDA: "b1", IDB: "b2", Score: 0.8, CommonTokens: 2},
	}

	groups, dropped := c.Consolidate(accepted, storeOf)
	require.Len(t, groups, 2)
	assert.Zero(t, dropped)

	// Every product belongs to exactly one group.
	seen := make(map[string]int)
	for _, g := range groups {
		for _, id := range g.MemberIDs {
			seen[id]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}

func TestConsolidateIsDeterministic(t *testing.T) {
	c := newTestConsolidator()
	storeOf := map[string]string{
		"p1": "Kaufland", "p2": "Lidl", "p3": "Billa",
		"p4": "Kaufland", "p5": "Lidl",
	}
	accepted := []ScoredPair{
		{IDA: "p1", IDB: "p2", Score: 0.9, CommonTokens: 3},
		{IDA: "p2", IDB: "p3", Score: 0.7, CommonTokens: 2},
		{IDA: "p3", IDB: "p4", Score: 0.65, CommonTokens: 2},
		{IDA: "p4", IDB: "p5", Score: 0.8, CommonTokens: 3},
	}

	first, firstDropped := c.Consolidate(accepted, storeOf)
	for i := 0; i < 5; i++ {
		again, againDropped := c.Consolidate(accepted, storeOf)
		require.Equal(t, first, again)
		require.Equal(t, firstDropped, againDropped)
	}
}

func TestGroupIDStableAcrossRuns(t *testing.T) {
	members := []string{"kfl-101", "lid-202"}
	assert.Equal(t, groupID(members), groupID(members))
	assert.NotEqual(t, groupID(members), groupID([]string{"kfl-101", "lid-203"}))
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind()
	uf.union("a", "b")
	uf.union("c", "d")

	assert.Equal(t, uf.find("a"), uf.find("b"))
	assert.NotEqual(t, uf.find("a"), uf.find("c"))

	uf.union("b", "c")
	assert.Equal(t, uf.find("a"), uf.find("d"))
}
