package main

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// unionFind is the disjoint-set structure backing group consolidation.
// It is built once per run from the complete accepted-edge list; lookups
// after that are pure queries. Group membership is never mutated
// incrementally while also being read.
type unionFind struct {
	parent map[string]string
	rank   map[string]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[string]string),
		rank:   make(map[string]int),
	}
}

func (u *unionFind) add(x string) {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
	}
}

func (u *unionFind) find(x string) string {
	u.add(x)
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		u.parent[x], x = root, u.parent[x]
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// Consolidator turns scored pairs into disjoint transitive groups.
type Consolidator struct {
	cfg MatchingConfig
	log zerolog.Logger
}

func NewConsolidator(cfg MatchingConfig, log zerolog.Logger) *Consolidator {
	return &Consolidator{cfg: cfg, log: log}
}

// Threshold accepts a scored pair as a match when the score clears the
// configured minimum and the pair shares enough expanded tokens. The token
// floor stops two accidentally similar short names from matching.
func (c *Consolidator) Threshold(pairs []ScoredPair) []ScoredPair {
	var accepted []ScoredPair
	for _, p := range pairs {
		if p.Score >= c.cfg.MinThreshold && p.CommonTokens >= c.cfg.MinCommonTokens {
			accepted = append(accepted, p)
		}
	}
	return accepted
}

// Consolidate builds connected components over the accepted edges, so a
// chain A-B, B-C collapses into one {A,B,C} group instead of two groups
// both claiming B. Components that transitively pulled in two products from
// the same store are rebuilt keeping only the strongest non-conflicting
// edges; every dropped edge is logged. Group confidence is the minimum kept
// edge score: a group is only as strong as its weakest link.
func (c *Consolidator) Consolidate(accepted []ScoredPair, storeOf map[string]string) ([]MatchGroup, int) {
	uf := newUnionFind()
	for _, e := range accepted {
		uf.union(e.IDA, e.IDB)
	}

	componentEdges := make(map[string][]ScoredPair)
	for _, e := range accepted {
		root := uf.find(e.IDA)
		componentEdges[root] = append(componentEdges[root], e)
	}

	roots := make([]string, 0, len(componentEdges))
	for root := range componentEdges {
		roots = append(roots, root)
	}
	sort.Strings(roots)

	var groups []MatchGroup
	dropped := 0
	for _, root := range roots {
		componentGroups, n := c.resolveComponent(componentEdges[root], storeOf)
		groups = append(groups, componentGroups...)
		dropped += n
	}
	return groups, dropped
}

// resolveComponent emits the final groups for one connected component.
// Same-store pairs are never scored, but a 3+-way transitive chain can still
// pull two products of one store into a component via different edges.
func (c *Consolidator) resolveComponent(edges []ScoredPair, storeOf map[string]string) ([]MatchGroup, int) {
	if !hasStoreConflict(edges, storeOf) {
		return []MatchGroup{buildGroup(edges, storeOf)}, 0
	}

	// Greedy rebuild by descending confidence: an edge joins two sets only
	// when their store sets are disjoint.
	ordered := make([]ScoredPair, len(edges))
	copy(ordered, edges)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		if ordered[i].IDA != ordered[j].IDA {
			return ordered[i].IDA < ordered[j].IDA
		}
		return ordered[i].IDB < ordered[j].IDB
	})

	uf := newUnionFind()
	stores := make(map[string]map[string]bool)
	for _, e := range ordered {
		for _, id := range []string{e.IDA, e.IDB} {
			root := uf.find(id)
			if stores[root] == nil {
				stores[root] = map[string]bool{storeOf[id]: true}
			}
		}
	}

	kept := make([]ScoredPair, 0, len(ordered))
	dropped := 0
	for _, e := range ordered {
		ra, rb := uf.find(e.IDA), uf.find(e.IDB)
		if ra == rb {
			kept = append(kept, e)
			continue
		}
		if storesOverlap(stores[ra], stores[rb]) {
			dropped++
			c.log.Warn().
				Str("id_a", e.IDA).
				Str("id_b", e.IDB).
				Float64("score", e.Score).
				Msg("dropping match edge: would merge two products from one store")
			continue
		}
		uf.union(e.IDA, e.IDB)
		merged := uf.find(e.IDA)
		combined := stores[ra]
		for s := range stores[rb] {
			combined[s] = true
		}
		stores[merged] = combined
		kept = append(kept, e)
	}

	// The rebuild may have split the component; regroup the kept edges.
	subEdges := make(map[string][]ScoredPair)
	for _, e := range kept {
		root := uf.find(e.IDA)
		subEdges[root] = append(subEdges[root], e)
	}
	subRoots := make([]string, 0, len(subEdges))
	for root := range subEdges {
		subRoots = append(subRoots, root)
	}
	sort.Strings(subRoots)

	var groups []MatchGroup
	for _, root := range subRoots {
		groups = append(groups, buildGroup(subEdges[root], storeOf))
	}
	return groups, dropped
}

func buildGroup(edges []ScoredPair, storeOf map[string]string) MatchGroup {
	memberSet := make(map[string]bool)
	confidence := 1.0
	for _, e := range edges {
		memberSet[e.IDA] = true
		memberSet[e.IDB] = true
		if e.Score < confidence {
			confidence = e.Score
		}
	}

	members := make([]string, 0, len(memberSet))
	for id := range memberSet {
		members = append(members, id)
	}
	sort.Strings(members)

	storeSet := make(map[string]bool)
	for _, id := range members {
		storeSet[storeOf[id]] = true
	}
	storeList := make([]string, 0, len(storeSet))
	for s := range storeSet {
		storeList = append(storeList, s)
	}
	sort.Strings(storeList)

	return MatchGroup{
		GroupID:    groupID(members),
		MemberIDs:  members,
		Stores:     storeList,
		Confidence: confidence,
	}
}

// groupID derives a stable identifier from the sorted membership, so the
// same input snapshot always produces the same group ids.
func groupID(members []string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(members, "|"))).String()
}

func hasStoreConflict(edges []ScoredPair, storeOf map[string]string) bool {
	perStore := make(map[string]map[string]bool)
	for _, e := range edges {
		for _, id := range []string{e.IDA, e.IDB} {
			store := storeOf[id]
			if perStore[store] == nil {
				perStore[store] = make(map[string]bool)
			}
			perStore[store][id] = true
		}
	}
	for _, ids := range perStore {
		if len(ids) > 1 {
			return true
		}
	}
	return false
}

func storesOverlap(a, b map[string]bool) bool {
	for s := range a {
		if b[s] {
			return true
		}
	}
	return false
}
