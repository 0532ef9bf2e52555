package main

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scorer computes pairwise similarity for cleaned listings. It is built once
// per run with every record's token set and a token frequency index, and is
// read-only afterwards, so buckets can be scored concurrently.
type Scorer struct {
	cfg             MatchingConfig
	categoryOverlap map[string]bool
	brandAliases    map[string]string

	tokens     map[string][]string // record id -> expanded token set
	names      map[string]string   // record id -> normalized name
	quantities map[string]*Quantity
	tokenFreq  map[string]int
}

// NewScorer prepares token sets, normalized names and the inverse-frequency
// index for the given record pool.
func NewScorer(cfg MatchingConfig, normalizer *ProductNormalizer, expander *TransliterationExpander, records []ProductRecord) *Scorer {
	s := &Scorer{
		cfg:             cfg,
		categoryOverlap: BuildCategoryOverlapMap(),
		brandAliases:    BuildBrandAliasMap(),
		tokens:          make(map[string][]string, len(records)),
		names:           make(map[string]string, len(records)),
		quantities:      make(map[string]*Quantity, len(records)),
		tokenFreq:       make(map[string]int),
	}

	unitMap := BuildUnitMap()

	for _, rec := range records {
		name := rec.NormalizedName
		if name == "" {
			name = rec.Name
		}
		toks := normalizer.Tokenize(name)
		// The original listing rarely repeats the brand in the name, so
		// brand tokens join the comparable set.
		if rec.Brand != "" {
			for _, bt := range normalizer.Tokenize(rec.Brand) {
				if canon, ok := s.brandAliases[bt]; ok {
					bt = canon
				}
				toks = appendUnique(toks, bt)
			}
		}
		expanded := expander.ExpandAll(toks)

		s.tokens[rec.ID] = expanded
		s.names[rec.ID] = normalizer.NormalizeName(name)
		s.quantities[rec.ID] = normalizeQuantity(rec.Quantity, unitMap)
		for _, tok := range expanded {
			s.tokenFreq[tok]++
		}
	}
	return s
}

// Score computes the similarity for one candidate pair. ok is false when the
// pair is not a candidate at all (same store). Hard-gated pairs (unrelated
// categories) come back with Score 0, never an error. Missing optional
// fields are neutral.
func (s *Scorer) Score(a, b ProductRecord) (ScoredPair, bool) {
	if a.Store == b.Store {
		return ScoredPair{}, false
	}

	pair := ScoredPair{IDA: a.ID, IDB: b.ID}
	if pair.IDA > pair.IDB {
		pair.IDA, pair.IDB = pair.IDB, pair.IDA
	}

	pair.CategoryCompatible = s.categoriesCompatible(a.Category, b.Category)
	if !pair.CategoryCompatible {
		return pair, true
	}

	tokenSim, common := s.weightedTokenSim(s.tokens[a.ID], s.tokens[b.ID])
	pair.CommonTokens = common
	ngramSim := trigramJaccard(s.names[a.ID], s.names[b.ID])

	score := s.cfg.TokenWeight*tokenSim + s.cfg.TrigramWeight*ngramSim

	score *= s.brandMultiplier(&pair, a.Brand, b.Brand)
	score *= s.quantityMultiplier(&pair, s.quantities[a.ID], s.quantities[b.ID])

	if a.Price > 0 && b.Price > 0 {
		ratio := math.Max(a.Price, b.Price) / math.Min(a.Price, b.Price)
		if ratio > s.cfg.PriceRatioBound {
			score *= s.cfg.PriceRatioPenalty
		}
	}

	pair.Score = clamp01(score)
	return pair, true
}

func (s *Scorer) categoriesCompatible(catA, catB string) bool {
	if catA == "" || catB == "" || catA == catB {
		return true
	}
	return s.categoryOverlap[catA+"|"+catB]
}

// brandMultiplier: agreement boosts (result is clamped later), mismatch
// applies a strong penalty, absence on either side is neutral.
func (s *Scorer) brandMultiplier(pair *ScoredPair, brandA, brandB string) float64 {
	if brandA == "" || brandB == "" {
		return 1.0
	}
	a, b := normalizeBrand(brandA, s.brandAliases), normalizeBrand(brandB, s.brandAliases)
	if a == b {
		pair.BrandAgreement = true
		return s.cfg.BrandMatchBoost
	}
	return s.cfg.BrandMismatchPenalty
}

// quantityMultiplier: same unit family and a size ratio inside the multipack
// tolerance is neutral; anything else is a penalty, never a rejection.
func (s *Scorer) quantityMultiplier(pair *ScoredPair, qa, qb *Quantity) float64 {
	if qa == nil || qb == nil {
		pair.QuantityCompatible = true
		return 1.0
	}
	if qa.Unit != qb.Unit || qa.Value <= 0 || qb.Value <= 0 {
		return s.cfg.QuantityPenalty
	}
	ratio := math.Max(qa.Value, qb.Value) / math.Min(qa.Value, qb.Value)
	if ratio > s.cfg.QuantityTolerance {
		return s.cfg.QuantityPenalty
	}
	pair.QuantityCompatible = true
	return 1.0
}

// weightedTokenSim blends weighted containment with weighted Jaccard.
// Containment keeps a short name that is fully inside a longer one close to
// 1.0; Jaccard punishes genuinely divergent sets. Tokens of four or more
// runes within Levenshtein distance 1 count as shared, which absorbs minor
// spelling drift the alias tables missed.
func (s *Scorer) weightedTokenSim(tokensA, tokensB []string) (float64, int) {
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0, 0
	}

	sumA, sumB := 0.0, 0.0
	for _, t := range tokensA {
		sumA += s.tokenWeight(t)
	}
	inB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		sumB += s.tokenWeight(t)
		inB[t] = true
	}

	matchedB := make(map[string]bool, len(tokensB))
	interW := 0.0
	common := 0
	for _, ta := range tokensA {
		wa := s.tokenWeight(ta)
		if inB[ta] && !matchedB[ta] {
			matchedB[ta] = true
			interW += wa
			common++
			continue
		}
		if utf8.RuneCountInString(ta) < 4 {
			continue
		}
		for _, tb := range tokensB {
			if matchedB[tb] || utf8.RuneCountInString(tb) < 4 {
				continue
			}
			if levenshtein.ComputeDistance(ta, tb) <= 1 {
				matchedB[tb] = true
				interW += (wa + s.tokenWeight(tb)) / 2
				common++
				break
			}
		}
	}

	unionW := sumA + sumB - interW
	if unionW <= 0 {
		return 0, common
	}
	jaccard := interW / unionW
	containment := interW / math.Min(sumA, sumB)
	return clamp01(0.5*containment + 0.5*jaccard), common
}

// tokenWeight is an inverse-frequency weight: tokens shared by many records
// in the pool count for less than distinctive ones. Very short tokens
// (numbers, units) are damped.
func (s *Scorer) tokenWeight(tok string) float64 {
	w := 1.0 / (1.0 + math.Log(1.0+float64(s.tokenFreq[tok])))
	if utf8.RuneCountInString(tok) < 3 {
		w *= 0.5
	}
	return w
}

// trigramJaccard is the character-level backstop, independent of
// tokenization. Rune-based so Cyrillic names work.
func trigramJaccard(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	gramsA := trigrams(a)
	gramsB := trigrams(b)

	inter := 0
	for g := range gramsA {
		if gramsB[g] {
			inter++
		}
	}
	union := len(gramsA) + len(gramsB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func trigrams(s string) map[string]bool {
	runes := []rune(s)
	grams := make(map[string]bool)
	if len(runes) < 3 {
		grams[s] = true
		return grams
	}
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = true
	}
	return grams
}

func normalizeBrand(brand string, aliases map[string]string) string {
	b := lowerTrim(brand)
	if canon, ok := aliases[b]; ok {
		return canon
	}
	return b
}

func normalizeQuantity(q *Quantity, unitMap map[string]string) *Quantity {
	if q == nil {
		return nil
	}
	unit := q.Unit
	if canon, ok := unitMap[lowerTrim(unit)]; ok {
		unit = canon
	}
	value, unit := toBaseUnit(q.Value, unit)
	return &Quantity{Value: value, Unit: unit}
}

func appendUnique(tokens []string, tok string) []string {
	for _, t := range tokens {
		if t == tok {
			return tokens
		}
	}
	return append(tokens, tok)
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
