package main

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// ErrExclusivityViolated signals that consolidation let one product into two
// groups. This is an implementation defect, never a data-quality condition,
// and the run must fail loudly instead of publishing.
var ErrExclusivityViolated = errors.New("product assigned to more than one group")

// ExportValidator is the last gate before publication. Every group-level
// aggregate is recomputed from the members actually assigned to the group;
// claimed store lists or counts from earlier stages are never trusted.
type ExportValidator struct {
	warningRatio float64
	log          zerolog.Logger
}

func NewExportValidator(warningRatio float64, log zerolog.Logger) *ExportValidator {
	return &ExportValidator{warningRatio: warningRatio, log: log}
}

// Validate filters groups to those with at least two members across at least
// two stores, recomputes stores, price range and savings from current
// membership, and flags suspicious price spreads without dropping them.
// Returns an error only for internal consistency violations.
func (v *ExportValidator) Validate(groups []MatchGroup, recordsByID map[string]ProductRecord) ([]MatchGroup, error) {
	claimed := make(map[string]string)
	for _, g := range groups {
		for _, id := range g.MemberIDs {
			if other, ok := claimed[id]; ok && other != g.GroupID {
				v.log.Error().
					Str("product_id", id).
					Str("group_a", other).
					Str("group_b", g.GroupID).
					Msg("exclusivity violation detected at export")
				return nil, fmt.Errorf("%w: product %s in groups %s and %s", ErrExclusivityViolated, id, other, g.GroupID)
			}
			claimed[id] = g.GroupID
		}
	}

	validated := make([]MatchGroup, 0, len(groups))
	for _, g := range groups {
		members := make([]string, 0, len(g.MemberIDs))
		storeSet := make(map[string]bool)
		minPrice, maxPrice := math.Inf(1), math.Inf(-1)

		for _, id := range g.MemberIDs {
			rec, ok := recordsByID[id]
			if !ok {
				// Membership is only what is actually present this run.
				continue
			}
			members = append(members, id)
			storeSet[rec.Store] = true
			minPrice = math.Min(minPrice, rec.Price)
			maxPrice = math.Max(maxPrice, rec.Price)
		}

		if len(members) < 2 || len(storeSet) < 2 {
			continue
		}

		stores := make([]string, 0, len(storeSet))
		for s := range storeSet {
			stores = append(stores, s)
		}
		sort.Strings(stores)

		out := g
		out.MemberIDs = members
		out.Stores = stores
		out.PriceRange = PriceRange{Min: minPrice, Max: maxPrice}
		out.Savings = round2(maxPrice - minPrice)
		if maxPrice > 0 {
			out.SavingsPct = round1(100 * (maxPrice - minPrice) / maxPrice)
		}
		if minPrice > 0 && maxPrice/minPrice > v.warningRatio {
			out.PriceWarning = true
			v.log.Warn().
				Str("group_id", out.GroupID).
				Float64("min_price", minPrice).
				Float64("max_price", maxPrice).
				Msg("price spread exceeds sanity bound, flagging group")
		}
		validated = append(validated, out)
	}

	sort.Slice(validated, func(i, j int) bool {
		if validated[i].Savings != validated[j].Savings {
			return validated[i].Savings > validated[j].Savings
		}
		return validated[i].GroupID < validated[j].GroupID
	})
	return validated, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
