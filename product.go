package main

// Entities flowing through the matching pipeline. ProductRecord is
// read-only input owned by the cleaning stage; MatchGroup is the published
// output. ScoredPair exists only between scoring and grouping.

// Quantity is a parsed amount in base units: ml for volume, g for mass,
// pcs for count.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ProductRecord is one store's cleaned listing for one product. Optional
// fields are pointers; absence is neutral evidence, never a mismatch.
type ProductRecord struct {
	ID             string    `json:"id"`
	Store          string    `json:"store"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	Brand          string    `json:"brand,omitempty"`
	Category       string    `json:"category,omitempty"`
	Quantity       *Quantity `json:"quantity,omitempty"`
	Price          float64   `json:"price"`
}

// ScoredPair is a scored candidate. IDA < IDB always holds, so the same
// unordered pair can never appear twice.
type ScoredPair struct {
	IDA                string
	IDB                string
	Score              float64
	CommonTokens       int
	BrandAgreement     bool
	QuantityCompatible bool
	CategoryCompatible bool
}

// PriceRange is the min/max over a group's current member prices.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MatchGroup is a set of listings from at least two stores believed to be
// the same underlying product. Stores and PriceRange are always recomputed
// from MemberIDs, never carried from earlier stages.
type MatchGroup struct {
	GroupID      string     `json:"group_id"`
	MemberIDs    []string   `json:"member_ids"`
	Stores       []string   `json:"stores"`
	PriceRange   PriceRange `json:"price_range"`
	Confidence   float64    `json:"confidence"`
	PriceWarning bool       `json:"price_warning,omitempty"`
	Savings      float64    `json:"savings"`
	SavingsPct   float64    `json:"savings_pct"`
}

// RunSummary is the diagnostic tally for one matching run.
type RunSummary struct {
	InputRecords    int            `json:"input_records"`
	Buckets         int            `json:"buckets"`
	CandidatePairs  int            `json:"candidate_pairs"`
	AcceptedMatches int            `json:"accepted_matches"`
	GroupsBefore    int            `json:"groups_before_validation"`
	GroupsAfter     int            `json:"groups_after_validation"`
	DroppedEdges    int            `json:"dropped_conflict_edges"`
	RecordsByStore  map[string]int `json:"records_by_store"`
}
