package main

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// MatchProcessor runs the cross-store matching pipeline against the
// database: load the cleaned snapshot, match in memory, publish the groups
// in one transaction. A failed run leaves the previously published groups
// untouched.
type MatchProcessor struct {
	db         *sql.DB
	cfg        *Config
	normalizer *ProductNormalizer
	expander   *TransliterationExpander
	log        zerolog.Logger
}

func NewMatchProcessor(db *sql.DB, cfg *Config, log zerolog.Logger) *MatchProcessor {
	return &MatchProcessor{
		db:         db,
		cfg:        cfg,
		normalizer: NewProductNormalizer(),
		expander:   NewTransliterationExpander(cfg.Matching.MaxVariantsPerToken),
		log:        log,
	}
}

// Run executes one full matching run end to end.
func (p *MatchProcessor) Run(ctx context.Context) (*RunSummary, error) {
	started := time.Now()

	records, err := p.loadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading product records: %w", err)
	}

	groups, summary, err := p.MatchRecords(ctx, records)
	if err != nil {
		return nil, err
	}

	if err := p.publishGroups(ctx, groups); err != nil {
		return nil, fmt.Errorf("publishing match groups: %w", err)
	}

	p.log.Info().
		Int("records", summary.InputRecords).
		Int("candidate_pairs", summary.CandidatePairs).
		Int("accepted", summary.AcceptedMatches).
		Int("groups", summary.GroupsAfter).
		Dur("elapsed", time.Since(started)).
		Msg("matching run complete")
	return summary, nil
}

// MatchRecords is the in-memory pipeline over an immutable record snapshot:
// block, score, threshold, consolidate, validate. Records are sorted first,
// so the same snapshot always yields identical groups.
func (p *MatchProcessor) MatchRecords(ctx context.Context, records []ProductRecord) ([]MatchGroup, *RunSummary, error) {
	sorted := make([]ProductRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	summary := &RunSummary{
		InputRecords:   len(sorted),
		RecordsByStore: make(map[string]int),
	}
	recordsByID := make(map[string]ProductRecord, len(sorted))
	storeOf := make(map[string]string, len(sorted))
	for _, rec := range sorted {
		recordsByID[rec.ID] = rec
		storeOf[rec.ID] = rec.Store
		summary.RecordsByStore[rec.Store]++
	}

	scorer := NewScorer(p.cfg.Matching, p.normalizer, p.expander, sorted)
	buckets := BlockByCategory(sorted, p.log)
	summary.Buckets = len(buckets)

	pairs, candidates, err := ScoreBuckets(ctx, scorer, buckets, p.cfg.Matching.Workers)
	if err != nil {
		return nil, nil, fmt.Errorf("scoring candidate pairs: %w", err)
	}
	summary.CandidatePairs = candidates

	consolidator := NewConsolidator(p.cfg.Matching, p.log)
	accepted := consolidator.Threshold(pairs)
	summary.AcceptedMatches = len(accepted)

	groups, dropped := consolidator.Consolidate(accepted, storeOf)
	summary.GroupsBefore = len(groups)
	summary.DroppedEdges = dropped

	validator := NewExportValidator(p.cfg.Pricing.WarningRatio, p.log)
	validated, err := validator.Validate(groups, recordsByID)
	if err != nil {
		return nil, nil, err
	}
	summary.GroupsAfter = len(validated)

	return validated, summary, nil
}

// loadRecords reads the current cleaned snapshot. Quantity is parsed from
// the listing name when the cleaned columns are empty; either way absence
// stays absence.
func (p *MatchProcessor) loadRecords(ctx context.Context) ([]ProductRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT p.id, s.name AS store, p.name,
		       COALESCE(p.normalized_name, ''),
		       COALESCE(p.brand, ''),
		       COALESCE(p.category, ''),
		       p.quantity, p.unit,
		       pr.current_price
		FROM products p
		JOIN store_products sp ON sp.product_id = p.id
		JOIN stores s ON s.id = sp.store_id
		JOIN prices pr ON pr.store_product_id = sp.id
		WHERE p.deleted_at IS NULL
		  AND sp.deleted_at IS NULL
		  AND pr.current_price > 0
		ORDER BY p.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ProductRecord
	for rows.Next() {
		var rec ProductRecord
		var qty sql.NullFloat64
		var unit sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Store, &rec.Name, &rec.NormalizedName,
			&rec.Brand, &rec.Category, &qty, &unit, &rec.Price); err != nil {
			return nil, err
		}
		if qty.Valid && unit.Valid {
			rec.Quantity = &Quantity{Value: qty.Float64, Unit: unit.String}
		} else if v, u, ok := p.normalizer.ParseQuantity(rec.Name); ok {
			rec.Quantity = &Quantity{Value: v, Unit: u}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	p.log.Info().Int("records", len(records)).Msg("loaded product snapshot")
	return records, nil
}

// publishGroups replaces the entire published group set in one transaction.
// Either the new set lands completely or the prior set stays in effect.
func (p *MatchProcessor) publishGroups(ctx context.Context, groups []MatchGroup) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM match_group_members"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM match_groups"); err != nil {
		return err
	}

	groupStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO match_groups
		(id, confidence, min_price, max_price, price_warning,
		 savings, savings_pct, store_count, member_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`)
	if err != nil {
		return err
	}
	defer groupStmt.Close()

	memberStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO match_group_members (group_id, product_id)
		VALUES ($1, $2)
	`)
	if err != nil {
		return err
	}
	defer memberStmt.Close()

	for _, g := range groups {
		if _, err := groupStmt.ExecContext(ctx,
			g.GroupID, g.Confidence, g.PriceRange.Min, g.PriceRange.Max,
			g.PriceWarning, g.Savings, g.SavingsPct,
			len(g.Stores), len(g.MemberIDs)); err != nil {
			return fmt.Errorf("inserting group %s: %w", g.GroupID, err)
		}
		for _, id := range g.MemberIDs {
			if _, err := memberStmt.ExecContext(ctx, g.GroupID, id); err != nil {
				return fmt.Errorf("inserting member %s: %w", id, err)
			}
		}
	}

	return tx.Commit()
}

// EnsureSchema creates the output tables when missing. Input tables belong
// to the cleaning stage and are never touched.
func (p *MatchProcessor) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS match_groups (
			id TEXT PRIMARY KEY,
			confidence DOUBLE PRECISION NOT NULL,
			min_price DOUBLE PRECISION NOT NULL,
			max_price DOUBLE PRECISION NOT NULL,
			price_warning BOOLEAN NOT NULL DEFAULT FALSE,
			savings DOUBLE PRECISION NOT NULL DEFAULT 0,
			savings_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
			store_count INTEGER NOT NULL,
			member_count INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS match_group_members (
			group_id TEXT NOT NULL REFERENCES match_groups(id) ON DELETE CASCADE,
			product_id TEXT NOT NULL,
			PRIMARY KEY (group_id, product_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mgm_product ON match_group_members (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mg_savings ON match_groups (savings DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
