package main

import (
	"context"
	"database/sql"
	"sort"
)

// ComparisonListing is one store's listing inside an exported group.
type ComparisonListing struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Brand string  `json:"brand,omitempty"`
	Store string  `json:"store"`
	Price float64 `json:"price"`
}

// ComparisonGroup is the API shape of a published match group.
type ComparisonGroup struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Listings     []ComparisonListing `json:"listings"`
	Stores       []string            `json:"stores"`
	StoreCount   int                 `json:"store_count"`
	MinPrice     float64             `json:"min_price"`
	MaxPrice     float64             `json:"max_price"`
	Savings      float64             `json:"savings"`
	SavingsPct   float64             `json:"savings_pct"`
	Confidence   float64             `json:"confidence"`
	PriceWarning bool                `json:"price_warning,omitempty"`
}

// StoreCoverage is the per-store matching coverage for the stats endpoint.
type StoreCoverage struct {
	Store   string  `json:"store"`
	Total   int     `json:"total_products"`
	Matched int     `json:"matched_products"`
	Pct     float64 `json:"matched_pct"`
}

// GetTopSavingsGroups returns published groups ordered by absolute savings,
// each with its member listings sorted cheapest first.
func GetTopSavingsGroups(ctx context.Context, db *sql.DB, limit int) ([]ComparisonGroup, error) {
	query := `
		WITH top_groups AS (
			SELECT g.id, g.confidence, g.min_price, g.max_price,
			       g.price_warning, g.savings, g.savings_pct, g.store_count
			FROM match_groups g
			ORDER BY g.savings DESC, g.id
			LIMIT $1
		)
		SELECT g.id, g.confidence, g.min_price, g.max_price,
		       g.price_warning, g.savings, g.savings_pct, g.store_count,
		       p.id, p.name, COALESCE(p.brand, ''), s.name AS store, pr.current_price
		FROM top_groups g
		JOIN match_group_members m ON m.group_id = g.id
		JOIN products p ON p.id = m.product_id
		JOIN store_products sp ON sp.product_id = p.id
		JOIN stores s ON s.id = sp.store_id
		JOIN prices pr ON pr.store_product_id = sp.id
		ORDER BY g.savings DESC, g.id, pr.current_price ASC
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groupMap := make(map[string]*ComparisonGroup)
	groupOrder := []string{}

	for rows.Next() {
		var (
			groupID, productID, name, brand, store           string
			confidence, minPrice, maxPrice, savings, savePct float64
			price                                            float64
			priceWarning                                     bool
			storeCount                                       int
		)
		if err := rows.Scan(&groupID, &confidence, &minPrice, &maxPrice,
			&priceWarning, &savings, &savePct, &storeCount,
			&productID, &name, &brand, &store, &price); err != nil {
			return nil, err
		}

		g, exists := groupMap[groupID]
		if !exists {
			g = &ComparisonGroup{
				ID:           groupID,
				Confidence:   confidence,
				MinPrice:     minPrice,
				MaxPrice:     maxPrice,
				Savings:      savings,
				SavingsPct:   savePct,
				StoreCount:   storeCount,
				PriceWarning: priceWarning,
			}
			groupMap[groupID] = g
			groupOrder = append(groupOrder, groupID)
		}

		g.Listings = append(g.Listings, ComparisonListing{
			ID:    productID,
			Name:  name,
			Brand: brand,
			Store: store,
			Price: price,
		})
		// Representative name: the shortest member listing.
		if g.Name == "" || len(name) < len(g.Name) {
			g.Name = name
		}
		if !containsString(g.Stores, store) {
			g.Stores = append(g.Stores, store)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groups := make([]ComparisonGroup, 0, len(groupOrder))
	for _, id := range groupOrder {
		groups = append(groups, *groupMap[id])
	}
	return groups, nil
}

// GetStoreCoverage reports how many of each store's products landed in a
// published group.
func GetStoreCoverage(ctx context.Context, db *sql.DB) ([]StoreCoverage, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT s.name,
		       COUNT(DISTINCT p.id) AS total,
		       COUNT(DISTINCT m.product_id) AS matched
		FROM stores s
		JOIN store_products sp ON sp.store_id = s.id
		JOIN products p ON p.id = sp.product_id AND p.deleted_at IS NULL
		LEFT JOIN match_group_members m ON m.product_id = p.id
		GROUP BY s.name
		ORDER BY s.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byStore := make(map[string]StoreCoverage)
	for rows.Next() {
		var c StoreCoverage
		if err := rows.Scan(&c.Store, &c.Total, &c.Matched); err != nil {
			return nil, err
		}
		if c.Total > 0 {
			c.Pct = round1(100 * float64(c.Matched) / float64(c.Total))
		}
		byStore[c.Store] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Every tracked retailer shows up in canonical order, zeroed when the
	// snapshot has no rows for it yet.
	coverage := make([]StoreCoverage, 0, len(byStore))
	for _, store := range BuildStoreList() {
		c, ok := byStore[store]
		if !ok {
			c = StoreCoverage{Store: store}
		}
		coverage = append(coverage, c)
		delete(byStore, store)
	}
	extra := make([]string, 0, len(byStore))
	for store := range byStore {
		extra = append(extra, store)
	}
	sort.Strings(extra)
	for _, store := range extra {
		coverage = append(coverage, byStore[store])
	}
	return coverage, nil
}

func containsString(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
