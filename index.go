package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	meilisearch "github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog"
)

const groupsIndexUID = "match_groups"

// SearchIndexer mirrors the published match groups into Meilisearch so the
// API can serve typo-tolerant search over group names in both scripts.
type SearchIndexer struct {
	db     *sql.DB
	client meilisearch.ServiceManager
	log    zerolog.Logger
}

func NewSearchIndexer(db *sql.DB, cfg MeilisearchConfig, log zerolog.Logger) *SearchIndexer {
	return &SearchIndexer{
		db:     db,
		client: meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey)),
		log:    log,
	}
}

// Rebuild drops and recreates the match_groups index from the published
// tables in batches.
func (s *SearchIndexer) Rebuild(ctx context.Context) (int, error) {
	_, _ = s.client.DeleteIndex(groupsIndexUID)
	if _, err := s.client.CreateIndex(&meilisearch.IndexConfig{Uid: groupsIndexUID, PrimaryKey: "id"}); err != nil {
		return 0, fmt.Errorf("creating index: %w", err)
	}
	index := s.client.Index(groupsIndexUID)

	settings := meilisearch.Settings{
		SearchableAttributes: []string{"name", "brand", "stores"},
		FilterableAttributes: []string{"stores", "store_count", "price_warning"},
		SortableAttributes:   []string{"savings", "min_price", "confidence"},
		Synonyms:             brandSynonyms(),
	}
	if _, err := index.UpdateSettings(&settings); err != nil {
		return 0, fmt.Errorf("updating index settings: %w", err)
	}

	batch := 1000
	offset := 0
	indexed := 0
	for {
		docs, err := s.fetchGroupDocs(ctx, batch, offset)
		if err != nil {
			return indexed, err
		}
		if len(docs) == 0 {
			break
		}
		if _, err := index.AddDocuments(docs, nil); err != nil {
			return indexed, fmt.Errorf("adding documents: %w", err)
		}
		indexed += len(docs)
		offset += batch
	}

	s.log.Info().Int("groups", indexed).Msg("search index rebuilt")
	return indexed, nil
}

// fetchGroupDocs loads one batch of groups with a representative name: the
// shortest member listing name, same choice the export format makes.
func (s *SearchIndexer) fetchGroupDocs(ctx context.Context, limit, offset int) ([]map[string]interface{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.confidence, g.min_price, g.max_price, g.price_warning,
		       g.savings, g.savings_pct, g.store_count,
		       (SELECT p.name FROM match_group_members m
		          JOIN products p ON p.id = m.product_id
		         WHERE m.group_id = g.id
		         ORDER BY LENGTH(p.name), p.name LIMIT 1) AS name,
		       (SELECT COALESCE(MAX(p.brand), '') FROM match_group_members m
		          JOIN products p ON p.id = m.product_id
		         WHERE m.group_id = g.id) AS brand,
		       (SELECT STRING_AGG(DISTINCT st.name, ',') FROM match_group_members m
		          JOIN products p ON p.id = m.product_id
		          JOIN store_products sp ON sp.product_id = p.id
		          JOIN stores st ON st.id = sp.store_id
		         WHERE m.group_id = g.id) AS stores
		FROM match_groups g
		ORDER BY g.id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]map[string]interface{}, 0, limit)
	for rows.Next() {
		var id string
		var confidence, minPrice, maxPrice, savings, savingsPct float64
		var priceWarning bool
		var storeCount int
		var name, brand, stores sql.NullString
		if err := rows.Scan(&id, &confidence, &minPrice, &maxPrice, &priceWarning,
			&savings, &savingsPct, &storeCount, &name, &brand, &stores); err != nil {
			return nil, err
		}
		docs = append(docs, map[string]interface{}{
			"id":            "group_" + id,
			"name":          name.String,
			"brand":         brand.String,
			"stores":        strings.Split(stores.String, ","),
			"store_count":   storeCount,
			"min_price":     minPrice,
			"max_price":     maxPrice,
			"savings":       savings,
			"savings_pct":   savingsPct,
			"confidence":    confidence,
			"price_warning": priceWarning,
		})
	}
	return docs, rows.Err()
}

// Search queries the group index.
func (s *SearchIndexer) Search(query string, limit int64) ([]map[string]interface{}, error) {
	res, err := s.client.Index(groupsIndexUID).Search(query, &meilisearch.SearchRequest{
		Limit: limit,
		Sort:  []string{"savings:desc"},
	})
	if err != nil {
		return nil, fmt.Errorf("searching groups: %w", err)
	}
	var hits []map[string]interface{}
	b, _ := json.Marshal(res.Hits)
	_ = json.Unmarshal(b, &hits)
	return hits, nil
}

// brandSynonyms exposes the Cyrillic/Latin brand table to the search engine,
// so a query in either script finds the group.
func brandSynonyms() map[string][]string {
	synonyms := make(map[string][]string)
	for variant, canonical := range BuildBrandAliasMap() {
		if variant == canonical {
			continue
		}
		synonyms[variant] = append(synonyms[variant], canonical)
		synonyms[canonical] = append(synonyms[canonical], variant)
	}
	return synonyms
}
