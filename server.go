package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// server exposes the published comparison groups over JSON.
type server struct {
	db      *sql.DB
	indexer *SearchIndexer
	log     zerolog.Logger
}

func runServer(db *sql.DB, cfg *Config, log zerolog.Logger) error {
	srv := &server{
		db:      db,
		indexer: NewSearchIndexer(db, cfg.Meilisearch, log),
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", srv.handleHealth)
	mux.HandleFunc("GET /api/groups", srv.handleGroups)
	mux.HandleFunc("GET /api/groups/search", srv.handleSearch)
	mux.HandleFunc("GET /api/stats", srv.handleStats)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	h2cHandler := h2c.NewHandler(corsHandler.Handler(mux), &http2.Server{})

	addr := ":" + cfg.Server.Port
	log.Info().Str("addr", addr).Msg("API server listening")
	return http.ListenAndServe(addr, h2cHandler)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGroups serves the top-savings comparison groups.
func (s *server) handleGroups(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	groups, err := GetTopSavingsGroups(r.Context(), s.db, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("loading comparison groups")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load groups"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groups": groups,
		"count":  len(groups),
	})
}

// handleSearch queries the Meilisearch group index.
func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query parameter q"})
		return
	}

	hits, err := s.indexer.Search(query, 50)
	if err != nil {
		s.log.Error().Err(err).Str("query", query).Msg("group search failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hits":  hits,
		"count": len(hits),
	})
}

// handleStats serves per-store coverage plus group totals.
func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	coverage, err := GetStoreCoverage(r.Context(), s.db)
	if err != nil {
		s.log.Error().Err(err).Msg("loading coverage stats")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	var totalGroups, flagged int
	if err := s.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE price_warning) FROM match_groups`,
	).Scan(&totalGroups, &flagged); err != nil {
		s.log.Error().Err(err).Msg("loading group totals")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_groups":         totalGroups,
		"price_warning_groups": flagged,
		"store_coverage":       coverage,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
