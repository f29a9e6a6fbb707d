package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pb33f/flowscope/motor"
)

// queries are a handful of filters, anything bigger is not a query
const maxQuerySize = 64 * 1024

// NewSearchHandler exposes searcher at POST /api/search.
func NewSearchHandler(searcher motor.Searcher) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	router.Post(motor.SearchPath, handleSearch(searcher))
	return router
}

func handleSearch(searcher motor.Searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := decodeQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ids, err := searcher.Search(r.Context(), query)
		if err != nil {
			status := searchErrorStatus(err)
			slog.Debug("search failed", "error", err, "status", status)
			http.Error(w, err.Error(), status)
			return
		}
		if ids == nil {
			ids = []int{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ids); err != nil {
			slog.Debug("failed to write search response", "error", err)
		}
	}
}

// decodeQuery accepts the JSON body form and the idsOnly/filter query parameter form
func decodeQuery(r *http.Request) (motor.SearchQuery, error) {
	query, ok, err := motor.QueryFromParams(r.URL.Query())
	if ok {
		return query, err
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxQuerySize)).Decode(&query); err != nil {
		return motor.SearchQuery{}, fmt.Errorf("malformed query: %w", err)
	}
	return query, nil
}

// searchErrorStatus maps a search failure to the status the client sees. Bad queries
// are the caller's fault, everything else is ours.
func searchErrorStatus(err error) int {
	if errors.Is(err, motor.ErrInvalidFilter) {
		return http.StatusBadRequest
	}
	var searchErr *motor.SearchError
	if errors.As(err, &searchErr) && searchErr.Status >= 400 && searchErr.Status < 500 {
		return searchErr.Status
	}
	return http.StatusInternalServerError
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
