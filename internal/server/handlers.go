package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/store"
)

// SearchRequest is the body of POST /api/v1/search. TopK and MinLength fall
// back to the configured defaults when omitted.
type SearchRequest struct {
	Query     string `json:"query"`
	TopK      int    `json:"top_k,omitempty"`
	MinLength int    `json:"min_length,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results   []models.SearchResult `json:"results"`
	Total     int                   `json:"total"`
	QueryTime int64                 `json:"query_time_ms"`
	Query     string                `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TopK == 0 {
		req.TopK = s.config.Search.TopK
	}
	if req.MinLength == 0 {
		req.MinLength = s.config.Search.MinLength
	}
	s.logger.Debug("search request",
		zap.String("query", req.Query),
		zap.Int("top_k", req.TopK),
		zap.Int("min_length", req.MinLength),
	)

	start := time.Now()
	results, err := s.currentStore().Search(r.Context(), req.Query, s.encoder, req.TopK, req.MinLength)
	if err != nil {
		if errors.Is(err, store.ErrInvalidArgument) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, &SearchResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
		Query:     req.Query,
	})
}

func (s *Server) handleCorpora(w http.ResponseWriter, r *http.Request) {
	st := s.currentStore()
	type corpusInfo struct {
		Name    string `json:"name"`
		Files   int    `json:"files"`
		Entries int    `json:"entries"`
	}
	corpora := make([]corpusInfo, 0, len(st.Corpora))
	for _, c := range st.Corpora {
		entries := 0
		for _, rec := range c.Records {
			entries += len(rec.Entries)
		}
		corpora = append(corpora, corpusInfo{Name: c.Name, Files: len(c.Records), Entries: entries})
	}
	s.respondJSON(w, http.StatusOK, corpora)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.currentStore()
	resp := map[string]interface{}{
		"corpora":    len(st.Corpora),
		"entries":    st.Size(),
		"dimensions": s.encoder.Dimensions(),
		"store_path": s.config.StorePath,
	}
	if info, err := os.Stat(s.config.StorePath); err == nil {
		resp["store_bytes"] = info.Size()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
