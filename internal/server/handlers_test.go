package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/config"
	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	enc := embedding.NewHashEncoder(16)
	longText := "a corpus entry with a generous number of words so that the default " +
		"minimum length filter does not silently remove it from every result set"
	vec, err := enc.Encode(context.Background(), longText, true)
	if err != nil {
		t.Fatal(err)
	}
	s := store.New(models.CorpusEntry{
		Name: "acme",
		Records: []models.FileRecord{
			{Source: "report", Entries: []models.TextEntry{models.NewTextEntry(longText, 1, vec)}},
		},
	})
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return NewServer(s, enc, cfg, zap.NewNop())
}

func postSearch(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleSearch(t *testing.T) {
	srv := testServer(t)
	rec := postSearch(t, srv.Router(), `{"query": "corpus entry words", "top_k": 5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("total = %d, results = %d", resp.Total, len(resp.Results))
	}
	if resp.Results[0].CorpusName != "acme" {
		t.Errorf("corpus = %s, want acme", resp.Results[0].CorpusName)
	}
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	srv := testServer(t)
	rec := postSearch(t, srv.Router(), `{"query": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSearch_BadBody(t *testing.T) {
	srv := testServer(t)
	rec := postSearch(t, srv.Router(), `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCorpora(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/corpora", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var corpora []struct {
		Name    string `json:"name"`
		Files   int    `json:"files"`
		Entries int    `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &corpora); err != nil {
		t.Fatal(err)
	}
	if len(corpora) != 1 || corpora[0].Name != "acme" || corpora[0].Entries != 1 {
		t.Errorf("corpora = %+v", corpora)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestReplaceStore(t *testing.T) {
	srv := testServer(t)
	srv.ReplaceStore(store.New())
	rec := postSearch(t, srv.Router(), `{"query": "anything at all"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 0 {
		t.Errorf("total = %d, want 0 after store replacement", resp.Total)
	}
}
