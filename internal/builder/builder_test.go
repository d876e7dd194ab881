package builder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/shirabe/internal/embedding"
	"github.com/hyperjump/shirabe/internal/extract"
	"github.com/hyperjump/shirabe/internal/store"
)

// fakeDocument serves pre-set pages and blocks.
type fakeDocument struct {
	pages  []string   // page text, index 0 = page 1
	blocks [][]string // blocks per page
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) PageText(page int) (string, error) {
	return d.pages[page-1], nil
}

func (d *fakeDocument) Blocks(page int) ([]string, error) {
	if d.blocks == nil {
		return nil, nil
	}
	return d.blocks[page-1], nil
}

func (d *fakeDocument) Close() error { return nil }

// fakeOpener maps paths to documents; unknown paths fail to open.
type fakeOpener struct {
	docs map[string]*fakeDocument
}

func (o *fakeOpener) Open(path string) (extract.Document, error) {
	doc, ok := o.docs[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", extract.ErrOpen, path)
	}
	return doc, nil
}

// touch creates an empty file and returns its path.
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("placeholder"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuild_PageResolution(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "report.pdf")
	opener := &fakeOpener{docs: map[string]*fakeDocument{
		"report.pdf": {pages: []string{"First page text.", "", "Third page text."}},
	}}
	opts := DefaultOptions()
	opts.Resolution = ResolutionPage
	b, err := New(opener, embedding.NewHashEncoder(8), opts)
	if err != nil {
		t.Fatal(err)
	}

	s, err := b.Build(context.Background(), []CorpusFiles{{Name: "acme", Paths: []string{path}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Corpora) != 1 || s.Corpora[0].Name != "acme" {
		t.Fatalf("corpora = %+v", s.CorpusNames())
	}
	records := s.Corpora[0].Records
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Source != "report" {
		t.Errorf("source = %q, want %q (extension stripped)", records[0].Source, "report")
	}
	entries := records[0].Entries
	// Blank page 2 is discarded.
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Page != 1 || entries[1].Page != 3 {
		t.Errorf("pages = %d, %d; want 1, 3", entries[0].Page, entries[1].Page)
	}
	for _, e := range entries {
		if e.Content == "" || e.ID == "" || len(e.Embedding) != 8 {
			t.Errorf("incomplete entry: %+v", e)
		}
	}
}

func TestBuild_BlockResolution(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "deck.pdf")
	opener := &fakeOpener{docs: map[string]*fakeDocument{
		"deck.pdf": {
			pages:  []string{"unused", "unused"},
			blocks: [][]string{{"Block one.", "  ", "Block two."}, {"Block three."}},
		},
	}}
	b, err := New(opener, embedding.NewHashEncoder(8), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	s, err := b.Build(context.Background(), []CorpusFiles{{Name: "acme", Paths: []string{path}}})
	if err != nil {
		t.Fatal(err)
	}
	entries := s.Corpora[0].Records[0].Entries
	// Whitespace-only block discarded; 2 blocks from page 1, 1 from page 2.
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantPages := []int{1, 1, 2}
	for i, e := range entries {
		if e.Page != wantPages[i] {
			t.Errorf("entries[%d].Page = %d, want %d", i, e.Page, wantPages[i])
		}
	}
}

func TestBuild_SkipsMissingFile(t *testing.T) {
	dir := t.TempDir()
	valid := touch(t, dir, "present.pdf")
	missing := filepath.Join(dir, "absent.pdf")
	opener := &fakeOpener{docs: map[string]*fakeDocument{
		"present.pdf": {pages: []string{"Some page content here."}},
	}}
	opts := DefaultOptions()
	opts.Resolution = ResolutionPage
	b, _ := New(opener, embedding.NewHashEncoder(8), opts)

	s, err := b.Build(context.Background(), []CorpusFiles{{Name: "acme", Paths: []string{valid, missing}}})
	if err != nil {
		t.Fatal(err)
	}
	records := s.Corpora[0].Records
	if len(records) != 1 {
		t.Fatalf("expected 1 record (missing file skipped), got %d", len(records))
	}
	if records[0].Source != "present" {
		t.Errorf("source = %q, want present", records[0].Source)
	}
}

func TestBuild_SkipsUnopenableFile(t *testing.T) {
	dir := t.TempDir()
	corrupt := touch(t, dir, "corrupt.pdf")
	opener := &fakeOpener{docs: map[string]*fakeDocument{}}
	b, _ := New(opener, embedding.NewHashEncoder(8), DefaultOptions())

	s, err := b.Build(context.Background(), []CorpusFiles{{Name: "acme", Paths: []string{corrupt}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Corpora[0].Records) != 0 {
		t.Errorf("expected no records for unopenable file, got %d", len(s.Corpora[0].Records))
	}
}

// failingEncoder fails on the poisoned text and succeeds otherwise.
type failingEncoder struct {
	inner  embedding.Encoder
	poison string
}

func (e *failingEncoder) Encode(ctx context.Context, text string, normalize bool) ([]float32, error) {
	if text == e.poison {
		return nil, fmt.Errorf("%w: out of memory", embedding.ErrEncoding)
	}
	return e.inner.Encode(ctx, text, normalize)
}

func (e *failingEncoder) Dimensions() int { return e.inner.Dimensions() }
func (e *failingEncoder) Close() error    { return e.inner.Close() }

func TestBuild_DropsFailingUnit(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "doc.pdf")
	opener := &fakeOpener{docs: map[string]*fakeDocument{
		"doc.pdf": {pages: []string{"good text", "bad text", "more good text"}},
	}}
	enc := &failingEncoder{inner: embedding.NewHashEncoder(8), poison: "bad text"}
	opts := DefaultOptions()
	opts.Resolution = ResolutionPage
	b, _ := New(opener, enc, opts)

	s, err := b.Build(context.Background(), []CorpusFiles{{Name: "acme", Paths: []string{path}}})
	if err != nil {
		t.Fatal(err)
	}
	entries := s.Corpora[0].Records[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries (failing unit dropped), got %d", len(entries))
	}
	if entries[0].Page != 1 || entries[1].Page != 3 {
		t.Errorf("pages = %d, %d; want 1, 3", entries[0].Page, entries[1].Page)
	}
}

func TestBuild_InvalidResolution(t *testing.T) {
	_, err := New(&fakeOpener{}, embedding.NewHashEncoder(8), Options{Resolution: "word"})
	if err == nil {
		t.Fatal("expected error for invalid resolution")
	}
}

func TestBuild_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, _ := New(&fakeOpener{}, embedding.NewHashEncoder(8), DefaultOptions())
	s, err := b.Build(ctx, []CorpusFiles{{Name: "acme"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if s == nil {
		t.Error("partial store should still be returned")
	}
}

func TestBuild_EndToEndSearch(t *testing.T) {
	const text = "Hello World. This is enough words to pass filter. " +
		"Padding the sentence with further words so the default length filter passes cleanly today."
	dir := t.TempDir()
	path := touch(t, dir, "single.pdf")
	opener := &fakeOpener{docs: map[string]*fakeDocument{
		"single.pdf": {pages: []string{text}},
	}}
	enc := embedding.NewHashEncoder(64)
	opts := DefaultOptions()
	opts.Resolution = ResolutionPage
	b, _ := New(opener, enc, opts)

	s, err := b.Build(context.Background(), []CorpusFiles{{Name: "acme", Paths: []string{path}}})
	if err != nil {
		t.Fatal(err)
	}
	if s.Size() != 1 {
		t.Fatalf("store size = %d, want 1", s.Size())
	}

	// The stored content is the normalized text; querying with it must return
	// the entry itself with self-similarity 1 (unit-normalized embeddings).
	stored := s.Corpora[0].Records[0].Entries[0]
	results, err := s.Search(context.Background(), stored.Content, enc, 1, store.DefaultMinLength)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Entry.ID != stored.ID {
		t.Errorf("result ID = %s, want %s", results[0].Entry.ID, stored.ID)
	}
	if math.Abs(results[0].Score-1.0) > 1e-5 {
		t.Errorf("self-similarity = %f, want ~1.0", results[0].Score)
	}
	if results[0].Entry.Page != 1 {
		t.Errorf("page = %d, want 1", results[0].Entry.Page)
	}
}
