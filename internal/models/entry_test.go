package models

import "testing"

func TestNewTextEntry_DeterministicID(t *testing.T) {
	a := NewTextEntry("the quick brown fox", 1, []float32{1, 0})
	b := NewTextEntry("the quick brown fox", 7, []float32{0, 1})
	if a.ID != b.ID {
		t.Errorf("same content produced different IDs: %s vs %s", a.ID, b.ID)
	}

	c := NewTextEntry("a different text", 1, []float32{1, 0})
	if a.ID == c.ID {
		t.Error("different content produced equal IDs")
	}
}

func TestContentID_Stable(t *testing.T) {
	// UUIDv5 over the DNS namespace; must not change between runs or versions.
	const want = "9342d47a-1bab-5709-9869-c840b2eac501"
	if got := ContentID("hello"); got != want {
		t.Errorf("ContentID(\"hello\") = %s, want %s", got, want)
	}
}

func TestCorpusEntry_Entries(t *testing.T) {
	corpus := CorpusEntry{
		Name: "acme",
		Records: []FileRecord{
			{Source: "a", Entries: []TextEntry{{Content: "one"}, {Content: "two"}}},
			{Source: "b", Entries: []TextEntry{{Content: "three"}}},
		},
	}
	entries := corpus.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"one", "two", "three"}
	for i, w := range want {
		if entries[i].Content != w {
			t.Errorf("entries[%d].Content = %q, want %q", i, entries[i].Content, w)
		}
	}
}
