package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/format"
	"github.com/dmelton/folio/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return s
}

func testDoc(title string, paragraphs ...string) *document.Document {
	return document.New(title, "author", paragraphs, format.Plain)
}

func TestAddAssignsStableID(t *testing.T) {
	l := Open(testStore(t))

	doc := testDoc("Moby Dick", "Call me Ishmael.")
	rec := l.Add(doc)
	if rec.ID == "" {
		t.Fatal("record has empty ID")
	}
	if doc.ID != rec.ID {
		t.Errorf("document ID %q not rewritten to record ID %q", doc.ID, rec.ID)
	}

	// Same content imported again resolves to the same record.
	again := l.Add(testDoc("Moby Dick", "Call me Ishmael."))
	if again.ID != rec.ID {
		t.Errorf("re-import produced new ID %q, want %q", again.ID, rec.ID)
	}
	if got := len(l.Records()); got != 1 {
		t.Errorf("records = %d, want 1", got)
	}
}

func TestDifferentContentDifferentID(t *testing.T) {
	l := Open(testStore(t))
	a := l.Add(testDoc("Book", "first text"))
	b := l.Add(testDoc("Book", "second text"))
	if a.ID == b.ID {
		t.Error("different content produced the same ID")
	}
}

func TestLibraryPersistsAcrossOpens(t *testing.T) {
	s := testStore(t)

	first := Open(s)
	rec := first.Add(testDoc("Walden", "I went to the woods."))
	first.SaveProgress(rec.ID, 40)

	second := Open(s)
	got, ok := second.Get(rec.ID)
	if !ok {
		t.Fatal("record not found after reopen")
	}
	if got.Title != "Walden" {
		t.Errorf("Title = %q", got.Title)
	}
	if p := second.Progress(rec.ID); p != 40 {
		t.Errorf("Progress = %d, want 40", p)
	}
}

func TestNullProgressSlotStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "progress.json"), []byte("null"), 0644); err != nil {
		t.Fatalf("writing progress slot: %v", err)
	}
	s, err := store.Open(dir)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	l := Open(s)
	if p := l.Progress("doc-1"); p != 0 {
		t.Errorf("Progress = %d, want 0", p)
	}
	l.SaveProgress("doc-1", 42)
	if p := l.Progress("doc-1"); p != 42 {
		t.Errorf("Progress = %d, want 42", p)
	}
}

func TestRecordDocumentRoundTrip(t *testing.T) {
	l := Open(testStore(t))
	rec := l.Add(testDoc("Title", "one", "two"))

	doc := rec.Document()
	if doc.ID != rec.ID || doc.Title != "Title" {
		t.Errorf("Document = %+v", doc)
	}
	if len(doc.Paragraphs) != 2 {
		t.Errorf("Paragraphs = %v", doc.Paragraphs)
	}
	if doc.SourceFormat != format.Plain {
		t.Errorf("SourceFormat = %v", doc.SourceFormat)
	}
}

func TestRemoveDropsRecordAndProgress(t *testing.T) {
	l := Open(testStore(t))
	rec := l.Add(testDoc("Gone", "soon"))
	l.SaveProgress(rec.ID, 70)

	l.Remove(rec.ID)
	if _, ok := l.Get(rec.ID); ok {
		t.Error("record still present after Remove")
	}
	if p := l.Progress(rec.ID); p != 0 {
		t.Errorf("Progress = %d, want 0", p)
	}
}

func TestToggleFavorite(t *testing.T) {
	l := Open(testStore(t))

	if !l.ToggleFavorite("word", "serendipity", "机缘巧合") {
		t.Error("first toggle should save")
	}
	if got := len(l.Favorites()); got != 1 {
		t.Fatalf("favorites = %d, want 1", got)
	}
	if !l.ToggleFavorite("sentence", "The die is cast.", "骰子已掷") {
		t.Error("different content should save")
	}
	// Same kind and content removes.
	if l.ToggleFavorite("word", "serendipity", "机缘巧合") {
		t.Error("second toggle should remove")
	}
	favs := l.Favorites()
	if len(favs) != 1 || favs[0].Kind != "sentence" {
		t.Errorf("favorites = %+v", favs)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := testStore(t)

	l := Open(s)
	l.SaveSettings(Settings{FontSizePt: 22, AnalyzeKey: "k"})

	reopened := Open(s)
	got := reopened.Settings()
	if got.FontSizePt != 22 || got.AnalyzeKey != "k" {
		t.Errorf("Settings = %+v", got)
	}
}

func TestRawAssetSurvivesStorage(t *testing.T) {
	s := testStore(t)

	l := Open(s)
	doc := testDoc("Photo: page.jpg", "transcribed text")
	doc.RawAsset = []byte{0xff, 0xd8, 0xff, 0xe0}
	rec := l.Add(doc)

	reopened := Open(s)
	got, ok := reopened.Get(rec.ID)
	if !ok {
		t.Fatal("record not found")
	}
	if len(got.RawAsset) != 4 || got.RawAsset[0] != 0xff {
		t.Errorf("RawAsset = %v", got.RawAsset)
	}
}
