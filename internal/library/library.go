// Package library manages the user's imported documents, saved lookups,
// reading progress and settings, persisted through the state store.
package library

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/format"
	"github.com/dmelton/folio/internal/logging"
	"github.com/dmelton/folio/internal/store"
)

// Record is one imported document as it lives in the library. ID is derived
// from content, so re-importing the same file resolves to the same record.
type Record struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	Format     format.Tag `json:"format"`
	Paragraphs []string   `json:"paragraphs"`
	RawAsset   []byte     `json:"rawAsset,omitempty"`
	AddedAt    time.Time  `json:"addedAt"`
}

// Document reconstructs the in-memory document for a record.
func (r Record) Document() *document.Document {
	return &document.Document{
		ID:           r.ID,
		Title:        r.Title,
		Author:       r.Author,
		Paragraphs:   r.Paragraphs,
		SourceFormat: r.Format,
		RawAsset:     r.RawAsset,
	}
}

// Favorite is one saved lookup result.
type Favorite struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // "word" or "sentence"
	Content     string    `json:"content"`
	Translation string    `json:"translation"`
	AddedAt     time.Time `json:"addedAt"`
}

// Settings are the user's persisted preferences.
type Settings struct {
	FontSizePt           float64 `json:"fontSizePt,omitempty"`
	LineHeightMultiplier float64 `json:"lineHeightMultiplier,omitempty"`
	AnalyzeKey           string  `json:"analyzeKey,omitempty"`
}

// Library is the in-memory view of all persisted state. Mutations write
// through to the store immediately.
type Library struct {
	store *store.Store

	records   []Record
	favorites []Favorite
	progress  map[string]int
	settings  Settings
}

// Open loads every slot from the store. Absent or corrupt slots start
// empty.
func Open(s *store.Store) *Library {
	l := &Library{
		store:    s,
		progress: map[string]int{},
	}
	s.Load(store.SlotBooks, &l.records)
	s.Load(store.SlotFavorites, &l.favorites)
	s.Load(store.SlotProgress, &l.progress)
	s.Load(store.SlotSettings, &l.settings)
	// A slot holding literal JSON null decodes cleanly into a nil map.
	if l.progress == nil {
		l.progress = map[string]int{}
	}
	return l
}

// Fingerprint derives a stable content identity for a document.
func Fingerprint(doc *document.Document) string {
	h := sha256.New()
	h.Write([]byte(doc.Title))
	h.Write([]byte{0})
	for _, p := range doc.Paragraphs {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	if len(doc.RawAsset) > 0 {
		h.Write(doc.RawAsset)
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Add stores a document in the library and rewrites its ID to the stable
// content fingerprint. Re-adding existing content returns the existing
// record instead of duplicating it.
func (l *Library) Add(doc *document.Document) Record {
	id := Fingerprint(doc)
	doc.ID = id

	for _, r := range l.records {
		if r.ID == id {
			logging.Debugf("library: %q already present, reusing record", r.Title)
			return r
		}
	}

	rec := Record{
		ID:         id,
		Title:      doc.Title,
		Author:     doc.Author,
		Format:     doc.SourceFormat,
		Paragraphs: doc.Paragraphs,
		RawAsset:   doc.RawAsset,
		AddedAt:    time.Now(),
	}
	l.records = append([]Record{rec}, l.records...)
	l.saveRecords()
	return rec
}

// Remove deletes a record and its saved progress.
func (l *Library) Remove(id string) {
	for i, r := range l.records {
		if r.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			l.saveRecords()
			break
		}
	}
	if _, ok := l.progress[id]; ok {
		delete(l.progress, id)
		if err := l.store.Save(store.SlotProgress, l.progress); err != nil {
			logging.Warnf("library: saving progress: %v", err)
		}
	}
}

// Get returns the record with the given ID.
func (l *Library) Get(id string) (Record, bool) {
	for _, r := range l.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Records returns all records, most recently added first.
func (l *Library) Records() []Record {
	return l.records
}

// ToggleFavorite saves a lookup, or removes it when the same content is
// already saved. It reports whether the item is now a favorite.
func (l *Library) ToggleFavorite(kind, content, translation string) bool {
	for i, f := range l.favorites {
		if f.Kind == kind && f.Content == content {
			l.favorites = append(l.favorites[:i], l.favorites[i+1:]...)
			l.saveFavorites()
			return false
		}
	}
	l.favorites = append([]Favorite{{
		ID:          favoriteID(kind, content),
		Kind:        kind,
		Content:     content,
		Translation: translation,
		AddedAt:     time.Now(),
	}}, l.favorites...)
	l.saveFavorites()
	return true
}

// Favorites returns all saved lookups, most recent first.
func (l *Library) Favorites() []Favorite {
	return l.favorites
}

// Progress returns the saved progress percentage for a document, or zero.
func (l *Library) Progress(docID string) int {
	return l.progress[docID]
}

// SaveProgress records progress for a document. It satisfies the pagination
// controller's progress sink; failures are logged, never surfaced.
func (l *Library) SaveProgress(docID string, progress int) {
	l.progress[docID] = progress
	if err := l.store.Save(store.SlotProgress, l.progress); err != nil {
		logging.Warnf("library: saving progress: %v", err)
	}
}

// Settings returns the persisted preferences.
func (l *Library) Settings() Settings {
	return l.settings
}

// SaveSettings persists new preferences.
func (l *Library) SaveSettings(s Settings) {
	l.settings = s
	if err := l.store.Save(store.SlotSettings, l.settings); err != nil {
		logging.Warnf("library: saving settings: %v", err)
	}
}

func (l *Library) saveRecords() {
	if err := l.store.Save(store.SlotBooks, l.records); err != nil {
		logging.Warnf("library: saving records: %v", err)
	}
}

func (l *Library) saveFavorites() {
	if err := l.store.Save(store.SlotFavorites, l.favorites); err != nil {
		logging.Warnf("library: saving favorites: %v", err)
	}
}

func favoriteID(kind, content string) string {
	h := sha256.Sum256([]byte(kind + "\x00" + strings.TrimSpace(content)))
	return hex.EncodeToString(h[:8])
}
