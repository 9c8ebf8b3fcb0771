package analyze

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// completionsServer answers like a chat-completions endpoint, placing the
// given analysis object in the first choice.
func completionsServer(t *testing.T, analysis any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %q, want json_object", req.ResponseFormat.Type)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		content, err := json.Marshal(analysis)
		if err != nil {
			t.Fatalf("marshaling analysis: %v", err)
		}
		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: string(content)}})
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestWordLookup(t *testing.T) {
	srv := completionsServer(t, WordAnalysis{
		Word:           "serendipity",
		PartOfSpeech:   "noun",
		Meaning:        "the occurrence of fortunate discoveries by accident",
		ChineseMeaning: "机缘巧合",
		Examples:       []string{"It was pure serendipity."},
		Synonyms:       []string{"luck", "chance"},
	})
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	got, err := c.Word(context.Background(), "serendipity")
	if err != nil {
		t.Fatalf("Word: %v", err)
	}
	if got.Word != "serendipity" || got.PartOfSpeech != "noun" {
		t.Errorf("unexpected analysis: %+v", got)
	}
	if len(got.Examples) != 1 {
		t.Errorf("Examples = %v", got.Examples)
	}
}

func TestSentenceLookup(t *testing.T) {
	srv := completionsServer(t, SentenceAnalysis{
		Original:    "The die is cast.",
		Translation: "骰子已经掷下。",
		Structure: []StructurePart{
			{Part: "The die", Explanation: "subject"},
			{Part: "is cast", Explanation: "passive predicate"},
		},
		GrammarPoints: []string{"passive voice"},
		KeyVocabulary: []VocabEntry{{Word: "die", Meaning: "singular of dice"}},
	})
	defer srv.Close()

	c := NewClient(srv.URL, "")
	got, err := c.Sentence(context.Background(), "The die is cast.")
	if err != nil {
		t.Fatalf("Sentence: %v", err)
	}
	if got.Original != "The die is cast." {
		t.Errorf("Original = %q", got.Original)
	}
	if len(got.Structure) != 2 {
		t.Errorf("Structure = %+v", got.Structure)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Content: `{"word":"x"}`}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	if _, err := c.Word(context.Background(), "x"); err != nil {
		t.Fatalf("Word: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
}

func TestServiceErrorMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"message": "insufficient balance"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.Word(context.Background(), "cat")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "insufficient balance") {
		t.Errorf("error = %v, want service message", err)
	}
}

func TestServiceErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.Sentence(context.Background(), "a b c")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %v, want status fallback", err)
	}
}

func TestMalformedAnalysisPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Content: "this is not JSON"}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	if _, err := c.Word(context.Background(), "cat"); err == nil {
		t.Fatal("expected error for non-JSON analysis payload")
	}
}

func TestContextCancellation(t *testing.T) {
	srv := completionsServer(t, WordAnalysis{Word: "x"})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "k")
	if _, err := c.Word(ctx, "x"); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestDedupeSources(t *testing.T) {
	in := []Source{
		{Title: "first", URL: "https://a.example"},
		{Title: "second", URL: "https://b.example"},
		{Title: "dup of first", URL: "https://a.example"},
	}
	got := dedupeSources(in)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "first" || got[1].Title != "second" {
		t.Errorf("order not preserved: %+v", got)
	}
}
