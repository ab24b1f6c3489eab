package gpt

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/pkg/hash"
)

type fakeCompleter struct {
	calls    int
	failures int // fail this many calls before succeeding
	content  string
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return openai.ChatCompletionResponse{}, errors.New("rate limited")
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func testClassifier(completer chatCompleter, cache ResponseCache) *Classifier {
	return &Classifier{
		client:      completer,
		cache:       cache,
		model:       "gpt-4o-mini",
		maxTokens:   500,
		temperature: 0.3,
		retry:       RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond},
	}
}

const blackpinkResponse = `{
	"is_collab": true,
	"partner_name": "BLACKPINK",
	"category": "Artist",
	"region": "Global",
	"one_line_summary": "In-game concert with BLACKPINK",
	"confidence": 0.95
}`

func TestClassifyCollabParsesResponse(t *testing.T) {
	completer := &fakeCompleter{content: blackpinkResponse}
	c := testClassifier(completer, NewMemoryCache())

	got, err := c.ClassifyCollab(context.Background(), "PUBG MOBILE x BLACKPINK", "In-game concert.")
	if err != nil {
		t.Fatalf("ClassifyCollab: %v", err)
	}

	if !got.IsCollab {
		t.Error("IsCollab = false, want true")
	}
	if got.PartnerName == nil || *got.PartnerName != "BLACKPINK" {
		t.Errorf("PartnerName = %v, want BLACKPINK", got.PartnerName)
	}
	if got.Category != "Artist" || got.Region != "Global" {
		t.Errorf("category/region = %q/%q, want Artist/Global", got.Category, got.Region)
	}
	if got.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", got.Confidence)
	}
}

func TestClassifyCollabCachesByContent(t *testing.T) {
	completer := &fakeCompleter{content: blackpinkResponse}
	c := testClassifier(completer, NewMemoryCache())
	ctx := context.Background()

	first, err := c.ClassifyCollab(ctx, "PUBG MOBILE x BLACKPINK", "In-game concert.")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := c.ClassifyCollab(ctx, "PUBG MOBILE x BLACKPINK", "In-game concert.")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	// Identical input must cost exactly one API call.
	if completer.calls != 1 {
		t.Errorf("api calls = %d, want 1", completer.calls)
	}
	if first != second && (first.PartnerName == nil || second.PartnerName == nil || *first.PartnerName != *second.PartnerName) {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}

	// Different title is a different cache entry.
	if _, err := c.ClassifyCollab(ctx, "PUBG MOBILE x NewJeans", "In-game concert."); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if completer.calls != 2 {
		t.Errorf("api calls = %d, want 2", completer.calls)
	}
}

func TestClassifyCollabRetriesTransientFailures(t *testing.T) {
	completer := &fakeCompleter{failures: 2, content: blackpinkResponse}
	c := testClassifier(completer, NewMemoryCache())

	got, err := c.ClassifyCollab(context.Background(), "title", "desc")
	if err != nil {
		t.Fatalf("ClassifyCollab: %v", err)
	}
	if completer.calls != 3 {
		t.Errorf("api calls = %d, want 3", completer.calls)
	}
	if !got.IsCollab {
		t.Error("IsCollab = false after retries, want true")
	}
}

func TestClassifyCollabExhaustedRetriesReturnsError(t *testing.T) {
	completer := &fakeCompleter{failures: 10}
	c := testClassifier(completer, NewMemoryCache())

	if _, err := c.ClassifyCollab(context.Background(), "title", "desc"); err == nil {
		t.Fatal("want error after exhausted retries")
	}
	if completer.calls != 3 {
		t.Errorf("api calls = %d, want 3", completer.calls)
	}
}

func TestClassifyCollabInvalidLabelsFallBack(t *testing.T) {
	completer := &fakeCompleter{content: `{
		"is_collab": true,
		"partner_name": "Someone",
		"category": "Celebrity",
		"region": "Mars",
		"one_line_summary": "x",
		"confidence": 0.7
	}`}
	c := testClassifier(completer, NewMemoryCache())

	got, err := c.ClassifyCollab(context.Background(), "title", "desc")
	if err != nil {
		t.Fatalf("ClassifyCollab: %v", err)
	}
	if got.Category != "Other" {
		t.Errorf("Category = %q, want Other", got.Category)
	}
	if got.Region != "Unknown" {
		t.Errorf("Region = %q, want Unknown", got.Region)
	}
}

func TestClassifyCollabMalformedResponseFailsAfterRetries(t *testing.T) {
	completer := &fakeCompleter{content: "sorry, I cannot help with that"}
	cache := NewMemoryCache()
	c := testClassifier(completer, cache)

	_, err := c.ClassifyCollab(context.Background(), "title", "desc")
	if err == nil {
		t.Fatal("want error for malformed response")
	}
	// A malformed answer is a failed attempt, retried like any other.
	if completer.calls != 3 {
		t.Errorf("api calls = %d, want 3", completer.calls)
	}
	// Nothing gets cached on failure.
	if cached, _ := cache.Get(context.Background(), hash.ContentKey("title", "desc")); cached != nil {
		t.Error("cache should stay empty")
	}
}

func TestClassifyCollabZeroConfidencePositiveIsMalformed(t *testing.T) {
	completer := &fakeCompleter{content: `{
		"is_collab": true,
		"partner_name": "Someone",
		"category": "Artist",
		"region": "Global",
		"one_line_summary": "x",
		"confidence": 0
	}`}
	c := testClassifier(completer, NewMemoryCache())

	if _, err := c.ClassifyCollab(context.Background(), "title", "desc"); err == nil {
		t.Fatal("want error for zero-confidence positive")
	}
	if completer.calls != 3 {
		t.Errorf("api calls = %d, want 3", completer.calls)
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	// 한 is 3 bytes; truncation counts runes, not bytes.
	s := "한글로 된 설명입니다"
	got := truncate(s, 5)
	if got != "한글로 된" {
		t.Errorf("truncate = %q, want %q", got, "한글로 된")
	}
	if truncate("short", 2000) != "short" {
		t.Error("short input must pass through unchanged")
	}
}
