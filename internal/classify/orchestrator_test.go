package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

type fakeStore struct {
	saved   []*model.Video
	failFor map[string]bool
}

func (f *fakeStore) SaveClassification(_ context.Context, v *model.Video) error {
	if f.failFor[v.VideoID] {
		return errors.New("save failed")
	}
	f.saved = append(f.saved, v)
	return nil
}

type fakeAI struct {
	fn    func(title, description string) (model.Classification, error)
	calls int
}

func (f *fakeAI) ClassifyCollab(_ context.Context, title, description string) (model.Classification, error) {
	f.calls++
	return f.fn(title, description)
}

func testVideos() []*model.Video {
	return []*model.Video{
		{VideoID: "vid-neg", Title: "Version 3.9 Patch Notes"},
		{VideoID: "vid-pos", Title: "PUBG MOBILE x BLACKPINK Concert Event"},
		{VideoID: "vid-amb", Title: "Something Special Coming Soon!!"},
	}
}

func newTestOrchestrator(store ClassificationWriter, ai AIClassifier) *Orchestrator {
	rules := config.DefaultRules()
	return NewOrchestrator(NewEngine(rules), store, ai, rules.GPTThreshold)
}

func TestRunWithoutAIClassifier(t *testing.T) {
	store := &fakeStore{}
	videos := testVideos()

	stats, err := newTestOrchestrator(store, nil).Run(context.Background(), videos)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.TotalProcessed != 3 {
		t.Errorf("TotalProcessed = %d, want 3", stats.TotalProcessed)
	}
	if stats.RuleClassified != 3 {
		t.Errorf("RuleClassified = %d, want 3", stats.RuleClassified)
	}
	if stats.GPTClassified != 0 {
		t.Errorf("GPTClassified = %d, want 0", stats.GPTClassified)
	}
	if stats.CollabsFound != 2 {
		t.Errorf("CollabsFound = %d, want 2", stats.CollabsFound)
	}
	if stats.NonCollabs != 1 {
		t.Errorf("NonCollabs = %d, want 1", stats.NonCollabs)
	}

	for _, v := range videos {
		if !v.Classified() {
			t.Errorf("%s left unclassified", v.VideoID)
		}
	}

	neg, pos, amb := videos[0], videos[1], videos[2]

	if neg.IsCollab || neg.Method != model.MethodRule || neg.CollabConfidence != ConfidenceNegative {
		t.Errorf("negative: got collab=%v method=%q conf=%v, want false/rule/%v",
			neg.IsCollab, neg.Method, neg.CollabConfidence, ConfidenceNegative)
	}

	if !pos.IsCollab || pos.Method != model.MethodRule || pos.CollabConfidence != ConfidenceResolved {
		t.Errorf("resolved: got collab=%v method=%q conf=%v, want true/rule/%v",
			pos.IsCollab, pos.Method, pos.CollabConfidence, ConfidenceResolved)
	}
	if pos.CollabPartner == nil || *pos.CollabPartner != "BLACKPINK" {
		t.Errorf("resolved partner = %v, want BLACKPINK", pos.CollabPartner)
	}

	if !amb.IsCollab || amb.Method != model.MethodRuleLowConf || amb.CollabConfidence != ConfidenceFallback {
		t.Errorf("ambiguous: got collab=%v method=%q conf=%v, want true/rule_low_conf/%v",
			amb.IsCollab, amb.Method, amb.CollabConfidence, ConfidenceFallback)
	}
}

func TestRunEscalatesToAIClassifier(t *testing.T) {
	store := &fakeStore{}
	ai := &fakeAI{fn: func(title, description string) (model.Classification, error) {
		return model.Classification{
			IsCollab:    true,
			PartnerName: model.StrPtr("NewJeans"),
			Category:    "Artist",
			Region:      "KR",
			Summary:     "Teaser for a NewJeans collaboration",
			Confidence:  0.92,
		}, nil
	}}
	videos := testVideos()

	stats, err := newTestOrchestrator(store, ai).Run(context.Background(), videos)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Only the ambiguous positive escalates; the confident results never
	// reach the AI classifier.
	if ai.calls != 1 {
		t.Errorf("ai calls = %d, want 1", ai.calls)
	}
	if stats.GPTClassified != 1 {
		t.Errorf("GPTClassified = %d, want 1", stats.GPTClassified)
	}
	if stats.RuleClassified != 2 {
		t.Errorf("RuleClassified = %d, want 2", stats.RuleClassified)
	}

	amb := videos[2]
	if amb.Method != model.MethodGPT {
		t.Errorf("Method = %q, want gpt", amb.Method)
	}
	if amb.CollabPartner == nil || *amb.CollabPartner != "NewJeans" {
		t.Errorf("partner = %v, want NewJeans", amb.CollabPartner)
	}
	if amb.CollabConfidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92", amb.CollabConfidence)
	}
}

func TestRunAIFailureFallsBack(t *testing.T) {
	store := &fakeStore{}
	ai := &fakeAI{fn: func(string, string) (model.Classification, error) {
		return model.Classification{}, errors.New("upstream unavailable")
	}}
	videos := testVideos()

	stats, err := newTestOrchestrator(store, ai).Run(context.Background(), videos)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(stats.Errors) != 1 {
		t.Fatalf("Errors = %v, want one entry", stats.Errors)
	}

	amb := videos[2]
	if amb.Method != model.MethodRuleFallback {
		t.Errorf("Method = %q, want rule_fallback", amb.Method)
	}
	if !amb.IsCollab {
		t.Error("IsCollab = false, want true on fallback")
	}
	if amb.CollabConfidence != ConfidenceFallback {
		t.Errorf("confidence = %v, want %v", amb.CollabConfidence, ConfidenceFallback)
	}
	if stats.CollabsFound != 2 {
		t.Errorf("CollabsFound = %d, want 2", stats.CollabsFound)
	}
}

func TestRunRecordsPersistenceErrors(t *testing.T) {
	store := &fakeStore{failFor: map[string]bool{"vid-pos": true}}
	videos := testVideos()

	stats, err := newTestOrchestrator(store, nil).Run(context.Background(), videos)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(stats.Errors) != 1 {
		t.Fatalf("Errors = %v, want one entry", stats.Errors)
	}
	if stats.RuleClassified != 2 {
		t.Errorf("RuleClassified = %d, want 2", stats.RuleClassified)
	}
	// The other videos still went through.
	if len(store.saved) != 2 {
		t.Errorf("saved = %d videos, want 2", len(store.saved))
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestOrchestrator(&fakeStore{}, nil).Run(ctx, testVideos())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
