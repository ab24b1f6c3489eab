package classify

import (
	"context"
	"testing"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

type fakePartnerWriter struct {
	updates map[string]string
}

func (f *fakePartnerWriter) UpdatePartner(_ context.Context, videoID, partner string) error {
	if f.updates == nil {
		f.updates = make(map[string]string)
	}
	f.updates[videoID] = partner
	return nil
}

func collabVideo(id, partner string) *model.Video {
	return &model.Video{
		VideoID:       id,
		IsCollab:      true,
		CollabPartner: model.StrPtr(partner),
	}
}

func TestNormalizePartnersMergesVariants(t *testing.T) {
	rules := config.DefaultRules()
	writer := &fakePartnerWriter{}
	videos := []*model.Video{
		collabVideo("v1", "blackpink"),
		collabVideo("v2", "BLACKPINK"),
		collabVideo("v3", "New Jeans"),
		collabVideo("v4", "Mystery Corp"),
		{VideoID: "v5", IsCollab: false},
	}

	stats, err := NormalizePartners(context.Background(), videos, rules, writer)
	if err != nil {
		t.Fatalf("NormalizePartners: %v", err)
	}

	// "blackpink" and "New Jeans" fold to canonical forms; "BLACKPINK"
	// is already canonical and "Mystery Corp" matches no alias.
	if stats.NamesMerged != 2 {
		t.Errorf("NamesMerged = %d, want 2", stats.NamesMerged)
	}
	if stats.VideosUpdated != 2 {
		t.Errorf("VideosUpdated = %d, want 2", stats.VideosUpdated)
	}

	if got := writer.updates["v1"]; got != "BLACKPINK" {
		t.Errorf("v1 updated to %q, want BLACKPINK", got)
	}
	if got := writer.updates["v3"]; got != "NewJeans" {
		t.Errorf("v3 updated to %q, want NewJeans", got)
	}
	if _, ok := writer.updates["v2"]; ok {
		t.Error("v2 was updated, but its name was already canonical")
	}
	if _, ok := writer.updates["v4"]; ok {
		t.Error("v4 was updated, but its name matches no alias")
	}

	if *videos[1].CollabPartner != "BLACKPINK" {
		t.Errorf("v2 partner = %q, want untouched BLACKPINK", *videos[1].CollabPartner)
	}
	if *videos[3].CollabPartner != "Mystery Corp" {
		t.Errorf("v4 partner = %q, want untouched Mystery Corp", *videos[3].CollabPartner)
	}
}

func TestNormalizePartnersIdempotent(t *testing.T) {
	rules := config.DefaultRules()
	videos := []*model.Video{
		collabVideo("v1", "blackpink"),
		collabVideo("v2", "dragonball"),
	}

	first, err := NormalizePartners(context.Background(), videos, rules, &fakePartnerWriter{})
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if first.VideosUpdated != 2 {
		t.Errorf("first pass VideosUpdated = %d, want 2", first.VideosUpdated)
	}

	second, err := NormalizePartners(context.Background(), videos, rules, &fakePartnerWriter{})
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.NamesMerged != 0 || second.VideosUpdated != 0 {
		t.Errorf("second pass = %+v, want zero stats", second)
	}
}
