package service

import (
	"testing"
	"time"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

func TestBuildWebPartners(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
	}
	videos := []*model.Video{
		{
			VideoID: "v1", Title: "Concert Day 1", PublishedAt: day(10),
			ViewCount: 100, LikeCount: 10, CommentCount: 3,
			IsCollab: true, CollabPartner: model.StrPtr("BLACKPINK"),
			CollabCategory: model.StrPtr("Artist"),
		},
		{
			VideoID: "v2", Title: "Concert Day 2", PublishedAt: day(20),
			ViewCount: 300, LikeCount: 25, CommentCount: 5,
			IsCollab: true, CollabPartner: model.StrPtr("BLACKPINK"),
			CollabCategory: model.StrPtr("Artist"),
		},
		{
			VideoID: "v3", Title: "Vehicle Skins", PublishedAt: day(15),
			ViewCount: 50, LikeCount: 5, CommentCount: 1,
			IsCollab: true, CollabPartner: model.StrPtr("Lamborghini"),
			CollabCategory: model.StrPtr("Brand"),
		},
		// No partner name, excluded from the dashboard.
		{VideoID: "v4", IsCollab: true, PublishedAt: day(1)},
	}

	partners := BuildWebPartners(videos)
	if len(partners) != 2 {
		t.Fatalf("partners = %d, want 2", len(partners))
	}

	bp := partners[0]
	if bp.Name != "BLACKPINK" {
		t.Fatalf("first partner = %q, want BLACKPINK (most views)", bp.Name)
	}
	if bp.VideoCount != 2 || bp.TotalViews != 400 || bp.TotalLikes != 35 || bp.TotalComments != 8 {
		t.Errorf("rollup = %+v", bp)
	}
	if bp.FirstCollab != "2026-08-10" || bp.LastCollab != "2026-08-20" {
		t.Errorf("collab range = %s..%s, want 2026-08-10..2026-08-20", bp.FirstCollab, bp.LastCollab)
	}
	if bp.Videos[0].VideoID != "v2" {
		t.Errorf("videos not ordered by views: %v", bp.Videos)
	}
	if bp.Videos[0].URL != "https://www.youtube.com/watch?v=v2" {
		t.Errorf("url = %q", bp.Videos[0].URL)
	}
}

func TestFormatTopVideos(t *testing.T) {
	top := []model.TopVideo{
		{VideoID: "a1", Title: "First"},
		{VideoID: "b2", Title: "Second"},
	}
	if got := formatTopVideos(top); got != "a1|First; b2|Second" {
		t.Errorf("formatTopVideos = %q", got)
	}
	if got := formatTopVideos(nil); got != "" {
		t.Errorf("formatTopVideos(nil) = %q, want empty", got)
	}
}
