package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Client{
		http:             server.Client(),
		limiter:          rate.NewLimiter(rate.Inf, 1),
		baseURL:          server.URL,
		apiKey:           "test-key",
		maxResults:       50,
		commentsPerVideo: 200,
	}
}

func TestResolveChannel(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels" {
			t.Errorf("path = %q, want /channels", r.URL.Path)
		}
		if got := r.URL.Query().Get("forHandle"); got != "PUBGMOBILE" {
			t.Errorf("forHandle = %q, want PUBGMOBILE (@ stripped)", got)
		}
		w.Write([]byte(`{
			"items": [{
				"id": "UC24",
				"snippet": {"title": "PUBG MOBILE"},
				"contentDetails": {"relatedPlaylists": {"uploads": "UU24"}}
			}]
		}`))
	})

	ch, err := c.ResolveChannel(context.Background(), "@PUBGMOBILE")
	if err != nil {
		t.Fatalf("ResolveChannel: %v", err)
	}
	if ch.ID != "UC24" || ch.Title != "PUBG MOBILE" || ch.UploadsPlaylistID != "UU24" {
		t.Errorf("channel = %+v", ch)
	}
}

func TestPlaylistVideoIDsStopsAtCutoff(t *testing.T) {
	// Uploads playlists are newest-first, so the walk ends at the first
	// item older than the cutoff even when more pages exist.
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"nextPageToken": "page2",
			"items": [
				{"contentDetails": {"videoId": "new1", "videoPublishedAt": "2026-08-20T00:00:00Z"}},
				{"contentDetails": {"videoId": "new2", "videoPublishedAt": "2026-08-10T00:00:00Z"}},
				{"contentDetails": {"videoId": "old1", "videoPublishedAt": "2026-07-01T00:00:00Z"}}
			]
		}`))
	})

	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ids, err := c.PlaylistVideoIDs(context.Background(), "UU24", cutoff)
	if err != nil {
		t.Fatalf("PlaylistVideoIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "new1" || ids[1] != "new2" {
		t.Errorf("ids = %v, want [new1 new2]", ids)
	}
}

func TestVideoDetailsParsesCounts(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"items": [{
				"id": "vid1",
				"snippet": {
					"title": "PUBG MOBILE x BLACKPINK",
					"description": "Concert",
					"publishedAt": "2026-08-15T12:00:00Z",
					"channelId": "UC24",
					"channelTitle": "PUBG MOBILE"
				},
				"statistics": {"viewCount": "1200", "likeCount": "300", "commentCount": "45"},
				"contentDetails": {"duration": "PT3M20S"}
			}]
		}`))
	})

	videos, err := c.VideoDetails(context.Background(), []string{"vid1"}, nil)
	if err != nil {
		t.Fatalf("VideoDetails: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("got %d videos, want 1", len(videos))
	}

	v := videos[0]
	if v.ViewCount != 1200 || v.LikeCount != 300 || v.CommentCount != 45 {
		t.Errorf("counts = %d/%d/%d, want 1200/300/45", v.ViewCount, v.LikeCount, v.CommentCount)
	}
	if v.Duration == nil || *v.Duration != "PT3M20S" {
		t.Errorf("duration = %v, want PT3M20S", v.Duration)
	}
	if v.ChannelName == nil || *v.ChannelName != "PUBG MOBILE" {
		t.Errorf("channel name = %v", v.ChannelName)
	}
}

func TestCommentsDisabledReturnsEmpty(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "commentsDisabled"}}`))
	})

	comments, err := c.Comments(context.Background(), "vid1", 10)
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("got %d comments, want 0", len(comments))
	}
}

func TestCommentsIncludesReplies(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"items": [{
				"snippet": {
					"topLevelComment": {
						"id": "c1",
						"snippet": {
							"authorDisplayName": "fan",
							"textOriginal": "amazing collab",
							"publishedAt": "2026-08-15T12:00:00Z",
							"likeCount": 10
						}
					}
				},
				"replies": {
					"comments": [{
						"id": "c1.r1",
						"snippet": {"textOriginal": "agreed", "parentId": "c1", "likeCount": 2}
					}]
				}
			}]
		}`))
	})

	comments, err := c.Comments(context.Background(), "vid1", 10)
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].IsReply {
		t.Error("first comment marked as reply")
	}
	if !comments[1].IsReply || comments[1].ParentID == nil || *comments[1].ParentID != "c1" {
		t.Errorf("reply = %+v, want reply of c1", comments[1])
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "invalid"}}`))
	})

	var out channelListResponse
	err := c.get(context.Background(), "channels", map[string][]string{}, &out)
	if err == nil {
		t.Fatal("want error for 400 response")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls)
	}
}
