// Package youtube is a minimal YouTube Data API v3 client covering the
// endpoints the pipeline needs: channel resolution, uploads playlist
// pagination, video details, and comment threads. Requests are
// rate-limited and retried on transient failures.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

const (
	apiBase = "https://www.googleapis.com/youtube/v3"

	maxRetries     = 5
	baseRetryDelay = 2 * time.Second
	maxRetryDelay  = 60 * time.Second

	// detailsBatchSize is the API's hard cap on ids per videos.list call.
	detailsBatchSize = 50
)

type Client struct {
	http             *http.Client
	limiter          *rate.Limiter
	baseURL          string
	apiKey           string
	maxResults       int
	commentsPerVideo int
}

func NewClient(cfg config.YouTubeConfig) *Client {
	return &Client{
		http:             &http.Client{Timeout: 30 * time.Second},
		limiter:          rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL:          apiBase,
		apiKey:           cfg.APIKey,
		maxResults:       cfg.MaxResultsPerPage,
		commentsPerVideo: cfg.CommentsPerVideo,
	}
}

// ResolveChannel resolves a handle ("@PUBGMOBILE") to its channel ID,
// title, and uploads playlist in one call.
func (c *Client) ResolveChannel(ctx context.Context, handle string) (*Channel, error) {
	params := url.Values{
		"part":      {"id,snippet,contentDetails"},
		"forHandle": {strings.TrimPrefix(handle, "@")},
	}

	var resp channelListResponse
	if err := c.get(ctx, "channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel not found: %s", handle)
	}

	item := resp.Items[0]
	return &Channel{
		ID:                item.ID,
		Title:             item.Snippet.Title,
		UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

// PlaylistVideoIDs walks the uploads playlist newest-first and returns
// every video ID published at or after the cutoff. The walk stops at
// the first item older than the cutoff; uploads playlists are in
// reverse chronological order.
func (c *Client) PlaylistVideoIDs(ctx context.Context, playlistID string, publishedAfter time.Time) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		params := url.Values{
			"part":       {"contentDetails"},
			"playlistId": {playlistID},
			"maxResults": {strconv.Itoa(c.maxResults)},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp playlistItemsResponse
		if err := c.get(ctx, "playlistItems", params, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			publishedAt, err := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt)
			if err != nil {
				// Private or processing videos carry no timestamp.
				continue
			}
			if publishedAt.Before(publishedAfter) {
				return ids, nil
			}
			ids = append(ids, item.ContentDetails.VideoID)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return ids, nil
		}
	}
}

// VideoDetails fetches full metadata for the given IDs in batches.
func (c *Client) VideoDetails(ctx context.Context, ids []string, channel *Channel) ([]*model.Video, error) {
	var videos []*model.Video

	for start := 0; start < len(ids); start += detailsBatchSize {
		end := start + detailsBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		params := url.Values{
			"part": {"snippet,statistics,contentDetails"},
			"id":   {strings.Join(ids[start:end], ",")},
		}

		var resp videoListResponse
		if err := c.get(ctx, "videos", params, &resp); err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		for _, item := range resp.Items {
			publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)

			v := &model.Video{
				VideoID:       item.ID,
				Title:         item.Snippet.Title,
				Description:   item.Snippet.Description,
				PublishedAt:   publishedAt,
				ViewCount:     parseCount(item.Statistics.ViewCount),
				LikeCount:     parseCount(item.Statistics.LikeCount),
				CommentCount:  parseCount(item.Statistics.CommentCount),
				LastFetchedAt: now,
			}
			if item.ContentDetails.Duration != "" {
				v.Duration = model.StrPtr(item.ContentDetails.Duration)
			}
			if channel != nil {
				v.ChannelID = model.StrPtr(channel.ID)
				v.ChannelName = model.StrPtr(channel.Title)
			} else {
				if item.Snippet.ChannelID != "" {
					v.ChannelID = model.StrPtr(item.Snippet.ChannelID)
				}
				if item.Snippet.ChannelTitle != "" {
					v.ChannelName = model.StrPtr(item.Snippet.ChannelTitle)
				}
			}
			videos = append(videos, v)
		}
	}

	return videos, nil
}

// Comments fetches up to max top-level comment threads for a video,
// replies included. A 403 means comments are disabled; that returns an
// empty slice rather than an error.
func (c *Client) Comments(ctx context.Context, videoID string, max int) ([]*model.Comment, error) {
	if max <= 0 {
		max = c.commentsPerVideo
	}

	var comments []*model.Comment
	topLevel := 0
	pageToken := ""

	for topLevel < max {
		pageSize := max - topLevel
		if pageSize > 100 {
			pageSize = 100
		}

		params := url.Values{
			"part":       {"snippet,replies"},
			"videoId":    {videoID},
			"maxResults": {strconv.Itoa(pageSize)},
			"order":      {"relevance"},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp commentThreadsResponse
		if err := c.get(ctx, "commentThreads", params, &resp); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
				log.Debug().Str("video_id", videoID).Msg("comments disabled")
				return comments, nil
			}
			return nil, err
		}

		for _, item := range resp.Items {
			top := item.Snippet.TopLevelComment
			comments = append(comments, buildComment(top.ID, videoID, top.Snippet, false))
			topLevel++

			for _, reply := range item.Replies.Comments {
				comments = append(comments, buildComment(reply.ID, videoID, reply.Snippet, true))
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return comments, nil
}

func buildComment(id, videoID string, s commentSnippet, isReply bool) *model.Comment {
	comment := &model.Comment{
		CommentID: id,
		VideoID:   videoID,
		LikeCount: s.LikeCount,
		IsReply:   isReply,
	}
	if s.AuthorDisplayName != "" {
		comment.AuthorName = model.StrPtr(s.AuthorDisplayName)
	}
	if s.AuthorChannelID.Value != "" {
		comment.AuthorChannelID = model.StrPtr(s.AuthorChannelID.Value)
	}
	if s.TextOriginal != "" {
		comment.TextOriginal = model.StrPtr(s.TextOriginal)
	}
	if s.TextDisplay != "" {
		comment.TextDisplay = model.StrPtr(s.TextDisplay)
	}
	if t, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
		comment.PublishedAt = &t
	}
	if isReply && s.ParentID != "" {
		comment.ParentID = model.StrPtr(s.ParentID)
	}
	return comment
}

// get performs one rate-limited, retried API call and decodes the JSON
// body into out. 4xx responses other than 429 are not retried.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	delay := baseRetryDelay
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		metrics.IncYouTubeRequest()

		lastErr = c.doOnce(ctx, reqURL, out)
		if lastErr == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && !retryableStatus(apiErr.StatusCode) {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}

		log.Warn().Err(lastErr).Str("endpoint", endpoint).Int("attempt", attempt).Msg("youtube request failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed errorResponse
		if json.Unmarshal(body, &parsed) == nil {
			apiErr.Message = parsed.Error.Message
		}
		return apiErr
	}

	return json.Unmarshal(body, out)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
