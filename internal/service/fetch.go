package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/repository"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/youtube"
)

// incrementalOverlap is how far behind the newest stored video an
// incremental fetch restarts, so late metadata edits are picked up.
const incrementalOverlap = 24 * time.Hour

// FetchStats summarizes one fetch run.
type FetchStats struct {
	VideosFetched   int      `json:"videos_fetched"`
	VideosNew       int      `json:"videos_new"`
	VideosUpdated   int      `json:"videos_updated"`
	CommentsFetched int      `json:"comments_fetched"`
	VideosProcessed int      `json:"videos_processed"`
	Errors          []string `json:"errors,omitempty"`
}

type FetchService struct {
	client   *youtube.Client
	videos   *repository.VideoRepo
	comments *repository.CommentRepo
	runs     *repository.RunRepo
	cfg      config.YouTubeConfig
}

func NewFetchService(client *youtube.Client, videos *repository.VideoRepo, comments *repository.CommentRepo, runs *repository.RunRepo, cfg config.YouTubeConfig) *FetchService {
	return &FetchService{client: client, videos: videos, comments: comments, runs: runs, cfg: cfg}
}

// FetchVideos pulls channel uploads from the last days days and
// upserts their metadata. In incremental mode the cutoff moves forward
// to just before the newest stored video; refetched videos keep their
// existing classification.
func (s *FetchService) FetchVideos(ctx context.Context, days int, incremental bool) (*FetchStats, error) {
	started := time.Now()
	defer func() { metrics.ObserveStage("fetch_videos", time.Since(started).Seconds()) }()

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	if incremental {
		last, err := s.videos.LastPublishedAt(ctx)
		if err != nil {
			return nil, fmt.Errorf("last published: %w", err)
		}
		if !last.IsZero() {
			if overlap := last.Add(-incrementalOverlap); overlap.After(cutoff) {
				cutoff = overlap
			}
			log.Info().Time("cutoff", cutoff).Msg("incremental fetch")
		} else {
			log.Info().Time("cutoff", cutoff).Msg("first fetch")
		}
	} else {
		log.Info().Time("cutoff", cutoff).Msg("full fetch")
	}

	runID, err := s.runs.Create(ctx, "videos", nil)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	stats, err := s.fetchVideosSince(ctx, cutoff)
	if err != nil {
		msg := err.Error()
		if uerr := s.runs.Update(ctx, runID, model.RunFailed, nil, &msg); uerr != nil {
			log.Warn().Err(uerr).Msg("run status update failed")
		}
		return stats, err
	}

	if err := s.runs.Update(ctx, runID, model.RunCompleted, nil, nil); err != nil {
		log.Warn().Err(err).Msg("run status update failed")
	}
	log.Info().
		Int("new", stats.VideosNew).
		Int("updated", stats.VideosUpdated).
		Msg("video fetch complete")
	return stats, nil
}

func (s *FetchService) fetchVideosSince(ctx context.Context, cutoff time.Time) (*FetchStats, error) {
	stats := &FetchStats{}

	channel, err := s.client.ResolveChannel(ctx, s.cfg.ChannelHandle)
	if err != nil {
		return stats, fmt.Errorf("resolve channel %s: %w", s.cfg.ChannelHandle, err)
	}

	ids, err := s.client.PlaylistVideoIDs(ctx, channel.UploadsPlaylistID, cutoff)
	if err != nil {
		return stats, fmt.Errorf("list uploads: %w", err)
	}

	videos, err := s.client.VideoDetails(ctx, ids, channel)
	if err != nil {
		return stats, fmt.Errorf("video details: %w", err)
	}

	for _, v := range videos {
		existing, err := s.videos.FindByVideoID(ctx, v.VideoID)
		if err != nil {
			return stats, fmt.Errorf("lookup %s: %w", v.VideoID, err)
		}
		if err := s.videos.UpsertMetadata(ctx, v); err != nil {
			return stats, fmt.Errorf("upsert %s: %w", v.VideoID, err)
		}
		stats.VideosFetched++
		if existing == nil {
			stats.VideosNew++
		} else {
			stats.VideosUpdated++
		}
	}
	return stats, nil
}

// FetchComments collects comment threads for stored videos. With
// onlyCollab set, only collaboration videos are covered. Per-video
// failures are collected, not fatal.
func (s *FetchService) FetchComments(ctx context.Context, onlyCollab bool, perVideo int) (*FetchStats, error) {
	started := time.Now()
	defer func() { metrics.ObserveStage("fetch_comments", time.Since(started).Seconds()) }()

	if perVideo <= 0 {
		perVideo = s.cfg.CommentsPerVideo
	}

	var (
		videos []*model.Video
		err    error
	)
	if onlyCollab {
		videos, err = s.videos.FindCollabsSince(ctx, time.Time{})
	} else {
		videos, err = s.videos.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load videos: %w", err)
	}

	stats := &FetchStats{}
	log.Info().Int("videos", len(videos)).Bool("only_collab", onlyCollab).Msg("fetching comments")

	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		comments, err := s.client.Comments(ctx, v.VideoID, perVideo)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", v.VideoID, err))
			continue
		}
		if err := s.comments.UpsertBatch(ctx, comments); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: store: %v", v.VideoID, err))
			continue
		}
		stats.VideosProcessed++
		stats.CommentsFetched += len(comments)
	}

	log.Info().
		Int("videos", stats.VideosProcessed).
		Int("comments", stats.CommentsFetched).
		Int("errors", len(stats.Errors)).
		Msg("comment fetch complete")
	return stats, nil
}
