package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/gpt"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/repository"
)

// sentimentCommentSample is how many comments per video go into the
// sentiment prompt, most liked first.
const sentimentCommentSample = 50

// VideoSentiment pairs a video with its audience-reaction digest.
type VideoSentiment struct {
	VideoID   string               `json:"video_id"`
	Title     string               `json:"title"`
	Partner   string               `json:"partner,omitempty"`
	Sentiment gpt.SentimentSummary `json:"sentiment"`
}

// SentimentStats summarizes one sentiment run.
type SentimentStats struct {
	VideosAnalyzed int      `json:"videos_analyzed"`
	VideosSkipped  int      `json:"videos_skipped"`
	Errors         []string `json:"errors,omitempty"`
}

type SentimentService struct {
	classifier *gpt.Classifier
	videos     *repository.VideoRepo
	comments   *repository.CommentRepo
}

func NewSentimentService(classifier *gpt.Classifier, videos *repository.VideoRepo, comments *repository.CommentRepo) *SentimentService {
	return &SentimentService{classifier: classifier, videos: videos, comments: comments}
}

// Run analyzes comment sentiment for every collaboration video that
// has collected comments and writes the digest as a JSON artifact.
func (s *SentimentService) Run(ctx context.Context, outputPath string) (*SentimentStats, error) {
	started := time.Now()
	defer func() { metrics.ObserveStage("sentiment", time.Since(started).Seconds()) }()

	videos, err := s.videos.FindCollabsSince(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("load collab videos: %w", err)
	}

	stats := &SentimentStats{}
	var results []VideoSentiment

	log.Info().Int("videos", len(videos)).Msg("analyzing comment sentiment")

	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		texts, err := s.comments.TextsForVideo(ctx, v.VideoID, sentimentCommentSample)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: load comments: %v", v.VideoID, err))
			continue
		}
		if len(texts) == 0 {
			stats.VideosSkipped++
			continue
		}

		summary, err := s.classifier.AnalyzeSentiment(ctx, v.Title, texts)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: analyze: %v", v.VideoID, err))
			continue
		}

		entry := VideoSentiment{VideoID: v.VideoID, Title: v.Title, Sentiment: summary}
		if v.CollabPartner != nil {
			entry.Partner = *v.CollabPartner
		}
		results = append(results, entry)
		stats.VideosAnalyzed++
	}

	f, err := createFile(outputPath)
	if err != nil {
		return stats, err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		return stats, fmt.Errorf("write %s: %w", outputPath, err)
	}

	log.Info().
		Int("analyzed", stats.VideosAnalyzed).
		Int("skipped", stats.VideosSkipped).
		Str("path", outputPath).
		Msg("sentiment analysis complete")
	return stats, nil
}
