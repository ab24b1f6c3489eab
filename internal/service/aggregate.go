// Package service wires the pipeline stages: fetching, classification,
// aggregation, export, upload, and sentiment. Each stage is a thin
// method over pure computation functions and the repositories.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/repository"
)

// topVideoSample is how many videos each partner aggregate carries.
const topVideoSample = 3

// AggregateStats summarizes one aggregation run.
type AggregateStats struct {
	PartnersProcessed int      `json:"partners_processed"`
	TotalVideos       int      `json:"total_videos"`
	TotalViews        int64    `json:"total_views"`
	Errors            []string `json:"errors,omitempty"`
}

type AggregateService struct {
	videos   *repository.VideoRepo
	comments *repository.CommentRepo
	aggs     *repository.AggregateRepo
}

func NewAggregateService(videos *repository.VideoRepo, comments *repository.CommentRepo, aggs *repository.AggregateRepo) *AggregateService {
	return &AggregateService{videos: videos, comments: comments, aggs: aggs}
}

// Run recomputes partner aggregates over collaboration videos of the
// last days days. Per-partner failures are collected, not fatal.
func (s *AggregateService) Run(ctx context.Context, days int) (*AggregateStats, error) {
	started := time.Now()
	defer func() { metrics.ObserveStage("aggregate", time.Since(started).Seconds()) }()

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	videos, err := s.videos.FindCollabsSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("load collab videos: %w", err)
	}

	stats := &AggregateStats{TotalVideos: len(videos)}
	if len(videos) == 0 {
		log.Info().Msg("no collab videos in range, nothing to aggregate")
		return stats, nil
	}

	groups := groupByPartner(videos)
	log.Info().Int("videos", len(videos)).Int("partners", len(groups)).Msg("aggregating partner metrics")

	for _, group := range groups {
		commentStats := make(map[string]model.CommentStats, len(group.videos))
		failed := false
		for _, v := range group.videos {
			cs, err := s.comments.StatsForVideo(ctx, v.VideoID)
			if err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: comment stats: %v", group.partner, err))
				failed = true
				break
			}
			commentStats[v.VideoID] = cs
		}
		if failed {
			continue
		}

		agg := ComputePartnerAggregate(group.partner, group.videos, commentStats, start, end)
		if err := s.aggs.Upsert(ctx, agg); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: upsert: %v", group.partner, err))
			continue
		}
		stats.PartnersProcessed++
		stats.TotalViews += agg.TotalViews
	}

	log.Info().
		Int("partners", stats.PartnersProcessed).
		Int64("total_views", stats.TotalViews).
		Msg("aggregation complete")
	return stats, nil
}

type partnerGroup struct {
	partner string
	videos  []*model.Video
}

// groupByPartner buckets collab videos by partner name, preserving
// first-seen order. Videos without a partner land under "Unknown".
func groupByPartner(videos []*model.Video) []partnerGroup {
	index := make(map[string]int)
	var groups []partnerGroup
	for _, v := range videos {
		partner := "Unknown"
		if v.CollabPartner != nil && *v.CollabPartner != "" {
			partner = *v.CollabPartner
		}
		i, ok := index[partner]
		if !ok {
			i = len(groups)
			index[partner] = i
			groups = append(groups, partnerGroup{partner: partner})
		}
		groups[i].videos = append(groups[i].videos, v)
	}
	return groups
}

// ComputePartnerAggregate derives one partner's metrics from its
// videos and their collected comment stats. Comment likes cover only
// collected comments; when any video's collection fell short of its
// reported comment count the partial flag is set.
func ComputePartnerAggregate(partner string, videos []*model.Video, commentStats map[string]model.CommentStats, start, end time.Time) *model.PartnerAggregate {
	agg := &model.PartnerAggregate{
		PartnerName:    partner,
		DateRangeStart: start,
		DateRangeEnd:   end,
		VideoCount:     len(videos),
	}

	var categories, regions []string
	for _, v := range videos {
		agg.TotalViews += v.ViewCount
		agg.TotalVideoLikes += v.LikeCount
		agg.TotalComments += v.CommentCount

		cs := commentStats[v.VideoID]
		agg.TotalCommentLikes += cs.TotalLikes
		if cs.Count < v.CommentCount {
			agg.CommentLikesPartial = true
		}

		if v.CollabCategory != nil && *v.CollabCategory != "" {
			categories = append(categories, *v.CollabCategory)
		}
		if v.CollabRegion != nil && *v.CollabRegion != "" {
			regions = append(regions, *v.CollabRegion)
		}
	}

	if agg.VideoCount > 0 {
		agg.AvgViews = float64(agg.TotalViews) / float64(agg.VideoCount)
		agg.AvgVideoLikes = float64(agg.TotalVideoLikes) / float64(agg.VideoCount)
	}
	if agg.TotalViews > 0 {
		agg.LikeRate = float64(agg.TotalVideoLikes) / float64(agg.TotalViews)
		agg.CommentRate = float64(agg.TotalComments) / float64(agg.TotalViews)
	}

	agg.Category = majority(categories, model.CategoryOther)
	agg.Region = majority(regions, model.RegionUnknown)
	agg.TopVideos = topVideos(videos, topVideoSample)

	return agg
}

// majority returns the most frequent value, first seen winning ties,
// or the fallback for an empty input.
func majority(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	counts := make(map[string]int)
	best, bestCount := values[0], 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// topVideos returns the n most viewed videos as report entries.
func topVideos(videos []*model.Video, n int) []model.TopVideo {
	sorted := make([]*model.Video, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ViewCount > sorted[j].ViewCount
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	top := make([]model.TopVideo, 0, len(sorted))
	for _, v := range sorted {
		top = append(top, model.TopVideo{
			VideoID:   v.VideoID,
			Title:     v.Title,
			ViewCount: v.ViewCount,
			LikeCount: v.LikeCount,
		})
	}
	return top
}

// Rankings orders aggregates by total views and renders report rows.
// Rates are expressed as percentages.
func Rankings(aggs []*model.PartnerAggregate, limit int) []model.PartnerRanking {
	sorted := make([]*model.PartnerAggregate, len(aggs))
	copy(sorted, aggs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalViews > sorted[j].TotalViews
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rankings := make([]model.PartnerRanking, 0, len(sorted))
	for i, a := range sorted {
		rankings = append(rankings, model.PartnerRanking{
			Rank:           i + 1,
			PartnerName:    a.PartnerName,
			Category:       a.Category,
			Region:         a.Region,
			VideoCount:     a.VideoCount,
			TotalViews:     a.TotalViews,
			TotalLikes:     a.TotalVideoLikes,
			TotalComments:  a.TotalComments,
			AvgViews:       round2(a.AvgViews),
			LikeRatePct:    round4(a.LikeRate * 100),
			CommentRatePct: round4(a.CommentRate * 100),
			TopVideos:      a.TopVideos,
		})
	}
	return rankings
}

// CategorySummaries rolls aggregates up by category, most viewed first.
func CategorySummaries(aggs []*model.PartnerAggregate) []model.CategorySummary {
	type bucket struct {
		partnerCount int
		videoCount   int
		totalViews   int64
		totalLikes   int64
	}
	index := make(map[string]*bucket)
	var order []string

	for _, a := range aggs {
		cat := a.Category
		if cat == "" {
			cat = model.CategoryOther
		}
		b, ok := index[cat]
		if !ok {
			b = &bucket{}
			index[cat] = b
			order = append(order, cat)
		}
		b.partnerCount++
		b.videoCount += a.VideoCount
		b.totalViews += a.TotalViews
		b.totalLikes += a.TotalVideoLikes
	}

	summaries := make([]model.CategorySummary, 0, len(order))
	for _, cat := range order {
		b := index[cat]
		s := model.CategorySummary{
			Category:     cat,
			PartnerCount: b.partnerCount,
			VideoCount:   b.videoCount,
			TotalViews:   b.totalViews,
		}
		if b.videoCount > 0 {
			s.AvgViewsPerVideo = round2(float64(b.totalViews) / float64(b.videoCount))
		}
		if b.totalViews > 0 {
			s.LikeRatePct = round4(float64(b.totalLikes) / float64(b.totalViews) * 100)
		}
		summaries = append(summaries, s)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalViews > summaries[j].TotalViews
	})
	return summaries
}

// RegionSummaries rolls aggregates up by region, most viewed first.
func RegionSummaries(aggs []*model.PartnerAggregate) []model.RegionSummary {
	index := make(map[string]*model.RegionSummary)
	var order []string

	for _, a := range aggs {
		region := a.Region
		if region == "" {
			region = model.RegionUnknown
		}
		s, ok := index[region]
		if !ok {
			s = &model.RegionSummary{Region: region}
			index[region] = s
			order = append(order, region)
		}
		s.PartnerCount++
		s.VideoCount += a.VideoCount
		s.TotalViews += a.TotalViews
		s.TotalLikes += a.TotalVideoLikes
	}

	summaries := make([]model.RegionSummary, 0, len(order))
	for _, region := range order {
		summaries = append(summaries, *index[region])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalViews > summaries[j].TotalViews
	})
	return summaries
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

func round4(f float64) float64 {
	return float64(int64(f*10000+0.5)) / 10000
}
