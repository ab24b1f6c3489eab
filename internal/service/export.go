package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/repository"
)

type ExportService struct {
	videos    *repository.VideoRepo
	aggs      *repository.AggregateRepo
	outputDir string
}

func NewExportService(videos *repository.VideoRepo, aggs *repository.AggregateRepo, outputDir string) *ExportService {
	return &ExportService{videos: videos, aggs: aggs, outputDir: outputDir}
}

// DefaultPath builds a date-stamped artifact path under the output dir.
func (s *ExportService) DefaultPath(prefix, ext string) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102"), ext))
}

// ExportPartnersCSV writes the partner aggregate report, most viewed
// partner first.
func (s *ExportService) ExportPartnersCSV(ctx context.Context, path string) (string, error) {
	started := time.Now()
	defer func() { metrics.ObserveStage("export", time.Since(started).Seconds()) }()

	aggs, err := s.aggs.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load aggregates: %w", err)
	}
	if len(aggs) == 0 {
		log.Warn().Msg("no aggregation data, run aggregate first")
	}

	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"partner_name", "category", "region", "video_count", "total_views",
		"total_video_likes", "total_comments", "total_comment_likes",
		"comment_likes_partial", "avg_views", "like_rate_pct",
		"comment_rate_pct", "top_videos", "date_range_start", "date_range_end",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, a := range aggs {
		record := []string{
			a.PartnerName,
			a.Category,
			a.Region,
			strconv.Itoa(a.VideoCount),
			strconv.FormatInt(a.TotalViews, 10),
			strconv.FormatInt(a.TotalVideoLikes, 10),
			strconv.FormatInt(a.TotalComments, 10),
			strconv.FormatInt(a.TotalCommentLikes, 10),
			strconv.FormatBool(a.CommentLikesPartial),
			formatFloat(round2(a.AvgViews)),
			formatFloat(round4(a.LikeRate * 100)),
			formatFloat(round4(a.CommentRate * 100)),
			formatTopVideos(a.TopVideos),
			a.DateRangeStart.Format("2006-01-02"),
			a.DateRangeEnd.Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	log.Info().Str("path", path).Int("partners", len(aggs)).Msg("partner report exported")
	return path, nil
}

// ExportVideosCSV writes per-video rows for the last days days. With
// onlyCollabs set only collaboration videos are included.
func (s *ExportService) ExportVideosCSV(ctx context.Context, path string, days int, onlyCollabs bool) (string, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var (
		videos []*model.Video
		err    error
	)
	if onlyCollabs {
		videos, err = s.videos.FindCollabsSince(ctx, cutoff)
	} else {
		videos, err = s.videos.FindInRange(ctx, cutoff, time.Now().UTC())
	}
	if err != nil {
		return "", fmt.Errorf("load videos: %w", err)
	}

	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"video_id", "title", "published_at", "duration", "view_count",
		"like_count", "comment_count", "is_collab", "collab_partner",
		"collab_category", "collab_region", "collab_confidence",
		"classification_method", "url",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, v := range videos {
		record := []string{
			v.VideoID,
			v.Title,
			v.PublishedAt.Format(time.RFC3339),
			strDeref(v.Duration),
			strconv.FormatInt(v.ViewCount, 10),
			strconv.FormatInt(v.LikeCount, 10),
			strconv.FormatInt(v.CommentCount, 10),
			strconv.FormatBool(v.IsCollab),
			strDeref(v.CollabPartner),
			strDeref(v.CollabCategory),
			strDeref(v.CollabRegion),
			formatFloat(v.CollabConfidence),
			string(v.Method),
			v.URL(),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	log.Info().Str("path", path).Int("videos", len(videos)).Msg("video report exported")
	return path, nil
}

// WebPartner is one dashboard entry: a partner with its full video
// list, most viewed first.
type WebPartner struct {
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	VideoCount    int        `json:"video_count"`
	TotalViews    int64      `json:"total_views"`
	TotalLikes    int64      `json:"total_likes"`
	TotalComments int64      `json:"total_comments"`
	FirstCollab   string     `json:"first_collab"`
	LastCollab    string     `json:"last_collab"`
	Videos        []WebVideo `json:"videos"`
}

type WebVideo struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	PublishedAt  string `json:"published_at"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	URL          string `json:"url"`
}

// ExportWebData writes the dashboard JSON: every partnered collab
// video grouped by partner.
func (s *ExportService) ExportWebData(ctx context.Context, path string) (string, error) {
	videos, err := s.videos.FindCollabsSince(ctx, time.Time{})
	if err != nil {
		return "", fmt.Errorf("load collab videos: %w", err)
	}

	partners := BuildWebPartners(videos)

	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(partners); err != nil {
		return "", err
	}

	log.Info().Str("path", path).Int("partners", len(partners)).Msg("web data exported")
	return path, nil
}

// BuildWebPartners groups partnered collab videos into dashboard
// entries, partners and their videos both ordered by view count.
func BuildWebPartners(videos []*model.Video) []WebPartner {
	index := make(map[string]*WebPartner)
	var order []string

	for _, v := range videos {
		if v.CollabPartner == nil || *v.CollabPartner == "" {
			continue
		}
		name := *v.CollabPartner
		p, ok := index[name]
		if !ok {
			p = &WebPartner{Name: name, Category: model.CategoryOther}
			index[name] = p
			order = append(order, name)
		}

		if v.CollabCategory != nil && *v.CollabCategory != "" {
			p.Category = *v.CollabCategory
		}
		p.VideoCount++
		p.TotalViews += v.ViewCount
		p.TotalLikes += v.LikeCount
		p.TotalComments += v.CommentCount

		published := v.PublishedAt.Format("2006-01-02")
		if p.FirstCollab == "" || published < p.FirstCollab {
			p.FirstCollab = published
		}
		if published > p.LastCollab {
			p.LastCollab = published
		}

		p.Videos = append(p.Videos, WebVideo{
			VideoID:      v.VideoID,
			Title:        v.Title,
			PublishedAt:  published,
			ViewCount:    v.ViewCount,
			LikeCount:    v.LikeCount,
			CommentCount: v.CommentCount,
			URL:          v.URL(),
		})
	}

	partners := make([]WebPartner, 0, len(order))
	for _, name := range order {
		p := index[name]
		sort.SliceStable(p.Videos, func(i, j int) bool {
			return p.Videos[i].ViewCount > p.Videos[j].ViewCount
		})
		partners = append(partners, *p)
	}
	sort.SliceStable(partners, func(i, j int) bool {
		return partners[i].TotalViews > partners[j].TotalViews
	})
	return partners
}

func formatTopVideos(top []model.TopVideo) string {
	out := ""
	for i, v := range top {
		if i > 0 {
			out += "; "
		}
		title := v.Title
		if runes := []rune(title); len(runes) > 50 {
			title = string(runes[:50])
		}
		out += v.VideoID + "|" + title
	}
	return out
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
