package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

type AggregateRepo struct {
	pool *pgxpool.Pool
}

func NewAggregateRepo(pool *pgxpool.Pool) *AggregateRepo {
	return &AggregateRepo{pool: pool}
}

// Upsert writes a partner aggregate keyed on (partner, range start,
// range end). Aggregation recomputes rows wholesale, so every column
// is replaced on conflict.
func (r *AggregateRepo) Upsert(ctx context.Context, a *model.PartnerAggregate) error {
	topVideos, err := json.Marshal(a.TopVideos)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO partner_aggregates (
			partner_name, category, region, date_range_start, date_range_end,
			video_count, total_views, total_video_likes, total_comments,
			total_comment_likes, comment_likes_partial, avg_views,
			avg_video_likes, like_rate, comment_rate, top_videos,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		ON CONFLICT (partner_name, date_range_start, date_range_end) DO UPDATE SET
			category = excluded.category,
			region = excluded.region,
			video_count = excluded.video_count,
			total_views = excluded.total_views,
			total_video_likes = excluded.total_video_likes,
			total_comments = excluded.total_comments,
			total_comment_likes = excluded.total_comment_likes,
			comment_likes_partial = excluded.comment_likes_partial,
			avg_views = excluded.avg_views,
			avg_video_likes = excluded.avg_video_likes,
			like_rate = excluded.like_rate,
			comment_rate = excluded.comment_rate,
			top_videos = excluded.top_videos,
			updated_at = NOW()`,
		a.PartnerName, a.Category, a.Region, a.DateRangeStart, a.DateRangeEnd,
		a.VideoCount, a.TotalViews, a.TotalVideoLikes, a.TotalComments,
		a.TotalCommentLikes, a.CommentLikesPartial, a.AvgViews,
		a.AvgVideoLikes, a.LikeRate, a.CommentRate, topVideos)
	return err
}

// FindAll returns every partner aggregate, highest total views first.
func (r *AggregateRepo) FindAll(ctx context.Context) ([]*model.PartnerAggregate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT partner_name, category, region, date_range_start, date_range_end,
		       video_count, total_views, total_video_likes, total_comments,
		       total_comment_likes, comment_likes_partial, avg_views,
		       avg_video_likes, like_rate, comment_rate, top_videos,
		       created_at, updated_at
		FROM partner_aggregates
		ORDER BY total_views DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []*model.PartnerAggregate
	for rows.Next() {
		var a model.PartnerAggregate
		var category, region *string
		var topVideos []byte
		err := rows.Scan(
			&a.PartnerName, &category, &region, &a.DateRangeStart, &a.DateRangeEnd,
			&a.VideoCount, &a.TotalViews, &a.TotalVideoLikes, &a.TotalComments,
			&a.TotalCommentLikes, &a.CommentLikesPartial, &a.AvgViews,
			&a.AvgVideoLikes, &a.LikeRate, &a.CommentRate, &topVideos,
			&a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if category != nil {
			a.Category = *category
		}
		if region != nil {
			a.Region = *region
		}
		if len(topVideos) > 0 {
			if err := json.Unmarshal(topVideos, &a.TopVideos); err != nil {
				return nil, err
			}
		}
		aggs = append(aggs, &a)
	}
	return aggs, rows.Err()
}
