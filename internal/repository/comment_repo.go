package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

// Upsert inserts a comment or refreshes its mutable fields.
func (r *CommentRepo) Upsert(ctx context.Context, c *model.Comment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO comments (
			comment_id, video_id, author_name, author_channel_id,
			text_original, text_display, published_at, like_count,
			parent_id, is_reply, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (comment_id) DO UPDATE SET
			text_original = excluded.text_original,
			text_display = excluded.text_display,
			like_count = excluded.like_count,
			updated_at = NOW()`,
		c.CommentID, c.VideoID, c.AuthorName, c.AuthorChannelID,
		c.TextOriginal, c.TextDisplay, c.PublishedAt, c.LikeCount,
		c.ParentID, c.IsReply)
	return err
}

// UpsertBatch inserts or refreshes a slice of comments.
func (r *CommentRepo) UpsertBatch(ctx context.Context, comments []*model.Comment) error {
	for _, c := range comments {
		if err := r.Upsert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// StatsForVideo returns the count and summed likes of the comments
// collected for one video.
func (r *CommentRepo) StatsForVideo(ctx context.Context, videoID string) (model.CommentStats, error) {
	var stats model.CommentStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(like_count), 0)
		FROM comments
		WHERE video_id = $1`,
		videoID).Scan(&stats.Count, &stats.TotalLikes)
	return stats, err
}

// TextsForVideo returns up to limit comment texts for a video, most
// liked first. Used by the sentiment stage.
func (r *CommentRepo) TextsForVideo(ctx context.Context, videoID string, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT text_original
		FROM comments
		WHERE video_id = $1 AND text_original IS NOT NULL
		ORDER BY like_count DESC
		LIMIT $2`,
		videoID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	return texts, rows.Err()
}

// Count returns the total number of stored comments.
func (r *CommentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments`).Scan(&n)
	return n, err
}
