package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

const videoColumns = `video_id, title, description, published_at, duration,
	       channel_id, channel_name, view_count, like_count, comment_count,
	       is_collab, collab_partner, collab_category, collab_region,
	       collab_summary, collab_confidence, classification_method,
	       last_fetched_at, created_at, updated_at`

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

// UpsertMetadata inserts a fetched video or refreshes its metadata and
// engagement counters. The classification block is deliberately absent
// from the conflict update so a refetch never disturbs an existing
// classification.
func (r *VideoRepo) UpsertMetadata(ctx context.Context, v *model.Video) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO videos (
			video_id, title, description, published_at, duration,
			channel_id, channel_name, view_count, like_count, comment_count,
			last_fetched_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW(), NOW())
		ON CONFLICT (video_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			duration = excluded.duration,
			channel_id = excluded.channel_id,
			channel_name = excluded.channel_name,
			view_count = excluded.view_count,
			like_count = excluded.like_count,
			comment_count = excluded.comment_count,
			last_fetched_at = NOW(),
			updated_at = NOW()`,
		v.VideoID, v.Title, v.Description, v.PublishedAt, v.Duration,
		v.ChannelID, v.ChannelName, v.ViewCount, v.LikeCount, v.CommentCount)
	return err
}

// SaveClassification overwrites the video's classification block from
// the fields currently set on v. Satisfies classify.ClassificationWriter.
func (r *VideoRepo) SaveClassification(ctx context.Context, v *model.Video) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE videos SET
			is_collab = $2,
			collab_partner = $3,
			collab_category = $4,
			collab_region = $5,
			collab_summary = $6,
			collab_confidence = $7,
			classification_method = $8,
			updated_at = NOW()
		WHERE video_id = $1`,
		v.VideoID, v.IsCollab, v.CollabPartner, v.CollabCategory,
		v.CollabRegion, v.CollabSummary, v.CollabConfidence, methodParam(v.Method))
	return err
}

// UpdatePartner rewrites only the canonical partner name, leaving the
// rest of the classification block untouched. Used by the batch-wide
// partner normalization pass.
func (r *VideoRepo) UpdatePartner(ctx context.Context, videoID, partner string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE videos SET collab_partner = $2, updated_at = NOW()
		WHERE video_id = $1`,
		videoID, partner)
	return err
}

// FindByVideoID returns a single video or nil when absent.
func (r *VideoRepo) FindByVideoID(ctx context.Context, videoID string) (*model.Video, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE video_id = $1`, videoID)
	v, err := scanVideo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// FindUnclassified returns videos whose classification method is still
// null, newest first.
func (r *VideoRepo) FindUnclassified(ctx context.Context) ([]*model.Video, error) {
	return r.queryVideos(ctx, `
		SELECT `+videoColumns+` FROM videos
		WHERE classification_method IS NULL
		ORDER BY published_at DESC`)
}

// FindAll returns every stored video, newest first.
func (r *VideoRepo) FindAll(ctx context.Context) ([]*model.Video, error) {
	return r.queryVideos(ctx, `
		SELECT `+videoColumns+` FROM videos
		ORDER BY published_at DESC`)
}

// FindCollabsSince returns collaboration videos published on or after
// the cutoff, newest first.
func (r *VideoRepo) FindCollabsSince(ctx context.Context, cutoff time.Time) ([]*model.Video, error) {
	return r.queryVideos(ctx, `
		SELECT `+videoColumns+` FROM videos
		WHERE is_collab AND published_at >= $1
		ORDER BY published_at DESC`, cutoff)
}

// FindInRange returns videos published within [start, end], newest first.
func (r *VideoRepo) FindInRange(ctx context.Context, start, end time.Time) ([]*model.Video, error) {
	return r.queryVideos(ctx, `
		SELECT `+videoColumns+` FROM videos
		WHERE published_at >= $1 AND published_at <= $2
		ORDER BY published_at DESC`, start, end)
}

// LastPublishedAt returns the newest stored publish timestamp, or the
// zero time when the store is empty.
func (r *VideoRepo) LastPublishedAt(ctx context.Context) (time.Time, error) {
	var ts *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(published_at) FROM videos`).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if ts == nil {
		return time.Time{}, nil
	}
	return *ts, nil
}

// Count returns the total number of stored videos.
func (r *VideoRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos`).Scan(&n)
	return n, err
}

// CountByMethod returns video counts grouped by classification method.
// Unclassified videos appear under the empty string key.
func (r *VideoRepo) CountByMethod(ctx context.Context) (map[model.Method]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(classification_method, ''), COUNT(*)
		FROM videos
		GROUP BY classification_method`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Method]int64)
	for rows.Next() {
		var m string
		var n int64
		if err := rows.Scan(&m, &n); err != nil {
			return nil, err
		}
		counts[model.Method(m)] = n
	}
	return counts, rows.Err()
}

func (r *VideoRepo) queryVideos(ctx context.Context, query string, args ...any) ([]*model.Video, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func scanVideo(row pgx.Row) (*model.Video, error) {
	var v model.Video
	var method *string
	var description *string
	err := row.Scan(
		&v.VideoID, &v.Title, &description, &v.PublishedAt, &v.Duration,
		&v.ChannelID, &v.ChannelName, &v.ViewCount, &v.LikeCount, &v.CommentCount,
		&v.IsCollab, &v.CollabPartner, &v.CollabCategory, &v.CollabRegion,
		&v.CollabSummary, &v.CollabConfidence, &method,
		&v.LastFetchedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		v.Description = *description
	}
	if method != nil {
		v.Method = model.Method(*method)
	}
	return &v, nil
}

// methodParam maps the Unclassified method to SQL NULL so the
// "classified iff method is non-null" invariant holds in the store.
func methodParam(m model.Method) *string {
	if m == model.MethodUnclassified {
		return nil
	}
	s := string(m)
	return &s
}
