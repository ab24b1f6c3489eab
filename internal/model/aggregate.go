package model

import "time"

// TopVideo is one entry of a partner's top-videos sample.
type TopVideo struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	ViewCount int64  `json:"view_count"`
	LikeCount int64  `json:"like_count"`
}

// PartnerAggregate is one row of per-partner collaboration metrics for
// a date range. It is recomputed wholesale on every aggregation run and
// upserted on (partner_name, date_range_start, date_range_end).
type PartnerAggregate struct {
	PartnerName    string    `json:"partner_name"`
	Category       string    `json:"category"`
	Region         string    `json:"region"`
	DateRangeStart time.Time `json:"date_range_start"`
	DateRangeEnd   time.Time `json:"date_range_end"`

	VideoCount      int   `json:"video_count"`
	TotalViews      int64 `json:"total_views"`
	TotalVideoLikes int64 `json:"total_video_likes"`
	TotalComments   int64 `json:"total_comments"`

	// TotalCommentLikes sums likes over collected comments only;
	// CommentLikesPartial is set when collection was capped below the
	// video's reported comment count.
	TotalCommentLikes   int64 `json:"total_comment_likes"`
	CommentLikesPartial bool  `json:"comment_likes_partial"`

	AvgViews      float64 `json:"avg_views"`
	AvgVideoLikes float64 `json:"avg_video_likes"`
	LikeRate      float64 `json:"like_rate"`
	CommentRate   float64 `json:"comment_rate"`

	TopVideos []TopVideo `json:"top_videos"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PartnerRanking is one row of a ranked partner report.
type PartnerRanking struct {
	Rank           int        `json:"rank"`
	PartnerName    string     `json:"partner_name"`
	Category       string     `json:"category"`
	Region         string     `json:"region"`
	VideoCount     int        `json:"video_count"`
	TotalViews     int64      `json:"total_views"`
	TotalLikes     int64      `json:"total_video_likes"`
	TotalComments  int64      `json:"total_comments"`
	AvgViews       float64    `json:"avg_views"`
	LikeRatePct    float64    `json:"like_rate_pct"`
	CommentRatePct float64    `json:"comment_rate_pct"`
	TopVideos      []TopVideo `json:"top_videos"`
}

// CategorySummary rolls partner aggregates up by category.
type CategorySummary struct {
	Category         string  `json:"category"`
	PartnerCount     int     `json:"partner_count"`
	VideoCount       int     `json:"video_count"`
	TotalViews       int64   `json:"total_views"`
	AvgViewsPerVideo float64 `json:"avg_views_per_video"`
	LikeRatePct      float64 `json:"like_rate_pct"`
}

// RegionSummary rolls partner aggregates up by region.
type RegionSummary struct {
	Region       string `json:"region"`
	PartnerCount int    `json:"partner_count"`
	VideoCount   int    `json:"video_count"`
	TotalViews   int64  `json:"total_views"`
	TotalLikes   int64  `json:"total_likes"`
}
