package model

import "time"

// Comment is a top-level YouTube comment (or reply) on a video.
type Comment struct {
	CommentID       string     `json:"comment_id"`
	VideoID         string     `json:"video_id"`
	AuthorName      *string    `json:"author_name,omitempty"`
	AuthorChannelID *string    `json:"author_channel_id,omitempty"`
	TextOriginal    *string    `json:"text_original,omitempty"`
	TextDisplay     *string    `json:"text_display,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	LikeCount       int64      `json:"like_count"`
	ParentID        *string    `json:"parent_id,omitempty"`
	IsReply         bool       `json:"is_reply"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CommentStats summarizes the comments collected for one video. Count
// may be lower than the video's reported comment_count when collection
// was capped; aggregation uses that gap to flag partial like sums.
type CommentStats struct {
	Count      int64
	TotalLikes int64
}
