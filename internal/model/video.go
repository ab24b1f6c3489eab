package model

import "time"

// Video is one content item fetched from a YouTube channel. The
// classification block (IsCollab through Method) is written exclusively
// by the classification orchestrator and always as a whole.
type Video struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Duration    *string   `json:"duration,omitempty"`
	ChannelID   *string   `json:"channel_id,omitempty"`
	ChannelName *string   `json:"channel_name,omitempty"`

	ViewCount    int64 `json:"view_count"`
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`

	IsCollab         bool    `json:"is_collab"`
	CollabPartner    *string `json:"collab_partner,omitempty"`
	CollabCategory   *string `json:"collab_category,omitempty"`
	CollabRegion     *string `json:"collab_region,omitempty"`
	CollabSummary    *string `json:"collab_summary,omitempty"`
	CollabConfidence float64 `json:"collab_confidence"`
	Method           Method  `json:"classification_method,omitempty"`

	LastFetchedAt time.Time `json:"last_fetched_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SetClassification overwrites the whole classification block. Partial
// merges are never allowed: a reclassification replaces every field.
func (v *Video) SetClassification(c Classification, m Method) {
	v.IsCollab = c.IsCollab
	v.CollabPartner = c.PartnerName
	v.CollabCategory = strPtrOrNil(c.Category)
	v.CollabRegion = strPtrOrNil(c.Region)
	v.CollabSummary = strPtrOrNil(c.Summary)
	v.CollabConfidence = c.Confidence
	v.Method = m
}

// Classified reports whether the video has been through the classifier
// at least once.
func (v *Video) Classified() bool {
	return v.Method != MethodUnclassified
}

// URL returns the public watch URL for the video.
func (v *Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.VideoID
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
