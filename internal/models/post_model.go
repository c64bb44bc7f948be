package models

import "time"

type PostStatus string

const (
	PostStatusPending   PostStatus = "pending"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPending, PostStatusPublished, PostStatusFailed:
		return true
	}
	return false
}

type ScheduledPost struct {
	ID             string     `json:"id" toml:"id"`
	Platform       string     `json:"platform" toml:"platform"`
	Title          string     `json:"title" toml:"title"`
	Content        string     `json:"content" toml:"content"`
	ImageURL       string     `json:"imageUrl,omitempty" toml:"image_url,omitempty"`
	PublishTime    time.Time  `json:"publishTime" toml:"publish_time"`
	Status         PostStatus `json:"status" toml:"status"`
	Hashtags       string     `json:"hashtags,omitempty" toml:"hashtags,omitempty"`
	BoardName      string     `json:"boardName,omitempty" toml:"board_name,omitempty"`
	PlatformPostID string     `json:"platformPostId,omitempty" toml:"platform_post_id,omitempty"`
	Sheet          string     `json:"sheet,omitempty" toml:"sheet,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" toml:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" toml:"updated_at"`
}
