package transfer

import "github.com/maheshrc27/postsheet/internal/models"

type ScheduleRequest struct {
	Platform    string `json:"platform" validate:"required"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ImageURL    string `json:"imageUrl"`
	PublishTime string `json:"publishTime" validate:"required"`
	Hashtags    string `json:"hashtags"`
	BoardName   string `json:"boardName"`
}

type ScheduleResponse struct {
	OK      bool                  `json:"ok"`
	Item    *models.ScheduledPost `json:"item"`
	Message string                `json:"message"`
}

type StatusUpdate struct {
	Status         string `json:"status" validate:"required,post_status"`
	PlatformPostID string `json:"platformPostId"`
}
