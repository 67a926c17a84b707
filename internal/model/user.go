package model

type User struct {
	ID             int     `json:"id"`
	Email          string  `json:"email"`
	SlackUserID    *string `json:"slack_user_id,omitempty"`
	SlackChannelID *string `json:"slack_channel_id,omitempty"`
	IsActive       bool    `json:"is_active,omitempty"`
}
