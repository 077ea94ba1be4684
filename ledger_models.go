package main

import (
	"time"

	"gorm.io/gorm"
)

// PostRecordModel is one row per post attempt. Thread runs write one row
// per attempted item, failed attempts included.
type PostRecordModel struct {
	gorm.Model
	RequestUUID  string    `gorm:"column:request_uuid;index" json:"request_uuid"`
	ToolName     string    `gorm:"column:tool_name;index" json:"tool_name"`
	ThreadIndex  int       `gorm:"column:thread_index" json:"thread_index"`
	ThreadSize   int       `gorm:"column:thread_size" json:"thread_size"`
	TweetID      string    `gorm:"column:tweet_id;index" json:"tweet_id,omitempty"`
	URL          string    `gorm:"column:url" json:"url,omitempty"`
	Text         string    `gorm:"column:text" json:"text"`
	IsSuccess    bool      `gorm:"column:is_success;index" json:"is_success"`
	ErrorMessage string    `gorm:"column:error_message" json:"error_message,omitempty"`
	PostedAt     time.Time `gorm:"column:posted_at;index" json:"posted_at"`
}

func (PostRecordModel) TableName() string {
	return "post_records"
}
