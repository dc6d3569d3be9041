package models

import (
	"time"
)

// Comment 对应于数据库中的 comments 表。评论只追加，不可编辑或删除。
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ReportID  string    `json:"reportId" gorm:"column:report_id;not null;index;size:36"`
	UserID    string    `json:"userId" gorm:"column:user_id;not null;size:36"`
	Text      string    `json:"text" gorm:"column:text;type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime;index"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at;not null;autoUpdateTime"`
}

// TableName 指定 Comment 结构体对应的数据库表名
func (Comment) TableName() string {
	return "comments"
}

// CommentWithAuthor 是附带作者公开信息的评论
type CommentWithAuthor struct {
	Comment
	Author *UserSummary `json:"author,omitempty"`
}
