package models

import (
	"strings"
	"time"
)

const (
	RoleCitizen   = "citizen"
	RoleAuthority = "authority"
	RoleAdmin     = "admin"
)

// User 对应于数据库中的 users 表
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"column:name;not null;size:255"`
	Email        string    `json:"email" gorm:"column:email;unique;not null;size:255"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null;size:255"` // 密码哈希不通过JSON暴露
	Role         string    `json:"role" gorm:"column:role;not null;default:'citizen';size:50"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"column:updated_at;not null;autoUpdateTime"`
}

// TableName 指定 User 结构体对应的数据库表名
func (User) TableName() string {
	return "users"
}

// Summary 返回用户的公开展示字段
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary 是评论和报告中展示的作者信息
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserStats 是个人资料页的统计数据
type UserStats struct {
	ReportCount          int            `json:"reportCount"`
	TotalUpvotesReceived int            `json:"totalUpvotesReceived"`
	CategoryCounts       map[string]int `json:"categoryCounts"`
}

// ComputeUserStats 从用户的报告集合计算统计数据，类别名统一为小写
func ComputeUserStats(reports []Report) UserStats {
	stats := UserStats{ReportCount: len(reports), CategoryCounts: map[string]int{}}
	for _, r := range reports {
		stats.TotalUpvotesReceived += r.UpvoteCount
		stats.CategoryCounts[strings.ToLower(r.IssueType)]++
	}
	return stats
}
