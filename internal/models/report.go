package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportStatus 报告处理状态。四个值之间可任意转换，不设状态机。
type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusInProgress ReportStatus = "in_progress"
	StatusCompleted  ReportStatus = "completed"
	StatusRejected   ReportStatus = "rejected"
)

// AllStatuses 按生命周期顺序列出所有合法状态
var AllStatuses = []ReportStatus{StatusPending, StatusInProgress, StatusCompleted, StatusRejected}

// IsValidStatus 检查状态值是否在允许的集合内
func IsValidStatus(status string) bool {
	for _, s := range AllStatuses {
		if string(s) == status {
			return true
		}
	}
	return false
}

const (
	MediaTypeImage      = "image"
	MediaTypeAudio      = "audio"
	MediaTypeImageAudio = "image_audio"

	// DefaultIssueType 分类服务不可用时使用的类别
	DefaultIssueType = "uncategorized"
	// NonCivicIssueType 分类服务判定音频内容与市政问题无关
	NonCivicIssueType = "non-civic-issue"
)

// Location 是报告的地理位置，经纬度为十进制度数。
// JSON 输出为 GeoJSON Point 形式 {type, coordinates:[lng, lat]}。
type Location struct {
	Longitude float64 `gorm:"column:longitude;not null;index:idx_reports_geo,priority:2"`
	Latitude  float64 `gorm:"column:latitude;not null;index:idx_reports_geo,priority:1"`
	Address   string  `gorm:"column:address;size:200"`
	City      string  `gorm:"column:city;size:100"`
	State     string  `gorm:"column:state;size:100"`
	ZipCode   string  `gorm:"column:zip_code;size:20"`
}

type locationJSON struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	ZipCode     string     `json:"zipCode"`
}

// MarshalJSON 以 GeoJSON 格式输出位置
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(locationJSON{
		Type:        "Point",
		Coordinates: [2]float64{l.Longitude, l.Latitude},
		Address:     l.Address,
		City:        l.City,
		State:       l.State,
		ZipCode:     l.ZipCode,
	})
}

// UnmarshalJSON 解析 GeoJSON 格式的位置
func (l *Location) UnmarshalJSON(data []byte) error {
	var raw locationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Location{
		Longitude: raw.Coordinates[0],
		Latitude:  raw.Coordinates[1],
		Address:   raw.Address,
		City:      raw.City,
		State:     raw.State,
		ZipCode:   raw.ZipCode,
	}
	return nil
}

// Validate 检查坐标是否为有效的经纬度
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return &FieldError{Field: "location.latitude", Message: "latitude must be between -90 and 90"}
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return &FieldError{Field: "location.longitude", Message: "longitude must be between -180 and 180"}
	}
	return nil
}

// Report 对应于数据库中的 reports 表
type Report struct {
	ID            string                      `json:"id" gorm:"primaryKey;size:36"`
	UserID        string                      `json:"userId" gorm:"column:user_id;not null;index;size:36"`
	IssueType     string                      `json:"issueType" gorm:"column:issue_type;not null;default:'uncategorized';index;size:100"`
	SeverityScore float64                     `json:"severityScore" gorm:"column:severity_score;not null;default:0"`
	Severity      Level                       `json:"severity" gorm:"column:severity;not null;default:'low';size:10"`
	Priority      Level                       `json:"priority" gorm:"column:priority;not null;default:'low';size:10"`
	AIMetadata    datatypes.JSON              `json:"aiMetadata" gorm:"column:ai_metadata"` // 分类服务原始响应，仅用于审计
	Tags          datatypes.JSONSlice[string] `json:"tags" gorm:"column:tags"`
	Description   string                      `json:"description" gorm:"column:description;type:text;not null"`
	ImageURL      *string                     `json:"imageUrl" gorm:"column:image_url;size:1024"`
	AudioURL      *string                     `json:"audioUrl" gorm:"column:audio_url;size:1024"`
	MediaType     string                      `json:"mediaType" gorm:"column:media_type;not null;size:20"`
	Location      Location                    `json:"location" gorm:"embedded"`
	Status        ReportStatus                `json:"status" gorm:"column:status;not null;default:'pending';index;size:20"`
	Upvotes       []string                    `json:"upvotes" gorm:"-"` // 由 report_upvotes 表加载
	UpvoteCount   int                         `json:"upvoteCount" gorm:"column:upvote_count;not null;default:0;index"`
	CreatedAt     time.Time                   `json:"createdAt" gorm:"column:created_at;not null;autoCreateTime;index"`
	UpdatedAt     time.Time                   `json:"updatedAt" gorm:"column:updated_at;not null;autoUpdateTime"`
}

// TableName 指定 Report 结构体对应的数据库表名
func (Report) TableName() string {
	return "reports"
}

// ApplySeverity 记录分数并同步派生 severity 与 priority
func (r *Report) ApplySeverity(score float64) {
	r.SeverityScore = score
	level := DeriveLevel(score)
	r.Severity = level
	r.Priority = level
}

// Validate 检查报告在持久化之前必须满足的约束
func (r *Report) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return &FieldError{Field: "userId", Message: "userId is required"}
	}
	if strings.TrimSpace(r.Description) == "" {
		return &FieldError{Field: "description", Message: "description is required"}
	}
	if r.ImageURL == nil && r.AudioURL == nil {
		return &FieldError{Field: "media", Message: "an image or audio attachment is required"}
	}
	if err := r.Location.Validate(); err != nil {
		return err
	}
	if !IsValidStatus(string(r.Status)) {
		return &FieldError{Field: "status", Message: "invalid status " + string(r.Status)}
	}
	if r.SeverityScore < 0 || math.IsNaN(r.SeverityScore) {
		return &FieldError{Field: "severityScore", Message: "severityScore must be a non-negative number"}
	}
	if r.Severity != r.Priority || !r.Severity.Valid() {
		return &FieldError{Field: "severity", Message: "severity and priority must be the same valid level"}
	}
	if r.UpvoteCount != len(r.Upvotes) {
		return &FieldError{Field: "upvoteCount", Message: "upvoteCount must equal the number of upvotes"}
	}
	return nil
}

// BeforeCreate 是 GORM 钩子，在插入前执行模型校验。
// 状态与点赞的部分更新不经过此钩子，由各自的操作保证约束。
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	return r.Validate()
}

// HasUpvote 判断用户是否已为该报告点赞
func (r *Report) HasUpvote(userID string) bool {
	for _, id := range r.Upvotes {
		if id == userID {
			return true
		}
	}
	return false
}

// ReportUpvote 对应 report_upvotes 表，(report_id, user_id) 复合主键保证每个用户只出现一次
type ReportUpvote struct {
	ReportID  string    `gorm:"primaryKey;column:report_id;size:36"`
	UserID    string    `gorm:"primaryKey;column:user_id;size:36;index"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

// TableName 指定 ReportUpvote 结构体对应的数据库表名
func (ReportUpvote) TableName() string {
	return "report_upvotes"
}

// ReportWithAuthor 是附带作者公开信息的报告，用于列表与详情展示
type ReportWithAuthor struct {
	Report
	Author *UserSummary `json:"author,omitempty"`
}

// ReportStatistics 是“我的报告”的汇总，基于返回的报告集合计算
type ReportStatistics struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// ComputeStatistics 统计报告集合中各状态的数量
func ComputeStatistics(reports []Report) ReportStatistics {
	stats := ReportStatistics{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case StatusPending:
			stats.Pending++
		case StatusInProgress:
			stats.InProgress++
		case StatusCompleted:
			stats.Completed++
		}
	}
	return stats
}
