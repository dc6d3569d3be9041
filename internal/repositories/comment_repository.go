package repositories

import (
	"context"

	"github.com/civicsight/internal/models"
	"gorm.io/gorm"
)

// CommentRepository 定义了评论数据仓库的接口。评论只追加，不提供更新或删除。
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// FindByReportID 按创建时间倒序返回报告下的评论
	FindByReportID(ctx context.Context, reportID string) ([]models.Comment, error)
}

// gormCommentRepository 是 CommentRepository 的 GORM 实现
type gormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository 创建一个新的 gormCommentRepository 实例
func NewGormCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

func (r *gormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *gormCommentRepository) FindByReportID(ctx context.Context, reportID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at desc").
		Order("id desc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
