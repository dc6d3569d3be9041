package services

import (
	"context"
	"log"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/civicsight/internal/models"
	"github.com/civicsight/internal/repositories"
)

// MaxCommentLength 是评论文本的最大字符数
const MaxCommentLength = 2000

// CommentService 定义了评论服务的接口。评论只追加。
type CommentService interface {
	CreateComment(ctx context.Context, reportID, userID, text string) (*models.CommentWithAuthor, error)
	GetComments(ctx context.Context, reportID string) ([]models.CommentWithAuthor, error)
}

// commentService 是 CommentService 的实现
type commentService struct {
	comments repositories.CommentRepository
	reports  repositories.ReportRepository
	users    repositories.UserRepository
}

// NewCommentService 创建一个新的 commentService 实例
func NewCommentService(comments repositories.CommentRepository, reports repositories.ReportRepository, users repositories.UserRepository) CommentService {
	return &commentService{comments: comments, reports: reports, users: users}
}

// CreateComment 校验文本非空且报告存在后保存评论，返回附带作者信息的评论
func (s *commentService) CreateComment(ctx context.Context, reportID, userID, text string) (*models.CommentWithAuthor, error) {
	text = normalizeText(text)
	if text == "" {
		return nil, newValidationError(CodeEmptyComment, "comment text cannot be empty")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, newValidationError(CodeValidation, "comment text is too long")
	}
	if err := s.ensureReport(ctx, reportID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:       uuid.NewString(),
		ReportID: reportID,
		UserID:   userID,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, translateStoreError(err, ErrReportNotFound)
	}
	log.Printf("[Comment] %s added to report %s by %s", comment.ID, reportID, userID)

	enriched, err := s.withAuthors(ctx, []models.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// GetComments 按时间倒序返回评论
func (s *commentService) GetComments(ctx context.Context, reportID string) ([]models.CommentWithAuthor, error) {
	if err := s.ensureReport(ctx, reportID); err != nil {
		return nil, err
	}
	comments, err := s.comments.FindByReportID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, comments)
}

func (s *commentService) ensureReport(ctx context.Context, reportID string) error {
	if _, err := s.reports.FindByID(ctx, reportID); err != nil {
		return translateStoreError(err, ErrReportNotFound)
	}
	return nil
}

func (s *commentService) withAuthors(ctx context.Context, comments []models.Comment) ([]models.CommentWithAuthor, error) {
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	authors, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.CommentWithAuthor, len(comments))
	for i, c := range comments {
		enriched[i] = models.CommentWithAuthor{Comment: c}
		if u, ok := authors[c.UserID]; ok {
			enriched[i].Author = u.Summary()
		}
	}
	return enriched, nil
}
