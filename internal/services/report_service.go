package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"

	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/classifier"
	"github.com/civicsight/internal/models"
	"github.com/civicsight/internal/repositories"
	"github.com/civicsight/pkg/utils"
)

const (
	// AudioFallbackDescription 音频转写失败时使用的描述
	AudioFallbackDescription = "Audio report (transcription failed)"
	// VerifiedReportsLimit 是“已验证”列表的最大条数
	VerifiedReportsLimit = 10

	DefaultNearbyRadiusKm = 5.0
	MaxNearbyRadiusKm     = 50.0
	nearbyResultLimit     = 100
	notifyTimeout         = 30 * time.Second
)

// CreateImageReportInput 是提交图片报告的参数，ImageURL 由媒体上传环节生成
type CreateImageReportInput struct {
	UserID      string
	ImageURL    string
	AudioURL    string // 可选
	Description string
	Location    models.Location
}

// CreateAudioReportInput 是提交音频报告的参数，描述由转写结果生成
type CreateAudioReportInput struct {
	UserID   string
	AudioURL string
	ImageURL string // 可选
	Location models.Location
}

// MyReportsResult 是“我的报告”及其统计
type MyReportsResult struct {
	Reports    []models.Report         `json:"reports"`
	Statistics models.ReportStatistics `json:"statistics"`
}

// StatusNotifier 在报告状态变更后通知报告作者
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, author models.User, report models.Report) error
}

// ReportService 定义了报告生命周期与社交聚合的接口
type ReportService interface {
	CreateImageReport(ctx context.Context, in CreateImageReportInput) (*models.Report, error)
	CreateAudioReport(ctx context.Context, in CreateAudioReportInput) (*models.Report, error)
	GetReports(ctx context.Context) ([]models.ReportWithAuthor, error)
	GetRecentReports(ctx context.Context, limit int) ([]models.ReportWithAuthor, error)
	GetMyReports(ctx context.Context, userID string) (*MyReportsResult, error)
	GetReportByID(ctx context.Context, id string) (*models.ReportWithAuthor, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, id, status string) (*models.Report, error)
	ToggleUpvote(ctx context.Context, id, userID string) (*models.Report, error)
	GetVerifiedReports(ctx context.Context) ([]models.ReportWithAuthor, error)
	GetNearbyReports(ctx context.Context, lat, lng, radiusKm float64) ([]models.ReportWithAuthor, error)
}

// reportService 是 ReportService 的实现
type reportService struct {
	reports    repositories.ReportRepository
	users      repositories.UserRepository
	classifier classifier.Classifier
	policy     auth.StatusPolicy
	notifier   StatusNotifier
}

// NewReportService 创建一个新的 reportService 实例。
// policy 为 nil 时允许任何已认证用户修改状态；notifier 为 nil 时不发送通知。
func NewReportService(
	reports repositories.ReportRepository,
	users repositories.UserRepository,
	c classifier.Classifier,
	policy auth.StatusPolicy,
	notifier StatusNotifier,
) ReportService {
	if policy == nil {
		policy = auth.AllowAuthenticated{}
	}
	return &reportService{
		reports:    reports,
		users:      users,
		classifier: c,
		policy:     policy,
		notifier:   notifier,
	}
}

// CreateImageReport 处理图片报告：校验 → 分类（尽力而为）→ 推导严重程度 → 持久化
func (s *reportService) CreateImageReport(ctx context.Context, in CreateImageReportInput) (*models.Report, error) {
	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL == "" {
		return nil, newValidationError(CodeMissingImage, "an image is required")
	}
	description := normalizeText(in.Description)
	if description == "" || strings.TrimSpace(in.UserID) == "" {
		return nil, newValidationError(CodeMissingFields, "description, latitude and longitude are required")
	}
	if err := in.Location.Validate(); err != nil {
		return nil, newValidationError(CodeInvalidCoordinates, err.Error())
	}

	result := s.classifier.Classify(ctx, classifier.KindImage, imageURL, description)
	if !result.OK() {
		log.Printf("[Report] image classification degraded for user %s: %s", in.UserID, result.Reason)
	}

	report := s.newReport(in.UserID, description, in.Location, result)
	report.ImageURL = &imageURL
	report.MediaType = models.MediaTypeImage
	if audioURL := strings.TrimSpace(in.AudioURL); audioURL != "" {
		report.AudioURL = &audioURL
		report.MediaType = models.MediaTypeImageAudio
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, translateStoreError(err, ErrReportNotFound)
	}
	log.Printf("[Report] created %s (%s, severity %s) for user %s", report.ID, report.IssueType, report.Severity, report.UserID)
	return report, nil
}

// CreateAudioReport 处理音频报告。转写成功时以转写文本作为描述，失败时使用占位描述。
func (s *reportService) CreateAudioReport(ctx context.Context, in CreateAudioReportInput) (*models.Report, error) {
	audioURL := strings.TrimSpace(in.AudioURL)
	if audioURL == "" {
		return nil, newValidationError(CodeMissingAudio, "an audio recording is required")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, newValidationError(CodeMissingFields, "latitude and longitude are required")
	}
	if err := in.Location.Validate(); err != nil {
		return nil, newValidationError(CodeInvalidCoordinates, err.Error())
	}

	result := s.classifier.Classify(ctx, classifier.KindAudio, audioURL, "")
	description := AudioFallbackDescription
	if result.OK() {
		if result.Classification.IssueType == models.NonCivicIssueType {
			return nil, newValidationError(CodeNonCivicIssue, "the recording does not describe a civic issue")
		}
		if transcript := normalizeText(result.Classification.Description); transcript != "" {
			description = transcript
		}
	} else {
		log.Printf("[Report] audio classification degraded for user %s: %s", in.UserID, result.Reason)
	}

	report := s.newReport(in.UserID, description, in.Location, result)
	report.AudioURL = &audioURL
	report.MediaType = models.MediaTypeAudio
	if imageURL := strings.TrimSpace(in.ImageURL); imageURL != "" {
		report.ImageURL = &imageURL
		report.MediaType = models.MediaTypeImageAudio
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, translateStoreError(err, ErrReportNotFound)
	}
	log.Printf("[Report] created audio report %s (%s) for user %s", report.ID, report.IssueType, report.UserID)
	return report, nil
}

func (s *reportService) newReport(userID, description string, loc models.Location, result classifier.Result) *models.Report {
	c := result.Classification
	report := &models.Report{
		ID:          uuid.NewString(),
		UserID:      userID,
		IssueType:   c.IssueType,
		Tags:        datatypes.JSONSlice[string](utils.NormalizeTags(c.Tags)),
		Description: description,
		Location: models.Location{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Address:   strings.TrimSpace(loc.Address),
			City:      strings.TrimSpace(loc.City),
			State:     strings.TrimSpace(loc.State),
			ZipCode:   strings.TrimSpace(loc.ZipCode),
		},
		Status:  models.StatusPending,
		Upvotes: []string{},
	}
	report.ApplySeverity(c.SeverityScore)
	if result.OK() && len(result.Raw) > 0 {
		report.AIMetadata = datatypes.JSON(result.Raw)
	}
	return report
}

func (s *reportService) GetReports(ctx context.Context) ([]models.ReportWithAuthor, error) {
	reports, err := s.reports.FindAll(ctx, 0)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, reports)
}

func (s *reportService) GetRecentReports(ctx context.Context, limit int) ([]models.ReportWithAuthor, error) {
	reports, err := s.reports.FindAll(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, reports)
}

// GetMyReports 返回用户自己的报告，统计数据基于返回的集合计算
func (s *reportService) GetMyReports(ctx context.Context, userID string) (*MyReportsResult, error) {
	reports, err := s.reports.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MyReportsResult{
		Reports:    reports,
		Statistics: models.ComputeStatistics(reports),
	}, nil
}

func (s *reportService) GetReportByID(ctx context.Context, id string) (*models.ReportWithAuthor, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, ErrReportNotFound)
	}
	enriched, err := s.withAuthors(ctx, []models.Report{*report})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// UpdateStatus 校验状态值和调用者权限后更新报告状态，成功后异步通知作者
func (s *reportService) UpdateStatus(ctx context.Context, actor auth.Actor, id, status string) (*models.Report, error) {
	if !models.IsValidStatus(status) {
		return nil, newValidationError(CodeInvalidStatus, "status must be one of pending, in_progress, completed, rejected")
	}
	if !s.policy.CanUpdateStatus(actor) {
		return nil, ErrForbidden
	}

	report, err := s.reports.UpdateStatus(ctx, id, models.ReportStatus(status))
	if err != nil {
		return nil, translateStoreError(err, ErrReportNotFound)
	}
	log.Printf("[Report] status of %s set to %s by %s", report.ID, report.Status, actor.UserID)

	if s.notifier != nil {
		go s.notifyStatusChange(*report)
	}
	return report, nil
}

// notifyStatusChange 尽力而为，失败只记录日志
func (s *reportService) notifyStatusChange(report models.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	author, err := s.users.FindByID(ctx, report.UserID)
	if err != nil {
		log.Printf("[Report] status notification skipped for %s: author lookup failed: %v", report.ID, err)
		return
	}
	if err := s.notifier.NotifyStatusChange(ctx, *author, report); err != nil {
		log.Printf("[Report] status notification for %s failed: %v", report.ID, err)
	}
}

func (s *reportService) ToggleUpvote(ctx context.Context, id, userID string) (*models.Report, error) {
	report, added, err := s.reports.ToggleUpvote(ctx, id, userID)
	if err != nil {
		return nil, translateStoreError(err, ErrReportNotFound)
	}
	action := "removed"
	if added {
		action = "added"
	}
	log.Printf("[Report] upvote %s on %s by %s (count %d)", action, report.ID, userID, report.UpvoteCount)
	return report, nil
}

// GetVerifiedReports 返回点赞数最多的报告，每次请求实时计算
func (s *reportService) GetVerifiedReports(ctx context.Context) ([]models.ReportWithAuthor, error) {
	reports, err := s.reports.FindTopUpvoted(ctx, VerifiedReportsLimit)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, reports)
}

func (s *reportService) GetNearbyReports(ctx context.Context, lat, lng, radiusKm float64) ([]models.ReportWithAuthor, error) {
	center := models.Location{Latitude: lat, Longitude: lng}
	if err := center.Validate(); err != nil {
		return nil, newValidationError(CodeInvalidCoordinates, err.Error())
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if radiusKm > MaxNearbyRadiusKm {
		radiusKm = MaxNearbyRadiusKm
	}
	reports, err := s.reports.FindNearby(ctx, lat, lng, radiusKm*1000, nearbyResultLimit)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, reports)
}

// withAuthors 批量查询作者并附加到报告上，作者缺失时 Author 为 nil
func (s *reportService) withAuthors(ctx context.Context, reports []models.Report) ([]models.ReportWithAuthor, error) {
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.UserID
	}
	authors, err := s.users.FindByIDs(ctx, utils.UniqueStrings(ids))
	if err != nil {
		return nil, err
	}

	enriched := make([]models.ReportWithAuthor, len(reports))
	for i, r := range reports {
		enriched[i] = models.ReportWithAuthor{Report: r}
		if u, ok := authors[r.UserID]; ok {
			enriched[i].Author = u.Summary()
		}
	}
	return enriched, nil
}

// normalizeText 去除首尾空白并统一为 NFC 形式
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
