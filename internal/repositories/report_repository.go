package repositories

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/civicsight/internal/models"
	"gorm.io/gorm"
)

// ErrRecordNotFound 表示记录未找到，可以重用 gorm 的错误或自定义
var ErrRecordNotFound = gorm.ErrRecordNotFound

// ReportRepository 定义了报告数据仓库的接口
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	// FindAll 按创建时间倒序返回报告，limit <= 0 表示不限制数量
	FindAll(ctx context.Context, limit int) ([]models.Report, error)
	FindByUserID(ctx context.Context, userID string) ([]models.Report, error)
	// FindTopUpvoted 返回 upvoteCount > 0 的报告，按点赞数倒序
	FindTopUpvoted(ctx context.Context, limit int) ([]models.Report, error)
	// FindNearby 返回距离给定坐标 radiusMeters 以内的报告，由近到远
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error)
	// ToggleUpvote 原子地切换用户的点赞状态并重算 upvoteCount，added 表示本次为新增点赞
	ToggleUpvote(ctx context.Context, id, userID string) (report *models.Report, added bool, err error)
}

// gormReportRepository 是 ReportRepository 的 GORM 实现
type gormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository 创建一个新的 gormReportRepository 实例
func NewGormReportRepository(db *gorm.DB) ReportRepository {
	return &gormReportRepository{db: db}
}

// Create 在数据库中创建一个新的报告记录
func (r *gormReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.Upvotes == nil {
		report.Upvotes = []string{}
	}
	return r.db.WithContext(ctx).Create(report).Error
}

// FindByID 根据 ID 查询报告及其点赞用户
func (r *gormReportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	reports := []models.Report{report}
	if err := r.loadUpvotes(ctx, reports); err != nil {
		return nil, err
	}
	return &reports[0], nil
}

func (r *gormReportRepository) FindAll(ctx context.Context, limit int) ([]models.Report, error) {
	query := r.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.find(ctx, query)
}

func (r *gormReportRepository) FindByUserID(ctx context.Context, userID string) ([]models.Report, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc"))
}

func (r *gormReportRepository) FindTopUpvoted(ctx context.Context, limit int) ([]models.Report, error) {
	query := r.db.WithContext(ctx).
		Where("upvote_count > ?", 0).
		Order("upvote_count desc").
		Order("created_at desc").
		Limit(limit)
	return r.find(ctx, query)
}

// FindNearby 先用经纬度包围盒缩小范围，再按球面距离精确过滤和排序
func (r *gormReportRepository) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]models.Report, error) {
	minLat, maxLat, minLng, maxLng := models.BoundingBox(lat, lng, radiusMeters)
	candidates, err := r.find(ctx, r.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng))
	if err != nil {
		return nil, err
	}

	type scored struct {
		report   models.Report
		distance float64
	}
	within := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		d := models.HaversineMeters(lat, lng, c.Location.Latitude, c.Location.Longitude)
		if d <= radiusMeters {
			within = append(within, scored{report: c, distance: d})
		}
	}
	sort.SliceStable(within, func(i, j int) bool { return within[i].distance < within[j].distance })

	n := len(within)
	if limit > 0 && n > limit {
		n = limit
	}
	reports := make([]models.Report, 0, n)
	for _, s := range within[:n] {
		reports = append(reports, s.report)
	}
	return reports, nil
}

// UpdateStatus 更新报告状态，不经过创建钩子
func (r *gormReportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	res := r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// ToggleUpvote 在同一事务中切换 report_upvotes 中的成员关系并从该表重算 upvote_count，
// 计数始终来源于集合本身，不会与集合不一致。
func (r *gormReportRepository) ToggleUpvote(ctx context.Context, id, userID string) (*models.Report, bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Report{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrRecordNotFound
		}

		res := tx.Where("report_id = ? AND user_id = ?", id, userID).Delete(&models.ReportUpvote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.ReportUpvote{ReportID: id, UserID: userID}).Error; err != nil {
				return err
			}
			added = true
		}

		return tx.Exec(
			"UPDATE reports SET upvote_count = (SELECT COUNT(*) FROM report_upvotes WHERE report_id = ?), updated_at = ? WHERE id = ?",
			id, time.Now(), id,
		).Error
	})
	if err != nil {
		return nil, false, err
	}

	report, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return report, added, nil
}

func (r *gormReportRepository) find(ctx context.Context, query *gorm.DB) ([]models.Report, error) {
	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	if err := r.loadUpvotes(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// loadUpvotes 批量加载报告的点赞用户
func (r *gormReportRepository) loadUpvotes(ctx context.Context, reports []models.Report) error {
	if len(reports) == 0 {
		return nil
	}
	ids := make([]string, len(reports))
	for i := range reports {
		ids[i] = reports[i].ID
		reports[i].Upvotes = []string{}
	}

	var rows []models.ReportUpvote
	if err := r.db.WithContext(ctx).Where("report_id IN ?", ids).Order("created_at asc").Find(&rows).Error; err != nil {
		return err
	}

	byReport := make(map[string][]string, len(reports))
	for _, row := range rows {
		byReport[row.ReportID] = append(byReport[row.ReportID], row.UserID)
	}
	for i := range reports {
		if upvotes, ok := byReport[reports[i].ID]; ok {
			reports[i].Upvotes = upvotes
		}
	}
	return nil
}

// IsNotFound 判断错误是否为记录未找到
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
