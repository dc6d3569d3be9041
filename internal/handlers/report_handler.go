package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/models"
	"github.com/civicsight/internal/services"
	"github.com/civicsight/pkg/media"
	"github.com/civicsight/pkg/utils"
)

// MediaStore 保存上传的附件并返回可公开访问的 URL。Delete 删除由 Save 返回的 URL 对应的文件。
type MediaStore interface {
	Save(r io.Reader, kind media.Kind) (string, error)
	Delete(url string) error
}

// ReportHandler 封装了报告相关的 HTTP 处理逻辑
type ReportHandler struct {
	service services.ReportService
	store   MediaStore
}

// NewReportHandler 创建一个新的 ReportHandler 实例。store 为 nil 时只接受预先上传的 URL。
func NewReportHandler(service services.ReportService, store MediaStore) *ReportHandler {
	return &ReportHandler{service: service, store: store}
}

// reportPayload 是 JSON 方式提交报告时的请求体，媒体以预先上传的 URL 给出
type reportPayload struct {
	ImageURL    string   `json:"imageUrl"`
	AudioURL    string   `json:"audioUrl"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	ZipCode     string   `json:"zipCode"`
}

// reportRequest 是从 multipart 表单或 JSON 中解析出的统一请求
type reportRequest struct {
	imageURL    string
	audioURL    string
	description string
	location    models.Location
	// uploaded 是本次请求保存的文件，请求失败时需要删除
	uploaded []string
}

// UpdateStatusPayload 是修改报告状态的请求体
type UpdateStatusPayload struct {
	Status string `json:"status" binding:"required"`
}

// CreateImageReport godoc
// @Summary 提交图片报告
// @Description 上传图片（multipart 字段 image）或提供 imageUrl，附带描述和坐标。分类服务不可用时仍会创建报告，使用默认分类。
// @Tags Reports
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param image formData file false "图片文件"
// @Param audio formData file false "可选的语音附件"
// @Param imageUrl formData string false "预先上传的图片 URL"
// @Param description formData string true "问题描述"
// @Param latitude formData number true "纬度"
// @Param longitude formData number true "经度"
// @Param address formData string false "地址"
// @Param city formData string false "城市"
// @Param state formData string false "州/省"
// @Param zipCode formData string false "邮编"
// @Success 201 {object} utils.SuccessResponse{data=models.Report} "创建成功的报告"
// @Failure 400 {object} utils.APIErrorResponse "MISSING_IMAGE / MISSING_FIELDS / INVALID_COORDINATES / VALIDATION_ERROR"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports [post]
// @Security BearerAuth
func (h *ReportHandler) CreateImageReport(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		utils.RespondUnauthorizedError(c)
		return
	}

	req, ok := h.bindReportRequest(c, "image", media.KindImage, services.CodeMissingImage, true)
	if !ok {
		return
	}

	report, err := h.service.CreateImageReport(c.Request.Context(), services.CreateImageReportInput{
		UserID:      actor.UserID,
		ImageURL:    req.imageURL,
		AudioURL:    req.audioURL,
		Description: req.description,
		Location:    req.location,
	})
	if err != nil {
		h.discardUploads(req.uploaded)
		respondServiceError(c, err, "创建报告失败")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, report, "Report created successfully")
}

// CreateAudioReport godoc
// @Summary 提交语音报告
// @Description 上传语音（multipart 字段 audio）或提供 audioUrl。描述由转写结果生成，转写失败时使用占位描述。
// @Tags Reports
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param audio formData file false "语音文件"
// @Param image formData file false "可选的图片附件"
// @Param audioUrl formData string false "预先上传的语音 URL"
// @Param latitude formData number true "纬度"
// @Param longitude formData number true "经度"
// @Param address formData string false "地址"
// @Param city formData string false "城市"
// @Param state formData string false "州/省"
// @Param zipCode formData string false "邮编"
// @Success 201 {object} utils.SuccessResponse{data=models.Report} "创建成功的报告"
// @Failure 400 {object} utils.APIErrorResponse "MISSING_AUDIO / MISSING_FIELDS / INVALID_COORDINATES / VALIDATION_ERROR"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 422 {object} utils.APIErrorResponse "NON_CIVIC_ISSUE"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/audio [post]
// @Security BearerAuth
func (h *ReportHandler) CreateAudioReport(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		utils.RespondUnauthorizedError(c)
		return
	}

	req, ok := h.bindReportRequest(c, "audio", media.KindAudio, services.CodeMissingAudio, false)
	if !ok {
		return
	}

	report, err := h.service.CreateAudioReport(c.Request.Context(), services.CreateAudioReportInput{
		UserID:   actor.UserID,
		AudioURL: req.audioURL,
		ImageURL: req.imageURL,
		Location: req.location,
	})
	if err != nil {
		h.discardUploads(req.uploaded)
		respondServiceError(c, err, "创建语音报告失败")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, report, "Audio report created successfully")
}

// bindReportRequest 解析请求并按 主媒体 → 必填字段 → 坐标 的顺序校验，全部通过后才保存上传文件。
// 返回 false 时已写入错误响应，且本次保存的文件已被删除。
func (h *ReportHandler) bindReportRequest(c *gin.Context, primary string, primaryKind media.Kind, missingCode string, needsDescription bool) (*reportRequest, bool) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		return h.bindJSONReport(c, primary, missingCode, needsDescription)
	}

	primaryURLField := primary + "Url"
	hasPrimary := hasFormFile(c, primary) || strings.TrimSpace(c.PostForm(primaryURLField)) != ""
	if !hasPrimary {
		utils.RespondCodedValidationError(c, missingCode, "an "+primary+" is required")
		return nil, false
	}

	description := c.PostForm("description")
	if needsDescription && strings.TrimSpace(description) == "" {
		utils.RespondCodedValidationError(c, services.CodeMissingFields, "description, latitude and longitude are required")
		return nil, false
	}
	location, ok := parseLocation(c, c.PostForm("latitude"), c.PostForm("longitude"))
	if !ok {
		return nil, false
	}
	location.Address = c.PostForm("address")
	location.City = c.PostForm("city")
	location.State = c.PostForm("state")
	location.ZipCode = c.PostForm("zipCode")

	req := &reportRequest{description: description, location: location}
	var err error
	if req.imageURL, err = h.resolveMedia(c, req, "image", media.KindImage); err != nil {
		respondMediaError(c, err)
		return nil, false
	}
	if req.audioURL, err = h.resolveMedia(c, req, "audio", media.KindAudio); err != nil {
		h.discardUploads(req.uploaded)
		respondMediaError(c, err)
		return nil, false
	}
	if primaryKind == media.KindImage && req.imageURL == "" || primaryKind == media.KindAudio && req.audioURL == "" {
		h.discardUploads(req.uploaded)
		utils.RespondCodedValidationError(c, missingCode, "an "+primary+" is required")
		return nil, false
	}
	return req, true
}

func (h *ReportHandler) bindJSONReport(c *gin.Context, primary, missingCode string, needsDescription bool) (*reportRequest, bool) {
	var payload reportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && (typeErr.Field == "latitude" || typeErr.Field == "longitude") {
			utils.RespondCodedValidationError(c, services.CodeInvalidCoordinates, "latitude and longitude must be valid numbers")
			return nil, false
		}
		utils.RespondValidationError(c, "request body is not valid JSON")
		return nil, false
	}
	primaryURL := payload.ImageURL
	if primary == "audio" {
		primaryURL = payload.AudioURL
	}
	if strings.TrimSpace(primaryURL) == "" {
		utils.RespondCodedValidationError(c, missingCode, "an "+primary+" is required")
		return nil, false
	}
	if (needsDescription && strings.TrimSpace(payload.Description) == "") || payload.Latitude == nil || payload.Longitude == nil {
		utils.RespondCodedValidationError(c, services.CodeMissingFields, "description, latitude and longitude are required")
		return nil, false
	}
	return &reportRequest{
		imageURL:    payload.ImageURL,
		audioURL:    payload.AudioURL,
		description: payload.Description,
		location: models.Location{
			Latitude:  *payload.Latitude,
			Longitude: *payload.Longitude,
			Address:   payload.Address,
			City:      payload.City,
			State:     payload.State,
			ZipCode:   payload.ZipCode,
		},
	}, true
}

// resolveMedia 优先保存上传的文件，否则使用 {field}Url 表单字段。保存的文件记录在 req.uploaded 中。
func (h *ReportHandler) resolveMedia(c *gin.Context, req *reportRequest, field string, kind media.Kind) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return strings.TrimSpace(c.PostForm(field + "Url")), nil
	}
	if h.store == nil {
		return "", errors.New("file uploads are not enabled")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	url, err := h.store.Save(f, kind)
	if err != nil {
		return "", err
	}
	req.uploaded = append(req.uploaded, url)
	return url, nil
}

// discardUploads 删除请求失败前已经保存的文件，失败只记录日志
func (h *ReportHandler) discardUploads(urls []string) {
	for _, url := range urls {
		if err := h.store.Delete(url); err != nil {
			log.Printf("[Report] failed to remove upload %s: %v", url, err)
		}
	}
}

func hasFormFile(c *gin.Context, field string) bool {
	_, err := c.FormFile(field)
	return err == nil
}

func respondMediaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, media.ErrUnsupportedMedia), errors.Is(err, media.ErrTooLarge), errors.Is(err, media.ErrEmptyFile):
		utils.RespondCodedValidationError(c, utils.CodeValidation, err.Error())
	default:
		respondServiceError(c, err, "保存上传文件失败")
	}
}

// parseLocation 解析经纬度：缺失返回 MISSING_FIELDS，无法解析或超出范围返回 INVALID_COORDINATES
func parseLocation(c *gin.Context, rawLat, rawLng string) (models.Location, bool) {
	lat, latErr := utils.ParseCoordinate(rawLat)
	lng, lngErr := utils.ParseCoordinate(rawLng)
	if errors.Is(latErr, utils.ErrMissingCoordinate) || errors.Is(lngErr, utils.ErrMissingCoordinate) {
		utils.RespondCodedValidationError(c, services.CodeMissingFields, "latitude and longitude are required")
		return models.Location{}, false
	}
	if latErr != nil || lngErr != nil {
		utils.RespondCodedValidationError(c, services.CodeInvalidCoordinates, "latitude and longitude must be valid numbers")
		return models.Location{}, false
	}
	loc := models.Location{Latitude: lat, Longitude: lng}
	if err := loc.Validate(); err != nil {
		utils.RespondCodedValidationError(c, services.CodeInvalidCoordinates, err.Error())
		return models.Location{}, false
	}
	return loc, true
}

// GetReports godoc
// @Summary 获取全部报告
// @Description 按创建时间倒序返回所有报告，附带作者信息
// @Tags Reports
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]models.ReportWithAuthor} "报告列表"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports [get]
// @Security BearerAuth
func (h *ReportHandler) GetReports(c *gin.Context) {
	reports, err := h.service.GetReports(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "获取报告列表失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, reports, "")
}

// GetMyReports godoc
// @Summary 获取我的报告
// @Description 返回当前用户的报告及按状态统计的数量
// @Tags Reports
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=services.MyReportsResult} "报告及统计"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/my [get]
// @Security BearerAuth
func (h *ReportHandler) GetMyReports(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		utils.RespondUnauthorizedError(c)
		return
	}
	result, err := h.service.GetMyReports(c.Request.Context(), actor.UserID)
	if err != nil {
		respondServiceError(c, err, "获取我的报告失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result, "")
}

// GetVerifiedReports godoc
// @Summary 获取已验证报告
// @Description 返回点赞数大于 0 的前 10 条报告，按点赞数降序
// @Tags Reports
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]models.ReportWithAuthor} "报告列表"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/verified [get]
// @Security BearerAuth
func (h *ReportHandler) GetVerifiedReports(c *gin.Context) {
	reports, err := h.service.GetVerifiedReports(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "获取已验证报告失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, reports, "")
}

// GetNearbyReports godoc
// @Summary 获取附近的报告
// @Description 返回指定半径内的报告，按距离由近到远排序
// @Tags Reports
// @Produce json
// @Param lat query number true "纬度"
// @Param lng query number true "经度"
// @Param radiusKm query number false "半径（公里），默认 5，最大 50"
// @Success 200 {object} utils.SuccessResponse{data=[]models.ReportWithAuthor} "报告列表"
// @Failure 400 {object} utils.APIErrorResponse "MISSING_FIELDS / INVALID_COORDINATES"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/nearby [get]
// @Security BearerAuth
func (h *ReportHandler) GetNearbyReports(c *gin.Context) {
	center, ok := parseLocation(c, c.Query("lat"), c.Query("lng"))
	if !ok {
		return
	}
	radiusKm := 0.0
	if raw := c.Query("radiusKm"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			utils.RespondValidationError(c, "radiusKm must be a number")
			return
		}
		radiusKm = v
	}

	reports, err := h.service.GetNearbyReports(c.Request.Context(), center.Latitude, center.Longitude, radiusKm)
	if err != nil {
		respondServiceError(c, err, "获取附近报告失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, reports, "")
}

// GetReportByID godoc
// @Summary 获取报告详情
// @Tags Reports
// @Produce json
// @Param id path string true "报告 ID"
// @Success 200 {object} utils.SuccessResponse{data=models.ReportWithAuthor} "报告详情"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "报告未找到"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/{id} [get]
// @Security BearerAuth
func (h *ReportHandler) GetReportByID(c *gin.Context) {
	report, err := h.service.GetReportByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "获取报告详情失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, report, "")
}

// UpdateReportStatus godoc
// @Summary 修改报告状态
// @Description 状态可在 pending、in_progress、completed、rejected 之间任意切换
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "报告 ID"
// @Param payload body UpdateStatusPayload true "新状态"
// @Success 200 {object} utils.SuccessResponse{data=models.Report} "更新后的报告"
// @Failure 400 {object} utils.APIErrorResponse "INVALID_STATUS"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 403 {object} utils.APIErrorResponse "无权修改状态"
// @Failure 404 {object} utils.APIErrorResponse "报告未找到"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/{id}/status [put]
// @Security BearerAuth
func (h *ReportHandler) UpdateReportStatus(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		utils.RespondUnauthorizedError(c)
		return
	}
	var payload UpdateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondCodedValidationError(c, services.CodeInvalidStatus, "status is required")
		return
	}

	report, err := h.service.UpdateStatus(c.Request.Context(), actor, c.Param("id"), payload.Status)
	if err != nil {
		respondServiceError(c, err, "修改报告状态失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, report, "Report status updated successfully")
}

// ToggleUpvote godoc
// @Summary 点赞/取消点赞
// @Description 当前用户未点赞时添加，已点赞时取消。upvoteCount 始终等于 upvotes 的数量。
// @Tags Reports
// @Produce json
// @Param id path string true "报告 ID"
// @Success 200 {object} utils.SuccessResponse{data=models.Report} "更新后的报告"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "报告未找到"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/{id}/upvote [put]
// @Security BearerAuth
func (h *ReportHandler) ToggleUpvote(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		utils.RespondUnauthorizedError(c)
		return
	}
	report, err := h.service.ToggleUpvote(c.Request.Context(), c.Param("id"), actor.UserID)
	if err != nil {
		respondServiceError(c, err, "点赞失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, report, "")
}
