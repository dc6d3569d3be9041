package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/services"
	"github.com/civicsight/pkg/utils"
)

// CommentHandler 封装了报告评论相关的 HTTP 处理逻辑
type CommentHandler struct {
	service services.CommentService
}

// NewCommentHandler 创建一个新的 CommentHandler 实例
func NewCommentHandler(service services.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// CreateCommentPayload 是发表评论的请求体
type CreateCommentPayload struct {
	Text string `json:"text"`
}

// CreateComment godoc
// @Summary 发表评论
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "报告 ID"
// @Param payload body CreateCommentPayload true "评论内容"
// @Success 201 {object} utils.SuccessResponse{data=models.CommentWithAuthor} "创建成功的评论"
// @Failure 400 {object} utils.APIErrorResponse "EMPTY_COMMENT / VALIDATION_ERROR"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "报告未找到"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/{id}/comments [post]
// @Security BearerAuth
func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		utils.RespondUnauthorizedError(c)
		return
	}
	var payload CreateCommentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), c.Param("id"), actor.UserID, payload.Text)
	if err != nil {
		respondServiceError(c, err, "发表评论失败")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, comment, "Comment added successfully")
}

// GetComments godoc
// @Summary 获取报告评论
// @Description 按创建时间倒序返回评论，附带作者信息
// @Tags Comments
// @Produce json
// @Param id path string true "报告 ID"
// @Success 200 {object} utils.SuccessResponse{data=[]models.CommentWithAuthor} "评论列表"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "报告未找到"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /reports/{id}/comments [get]
// @Security BearerAuth
func (h *CommentHandler) GetComments(c *gin.Context) {
	comments, err := h.service.GetComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "获取评论失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, comments, "")
}
