package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/services"
	"github.com/civicsight/pkg/utils"
)

// AuthHandler 封装了注册、登录、登出和个人资料的 HTTP 处理逻辑
type AuthHandler struct {
	service services.AuthService
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary 用户注册
// @Description 创建公民账号并返回 JWT
// @Tags auth
// @Accept  json
// @Produce  json
// @Param payload body RegisterRequest true "注册信息"
// @Success 201 {object} utils.SuccessResponse{data=services.AuthResult} "注册成功，返回 Token 和用户信息"
// @Failure 400 {object} utils.APIErrorResponse "MISSING_FIELDS / VALIDATION_ERROR"
// @Failure 409 {object} utils.APIErrorResponse "USER_EXISTS"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	result, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "注册失败")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, result, "User registered successfully")
}

// Login godoc
// @Summary 用户登录
// @Description 验证邮箱和密码并返回 JWT
// @Tags auth
// @Accept  json
// @Produce  json
// @Param credentials body LoginRequest true "登录凭证"
// @Success 200 {object} utils.SuccessResponse{data=services.AuthResult} "登录成功，返回 Token 和用户信息"
// @Failure 400 {object} utils.APIErrorResponse "请求参数错误"
// @Failure 401 {object} utils.APIErrorResponse "INVALID_CREDENTIALS"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "登录失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, result, "登录成功")
}

// Logout godoc
// @Summary User logout
// @Description Logs out the current user by invalidating their token.
// @Tags auth
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} utils.SuccessResponse "成功登出"
// @Failure 400 {object} utils.APIErrorResponse "错误的请求 (例如，上下文中缺少JTI或EXP)"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString(auth.ContextJTIKey)
	expVal, expExists := c.Get(auth.ContextExpKey)
	if jti == "" || !expExists {
		utils.RespondValidationError(c, "Logout context error: JTI or EXP not found in context")
		return
	}
	exp, ok := expVal.(time.Time)
	if !ok {
		utils.RespondValidationError(c, "Logout context error: Invalid EXP")
		return
	}

	auth.AddToDenylist(jti, exp)
	utils.RespondSuccess(c, http.StatusOK, nil, "成功登出")
}

// Profile godoc
// @Summary 个人资料
// @Description 返回当前用户的资料以及由其报告计算的统计
// @Tags auth
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} utils.SuccessResponse{data=services.Profile} "个人资料"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Failure 404 {object} utils.APIErrorResponse "用户未找到"
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		utils.RespondUnauthorizedError(c)
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), actor.UserID)
	if err != nil {
		respondServiceError(c, err, "获取个人资料失败")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, profile, "")
}
