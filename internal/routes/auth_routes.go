package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/handlers"
)

// SetupAuthRoutes 设置认证相关路由
func SetupAuthRoutes(apiV1 *gin.RouterGroup, h *handlers.AuthHandler, tokens *auth.TokenManager) {
	// 公共认证路由组 (注册、登录)
	publicAuthGroup := apiV1.Group("/auth")
	{
		publicAuthGroup.POST("/register", h.Register)
		publicAuthGroup.POST("/login", h.Login)
	}

	// 受保护的认证路由组 (登出、个人资料)
	protectedAuthGroup := apiV1.Group("/auth")
	protectedAuthGroup.Use(auth.JWTMiddleware(tokens))
	{
		protectedAuthGroup.POST("/logout", h.Logout)
		protectedAuthGroup.GET("/profile", h.Profile)
	}
}
