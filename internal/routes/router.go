package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/civicsight/docs" // 注册 swagger 文档
	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/handlers"
	"github.com/civicsight/pkg/utils"
)

// Handlers 汇总了路由需要的所有处理器
type Handlers struct {
	Auth     *handlers.AuthHandler
	Reports  *handlers.ReportHandler
	Comments *handlers.CommentHandler
	Feed     *handlers.FeedHandler
}

// Options 是路由的可选配置
type Options struct {
	// UploadDir 不为空时在 /uploads 下提供已上传的媒体文件
	UploadDir string
	// MaxUploadMB 限制 multipart 请求在内存中缓存的大小
	MaxUploadMB int64
	Swagger     bool
}

// NewRouter 创建 gin 引擎，注册中间件、健康检查和所有 API 路由
func NewRouter(h Handlers, tokens *auth.TokenManager, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("[API] panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		utils.RespondInternalServerError(c, "服务器内部错误")
	}))
	if opts.MaxUploadMB > 0 {
		router.MaxMultipartMemory = opts.MaxUploadMB << 20
	}

	router.GET("/healthz", func(c *gin.Context) {
		utils.RespondSuccess(c, http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, "")
	})
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}
	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	SetupRoutes(router, h, tokens)
	return router
}

// SetupRoutes 初始化所有 /api/v1 路由
func SetupRoutes(router *gin.Engine, h Handlers, tokens *auth.TokenManager) {
	apiV1 := router.Group("/api/v1")
	SetupAuthRoutes(apiV1, h.Auth, tokens)
	SetupReportRoutes(apiV1, h.Reports, h.Comments, tokens)
	SetupFeedRoutes(apiV1, h.Feed)
}
