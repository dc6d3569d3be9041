package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/handlers"
)

// SetupReportRoutes 设置报告与评论路由，全部需要认证
func SetupReportRoutes(apiV1 *gin.RouterGroup, reports *handlers.ReportHandler, comments *handlers.CommentHandler, tokens *auth.TokenManager) {
	reportGroup := apiV1.Group("/reports")
	reportGroup.Use(auth.JWTMiddleware(tokens))
	{
		reportGroup.POST("", reports.CreateImageReport)
		reportGroup.POST("/audio", reports.CreateAudioReport)
		reportGroup.GET("", reports.GetReports)
		reportGroup.GET("/my", reports.GetMyReports)
		reportGroup.GET("/verified", reports.GetVerifiedReports)
		reportGroup.GET("/nearby", reports.GetNearbyReports)
		reportGroup.GET("/:id", reports.GetReportByID)
		reportGroup.PUT("/:id/status", reports.UpdateReportStatus)
		reportGroup.PUT("/:id/upvote", reports.ToggleUpvote)

		reportGroup.POST("/:id/comments", comments.CreateComment)
		reportGroup.GET("/:id/comments", comments.GetComments)
	}
}

// SetupFeedRoutes 设置公开的订阅源路由
func SetupFeedRoutes(apiV1 *gin.RouterGroup, feed *handlers.FeedHandler) {
	apiV1.GET("/feed/reports.rss", feed.ReportsFeed)
}
