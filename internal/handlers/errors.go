package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civicsight/internal/services"
	"github.com/civicsight/pkg/utils"
)

// respondServiceError 将服务层错误映射为 HTTP 响应。
// 未知错误只在服务端记录详情，客户端收到通用描述。
func respondServiceError(c *gin.Context, err error, failMessage string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		switch ve.Code {
		case services.CodeUserExists:
			utils.RespondConflictError(c, ve.Code, ve.Message)
		case services.CodeInvalidCredentials:
			utils.RespondAPIError(c, http.StatusUnauthorized, ve.Code, ve.Message, nil)
		case services.CodeNonCivicIssue:
			utils.RespondAPIError(c, http.StatusUnprocessableEntity, ve.Code, ve.Message, nil)
		default:
			utils.RespondCodedValidationError(c, ve.Code, ve.Message)
		}
	case errors.Is(err, services.ErrReportNotFound):
		utils.RespondNotFoundError(c, "Report")
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondNotFoundError(c, "User")
	case errors.Is(err, services.ErrForbidden):
		utils.RespondForbiddenError(c, err.Error())
	default:
		log.Printf("[API] %s %s: %s: %v", c.Request.Method, c.FullPath(), failMessage, err)
		utils.RespondInternalServerError(c, failMessage)
	}
}
