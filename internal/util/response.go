package util

import (
	"errors"
	"net/http"

	"github.com/kmshistory/kmshistory-v2/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}

func NewPageResponse(list interface{}, total int64, page, limit int) PageResponse {
	totalPages := 1
	if total > 0 && limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageResponse{List: list, Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// HandleServiceError 按错误类别映射状态码，未识别的一律按 500 处理并记日志。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrBundleNotFound),
		errors.Is(err, ErrTopicNotFound),
		errors.Is(err, ErrNoQuestionForFilter):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTopicNameTaken),
		errors.Is(err, ErrTopicInUse),
		errors.Is(err, ErrQuestionHasHistory):
		Conflict(c, err.Error())
	case errors.Is(err, ErrQuestionTextRequired),
		errors.Is(err, ErrCorrectAnswerRequired),
		errors.Is(err, ErrInvalidQuestionType),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidDifficulty),
		errors.Is(err, ErrTooFewChoices),
		errors.Is(err, ErrNoCorrectChoiceFlag),
		errors.Is(err, ErrUnknownTopic),
		errors.Is(err, ErrTopicNameRequired),
		errors.Is(err, ErrBundleTitleRequired),
		errors.Is(err, ErrInvalidProgressCounts),
		errors.Is(err, ErrImageEmpty),
		errors.Is(err, ErrImageTooLarge),
		errors.Is(err, ErrImageBadExtension):
		BadRequest(c, err.Error())
	default:
		LogInternalError(c, err)
	}
}
