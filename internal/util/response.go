package util

import (
	"net/http"
	"sqlprep_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 响应形态沿用前端既有的约定：
// 成功 {"message": ...}（可附加字段），失败 {"error": ...}。

func Message(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func LogInternalError(c *gin.Context, message string, err error) {
	logger.Log.Error(message, zap.Error(err), zap.String("path", c.FullPath()))
	Error(c, http.StatusInternalServerError, message)
}
