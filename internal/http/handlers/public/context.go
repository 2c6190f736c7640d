package public

import (
	handlershared "github.com/bookvine/internal/http/handlers/shared"
	"github.com/bookvine/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		respondError(c, response.CodeUnauthorized, "未登录", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		respondError(c, response.CodeUnauthorized, "登录态无效", nil)
		return 0, false
	}
	return id, true
}
