package admin

import (
	"strconv"

	"github.com/bookvine/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("admin_id")
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

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "参数无效", err)
		return 0, false
	}
	return uint(id), true
}
