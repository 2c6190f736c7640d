package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务状态码。HTTP 层统一返回 200，店面客户端按 status_code 分支处理。
const (
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

// Envelope 接口统一返回体
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// Pagination 列表接口的分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

type pageEnvelope struct {
	Envelope
	Pagination Pagination `json:"pagination"`
}

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Msg: "success", Data: data})
}

// SuccessWithMsg 成功返回，带提示文案
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Msg: msg, Data: data})
}

// SuccessWithPage 列表成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, pageEnvelope{
		Envelope:   Envelope{Msg: "success", Data: data},
		Pagination: pagination,
	})
}

// Error 业务错误返回
func Error(c *gin.Context, code int, msg string) {
	ErrorWithData(c, code, msg, nil)
}

// ErrorWithData 业务错误返回，data 附带 request_id 便于排查
func ErrorWithData(c *gin.Context, code int, msg string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		StatusCode: code,
		Msg:        msg,
		Data:       withRequestID(c, data),
	})
}

// Unauthorized 未认证或凭证无效
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

func withRequestID(c *gin.Context, data interface{}) interface{} {
	id := requestIDFrom(c)
	if id == "" {
		return data
	}
	switch v := data.(type) {
	case nil:
		return gin.H{"request_id": id}
	case gin.H:
		if _, ok := v["request_id"]; !ok {
			v["request_id"] = id
		}
		return v
	case map[string]interface{}:
		if _, ok := v["request_id"]; !ok {
			v["request_id"] = id
		}
		return v
	default:
		return gin.H{"request_id": id, "data": data}
	}
}

func requestIDFrom(c *gin.Context) string {
	if c == nil {
		return ""
	}
	value, ok := c.Get("request_id")
	if !ok {
		return ""
	}
	id, _ := value.(string)
	return id
}
