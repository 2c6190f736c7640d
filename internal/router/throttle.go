package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bookvine/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ThrottleKeyFunc 计算限流维度 key
type ThrottleKeyFunc func(*gin.Context) string

// ThrottleRule 固定窗口限流规则
type ThrottleRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	Message       string
}

func (r ThrottleRule) active() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r ThrottleRule) rejectMessage(ttl int64) string {
	wait := int(ttl)
	if wait < 1 {
		wait = r.WindowSeconds
	}
	if wait < 1 {
		wait = 1
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "请求过于频繁"
	}
	return fmt.Sprintf("%s，请 %d 秒后再试", msg, wait)
}

// 固定窗口计数：首次自增时设置过期，返回当前计数与剩余秒数
const throttleLua = `
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("TTL", KEYS[1])}
`

var throttleScript = redis.NewScript(throttleLua)

// Throttle Redis 固定窗口限流中间件。
// Redis 不可用时直接拒绝，避免登录口令爆破绕过限流。
func Throttle(client *redis.Client, rule ThrottleRule, keyFunc ThrottleKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.active() {
			c.Next()
			return
		}

		hits, ttl, err := countThrottleHit(c, client, rule, keyFunc)
		if err != nil {
			response.Error(c, response.CodeInternal, "限流服务不可用")
			c.Abort()
			return
		}
		if hits > int64(rule.MaxRequests) {
			response.Error(c, response.CodeTooManyRequests, rule.rejectMessage(ttl))
			c.Abort()
			return
		}
		c.Next()
	}
}

func countThrottleHit(c *gin.Context, client *redis.Client, rule ThrottleRule, keyFunc ThrottleKeyFunc) (int64, int64, error) {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if rule.Prefix != "" {
		key = rule.Prefix + ":" + key
	}

	result, err := throttleScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Result()
	if err != nil {
		return 0, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return 0, 0, fmt.Errorf("unexpected throttle reply: %T", result)
	}
	hits, ok := scriptInt(values[0])
	if !ok {
		return 0, 0, fmt.Errorf("unexpected throttle hit count: %T", values[0])
	}
	ttl, _ := scriptInt(values[1])
	return hits, ttl, nil
}

// ThrottleByIP 按客户端 IP 限流
func ThrottleByIP(c *gin.Context) string {
	return c.ClientIP()
}

// ThrottleByJSONField 按请求体字段 + IP 组合限流，
// 登录接口用邮箱维度，单账号爆破换 IP 也会被拦。
func ThrottleByJSONField(field string) ThrottleKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(peekJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// peekJSONField 读取请求体中的字符串字段，并把 body 原样放回供后续 Bind 使用。
func peekJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	text, _ := payload[field].(string)
	return strings.TrimSpace(text)
}

func scriptInt(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
