package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/constants"
	"github.com/bookvine/internal/http/response"
	"github.com/bookvine/internal/repository"
	"github.com/bookvine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// corsPolicy 预计算的跨域响应头
type corsPolicy struct {
	origins     []string
	methods     string
	headers     string
	credentials bool
	maxAge      string
}

func newCORSPolicy(cfg config.CORSConfig) corsPolicy {
	p := corsPolicy{
		origins:     cfg.AllowedOrigins,
		credentials: cfg.AllowCredentials,
	}
	if len(p.origins) == 0 {
		p.origins = []string{"*"}
	}
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
		}
	}
	p.methods = strings.Join(methods, ", ")
	p.headers = strings.Join(headers, ", ")
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return p
}

// originFor 返回应答的 Allow-Origin。带凭证时不能回 *，改回显来源。
func (p corsPolicy) originFor(origin string) string {
	for _, allowed := range p.origins {
		if allowed == "*" {
			if p.credentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range p.origins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// CORSMiddleware 跨域中间件，预检请求直接 204 返回
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)

	return func(c *gin.Context) {
		header := c.Writer.Header()
		if origin := policy.originFor(c.GetHeader("Origin")); origin != "" {
			header.Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				header.Add("Vary", "Origin")
			}
		}
		if policy.credentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Methods", policy.methods)
		header.Set("Access-Control-Allow-Headers", policy.headers)
		if policy.maxAge != "" {
			header.Set("Access-Control-Max-Age", policy.maxAge)
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// RequestIDMiddleware 透传或生成请求 ID，写回响应头
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware 每个请求一条结构化访问日志
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		kv := []interface{}{
			"request_id", requestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			sugar.Errorw("request", append(kv, "errors", c.Errors.String())...)
			return
		}
		sugar.Infow("request", kv...)
	}
}

func requestID(c *gin.Context) string {
	if value, ok := c.Get(requestIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// JWTAuthMiddleware 后台鉴权：校验 token 并确认管理员仍存在
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" || adminRepo == nil {
			rejectAuth(c, "鉴权未配置")
			return
		}
		claims := &service.AdminClaims{}
		if !bearerClaims(c, secretKey, claims) {
			return
		}
		if claims.AdminID == 0 {
			rejectAuth(c, "token 无效")
			return
		}
		admin, err := adminRepo.GetByID(claims.AdminID)
		if err != nil || admin == nil {
			rejectAuth(c, "token 无效")
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// UserJWTAuthMiddleware 用户鉴权：token 有效且账号未被禁用
func UserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" || userRepo == nil {
			rejectAuth(c, "鉴权未配置")
			return
		}
		claims := &service.UserJWTClaims{}
		if !bearerClaims(c, secretKey, claims) {
			return
		}
		if claims.UserID == 0 {
			rejectAuth(c, "token 无效")
			return
		}
		user, err := userRepo.GetByID(claims.UserID)
		if err != nil || user == nil {
			rejectAuth(c, "token 无效")
			return
		}
		if strings.ToLower(strings.TrimSpace(user.Status)) != constants.UserStatusActive {
			rejectAuth(c, "账号已禁用")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}

// bearerClaims 从 Authorization 头解析 HS256 token，失败时已中止请求。
func bearerClaims(c *gin.Context, secretKey string, claims jwt.Claims) bool {
	header := c.GetHeader("Authorization")
	if header == "" {
		rejectAuth(c, "缺少认证信息")
		return false
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		rejectAuth(c, "认证格式错误")
		return false
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		rejectAuth(c, "token 无效")
		return false
	}
	return true
}

func rejectAuth(c *gin.Context, msg string) {
	response.Unauthorized(c, msg)
	c.Abort()
}
