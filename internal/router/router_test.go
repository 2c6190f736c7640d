package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/http/response"
	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/provider"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// newStorefrontRouter 组装完整路由：内存库 + 关闭 redis/queue。
func newStorefrontRouter(t *testing.T, name string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	if err := models.InitDB("sqlite", dsn, models.DBPoolConfig{}); err != nil {
		t.Fatalf("init db failed: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	cfg.JWT.SecretKey = "admin-secret-0123456789012345678901234567"
	cfg.JWT.ExpireHours = 1
	cfg.UserJWT.SecretKey = "user-secret-9876543210987654321098765432"
	cfg.UserJWT.ExpireHours = 1
	cfg.UserJWT.RememberMeExpireHours = 168
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8}
	cfg.Security.LoginRateLimit.WindowSeconds = 60
	cfg.Security.LoginRateLimit.MaxAttempts = 1

	return SetupRouter(cfg, provider.NewContainer(cfg))
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, token string) envelope {
	t.Helper()
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: http status want 200 got %d", method, path, w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: unmarshal response failed: %v", method, path, err)
	}
	return resp
}

func TestUserAuthFlowThroughRouter(t *testing.T) {
	r := newStorefrontRouter(t, "router_user_flow")

	resp := doJSON(t, r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"reader@example.com","password":"sturdy-pass-1","display_name":"Reader"}`, "")
	if resp.StatusCode != 0 {
		t.Fatalf("register status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}

	resp = doJSON(t, r, http.MethodPost, "/api/v1/auth/login",
		`{"email":"reader@example.com","password":"sturdy-pass-1"}`, "")
	if resp.StatusCode != 0 {
		t.Fatalf("login status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &login); err != nil || login.Token == "" {
		t.Fatalf("expected login token, err=%v data=%s", err, resp.Data)
	}

	resp = doJSON(t, r, http.MethodGet, "/api/v1/me", "", login.Token)
	if resp.StatusCode != 0 {
		t.Fatalf("profile status_code want 0 got %d", resp.StatusCode)
	}
	var profile struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(resp.Data, &profile); err != nil || profile.Email != "reader@example.com" {
		t.Fatalf("unexpected profile: err=%v data=%s", err, resp.Data)
	}

	// 未携带 token
	resp = doJSON(t, r, http.MethodGet, "/api/v1/me", "", "")
	if resp.StatusCode != response.CodeUnauthorized {
		t.Fatalf("missing token status_code want 401 got %d", resp.StatusCode)
	}

	// 用户 token 不能进后台（密钥不同）
	resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", "", login.Token)
	if resp.StatusCode != response.CodeUnauthorized {
		t.Fatalf("user token on admin route status_code want 401 got %d", resp.StatusCode)
	}
}

func TestAdminAuthFlowThroughRouter(t *testing.T) {
	r := newStorefrontRouter(t, "router_admin_flow")
	if err := models.InitDefaultAdmin("boss", "sturdy-admin-1"); err != nil {
		t.Fatalf("init admin failed: %v", err)
	}

	resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/login",
		`{"username":"boss","password":"wrong-pass-1"}`, "")
	if resp.StatusCode != response.CodeUnauthorized {
		t.Fatalf("wrong password status_code want 401 got %d", resp.StatusCode)
	}

	resp = doJSON(t, r, http.MethodPost, "/api/v1/admin/login",
		`{"username":"boss","password":"sturdy-admin-1"}`, "")
	if resp.StatusCode != 0 {
		t.Fatalf("admin login status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &login); err != nil || login.Token == "" {
		t.Fatalf("expected admin token, err=%v data=%s", err, resp.Data)
	}

	resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", "", login.Token)
	if resp.StatusCode != 0 {
		t.Fatalf("admin profile status_code want 0 got %d", resp.StatusCode)
	}
	var profile struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(resp.Data, &profile); err != nil || profile.Username != "boss" {
		t.Fatalf("unexpected admin profile: err=%v data=%s", err, resp.Data)
	}

	resp = doJSON(t, r, http.MethodGet, "/api/v1/admin/profile", "", "")
	if resp.StatusCode != response.CodeUnauthorized {
		t.Fatalf("missing admin token status_code want 401 got %d", resp.StatusCode)
	}

	// 非 Bearer 头直接拒绝
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/profile", nil)
	req.Header.Set("Authorization", "Token "+login.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var malformed envelope
	if err := json.Unmarshal(w.Body.Bytes(), &malformed); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if malformed.StatusCode != response.CodeUnauthorized {
		t.Fatalf("malformed header status_code want 401 got %d", malformed.StatusCode)
	}
}

func TestCORSPreflightOnPublicRoute(t *testing.T) {
	r := newStorefrontRouter(t, "router_cors")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/public/books", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	// 默认配置放开所有来源
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow origin want * got %s", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Fatalf("allow headers should include Authorization, got %s", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestRequestIDOnHealthRoute(t *testing.T) {
	r := newStorefrontRouter(t, "router_request_id")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health status want 200 got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") != "req-abc" {
		t.Fatalf("request id want req-abc got %s", w.Header().Get("X-Request-ID"))
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/health", nil))
	if strings.TrimSpace(w2.Header().Get("X-Request-ID")) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}
