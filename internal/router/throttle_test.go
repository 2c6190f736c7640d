package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bookvine/internal/http/response"

	"github.com/gin-gonic/gin"
)

func TestLoginThrottleKeyUsesCredentialAndIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":" Reader@Example.com ","password":"sturdy-pass-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "203.0.113.9:41000"

	key := ThrottleByJSONField("email")(c)
	if key != "reader@example.com|203.0.113.9" {
		t.Fatalf("throttle key want reader@example.com|203.0.113.9 got %s", key)
	}

	// body 须放回，后续登录参数仍可绑定
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		t.Fatalf("bind after key extraction failed: %v", err)
	}
	if req.Password != "sturdy-pass-1" {
		t.Fatalf("request body mangled: %+v", req)
	}

	// 无 body 时退回 IP 维度
	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	c2.Request.RemoteAddr = "203.0.113.9:41000"
	if key := ThrottleByJSONField("email")(c2); key != "203.0.113.9" {
		t.Fatalf("fallback key want 203.0.113.9 got %s", key)
	}
}

func TestLoginRouteWithoutRedisSkipsThrottle(t *testing.T) {
	r := newStorefrontRouter(t, "throttle_no_redis")

	// 限流窗口配置为 1 次/60s，但 redis 关闭时直接放行：
	// 连续两次错误登录都应得到 401 而非 429
	for i := 0; i < 2; i++ {
		resp := doJSON(t, r, http.MethodPost, "/api/v1/auth/login",
			`{"email":"nobody@example.com","password":"wrong-pass-1"}`, "")
		if resp.StatusCode != response.CodeUnauthorized {
			t.Fatalf("attempt %d: status_code want 401 got %d (%s)", i+1, resp.StatusCode, resp.Msg)
		}
	}
}

func TestThrottleRuleRejectMessage(t *testing.T) {
	rule := ThrottleRule{WindowSeconds: 60, MaxRequests: 5, Message: "登录尝试过于频繁"}
	if got := rule.rejectMessage(12); !strings.Contains(got, "12 秒") || !strings.Contains(got, rule.Message) {
		t.Fatalf("unexpected reject message: %s", got)
	}
	// TTL 缺失时退回窗口长度
	if got := rule.rejectMessage(0); !strings.Contains(got, "60 秒") {
		t.Fatalf("unexpected fallback message: %s", got)
	}
	// 空文案用默认提示
	blank := ThrottleRule{WindowSeconds: 30, MaxRequests: 1}
	if got := blank.rejectMessage(5); !strings.Contains(got, "请求过于频繁") {
		t.Fatalf("unexpected default message: %s", got)
	}

	if (ThrottleRule{}).active() {
		t.Fatalf("zero rule should be inactive")
	}
	if !rule.active() {
		t.Fatalf("configured rule should be active")
	}
}
