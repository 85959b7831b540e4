package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cangchu-next/internal/authz"
	"github.com/cangchu-next/internal/config"
	"github.com/cangchu-next/internal/models"
	"github.com/cangchu-next/internal/repository"
	"github.com/cangchu-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func setupMiddlewareDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_mw_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func issueToken(t *testing.T, secret string, admin *models.Admin) string {
	t.Helper()
	auth := service.NewAuthService(&config.Config{JWT: config.JWTConfig{SecretKey: secret, ExpireHours: 1}})
	token, _, err := auth.GenerateJWT(admin)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	return token
}

func TestAdminJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AdminJWTAuthMiddleware("", nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func TestAdminJWTAuthMiddlewareAcceptsAndRevokes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "router-test-secret"

	db := setupMiddlewareDB(t)
	repo := repository.NewAdminRepository(db)
	admin := &models.Admin{Username: "clerk01", DisplayName: "仓管一号"}
	if err := repo.Create(admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	r := gin.New()
	r.Use(AdminJWTAuthMiddleware(secret, repo))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin_id": c.GetUint(adminIDContextKey), "username": c.GetString(adminUsernameKey)})
	})

	token := issueToken(t, secret, admin)
	call := func(header string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w
	}

	w := call("Bearer " + token)
	var ok struct {
		AdminID  uint   `json:"admin_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ok); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if ok.AdminID != admin.ID || ok.Username != "clerk01" {
		t.Fatalf("unexpected admin context %+v", ok)
	}

	if resp := decodeEnvelope(t, call("")); resp.StatusCode != 401 {
		t.Fatalf("missing header should be 401, got %d", resp.StatusCode)
	}
	if resp := decodeEnvelope(t, call("Token "+token)); resp.StatusCode != 401 {
		t.Fatalf("bad scheme should be 401, got %d", resp.StatusCode)
	}
	if resp := decodeEnvelope(t, call("Bearer "+issueToken(t, "other-secret", admin))); resp.StatusCode != 401 {
		t.Fatalf("foreign signature should be 401, got %d", resp.StatusCode)
	}

	if err := repo.BumpTokenVersion(admin.ID); err != nil {
		t.Fatalf("bump token version failed: %v", err)
	}
	if resp := decodeEnvelope(t, call("Bearer "+token)); resp.StatusCode != 401 {
		t.Fatalf("revoked token should be 401, got %d", resp.StatusCode)
	}
}

func TestAdminRBACMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := setupMiddlewareDB(t)
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	if err := authzService.SetAdminRoles(5, []string{authz.RoleReadonlyAuditor}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}

	build := func(adminID uint, isSuper bool) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(adminIDContextKey, adminID)
			c.Set(adminIsSuperContextKey, isSuper)
			c.Next()
		})
		r.Use(AdminRBACMiddleware(authzService))
		handler := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
		r.GET("/api/v1/admin/orders/:id", handler)
		r.POST("/api/v1/admin/stock-documents/:id/post", handler)
		return r
	}
	call := func(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	auditor := build(5, false)
	if w := call(auditor, http.MethodGet, "/api/v1/admin/orders/1"); !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("auditor read should pass, got %s", w.Body.String())
	}
	if resp := decodeEnvelope(t, call(auditor, http.MethodPost, "/api/v1/admin/stock-documents/1/post")); resp.StatusCode != 403 {
		t.Fatalf("auditor write should be 403, got %d", resp.StatusCode)
	}

	super := build(6, true)
	if w := call(super, http.MethodPost, "/api/v1/admin/stock-documents/1/post"); !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("super admin should bypass rbac, got %s", w.Body.String())
	}

	anonymous := build(0, false)
	if resp := decodeEnvelope(t, call(anonymous, http.MethodGet, "/api/v1/admin/orders/1")); resp.StatusCode != 401 {
		t.Fatalf("anonymous should be 401, got %d", resp.StatusCode)
	}
}
