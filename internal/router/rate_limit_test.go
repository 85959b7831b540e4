package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/stock-documents", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByAdmin(c); key != "1.2.3.4" {
		t.Fatalf("anonymous key want 1.2.3.4 got %s", key)
	}
	c.Set(adminIDContextKey, uint(7))
	if key := KeyByAdmin(c); key != "admin:7" {
		t.Fatalf("admin key want admin:7 got %s", key)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(WriteMethodsOnly(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP)))
	r.POST("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request #%d should pass without redis, got %d %s", i, w.Code, w.Body.String())
		}
	}
}

func TestWriteMethodsOnlySkipsReads(t *testing.T) {
	gin.SetMode(gin.TestMode)

	blocked := 0
	limiter := func(c *gin.Context) {
		blocked++
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
	r := gin.New()
	r.Use(WriteMethodsOnly(limiter))
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/items", handler)
	r.POST("/items", handler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET should bypass limiter, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items", nil))
	if w.Code != http.StatusTooManyRequests || blocked != 1 {
		t.Fatalf("POST should hit limiter, got %d blocked=%d", w.Code, blocked)
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		input interface{}
		want  int64
		ok    bool
	}{
		{int64(5), 5, true},
		{3, 3, true},
		{float64(9), 9, true},
		{"7", 0, false},
	}
	for _, tc := range cases {
		got, ok := toInt64(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("toInt64(%v) want (%d,%v) got (%d,%v)", tc.input, tc.want, tc.ok, got, ok)
		}
	}
}
