package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newContext(target string, headers map[string]string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c
}

func TestResolveLocalePriority(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		target  string
		headers map[string]string
		want    string
	}{
		{"default", "/", nil, LocaleZhCN},
		{"accept language", "/", map[string]string{"Accept-Language": "en-GB,en;q=0.9"}, LocaleEnUS},
		{"header beats accept", "/", map[string]string{"X-Locale": "zh-CN", "Accept-Language": "en-US"}, LocaleZhCN},
		{"query beats header", "/?lang=en", map[string]string{"X-Locale": "zh-CN"}, LocaleEnUS},
		{"garbage falls back", "/?lang=@@", map[string]string{"Accept-Language": "???"}, LocaleZhCN},
	}
	for _, tc := range cases {
		if got := ResolveLocale(newContext(tc.target, tc.headers)); got != tc.want {
			t.Fatalf("%s: want %s got %s", tc.name, tc.want, got)
		}
	}
	if got := ResolveLocale(nil); got != DefaultLocale {
		t.Fatalf("nil context should use default, got %s", got)
	}
}

func TestTranslateFallback(t *testing.T) {
	if got := T(LocaleEnUS, "error.order_not_found"); got != "Order not found" {
		t.Fatalf("unexpected en translation %q", got)
	}
	if got := T("fr-FR", "error.order_not_found"); got != "订单不存在" {
		t.Fatalf("unknown locale should fall back to zh-CN, got %q", got)
	}
	if got := T(LocaleEnUS, "error.some_unknown_key"); got != "error.some_unknown_key" {
		t.Fatalf("missing key should echo key, got %q", got)
	}
	if got := Sprintf(LocaleEnUS, "error.rate_limited", 30); got != "Too many requests, retry in 30 seconds" {
		t.Fatalf("unexpected formatted message %q", got)
	}
}

func TestLocaleTablesHaveSameKeys(t *testing.T) {
	zh := messages[LocaleZhCN]
	en := messages[LocaleEnUS]
	for key := range zh {
		if _, ok := en[key]; !ok {
			t.Fatalf("en-US missing key %s", key)
		}
	}
	for key := range en {
		if _, ok := zh[key]; !ok {
			t.Fatalf("zh-CN missing key %s", key)
		}
	}
}
