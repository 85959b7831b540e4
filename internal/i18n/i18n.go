package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	LocaleZhCN    = "zh-CN"
	LocaleEnUS    = "en-US"
	DefaultLocale = LocaleZhCN

	localeQueryKey  = "lang"
	localeHeaderKey = "X-Locale"
)

var supportedTags = []language.Tag{
	language.SimplifiedChinese,
	language.AmericanEnglish,
}

var matcher = language.NewMatcher(supportedTags)

// ResolveLocale 解析请求语言：lang 参数 > X-Locale > Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	for _, raw := range []string{c.Query(localeQueryKey), c.GetHeader(localeHeaderKey)} {
		if locale, ok := NormalizeLocale(raw); ok {
			return locale
		}
	}
	accept := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if accept == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return localeForTag(supportedTags[idx])
}

// NormalizeLocale 规范化语言代码，不支持时返回 false
func NormalizeLocale(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return "", false
	}
	return localeForTag(supportedTags[idx]), true
}

func localeForTag(tag language.Tag) string {
	base, _ := tag.Base()
	if base.String() == "en" {
		return LocaleEnUS
	}
	return LocaleZhCN
}

// T 翻译消息 key，缺失时回退默认语言，再回退 key 本身
func T(locale, key string) string {
	if msg, ok := lookup(locale, key); ok {
		return msg
	}
	if msg, ok := lookup(DefaultLocale, key); ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func lookup(locale, key string) (string, bool) {
	table, ok := messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := table[key]
	return msg, ok
}
