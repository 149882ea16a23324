package view

import (
	"html"
	"html/template"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/goodsign/monday"
)

// DateLayout 课表日期格式（后端约定）
const DateLayout = "2006-01-02"

// NoHomework 作业为空时的占位文本
const NoHomework = "Нет ДЗ"

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// urlTrailing 紧跟在链接后的标点不属于链接
const urlTrailing = ".,;:!?)]}"

// FormatHomework 把作业文本渲染为安全的 HTML
//
// 链接在原文上匹配，链接与其余文本分别转义；Telegram 链接不带 target 以便手机直接唤起客户端，
// 其余链接在新标签页打开；换行转为 <br>。
func FormatHomework(text string) template.HTML {
	if text == "" {
		return template.HTML(NoHomework)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	last := 0
	for _, m := range urlPattern.FindAllStringIndex(text, -1) {
		u := strings.TrimRight(text[m[0]:m[1]], urlTrailing)
		b.WriteString(html.EscapeString(text[last:m[0]]))
		b.WriteString(linkHTML(u))
		last = m[0] + len(u)
	}
	b.WriteString(html.EscapeString(text[last:]))
	return template.HTML(strings.ReplaceAll(b.String(), "\n", "<br>"))
}

func linkHTML(u string) string {
	esc := html.EscapeString(u)
	if isTelegram(u) {
		return `<a class="hw-link" href="` + esc + `">` + esc + `</a>`
	}
	return `<a class="hw-link" href="` + esc + `" target="_blank" rel="noopener">` + esc + `</a>`
}

func isTelegram(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range []string{"t.me", "telegram.me"} {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// HumanDate 俄语日期标题，如 "понедельник, 2 сентября 2024 г."
// 无法解析的日期原样返回
func HumanDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	s := monday.Format(t, "Monday, 2 January 2006 г.", monday.LocaleRuRU)
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
